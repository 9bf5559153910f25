package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agoraview/survey-client/pkg/internal/api"
	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/session"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	ctaOwner   = "다시 해보기"
	ctaVisitor = "나도 해보기"
)

// ParseRecord decodes the serialized row list of a result. Well-formed JSON
// is accepted as-is; the legacy backend emits single-quoted pseudo-JSON,
// which is normalized before a second attempt.
func ParseRecord(record string) ([]models.ResultRow, error) {
	var rows []models.ResultRow
	if err := jsoniter.UnmarshalFromString(record, &rows); err == nil {
		return rows, nil
	}

	normalized := strings.ReplaceAll(record, "'", "\"")
	if err := jsoniter.UnmarshalFromString(normalized, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse result record: %v", err)
	}

	return rows, nil
}

// SortRows orders rows by similarity descending without touching the input.
func SortRows(rows []models.ResultRow) []models.ResultRow {
	sorted := make([]models.ResultRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Similarity > sorted[j].Similarity
	})
	return sorted
}

// Summary projects the sorted rows onto the fields the result page shows.
// The self row carries similarity 100, so it sorts first; best match is the
// runner-up and worst match the tail.
type Summary struct {
	Mine          models.ResultRow
	BestMatch     models.ResultRow
	WorstMatch    models.ResultRow
	PositionLabel string
}

func Summarize(rows []models.ResultRow) (Summary, error) {
	if len(rows) < 2 {
		return Summary{}, fmt.Errorf("result record holds %d rows, need at least 2", len(rows))
	}

	sorted := SortRows(rows)
	mine := sorted[0]

	return Summary{
		Mine:          mine,
		BestMatch:     sorted[1],
		WorstMatch:    sorted[len(sorted)-1],
		PositionLabel: TranslateEconomicScore(mine.EconomicScore),
	}, nil
}

// ResultView is everything the result detail page renders.
type ResultView struct {
	Result        models.Result
	Rows          []models.ResultRow
	Summary       Summary
	OwnedByViewer bool
	CallToAction  string
}

// LoadResult fetches and prepares a result for display. A failed fetch means
// the result is private or gone: the caller shows the blocking banner and the
// stored session is cleared.
func LoadResult(client *api.Client, store *session.Store, id uint) (*ResultView, error) {
	sctx := store.Authenticated()

	result, err := client.GetResult(sctx, id)
	if err != nil {
		log.Warn().Err(err).Uint("result", id).Msg("Failed to get result, clearing session...")
		_ = store.Clear()
		return nil, fmt.Errorf("result is not available: %v", err)
	}

	rows, err := ParseRecord(result.Record)
	if err != nil {
		return nil, err
	}

	summary, err := Summarize(rows)
	if err != nil {
		return nil, err
	}

	userID, hasUser := store.UserID()
	owned := hasUser && result.User == userID

	return &ResultView{
		Result:        result,
		Rows:          SortRows(rows),
		Summary:       summary,
		OwnedByViewer: owned,
		CallToAction:  lo.Ternary(owned, ctaOwner, ctaVisitor),
	}, nil
}

// PublishResult makes the result publicly visible. Failures are logged and
// swallowed; the UI keeps treating the result as private until a later
// attempt succeeds.
func PublishResult(client *api.Client, store *session.Store, id uint) {
	if _, err := client.PublishResult(store.StateChanging(), id); err != nil {
		log.Warn().Err(err).Uint("result", id).Msg("Failed to publish result...")
	}
}

// RequestResult asks the backend to compute a fresh result and returns it.
func RequestResult(client *api.Client, store *session.Store, category string) (models.Result, error) {
	result, err := client.CreateResult(store.StateChanging(), category)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("Failed to create result...")
		return result, err
	}
	return result, nil
}
