package services

import (
	"errors"

	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/samber/lo"
)

// ErrTargetNotFound covers both a name missing from the rows and a search
// for the self marker, which is never a comparison target.
var ErrTargetNotFound = errors.New("no such comparison target")

type SearchResult struct {
	Target          models.ResultRow
	PositionLabel   string
	SimilarityLabel string
}

// SearchTarget looks a comparison target up by exact name in the already
// loaded rows. Purely in-memory, no network traffic.
func SearchTarget(rows []models.ResultRow, name string) (SearchResult, error) {
	if name == models.SelfMarker {
		return SearchResult{}, ErrTargetNotFound
	}

	row, ok := lo.Find(rows, func(item models.ResultRow) bool {
		return item.Name == name
	})
	if !ok {
		return SearchResult{}, ErrTargetNotFound
	}

	return SearchResult{
		Target:          row,
		PositionLabel:   TranslateEconomicScore(row.EconomicScore),
		SimilarityLabel: TranslateSimilarity(row.Similarity),
	}, nil
}
