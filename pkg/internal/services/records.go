package services

import (
	"github.com/agoraview/survey-client/pkg/internal/api"
	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// QuestionVoters reports, per choice of a question, which comparison targets
// picked it. The report card only highlights the searched target and the self
// marker, so everything else is filtered out. Failures yield an empty map;
// the report card simply stays blank.
func QuestionVoters(client *api.Client, store *session.Store, questionID uint, highlight string) map[uint][]models.ComparisonRecord {
	records, err := client.ListRecords(store.Authenticated(), questionID)
	if err != nil {
		log.Debug().Err(err).Uint("question", questionID).Msg("Failed to get comparison records...")
		return map[uint][]models.ComparisonRecord{}
	}

	filtered := lo.Filter(records, func(item models.ComparisonRecord, _ int) bool {
		return item.Name == highlight || item.Name == models.SelfMarker
	})

	return lo.GroupBy(filtered, func(item models.ComparisonRecord) uint {
		return item.ChoiceID
	})
}
