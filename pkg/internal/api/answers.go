package api

import (
	"fmt"
	"strconv"

	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/session"
)

// AnswerForm flattens a draft into the form fields the backend consumes.
func AnswerForm(draft models.AnswerDraft) map[string]string {
	return map[string]string{
		"choice_id": strconv.FormatUint(uint64(draft.ChoiceID), 10),
		"weight":    strconv.Itoa(draft.Weight),
		"duration":  strconv.Itoa(draft.Duration),
	}
}

// ListAnswers returns every answer the authenticated user has saved so far.
func (c *Client) ListAnswers(sctx session.Context) ([]models.Answer, error) {
	var answers []models.Answer
	if err := c.getJSON("/api/answers/", sctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// ListRecords returns which choice each comparison target picked on the
// given question.
func (c *Client) ListRecords(sctx session.Context, questionID uint) ([]models.ComparisonRecord, error) {
	var records []models.ComparisonRecord
	if err := c.getJSON(fmt.Sprintf("/api/records/%d/", questionID), sctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
