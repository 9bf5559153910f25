package api

import (
	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/gofiber/fiber/v2"
)

// CreateVoiceOfCustomer submits free-text feedback about the survey.
func (c *Client) CreateVoiceOfCustomer(sctx session.Context, context string) (models.VoiceOfCustomer, error) {
	var voc models.VoiceOfCustomer
	form := map[string]string{"context": context}
	if err := c.submitForm(fiber.MethodPost, "/api/voc/", sctx, form, &voc); err != nil {
		return voc, err
	}
	return voc, nil
}
