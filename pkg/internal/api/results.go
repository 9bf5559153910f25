package api

import (
	"fmt"

	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/gofiber/fiber/v2"
)

// GetResult fetches a stored result. Private or missing results come back as
// a StatusError; the renderer turns that into the blocking banner and clears
// the session.
func (c *Client) GetResult(sctx session.Context, id uint) (models.Result, error) {
	var result models.Result
	if err := c.getJSON(fmt.Sprintf("/api/results/%d/", id), sctx, &result); err != nil {
		return result, err
	}
	return result, nil
}

// CreateResult asks the backend to compute and store a result for the given
// category.
func (c *Client) CreateResult(sctx session.Context, category string) (models.Result, error) {
	var result models.Result
	form := map[string]string{"category": category}
	if err := c.submitForm(fiber.MethodPost, "/api/results/", sctx, form, &result); err != nil {
		return result, err
	}
	return result, nil
}

// PublishResult flips the result public. There is no way back to private.
func (c *Client) PublishResult(sctx session.Context, id uint) (models.Result, error) {
	var result models.Result
	form := map[string]string{"is_public": "true"}
	if err := c.submitForm(fiber.MethodPatch, fmt.Sprintf("/api/results/%d/", id), sctx, form, &result); err != nil {
		return result, err
	}
	return result, nil
}
