package api

import (
	"fmt"

	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/gofiber/fiber/v2"
)

// GetUser fetches the authenticated user's profile. A failure here means the
// session is no longer valid; the caller is expected to clear it.
func (c *Client) GetUser(sctx session.Context, id uint) (models.User, error) {
	var user models.User
	if err := c.getJSON(fmt.Sprintf("/api/users/%d/", id), sctx, &user); err != nil {
		return user, err
	}
	return user, nil
}

// CreateUser trades a solved captcha for a fresh anonymous account. The
// backend answers state=false when the captcha input did not match, which is
// a validation outcome rather than an error.
func (c *Client) CreateUser(sctx session.Context, captchaKey, captchaValue string) (models.CreatedUser, error) {
	var created models.CreatedUser
	form := map[string]string{
		"captcha_key":   captchaKey,
		"captcha_value": captchaValue,
	}
	if err := c.submitForm(fiber.MethodPost, "/api/users/", sctx, form, &created); err != nil {
		return created, err
	}
	return created, nil
}

// RefreshCaptcha asks the backend for a new captcha challenge.
func (c *Client) RefreshCaptcha() (models.CaptchaChallenge, error) {
	var challenge models.CaptchaChallenge
	if err := c.getJSON("/captcha/refresh/json/", session.Anonymous(), &challenge); err != nil {
		return challenge, err
	}
	return challenge, nil
}
