package services

import (
	"fmt"

	"github.com/agoraview/survey-client/pkg/internal/api"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

type CaptchaInput struct {
	Key   string `validate:"required"`
	Value string `validate:"required"`
}

// ProfileInput holds the optional demographic fields of the additional-info
// section.
type ProfileInput struct {
	Sex             string `validate:"omitempty,oneof=male female"`
	YearOfBirth     int    `validate:"omitempty,min=1900,max=2020"`
	SupportingParty string `validate:"omitempty,max=64"`
}

func ValidateProfile(input ProfileInput) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("invalid profile: %v", err)
	}
	return nil
}

// RegisterUser validates the captcha input, creates a fresh anonymous account
// and persists its credentials. Returns false with no error when the captcha
// did not match, so the caller can surface the inline mismatch message. Any
// previous session is discarded first, matching the "start over" semantics of
// the landing page.
func RegisterUser(client *api.Client, store *session.Store, input CaptchaInput) (bool, error) {
	if err := validate.Struct(input); err != nil {
		return false, fmt.Errorf("invalid captcha input: %v", err)
	}

	if err := store.Clear(); err != nil {
		return false, err
	}

	created, err := client.CreateUser(store.CrossSite(), input.Key, input.Value)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create user...")
		return false, err
	}
	if !created.State {
		return false, nil
	}

	if err := store.SaveSession(created.Token, created.ID); err != nil {
		return false, err
	}

	return true, nil
}

// SubmitFeedback forwards a voice-of-customer message from the additional
// section.
func SubmitFeedback(client *api.Client, store *session.Store, context string) error {
	if len(context) == 0 {
		return fmt.Errorf("feedback is empty")
	}
	if _, err := client.CreateVoiceOfCustomer(store.StateChanging(), context); err != nil {
		log.Error().Err(err).Msg("Failed to submit feedback...")
		return err
	}
	return nil
}
