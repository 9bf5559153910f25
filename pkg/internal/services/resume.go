package services

import (
	"fmt"

	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// ResumeState is what the landing page needs to restore a returning user.
type ResumeState struct {
	User           models.User
	Completed      bool
	ContinueAnchor string
}

// Resume restores a saved session: it fetches the profile and the answers,
// preselects every answered question and computes the continue anchor.
// Returns nil when no session is stored. Any fetch failure invalidates the
// session and clears the stored credentials.
func (f *Flow) Resume() (*ResumeState, error) {
	userID, hasUser := f.store.UserID()
	if _, hasToken := f.store.Token(); !hasToken || !hasUser {
		return nil, nil
	}

	sctx := f.store.Authenticated()

	user, err := f.client.GetUser(sctx, userID)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get user profile, clearing session...")
		_ = f.store.Clear()
		return nil, fmt.Errorf("session is no longer valid: %v", err)
	}

	answers, err := f.client.ListAnswers(sctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get user answers, clearing session...")
		_ = f.store.Clear()
		return nil, fmt.Errorf("session is no longer valid: %v", err)
	}

	for _, answer := range answers {
		section, ok := f.sectionByChoice(answer.Choice)
		if !ok {
			continue
		}
		section.SelectedChoice = lo.ToPtr(answer.Choice)
		section.Emphasized = answer.Weight == models.WeightEmphasized
		section.AnswerID = lo.ToPtr(answer.ID)
		section.OriginalChoice = lo.ToPtr(answer.Choice)
		section.OriginalWeight = models.EmphasisToWeight(section.Emphasized)
	}

	state := &ResumeState{User: user, Completed: user.UserParticipated}
	if !state.Completed {
		state.ContinueAnchor = f.continueAnchor()
	}

	return state, nil
}

func (f *Flow) sectionByChoice(choiceID uint) (*Section, bool) {
	return lo.Find(f.sections, func(item *Section) bool {
		if item.Kind != SectionQuestion {
			return false
		}
		return lo.ContainsBy(item.Question.Choices, func(choice models.Choice) bool {
			return choice.ID == choiceID
		})
	})
}

// continueAnchor points at the section after the highest answered question:
// the next question, "additional" when everything is answered, or "tag" when
// nothing is.
func (f *Flow) continueAnchor() string {
	last := 0
	for _, section := range f.sections {
		if section.Kind == SectionQuestion && section.SelectedChoice != nil {
			order := section.Index - 2
			if order > last {
				last = order
			}
		}
	}

	total := f.TotalQuestions()
	switch {
	case last >= 1 && last < total:
		return fmt.Sprintf("Q%d", last+1)
	case last == total && total > 0:
		return "additional"
	default:
		return "tag"
	}
}
