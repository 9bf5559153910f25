package services

import (
	"fmt"

	"github.com/agoraview/survey-client/pkg/internal/api"
	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/outbox"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type SectionKind int

const (
	SectionIntro SectionKind = iota
	SectionTag
	SectionQuestion
	SectionAdditional
)

// The backend requires a dwell duration per answer but ignores granularity
// beyond this fixed value, so the legacy clients always sent 4.
const answerDuration = 4

// Section is one step of the linear survey flow. Question sections cache the
// last persisted answer (id, choice, weight) so leaving the section can tell
// a fresh answer from an edit from a no-op.
type Section struct {
	Index    int
	Anchor   string
	Kind     SectionKind
	Question *models.Question

	AnswerID       *uint
	OriginalChoice *uint
	OriginalWeight models.AnswerWeight

	SelectedChoice *uint
	Emphasized     bool
}

// Flow drives the section sequence intro → tag → Q1..QN → additional.
type Flow struct {
	client   *api.Client
	store    *session.Store
	box      *outbox.Outbox
	sections []*Section
}

func NewFlow(client *api.Client, store *session.Store, box *outbox.Outbox, questions []models.Question) *Flow {
	sections := []*Section{
		{Index: 1, Anchor: "main", Kind: SectionIntro},
		{Index: 2, Anchor: "tag", Kind: SectionTag},
	}
	for idx := range questions {
		sections = append(sections, &Section{
			Index:    idx + 3,
			Anchor:   fmt.Sprintf("Q%d", idx+1),
			Kind:     SectionQuestion,
			Question: &questions[idx],
		})
	}
	sections = append(sections, &Section{
		Index:  len(questions) + 3,
		Anchor: "additional",
		Kind:   SectionAdditional,
	})

	return &Flow{
		client:   client,
		store:    store,
		box:      box,
		sections: sections,
	}
}

func (f *Flow) Sections() []*Section {
	return f.sections
}

func (f *Flow) TotalSections() int {
	return len(f.sections)
}

func (f *Flow) TotalQuestions() int {
	return len(f.sections) - 3
}

// Section returns the section at the given 1-based flow index.
func (f *Flow) Section(index int) (*Section, bool) {
	if index < 1 || index > len(f.sections) {
		return nil, false
	}
	return f.sections[index-1], true
}

// QuestionSection returns the section of the nth question (1-based).
func (f *Flow) QuestionSection(order int) (*Section, bool) {
	return f.Section(order + 2)
}

// Select records the user's choice on a question without touching the network;
// persistence happens when the section is left.
func (f *Flow) Select(order int, choiceID uint) error {
	section, ok := f.QuestionSection(order)
	if !ok || section.Kind != SectionQuestion {
		return fmt.Errorf("no question at order %d", order)
	}
	if !lo.ContainsBy(section.Question.Choices, func(item models.Choice) bool {
		return item.ID == choiceID
	}) {
		return fmt.Errorf("choice %d does not belong to question %d", choiceID, section.Question.ID)
	}
	section.SelectedChoice = lo.ToPtr(choiceID)
	return nil
}

func (f *Flow) SetEmphasis(order int, emphasized bool) error {
	section, ok := f.QuestionSection(order)
	if !ok || section.Kind != SectionQuestion {
		return fmt.Errorf("no question at order %d", order)
	}
	section.Emphasized = emphasized
	return nil
}

// Leave handles the navigation event out of a section. The returned flag is
// false when the transition is blocked, which only happens when leaving the
// intro without a session.
func (f *Flow) Leave(index int) (bool, error) {
	section, ok := f.Section(index)
	if !ok {
		return false, fmt.Errorf("no section at index %d", index)
	}

	switch section.Kind {
	case SectionIntro:
		if _, ok := f.store.Token(); !ok {
			return false, nil
		}
		return true, nil
	case SectionTag, SectionAdditional:
		// Declared transition points; nothing is persisted here yet.
		return true, nil
	}

	return true, f.persistAnswer(section)
}

func (f *Flow) persistAnswer(section *Section) error {
	if section.SelectedChoice == nil {
		return nil
	}

	weight := models.EmphasisToWeight(section.Emphasized)
	draft := models.AnswerDraft{
		ChoiceID: *section.SelectedChoice,
		Weight:   weight,
		Duration: answerDuration,
	}

	switch {
	case section.AnswerID == nil:
		return f.submitAnswer(section, fiber.MethodPost, "/api/answers/", draft)
	case *section.OriginalChoice != draft.ChoiceID || section.OriginalWeight != weight:
		path := fmt.Sprintf("/api/answers/%d/", *section.AnswerID)
		return f.submitAnswer(section, fiber.MethodPatch, path, draft)
	}

	// Unchanged answer, skip the redundant network call.
	return nil
}

func (f *Flow) submitAnswer(section *Section, method, path string, draft models.AnswerDraft) error {
	body, delivered, err := f.box.Submit(method, path, api.AnswerForm(draft))
	if err != nil {
		log.Error().Err(err).Uint("question", section.Question.ID).Msg("Failed to save answer...")
		return err
	}
	if !delivered {
		// Queued for retry; the cache stays as-is and resume reconciles later.
		return nil
	}

	var answer models.Answer
	if err := jsoniter.Unmarshal(body, &answer); err != nil {
		log.Error().Err(err).Msg("Failed to parse saved answer...")
		return fmt.Errorf("failed to parse saved answer: %v", err)
	}

	section.AnswerID = lo.ToPtr(answer.ID)
	section.OriginalChoice = lo.ToPtr(answer.Choice)
	if answer.Weight == models.WeightEmphasized {
		section.OriginalWeight = models.WeightEmphasized
	} else {
		section.OriginalWeight = models.WeightNormal
	}

	return nil
}
