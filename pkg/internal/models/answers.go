package models

import "time"

type AnswerWeight = int

const (
	WeightNormal     = AnswerWeight(1)
	WeightEmphasized = AnswerWeight(2)
)

// EmphasisToWeight maps the emphasis toggle onto the wire encoding.
func EmphasisToWeight(emphasized bool) AnswerWeight {
	if emphasized {
		return WeightEmphasized
	}
	return WeightNormal
}

type Answer struct {
	ID        uint         `json:"id"`
	User      uint         `json:"user"`
	Choice    uint         `json:"choice"`
	Weight    AnswerWeight `json:"weight"`
	Duration  int          `json:"duration"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// AnswerDraft is what the flow controller hands to the write path.
type AnswerDraft struct {
	ChoiceID uint         `json:"choice_id"`
	Weight   AnswerWeight `json:"weight"`
	Duration int          `json:"duration"`
}
