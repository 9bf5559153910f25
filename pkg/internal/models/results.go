package models

import "time"

// SelfMarker is the reserved row name the backend uses for the user's own
// profile inside a result record.
const SelfMarker = "나"

const ResultCategoryParty = "party"

type Result struct {
	ID             uint      `json:"id"`
	User           uint      `json:"user"`
	Survey         uint      `json:"survey"`
	Record         string    `json:"record"`
	ExpectedTarget string    `json:"expected_target"`
	Category       string    `json:"category"`
	XAxisName      string    `json:"x_axis_name"`
	YAxisName      string    `json:"y_axis_name"`
	IsPublic       bool      `json:"is_public"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ResultRow is one comparison entry decoded out of Result.Record. The backend
// computes economic score and similarity; the client only sorts and labels.
type ResultRow struct {
	Name          string  `json:"name"`
	EconomicScore float64 `json:"economic_score"`
	Similarity    float64 `json:"similarity"`
}

// IsSelf reports whether the row stands for the user's own profile.
func (r ResultRow) IsSelf() bool {
	return r.Name == SelfMarker
}

// ComparisonRecord tells which choice a named comparison target picked on a
// single question, with the target's display color.
type ComparisonRecord struct {
	Name     string `json:"name"`
	ChoiceID uint   `json:"choice_id"`
	Color    string `json:"color"`
}
