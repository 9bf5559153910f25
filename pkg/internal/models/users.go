package models

const (
	SexMale   = "male"
	SexFemale = "female"
)

type User struct {
	ID                uint   `json:"id"`
	Sex               string `json:"sex"`
	YearOfBirth       int    `json:"year_of_birth"`
	PoliticalTendency string `json:"political_tendency"`
	SupportingParty   string `json:"supporting_party"`
	UserParticipated  bool   `json:"user_participated"`
}

// CreatedUser is the response of the user creation endpoint. State is false
// when the captcha input did not match; Token and ID are only set on success.
type CreatedUser struct {
	State bool   `json:"state"`
	Token string `json:"token"`
	ID    uint   `json:"id"`
}

// CaptchaChallenge is a fresh captcha key with its rendered image.
type CaptchaChallenge struct {
	Key      string `json:"key"`
	ImageURL string `json:"image_url"`
}
