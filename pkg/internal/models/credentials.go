package models

// Credential is one persisted key-value pair of the local session store
// (token, user id, CSRF token).
type Credential struct {
	BaseModel

	Key   string `json:"key" gorm:"uniqueIndex"`
	Value string `json:"value"`
}

const (
	CredentialToken  = "token"
	CredentialUserID = "user_id"
	CredentialCSRF   = "csrf_token"
)
