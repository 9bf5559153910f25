package models

import (
	"gorm.io/datatypes"
)

// OutboxEntry is a pending write that could not be delivered yet. Entries are
// retried until the backend accepts them or rejects them permanently; the
// idempotency key stays stable across attempts.
type OutboxEntry struct {
	BaseModel

	IdempotencyKey string            `json:"idempotency_key" gorm:"uniqueIndex"`
	Method         string            `json:"method"`
	Path           string            `json:"path"`
	Payload        datatypes.JSONMap `json:"payload"`
	Attempts       int               `json:"attempts"`
	LastError      *string           `json:"last_error"`
}
