package session

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/agoraview/survey-client/pkg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists the session credentials between runs. A missing credential is
// a valid state (anonymous user), not an error.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) get(key string) (string, bool) {
	var credential models.Credential
	if err := s.db.Where("key = ?", key).First(&credential).Error; err != nil {
		return "", false
	}
	return credential.Value, true
}

func (s *Store) set(key, value string) error {
	credential := models.Credential{Key: key, Value: value}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&credential).Error; err != nil {
		return fmt.Errorf("unable to persist credential %s: %v", key, err)
	}
	return nil
}

func (s *Store) Token() (string, bool) {
	return s.get(models.CredentialToken)
}

func (s *Store) UserID() (uint, bool) {
	raw, ok := s.get(models.CredentialUserID)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (s *Store) CSRFToken() (string, bool) {
	return s.get(models.CredentialCSRF)
}

// SaveSession stores the token and user id returned by user creation.
func (s *Store) SaveSession(token string, userID uint) error {
	if err := s.set(models.CredentialToken, token); err != nil {
		return err
	}
	return s.set(models.CredentialUserID, strconv.FormatUint(uint64(userID), 10))
}

func (s *Store) SaveCSRFToken(token string) error {
	return s.set(models.CredentialCSRF, token)
}

// Clear drops the persisted token and user id, returning the client to the
// unauthenticated state. Contexts built afterwards carry no Authorization
// header. The CSRF token survives, it belongs to the browser-equivalent
// cookie jar rather than the session.
func (s *Store) Clear() error {
	if err := s.db.Where("key IN ?", []string{models.CredentialToken, models.CredentialUserID}).
		Delete(&models.Credential{}).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("unable to clear session: %v", err)
	}
	return nil
}
