package outbox

import (
	"fmt"

	"github.com/agoraview/survey-client/pkg/internal/api"
	"github.com/agoraview/survey-client/pkg/internal/database"
	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

const idempotencyHeader = "X-Idempotency-Key"

// Outbox gives answer writes at-least-once delivery. Submissions are tried
// inline first; anything the backend could not be reached for is persisted
// and replayed on the flush schedule under the same idempotency key.
type Outbox struct {
	client *api.Client
	store  *session.Store
}

func New(client *api.Client, store *session.Store) *Outbox {
	return &Outbox{client: client, store: store}
}

// Submit attempts immediate delivery. The returned body is only set when the
// write went through inline; a queued write reports delivered=false with no
// error. Permanent rejections are surfaced and never queued.
func (o *Outbox) Submit(method, path string, payload map[string]string) ([]byte, bool, error) {
	key := uuid.NewString()

	body, err := o.deliver(method, path, payload, key)
	if err == nil {
		return body, true, nil
	}
	if api.IsPermanent(err) {
		return nil, false, err
	}

	entry := models.OutboxEntry{
		IdempotencyKey: key,
		Method:         method,
		Path:           path,
		Payload: datatypes.JSONMap(lo.MapEntries(payload, func(k string, v string) (string, any) {
			return k, v
		})),
		Attempts:  1,
		LastError: lo.ToPtr(err.Error()),
	}
	if dbErr := database.C.Create(&entry).Error; dbErr != nil {
		return nil, false, fmt.Errorf("unable to queue write for retry: %v", dbErr)
	}

	log.Warn().Err(err).Str("path", path).Str("key", key).Msg("Write queued for retry...")

	return nil, false, nil
}

func (o *Outbox) deliver(method, path string, payload map[string]string, key string) ([]byte, error) {
	sctx := o.store.StateChanging()
	code, body, err := o.client.Do(method, path, sctx, payload, map[string]string{
		idempotencyHeader: key,
	})
	if err != nil {
		return nil, err
	}
	if code != fiber.StatusOK && code != fiber.StatusCreated {
		return nil, &api.StatusError{Code: code, Body: string(body)}
	}
	return body, nil
}

// Flush replays pending entries, oldest first. Delivered entries are removed;
// permanently rejected ones are dropped with a log line.
func (o *Outbox) Flush() {
	var entries []models.OutboxEntry
	if err := database.C.Order("created_at ASC").Find(&entries).Error; err != nil {
		log.Error().Err(err).Msg("Unable to load pending outbox entries...")
		return
	}

	for _, entry := range entries {
		payload := lo.MapEntries(entry.Payload, func(k string, v any) (string, string) {
			return k, fmt.Sprintf("%v", v)
		})

		if _, err := o.deliver(entry.Method, entry.Path, payload, entry.IdempotencyKey); err != nil {
			if api.IsPermanent(err) {
				log.Warn().Err(err).Str("path", entry.Path).Msg("Dropping permanently rejected write...")
				database.C.Delete(&entry)
				continue
			}
			database.C.Model(&entry).Updates(map[string]any{
				"attempts":   entry.Attempts + 1,
				"last_error": err.Error(),
			})
			continue
		}

		database.C.Delete(&entry)
	}
}

// Pending reports how many writes still wait for delivery.
func (o *Outbox) Pending() int64 {
	var count int64
	database.C.Model(&models.OutboxEntry{}).Count(&count)
	return count
}

// FlushTimedTask is the cron entrypoint.
func (o *Outbox) FlushTimedTask() {
	if o.Pending() == 0 {
		return
	}
	log.Debug().Msg("Flushing pending survey writes...")
	o.Flush()
}
