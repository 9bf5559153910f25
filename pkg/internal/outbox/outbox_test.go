package outbox

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/agoraview/survey-client/pkg/internal/api"
	"github.com/agoraview/survey-client/pkg/internal/database"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// flakyBackend fails with the configured status until told to recover,
// recording every idempotency key it sees.
type flakyBackend struct {
	mu     sync.Mutex
	status int
	keys   []string
}

func (b *flakyBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, r.Header.Get("X-Idempotency-Key"))
	w.WriteHeader(b.status)
	if b.status == http.StatusCreated {
		w.Write([]byte(`{"id": 1}`))
	}
}

func (b *flakyBackend) recover() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = http.StatusCreated
}

func (b *flakyBackend) seenKeys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.keys...)
}

func newOutboxEnv(t *testing.T, backend http.Handler) *Outbox {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "client.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("unable to open test store: %v", err)
	}
	database.C = db
	if err := database.RunMigration(db); err != nil {
		t.Fatalf("unable to migrate test store: %v", err)
	}

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	store := session.NewStore(db)
	return New(api.NewClient(server.URL, nil), store)
}

func TestOutboxInlineDelivery(t *testing.T) {
	backend := &flakyBackend{status: http.StatusCreated}
	box := newOutboxEnv(t, backend)

	body, delivered, err := box.Submit(http.MethodPost, "/api/answers/", map[string]string{"choice_id": "1"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !delivered {
		t.Fatal("Submit() against a healthy backend should deliver inline")
	}
	if len(body) == 0 {
		t.Error("inline delivery should surface the response body")
	}
	if box.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", box.Pending())
	}
}

func TestOutboxQueuesAndRetries(t *testing.T) {
	backend := &flakyBackend{status: http.StatusServiceUnavailable}
	box := newOutboxEnv(t, backend)

	_, delivered, err := box.Submit(http.MethodPost, "/api/answers/", map[string]string{"choice_id": "1", "weight": "2"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if delivered {
		t.Fatal("Submit() against a failing backend should queue instead")
	}
	if box.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", box.Pending())
	}

	// Still failing: the entry stays queued
	box.Flush()
	if box.Pending() != 1 {
		t.Fatalf("Pending() after failed flush = %d, want 1", box.Pending())
	}

	backend.recover()
	box.Flush()
	if box.Pending() != 0 {
		t.Fatalf("Pending() after recovery = %d, want 0", box.Pending())
	}

	keys := backend.seenKeys()
	if len(keys) != 3 {
		t.Fatalf("backend saw %d attempts, want 3", len(keys))
	}
	for _, key := range keys[1:] {
		if key != keys[0] {
			t.Errorf("idempotency key changed across retries: %v", keys)
		}
	}
	if keys[0] == "" {
		t.Error("idempotency key missing on the wire")
	}
}

func TestOutboxDropsPermanentRejections(t *testing.T) {
	backend := &flakyBackend{status: http.StatusBadRequest}
	box := newOutboxEnv(t, backend)

	_, delivered, err := box.Submit(http.MethodPost, "/api/answers/", map[string]string{"choice_id": "1"})
	if delivered {
		t.Fatal("a rejected write must not count as delivered")
	}
	if !api.IsPermanent(err) {
		t.Fatalf("Submit() error = %v, want a permanent StatusError", err)
	}
	if box.Pending() != 0 {
		t.Errorf("Pending() = %d, permanent rejections must not queue", box.Pending())
	}
}
