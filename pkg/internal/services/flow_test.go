package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/agoraview/survey-client/pkg/internal/api"
	"github.com/agoraview/survey-client/pkg/internal/database"
	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/outbox"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeBackend is a minimal survey API standing in for the real server.
type fakeBackend struct {
	mu          sync.Mutex
	createCalls int
	updateCalls int
	lastChoice  string
	lastWeight  string
	answers     string
	user        string
	userStatus  int
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/answers/":
		_ = r.ParseForm()
		b.createCalls++
		b.lastChoice = r.PostFormValue("choice_id")
		b.lastWeight = r.PostFormValue("weight")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id": 501, "user": 1, "choice": %s, "weight": %s}`, b.lastChoice, b.lastWeight)
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/api/answers/"):
		_ = r.ParseForm()
		b.updateCalls++
		b.lastChoice = r.PostFormValue("choice_id")
		b.lastWeight = r.PostFormValue("weight")
		fmt.Fprintf(w, `{"id": 501, "user": 1, "choice": %s, "weight": %s}`, b.lastChoice, b.lastWeight)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/users/"):
		status := b.userStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		fmt.Fprint(w, b.user)
	case r.Method == http.MethodGet && r.URL.Path == "/api/answers/":
		fmt.Fprint(w, b.answers)
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) counts() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createCalls, b.updateCalls
}

func newClientEnv(t *testing.T, backend http.Handler) (*api.Client, *session.Store) {
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

	return api.NewClient(server.URL, nil), session.NewStore(db)
}

func newFlowEnv(t *testing.T, backend *fakeBackend) (*Flow, *session.Store) {
	t.Helper()

	client, store := newClientEnv(t, backend)
	box := outbox.New(client, store)

	questions := []models.Question{
		{ID: 1, Title: "first", Choices: []models.Choice{{ID: 11, Question: 1}, {ID: 12, Question: 1}}},
		{ID: 2, Title: "second", Choices: []models.Choice{{ID: 21, Question: 2}, {ID: 22, Question: 2}}},
	}

	return NewFlow(client, store, box, questions), store
}

func TestFlowLeaveCreatesAnswerOnce(t *testing.T) {
	backend := &fakeBackend{}
	flow, store := newFlowEnv(t, backend)
	if err := store.SaveSession("token", 1); err != nil {
		t.Fatal(err)
	}

	if err := flow.Select(1, 12); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := flow.SetEmphasis(1, true); err != nil {
		t.Fatalf("SetEmphasis() error = %v", err)
	}

	if ok, err := flow.Leave(3); !ok || err != nil {
		t.Fatalf("Leave() = %v, %v", ok, err)
	}

	creates, updates := backend.counts()
	if creates != 1 || updates != 0 {
		t.Fatalf("after first leave: creates = %d, updates = %d, want 1, 0", creates, updates)
	}
	if backend.lastChoice != "12" || backend.lastWeight != "2" {
		t.Errorf("posted choice/weight = %s/%s, want 12/2", backend.lastChoice, backend.lastWeight)
	}

	section, _ := flow.QuestionSection(1)
	if section.AnswerID == nil || *section.AnswerID != 501 {
		t.Fatalf("answer id not cached: %+v", section)
	}

	// Leaving again without any change issues no network call
	if ok, err := flow.Leave(3); !ok || err != nil {
		t.Fatalf("Leave() = %v, %v", ok, err)
	}
	creates, updates = backend.counts()
	if creates != 1 || updates != 0 {
		t.Errorf("after unchanged leave: creates = %d, updates = %d, want 1, 0", creates, updates)
	}
}

func TestFlowLeaveUpdatesOnChange(t *testing.T) {
	tests := []struct {
		name   string
		change func(f *Flow)
	}{
		{"changed choice", func(f *Flow) { _ = f.Select(1, 11) }},
		{"changed weight", func(f *Flow) { _ = f.SetEmphasis(1, false) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			flow, store := newFlowEnv(t, backend)
			_ = store.SaveSession("token", 1)

			_ = flow.Select(1, 12)
			_ = flow.SetEmphasis(1, true)
			if ok, err := flow.Leave(3); !ok || err != nil {
				t.Fatalf("Leave() = %v, %v", ok, err)
			}

			tt.change(flow)
			if ok, err := flow.Leave(3); !ok || err != nil {
				t.Fatalf("Leave() = %v, %v", ok, err)
			}

			creates, updates := backend.counts()
			if creates != 1 || updates != 1 {
				t.Errorf("creates = %d, updates = %d, want 1, 1", creates, updates)
			}
		})
	}
}

func TestFlowLeaveWithoutSelection(t *testing.T) {
	backend := &fakeBackend{}
	flow, store := newFlowEnv(t, backend)
	_ = store.SaveSession("token", 1)

	if ok, err := flow.Leave(3); !ok || err != nil {
		t.Fatalf("Leave() = %v, %v", ok, err)
	}
	if creates, updates := backend.counts(); creates != 0 || updates != 0 {
		t.Errorf("creates = %d, updates = %d, want 0, 0", creates, updates)
	}
}

func TestFlowIntroGating(t *testing.T) {
	backend := &fakeBackend{}
	flow, store := newFlowEnv(t, backend)

	if ok, err := flow.Leave(1); ok || err != nil {
		t.Fatalf("Leave(intro) without session = %v, %v, want blocked", ok, err)
	}

	_ = store.SaveSession("token", 1)
	if ok, err := flow.Leave(1); !ok || err != nil {
		t.Fatalf("Leave(intro) with session = %v, %v, want allowed", ok, err)
	}
}

func TestFlowResume(t *testing.T) {
	tests := []struct {
		name        string
		answers     string
		participate bool
		wantAnchor  string
	}{
		{"nothing answered", `[]`, false, "tag"},
		{"first answered", `[{"id": 501, "user": 1, "choice": 12, "weight": 2}]`, false, "Q2"},
		{"all answered", `[{"id": 501, "user": 1, "choice": 12, "weight": 2}, {"id": 502, "user": 1, "choice": 21, "weight": 1}]`, false, "additional"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{
				user:    fmt.Sprintf(`{"id": 1, "sex": "male", "year_of_birth": 1990, "user_participated": %v}`, tt.participate),
				answers: tt.answers,
			}
			flow, store := newFlowEnv(t, backend)
			_ = store.SaveSession("token", 1)

			state, err := flow.Resume()
			if err != nil {
				t.Fatalf("Resume() error = %v", err)
			}
			if state == nil {
				t.Fatal("Resume() returned no state for a stored session")
			}
			if state.ContinueAnchor != tt.wantAnchor {
				t.Errorf("ContinueAnchor = %q, want %q", state.ContinueAnchor, tt.wantAnchor)
			}
		})
	}

	t.Run("preselects answered choices", func(t *testing.T) {
		backend := &fakeBackend{
			user:    `{"id": 1, "user_participated": false}`,
			answers: `[{"id": 501, "user": 1, "choice": 12, "weight": 2}]`,
		}
		flow, store := newFlowEnv(t, backend)
		_ = store.SaveSession("token", 1)

		if _, err := flow.Resume(); err != nil {
			t.Fatalf("Resume() error = %v", err)
		}

		section, _ := flow.QuestionSection(1)
		if section.SelectedChoice == nil || *section.SelectedChoice != 12 {
			t.Fatalf("choice not preselected: %+v", section)
		}
		if !section.Emphasized {
			t.Error("weight 2 should preselect the emphasis toggle")
		}
		if section.AnswerID == nil || *section.AnswerID != 501 {
			t.Errorf("answer id not cached: %+v", section)
		}

		// Leaving with the restored values must not hit the network
		if ok, err := flow.Leave(3); !ok || err != nil {
			t.Fatalf("Leave() = %v, %v", ok, err)
		}
		if creates, updates := backend.counts(); creates != 0 || updates != 0 {
			t.Errorf("creates = %d, updates = %d, want 0, 0", creates, updates)
		}
	})

	t.Run("invalid session is cleared", func(t *testing.T) {
		backend := &fakeBackend{userStatus: http.StatusUnauthorized, user: `{}`}
		flow, store := newFlowEnv(t, backend)
		_ = store.SaveSession("token", 1)

		if _, err := flow.Resume(); err == nil {
			t.Fatal("Resume() with a rejected token should fail")
		}
		if _, ok := store.Token(); ok {
			t.Error("token should be cleared after an auth failure")
		}
		if _, ok := store.UserID(); ok {
			t.Error("user id should be cleared after an auth failure")
		}
	})

	t.Run("no stored session", func(t *testing.T) {
		backend := &fakeBackend{}
		flow, _ := newFlowEnv(t, backend)

		state, err := flow.Resume()
		if err != nil || state != nil {
			t.Fatalf("Resume() = %v, %v, want nil state without error", state, err)
		}
	})
}
