package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/services"
	"github.com/desertthunder/eqviz/internal/shared"
	tu "github.com/desertthunder/eqviz/internal/testing"
)

func newManager(t *testing.T, seed map[string]string) (*Manager, *tu.MemoryStore, *tu.FakeAPI) {
	t.Helper()
	api := tu.NewFakeAPI(t)
	store := tu.NewMemoryStore(seed)
	m := New(store, services.NewAPIService(api.URL, api.Client()), shared.NewLogger(io.Discard))
	return m, store, api
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("New", func(t *testing.T) {
		t.Run("Persisted Token Is Authenticated Without Requests", func(t *testing.T) {
			m, _, api := newManager(t, map[string]string{models.KeyToken: "abc"})

			if m.Status() != models.Authenticated {
				t.Errorf("expected authenticated, got %s", m.Status())
			}
			if m.Token() != "abc" {
				t.Errorf("expected token abc, got %s", m.Token())
			}
			if api.Requests() != 0 {
				t.Errorf("expected zero requests, got %d", api.Requests())
			}
		})

		t.Run("Empty Store Is Unauthenticated", func(t *testing.T) {
			m, _, _ := newManager(t, nil)
			if m.Status() != models.Unauthenticated || m.Token() != "" {
				t.Errorf("unexpected session %+v", m.Snapshot())
			}
		})

		t.Run("Empty Token Is Unauthenticated", func(t *testing.T) {
			m, _, _ := newManager(t, map[string]string{models.KeyToken: ""})
			if !m.Snapshot().Valid() || m.Status() != models.Unauthenticated {
				t.Errorf("unexpected session %+v", m.Snapshot())
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Validation", func(t *testing.T) {
			tc := []struct {
				name     string
				username string
				password string
				field    string
			}{
				{"Empty Password", "a", "", "password"},
				{"Empty Username", "", "pw", "username"},
				{"Blank Username", "   ", "pw", "username"},
			}

			for _, tt := range tc {
				t.Run(tt.name, func(t *testing.T) {
					m, _, api := newManager(t, nil)

					_, err := m.Login(ctx, tt.username, tt.password)

					var vErr *shared.ValidationError
					if !errors.As(err, &vErr) {
						t.Fatalf("expected ValidationError, got %v", err)
					}
					if vErr.Field != tt.field {
						t.Errorf("expected field %s, got %s", tt.field, vErr.Field)
					}
					if api.Requests() != 0 {
						t.Errorf("expected zero requests, got %d", api.Requests())
					}
					if m.Status() != models.Unauthenticated {
						t.Errorf("expected unauthenticated, got %s", m.Status())
					}
				})
			}
		})

		t.Run("Success Stores Token", func(t *testing.T) {
			m, store, api := newManager(t, nil)
			api.Respond("/login/", http.StatusOK, tu.LoginBody(3))

			result, err := m.Login(ctx, "alice", "pw")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Status() != models.Authenticated || m.Token() != tu.FakeToken {
				t.Errorf("unexpected session %+v", m.Snapshot())
			}
			if v, _ := store.Get(models.KeyToken); v != tu.FakeToken {
				t.Errorf("expected stored token, got %q", v)
			}
			if len(result.Uploads) != 3 {
				t.Errorf("expected 3 uploads, got %d", len(result.Uploads))
			}
		})

		t.Run("Failure Returns To Unauthenticated", func(t *testing.T) {
			m, store, api := newManager(t, map[string]string{models.KeyToken: "old"})
			api.Respond("/login/", http.StatusBadRequest, `{"error": "Invalid credentials"}`)

			_, err := m.Login(ctx, "alice", "bad")
			if shared.UserMessage(err) != "Invalid credentials" {
				t.Errorf("unexpected message %q", shared.UserMessage(err))
			}
			if m.Status() != models.Unauthenticated || m.Token() != "" {
				t.Errorf("unexpected session %+v", m.Snapshot())
			}
			if store.Has(models.KeyToken) {
				t.Error("expected token to be removed")
			}
		})

		t.Run("Busy While Authenticating", func(t *testing.T) {
			m, _, api := newManager(t, nil)
			m.session = models.Session{Status: models.Authenticating}

			_, err := m.Login(ctx, "alice", "pw")
			if !errors.Is(err, shared.ErrBusy) {
				t.Errorf("expected ErrBusy, got %v", err)
			}
			if api.Requests() != 0 {
				t.Errorf("expected zero requests, got %d", api.Requests())
			}
		})

		t.Run("Store Failure Still Authenticates", func(t *testing.T) {
			m, store, _ := newManager(t, nil)
			store.FailSet = true

			if _, err := m.Login(ctx, "alice", "pw"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Status() != models.Authenticated {
				t.Errorf("expected authenticated, got %s", m.Status())
			}
		})
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			m, _, api := newManager(t, nil)

			result, err := m.Register(ctx, "bob", "pw")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Uploads != nil {
				t.Error("expected no uploads snapshot")
			}
			if m.Token() != tu.FakeRegisterToken {
				t.Errorf("expected %s, got %s", tu.FakeRegisterToken, m.Token())
			}
			if api.Count("/register/") != 1 || api.Count("/login/") != 0 {
				t.Error("expected a single register request")
			}
		})

		t.Run("Fallback Message", func(t *testing.T) {
			m, _, api := newManager(t, nil)
			api.Respond("/register/", http.StatusBadRequest, `{}`)

			_, err := m.Register(ctx, "bob", "pw")
			if shared.UserMessage(err) != services.RegistrationFailed {
				t.Errorf("unexpected message %q", shared.UserMessage(err))
			}
		})

		t.Run("Validation", func(t *testing.T) {
			m, _, api := newManager(t, nil)

			_, err := m.Register(ctx, "bob", "")
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if api.Requests() != 0 {
				t.Errorf("expected zero requests, got %d", api.Requests())
			}
		})
	})

	t.Run("Logout", func(t *testing.T) {
		t.Run("Clears All Session Keys", func(t *testing.T) {
			m, store, _ := newManager(t, map[string]string{
				models.KeyToken:        "abc",
				models.KeyUploads:      `[]`,
				models.KeySelectedFile: `{"id": "1"}`,
			})

			m.Logout()

			for _, k := range models.SessionKeys {
				if store.Has(k) {
					t.Errorf("expected %s to be removed", k)
				}
			}
			if m.Status() != models.Unauthenticated {
				t.Errorf("expected unauthenticated, got %s", m.Status())
			}
		})

		t.Run("Store Failure Is Absorbed", func(t *testing.T) {
			m, store, _ := newManager(t, map[string]string{models.KeyToken: "abc"})
			store.FailRemove = true

			m.Logout()
			if m.Status() != models.Unauthenticated {
				t.Errorf("expected unauthenticated, got %s", m.Status())
			}
		})
	})

	t.Run("Expire", func(t *testing.T) {
		m, store, _ := newManager(t, map[string]string{
			models.KeyToken:   "abc",
			models.KeyUploads: `[]`,
		})

		m.Expire()

		if m.Status() != models.Unauthenticated {
			t.Errorf("expected unauthenticated, got %s", m.Status())
		}
		if store.Has(models.KeyToken) {
			t.Error("expected token to be removed")
		}
		if !store.Has(models.KeyUploads) {
			t.Error("expected uploads to be kept")
		}
	})
}
