// package session tracks the authentication state of the client.
//
// A [Manager] owns the persisted token. It moves between Unauthenticated, Authenticating and Authenticated, and
// keeps the invariant that a token is held exactly when the state is Authenticated.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/services"
	"github.com/desertthunder/eqviz/internal/shared"
)

// MissingCredentials is shown when a username or password is not provided.
const MissingCredentials = "Please enter username and password"

// LoginResult carries what a successful credential exchange returned besides the token.
type LoginResult struct {
	// Uploads is the server's recent-uploads snapshot, nil when the server omitted it.
	Uploads []models.UploadSummary
	// Skipped counts snapshot entries dropped during validation.
	Skipped int
}

// Manager is the session state machine.
type Manager struct {
	mu      sync.RWMutex
	store   models.Store
	api     services.Client
	logger  *log.Logger
	session models.Session
}

// New restores the session from store.
//
// A persisted token yields an Authenticated session without contacting the server.
func New(store models.Store, api services.Client, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	m := &Manager{store: store, api: api, logger: logger}

	token, err := store.Get(models.KeyToken)
	switch {
	case err == nil && token != "":
		m.session = models.Session{Status: models.Authenticated, Token: token}
	case err != nil && !errors.Is(err, shared.ErrKeyNotFound):
		logger.Warn("failed to read persisted token", "error", err)
	}
	return m
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Token returns the current token, empty unless authenticated.
func (m *Manager) Token() string {
	return m.Snapshot().Token
}

// Status returns the current authentication state.
func (m *Manager) Status() models.Status {
	return m.Snapshot().Status
}

// Login exchanges credentials for a token.
func (m *Manager) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	return m.authenticate(ctx, username, password, m.api.Login)
}

// Register creates an account and signs in with it. It never returns an uploads snapshot.
func (m *Manager) Register(ctx context.Context, username, password string) (*LoginResult, error) {
	if _, err := m.authenticate(ctx, username, password, m.api.Register); err != nil {
		return nil, err
	}
	return &LoginResult{}, nil
}

type exchangeFunc func(ctx context.Context, username, password string) (*services.AuthResult, error)

func (m *Manager) authenticate(ctx context.Context, username, password string, exchange exchangeFunc) (*LoginResult, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.session.Status == models.Authenticating {
		m.mu.Unlock()
		return nil, shared.ErrBusy
	}
	m.session = models.Session{Status: models.Authenticating}
	m.mu.Unlock()

	result, err := exchange(ctx, strings.TrimSpace(username), password)
	if err != nil {
		m.fail()
		return nil, err
	}

	if err := m.store.Set(models.KeyToken, result.Token); err != nil {
		m.logger.Error("failed to persist token", "error", err)
	}

	m.mu.Lock()
	m.session = models.Session{Status: models.Authenticated, Token: result.Token}
	m.mu.Unlock()

	m.logger.Info("authenticated", "user", strings.TrimSpace(username), "recent_uploads", len(result.LastUploads))
	return &LoginResult{Uploads: result.LastUploads, Skipped: result.Skipped}, nil
}

// fail returns to Unauthenticated after a rejected exchange. Any previously held token is dropped.
func (m *Manager) fail() {
	m.mu.Lock()
	m.session = models.Session{Status: models.Unauthenticated}
	m.mu.Unlock()

	if err := m.store.Remove(models.KeyToken); err != nil {
		m.logger.Error("failed to clear token", "error", err)
	}
}

// Logout clears the token, the cached uploads and the selection from the store.
//
// It never fails from the caller's view; store errors are logged.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.session = models.Session{Status: models.Unauthenticated}
	m.mu.Unlock()

	if err := m.store.Remove(models.SessionKeys...); err != nil {
		m.logger.Error("failed to clear session keys", "error", err)
	}
	m.logger.Info("logged out")
}

// Expire drops the token after the server rejected it. Cached uploads are kept.
func (m *Manager) Expire() {
	m.mu.Lock()
	if m.session.Status != models.Authenticated {
		m.mu.Unlock()
		return
	}
	m.session = models.Session{Status: models.Unauthenticated}
	m.mu.Unlock()

	if err := m.store.Remove(models.KeyToken); err != nil {
		m.logger.Error("failed to clear expired token", "error", err)
	}
	m.logger.Warn("session expired")
}

func validateCredentials(username, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return &shared.ValidationError{Field: "username", Message: MissingCredentials}
	case password == "":
		return &shared.ValidationError{Field: "password", Message: MissingCredentials}
	}
	return nil
}
