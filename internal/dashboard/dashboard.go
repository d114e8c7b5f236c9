// package dashboard dispatches user intents to the session and upload cache.
//
// Presentation layers (CLI, TUI, preview server) call a [Dashboard] and re-read its state afterwards. Login, Register and
// SubmitFile are rejected with [shared.ErrBusy] while another of them is in flight.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/eqviz/internal/cache"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/services"
	"github.com/desertthunder/eqviz/internal/session"
	"github.com/desertthunder/eqviz/internal/shared"
)

// NoFileSelected is shown when an upload is attempted without a file.
const NoFileSelected = "Please select a file first"

// Dashboard is the single entry point for state-changing operations.
type Dashboard struct {
	session *session.Manager
	cache   *cache.Cache
	api     services.Client
	logger  *log.Logger
	busy    atomic.Bool
	now     func() time.Time
}

// New restores the session and cache from store.
func New(store models.Store, api services.Client, logger *log.Logger) *Dashboard {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	d := &Dashboard{
		session: session.New(store, api, shared.WithLogger(logger, "component", "session")),
		cache:   cache.New(store, shared.WithLogger(logger, "component", "cache")),
		api:     api,
		logger:  logger,
		now:     time.Now,
	}
	d.cache.Load()
	return d
}

// begin marks an operation in flight, failing with [shared.ErrBusy] when one already is.
func (d *Dashboard) begin() (func(), error) {
	if !d.busy.CompareAndSwap(false, true) {
		return nil, shared.ErrBusy
	}
	return func() { d.busy.Store(false) }, nil
}

// Busy reports whether an operation is in flight.
func (d *Dashboard) Busy() bool {
	return d.busy.Load()
}

// Login signs in and seeds the cache when the server returned recent uploads.
func (d *Dashboard) Login(ctx context.Context, username, password string) (*session.LoginResult, error) {
	done, err := d.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	result, err := d.session.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if result.Uploads != nil {
		d.cache.Seed(result.Uploads)
	}
	if result.Skipped > 0 {
		d.logger.Warn("skipped invalid recent uploads", "count", result.Skipped)
	}
	return result, nil
}

// Register creates an account and signs in. The cache is left as is.
func (d *Dashboard) Register(ctx context.Context, username, password string) error {
	done, err := d.begin()
	if err != nil {
		return err
	}
	defer done()

	_, err = d.session.Register(ctx, username, password)
	return err
}

// Logout clears the token, cache and selection.
func (d *Dashboard) Logout() {
	d.session.Logout()
	d.cache.Reset()
}

// SubmitFile uploads the CSV at path and records the returned statistics as the newest, selected upload.
func (d *Dashboard) SubmitFile(ctx context.Context, path string) (*models.UploadSummary, error) {
	done, err := d.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	if strings.TrimSpace(path) == "" {
		return nil, &shared.ValidationError{Field: "file", Message: NoFileSelected}
	}

	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return nil, &shared.ValidationError{Field: "file", Message: fmt.Sprintf("Cannot read %s: %v", path, err)}
	}

	token := d.session.Token()
	if token == "" {
		return nil, &shared.UploadError{Message: "Not authenticated", Err: shared.ErrNotAuthenticated}
	}

	stats, err := d.api.UploadCSV(ctx, token, services.UploadFile{Name: path, Content: bytes.NewReader(data)})
	if err != nil {
		var uErr *shared.UploadError
		if errors.As(err, &uErr) && uErr.Status == http.StatusUnauthorized {
			d.session.Expire()
		}
		d.logger.Error("upload failed", "path", path, "error", err)
		return nil, err
	}

	summary := stats.Summary(shared.GenerateID(), models.PlaceholderFileName, d.now())
	d.cache.RecordUpload(summary)
	d.logger.Info("upload recorded", "id", summary.ID, "records", summary.TotalRecords)
	return &summary, nil
}

// Select changes the selection and returns the selected upload, or nil when id is unknown.
func (d *Dashboard) Select(id string) *models.UploadSummary {
	return d.cache.Select(id)
}

// Session returns the current session.
func (d *Dashboard) Session() models.Session {
	return d.session.Snapshot()
}

// Authenticated reports whether a token is held.
func (d *Dashboard) Authenticated() bool {
	return d.session.Status() == models.Authenticated
}

// Uploads returns the cached uploads, most recent first.
func (d *Dashboard) Uploads() []models.UploadSummary {
	return d.cache.Uploads()
}

// Len returns the number of cached uploads.
func (d *Dashboard) Len() int {
	return d.cache.Len()
}

// Selected returns the selected upload or nil.
func (d *Dashboard) Selected() *models.UploadSummary {
	return d.cache.Selected()
}

// Get looks up a cached upload by id.
func (d *Dashboard) Get(id string) (*models.UploadSummary, error) {
	summary, ok := d.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUploadMissing, id)
	}
	return summary, nil
}

// Resolve returns the upload with id, or the selection when id is empty.
func (d *Dashboard) Resolve(id string) (*models.UploadSummary, error) {
	if id != "" {
		return d.Get(id)
	}
	if sel := d.Selected(); sel != nil {
		return sel, nil
	}
	if uploads := d.Uploads(); len(uploads) > 0 {
		return &uploads[0], nil
	}
	return nil, fmt.Errorf("%w: no uploads cached", shared.ErrUploadMissing)
}
