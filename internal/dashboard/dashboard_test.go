package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/services"
	"github.com/desertthunder/eqviz/internal/shared"
	tu "github.com/desertthunder/eqviz/internal/testing"
)

const sampleCSV = "Equipment Name,Type,Flowrate,Pressure,Temperature\nP-1,Pump,120,6.2,82\nV-1,Valve,74,4.4,77\n"

func newDashboard(t *testing.T, seed map[string]string) (*Dashboard, *tu.MemoryStore, *tu.FakeAPI) {
	t.Helper()
	api := tu.NewFakeAPI(t)
	store := tu.NewMemoryStore(seed)
	d := New(store, services.NewAPIService(api.URL, api.Client()), shared.NewLogger(io.Discard))
	d.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC) }
	return d, store, api
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("Login", func(t *testing.T) {
		t.Run("Seeds First Five Uploads", func(t *testing.T) {
			d, _, api := newDashboard(t, nil)
			api.Respond("/login/", http.StatusOK, tu.LoginBody(6))

			if _, err := d.Login(ctx, "alice", "pw"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			uploads := d.Uploads()
			if len(uploads) != 5 {
				t.Fatalf("expected 5 uploads, got %d", len(uploads))
			}
			for i, u := range uploads {
				want := []string{"1", "2", "3", "4", "5"}[i]
				if u.ID != want {
					t.Errorf("index %d: expected %s, got %s", i, want, u.ID)
				}
			}
		})

		t.Run("Omitted Snapshot Keeps Cache", func(t *testing.T) {
			d, _, api := newDashboard(t, nil)
			d.cache.RecordUpload(models.UploadSummary{ID: "local", TotalRecords: 1})
			api.Respond("/login/", http.StatusOK, `{"token": "abc"}`)

			if _, err := d.Login(ctx, "alice", "pw"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Len() != 1 {
				t.Errorf("expected cache to be kept, got %d entries", d.Len())
			}
		})

		t.Run("Empty Snapshot Empties Cache", func(t *testing.T) {
			d, _, _ := newDashboard(t, nil)
			d.cache.RecordUpload(models.UploadSummary{ID: "local", TotalRecords: 1})

			if _, err := d.Login(ctx, "alice", "pw"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Len() != 0 {
				t.Errorf("expected empty cache, got %d entries", d.Len())
			}
		})

		t.Run("Mistyped Entry Still Signs In", func(t *testing.T) {
			d, store, api := newDashboard(t, nil)
			api.Respond("/login/", http.StatusOK, `{"token": "abc", "last_uploads": [`+
				tu.SummaryJSON(1, 3)+`, {"id": 2, "total_records": "4"}]}`)

			result, err := d.Login(ctx, "alice", "pw")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !d.Authenticated() {
				t.Error("expected authenticated session")
			}
			if v, _ := store.Get(models.KeyToken); v != "abc" {
				t.Errorf("expected token to be stored, got %q", v)
			}
			if result.Skipped != 1 {
				t.Errorf("expected 1 skipped, got %d", result.Skipped)
			}
			if d.Len() != 1 || d.Uploads()[0].ID != "1" {
				t.Errorf("expected only upload 1, got %+v", d.Uploads())
			}
		})

		t.Run("Rejected While Busy", func(t *testing.T) {
			d, _, api := newDashboard(t, nil)
			d.busy.Store(true)

			_, err := d.Login(ctx, "alice", "pw")
			if !errors.Is(err, shared.ErrBusy) {
				t.Errorf("expected ErrBusy, got %v", err)
			}
			if api.Requests() != 0 {
				t.Errorf("expected zero requests, got %d", api.Requests())
			}
		})

		t.Run("Busy Flag Released", func(t *testing.T) {
			d, _, _ := newDashboard(t, nil)

			_, _ = d.Login(ctx, "alice", "")
			if d.Busy() {
				t.Error("expected busy flag to be released after a failure")
			}
		})
	})

	t.Run("Register", func(t *testing.T) {
		d, _, api := newDashboard(t, nil)

		if err := d.Register(ctx, "bob", "pw"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !d.Authenticated() {
			t.Error("expected authenticated")
		}
		if api.Count("/register/") != 1 {
			t.Errorf("expected one register request, got %d", api.Count("/register/"))
		}
	})

	t.Run("SubmitFile", func(t *testing.T) {
		t.Run("Records And Selects Upload", func(t *testing.T) {
			d, store, api := newDashboard(t, map[string]string{models.KeyToken: "abc"})
			path := tu.WriteCSV(t, "equipment.csv", sampleCSV)

			summary, err := d.SubmitFile(ctx, path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if summary.TotalRecords != 120 {
				t.Errorf("expected 120 records, got %d", summary.TotalRecords)
			}
			if summary.FileName != models.PlaceholderFileName {
				t.Errorf("expected placeholder name, got %s", summary.FileName)
			}
			if summary.UploadedAt != "2025-06-01T09:30:00Z" {
				t.Errorf("unexpected timestamp %s", summary.UploadedAt)
			}
			if summary.ID == "" {
				t.Error("expected a local id")
			}

			uploads := d.Uploads()
			if len(uploads) != 1 || uploads[0].ID != summary.ID {
				t.Errorf("expected upload at index 0, got %v", uploads)
			}
			if sel := d.Selected(); sel == nil || sel.ID != summary.ID {
				t.Errorf("expected upload to be selected, got %v", sel)
			}
			if api.LastAuthorization != "Token abc" {
				t.Errorf("unexpected authorization %q", api.LastAuthorization)
			}
			if !store.Has(models.KeyUploads) {
				t.Error("expected uploads to be persisted")
			}
		})

		t.Run("Empty Path", func(t *testing.T) {
			d, _, api := newDashboard(t, map[string]string{models.KeyToken: "abc"})

			_, err := d.SubmitFile(ctx, "")

			var vErr *shared.ValidationError
			if !errors.As(err, &vErr) || vErr.Field != "file" {
				t.Fatalf("expected file ValidationError, got %v", err)
			}
			if api.Requests() != 0 {
				t.Errorf("expected zero requests, got %d", api.Requests())
			}
		})

		t.Run("Missing File", func(t *testing.T) {
			d, _, api := newDashboard(t, map[string]string{models.KeyToken: "abc"})

			_, err := d.SubmitFile(ctx, "/does/not/exist.csv")
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if api.Requests() != 0 {
				t.Errorf("expected zero requests, got %d", api.Requests())
			}
		})

		t.Run("Not Authenticated", func(t *testing.T) {
			d, _, api := newDashboard(t, nil)
			path := tu.WriteCSV(t, "equipment.csv", sampleCSV)

			_, err := d.SubmitFile(ctx, path)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if shared.UserMessage(err) != "Not authenticated" {
				t.Errorf("unexpected message %q", shared.UserMessage(err))
			}
			if api.Requests() != 0 {
				t.Errorf("expected zero requests, got %d", api.Requests())
			}
		})

		t.Run("Server Failure Leaves Cache Unchanged", func(t *testing.T) {
			d, _, api := newDashboard(t, map[string]string{models.KeyToken: "abc"})
			d.cache.RecordUpload(models.UploadSummary{ID: "prev", TotalRecords: 1})
			api.Respond("/upload_csv/", http.StatusBadRequest, `{"error": "CSV must have columns"}`)
			path := tu.WriteCSV(t, "bad.csv", "a,b\n1,2\n")

			_, err := d.SubmitFile(ctx, path)
			if shared.UserMessage(err) != "CSV must have columns" {
				t.Errorf("unexpected message %q", shared.UserMessage(err))
			}
			if d.Len() != 1 || d.Selected().ID != "prev" {
				t.Error("expected cache and selection to be unchanged")
			}
			if !d.Authenticated() {
				t.Error("expected session to be kept")
			}
		})

		t.Run("Unauthorized Expires Session", func(t *testing.T) {
			d, store, api := newDashboard(t, map[string]string{models.KeyToken: "stale"})
			api.Respond("/upload_csv/", http.StatusUnauthorized, `{"detail": "Invalid token."}`)
			path := tu.WriteCSV(t, "equipment.csv", sampleCSV)

			_, err := d.SubmitFile(ctx, path)
			if !errors.Is(err, shared.ErrUpload) {
				t.Errorf("expected upload error, got %v", err)
			}
			if d.Authenticated() {
				t.Error("expected session to expire")
			}
			if store.Has(models.KeyToken) {
				t.Error("expected token to be removed")
			}
		})
	})

	t.Run("Logout", func(t *testing.T) {
		d, store, _ := newDashboard(t, map[string]string{models.KeyToken: "abc"})
		d.cache.Seed([]models.UploadSummary{{ID: "1"}, {ID: "2"}})
		d.Select("1")

		d.Logout()

		for _, k := range models.SessionKeys {
			if store.Has(k) {
				t.Errorf("expected %s to be removed", k)
			}
		}
		if d.Len() != 0 || d.Selected() != nil || d.Authenticated() {
			t.Error("expected empty state after logout")
		}
	})

	t.Run("Select And Resolve", func(t *testing.T) {
		d, _, _ := newDashboard(t, nil)
		d.cache.Seed([]models.UploadSummary{{ID: "1"}, {ID: "2"}})

		if got, _ := d.Resolve(""); got == nil || got.ID != "1" {
			t.Errorf("expected newest upload without a selection, got %v", got)
		}
		if d.Select("2") == nil {
			t.Fatal("expected selection")
		}
		if got, _ := d.Resolve(""); got.ID != "2" {
			t.Errorf("expected selected upload, got %v", got)
		}
		if d.Select("nope") != nil || d.Selected() != nil {
			t.Error("expected unknown id to clear the selection")
		}
		if _, err := d.Resolve("nope"); !errors.Is(err, shared.ErrUploadMissing) {
			t.Errorf("expected ErrUploadMissing, got %v", err)
		}
	})

	t.Run("Restores State On Startup", func(t *testing.T) {
		d, store, api := newDashboard(t, map[string]string{models.KeyToken: "abc"})
		d.cache.RecordUpload(models.UploadSummary{ID: "x", TotalRecords: 4})

		restored := New(store, services.NewAPIService(api.URL, api.Client()), shared.NewLogger(io.Discard))
		if !restored.Authenticated() {
			t.Error("expected authenticated")
		}
		if sel := restored.Selected(); sel == nil || sel.ID != "x" {
			t.Errorf("expected x selected, got %v", sel)
		}
		if api.Requests() != 0 {
			t.Errorf("expected zero requests, got %d", api.Requests())
		}
	})
}
