package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenStorage(shared.StorageConfig{Path: shared.MemoryDatabase})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestKVStore(t *testing.T) {
	t.Run("Set And Get", func(t *testing.T) {
		store := NewKVStore(setupTestDB(t))

		if err := store.Set(models.KeyToken, "abc"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		got, err := store.Get(models.KeyToken)
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got != "abc" {
			t.Errorf("expected abc, got %s", got)
		}
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		store := NewKVStore(setupTestDB(t))

		for _, v := range []string{"[1]", "[2]"} {
			if err := store.Set(models.KeyUploads, v); err != nil {
				t.Fatalf("failed to set %s: %v", v, err)
			}
		}

		got, err := store.Get(models.KeyUploads)
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got != "[2]" {
			t.Errorf("expected latest snapshot [2], got %s", got)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		store := NewKVStore(setupTestDB(t))

		_, err := store.Get("missing")
		if !errors.Is(err, shared.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Set Empty Key", func(t *testing.T) {
		store := NewKVStore(setupTestDB(t))

		if err := store.Set("", "x"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Remove Clears Session Keys Together", func(t *testing.T) {
		store := NewKVStore(setupTestDB(t))

		for _, k := range append(models.SessionKeys, "unrelated") {
			if err := store.Set(k, "value"); err != nil {
				t.Fatalf("failed to set %s: %v", k, err)
			}
		}

		if err := store.Remove(models.SessionKeys...); err != nil {
			t.Fatalf("failed to remove: %v", err)
		}

		for _, k := range models.SessionKeys {
			if _, err := store.Get(k); !errors.Is(err, shared.ErrKeyNotFound) {
				t.Errorf("expected %s to be removed, got %v", k, err)
			}
		}
		if v, err := store.Get("unrelated"); err != nil || v != "value" {
			t.Errorf("expected unrelated key to remain, got %q, %v", v, err)
		}
	})

	t.Run("Remove Absent And Empty", func(t *testing.T) {
		store := NewKVStore(setupTestDB(t))

		if err := store.Remove("never-set"); err != nil {
			t.Errorf("removing absent key should succeed: %v", err)
		}
		if err := store.Remove(); err != nil {
			t.Errorf("removing nothing should succeed: %v", err)
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		store := NewKVStore(db)
		db.Close()

		if _, err := store.Get(models.KeyToken); err == nil || errors.Is(err, shared.ErrKeyNotFound) {
			t.Errorf("expected query error, got %v", err)
		}
		if err := store.Set(models.KeyToken, "x"); err == nil {
			t.Error("expected error setting on closed database")
		}
		if err := store.Remove(models.KeyToken); err == nil {
			t.Error("expected error removing on closed database")
		}
	})
}
