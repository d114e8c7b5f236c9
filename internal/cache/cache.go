// package cache keeps the bounded list of recent uploads and the current selection.
//
// The list is ordered most-recent-first and holds at most [Capacity] entries. Every mutation is written through to the
// store as a full snapshot: the list as a JSON array under "uploads" and the selected summary under "selectedFile".
// Only the ID of the persisted selection is trusted; it is resolved against the list whenever it is read.
package cache

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
)

// Capacity is the maximum number of uploads kept.
const Capacity = 5

// Cache is the recent-uploads list plus selection.
type Cache struct {
	mu         sync.RWMutex
	store      models.Store
	logger     *log.Logger
	uploads    []models.UploadSummary
	selectedID string
}

// New creates an empty cache backed by store. Call [Cache.Load] to rehydrate it.
func New(store models.Store, logger *log.Logger) *Cache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Cache{store: store, logger: logger}
}

// Load replaces the in-memory state with the persisted snapshot.
//
// Missing or corrupt keys yield an empty list and no selection. Decode failures are logged, never returned.
func (c *Cache) Load() {
	uploads := c.readUploads()
	selectedID := c.readSelectedID()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.uploads = uploads
	c.selectedID = ""
	if selectedID != "" && indexOf(uploads, selectedID) >= 0 {
		c.selectedID = selectedID
	}
}

func (c *Cache) readUploads() []models.UploadSummary {
	raw, err := c.store.Get(models.KeyUploads)
	if err != nil {
		if !errors.Is(err, shared.ErrKeyNotFound) {
			c.logger.Warn("failed to read uploads", "error", err)
		}
		return nil
	}

	var uploads []models.UploadSummary
	if err := json.Unmarshal([]byte(raw), &uploads); err != nil {
		c.logger.Warn("discarding uploads snapshot", "error", &shared.StorageDecodeError{Key: models.KeyUploads, Err: err})
		return nil
	}

	valid := make([]models.UploadSummary, 0, len(uploads))
	for _, u := range uploads {
		if err := u.Validate(); err != nil {
			c.logger.Warn("discarding cached upload", "error", &shared.StorageDecodeError{Key: models.KeyUploads, Err: err})
			continue
		}
		valid = append(valid, u)
	}
	return truncate(valid)
}

func (c *Cache) readSelectedID() string {
	raw, err := c.store.Get(models.KeySelectedFile)
	if err != nil {
		if !errors.Is(err, shared.ErrKeyNotFound) {
			c.logger.Warn("failed to read selection", "error", err)
		}
		return ""
	}

	var selected struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(raw), &selected); err != nil {
		c.logger.Warn("discarding selection", "error", &shared.StorageDecodeError{Key: models.KeySelectedFile, Err: err})
		return ""
	}
	return selected.ID
}

// RecordUpload prepends summary, drops anything beyond [Capacity] and selects it.
//
// An existing entry with the same ID is replaced. Persistence failures are logged.
func (c *Cache) RecordUpload(summary models.UploadSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	uploads := make([]models.UploadSummary, 0, len(c.uploads)+1)
	uploads = append(uploads, summary)
	for _, u := range c.uploads {
		if u.ID != summary.ID {
			uploads = append(uploads, u)
		}
	}
	c.uploads = truncate(uploads)
	c.selectedID = summary.ID

	c.persistUploads()
	c.persistSelection()
}

// Seed replaces the list with the first [Capacity] entries of snapshot.
//
// The selection survives only if its entry is still present.
func (c *Cache) Seed(snapshot []models.UploadSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.uploads = truncate(slices.Clone(snapshot))
	if c.selectedID != "" && indexOf(c.uploads, c.selectedID) < 0 {
		c.selectedID = ""
		c.persistSelection()
	}
	c.persistUploads()
}

// Select makes the entry with id the selection and returns it.
//
// An unknown id clears the selection and returns nil.
func (c *Cache) Select(id string) *models.UploadSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.uploads, id)
	if i < 0 || id == "" {
		c.selectedID = ""
		c.persistSelection()
		return nil
	}

	c.selectedID = id
	c.persistSelection()
	summary := c.uploads[i]
	return &summary
}

// Uploads returns a copy of the list, most recent first.
func (c *Cache) Uploads() []models.UploadSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.uploads)
}

// Selected resolves the selection, returning nil when nothing is selected.
func (c *Cache) Selected() *models.UploadSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.selectedID == "" {
		return nil
	}
	i := indexOf(c.uploads, c.selectedID)
	if i < 0 {
		return nil
	}
	summary := c.uploads[i]
	return &summary
}

// Get returns the entry with id.
func (c *Cache) Get(id string) (*models.UploadSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := indexOf(c.uploads, id)
	if i < 0 {
		return nil, false
	}
	summary := c.uploads[i]
	return &summary, true
}

// Len returns the number of cached uploads.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.uploads)
}

// Reset empties the in-memory state without touching the store.
//
// Logout pairs it with the session removing every persisted key at once.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploads = nil
	c.selectedID = ""
}

// persistUploads writes the list snapshot. Callers hold c.mu.
func (c *Cache) persistUploads() {
	uploads := c.uploads
	if uploads == nil {
		uploads = []models.UploadSummary{}
	}

	data, err := json.Marshal(uploads)
	if err != nil {
		c.logger.Error("failed to encode uploads", "error", err)
		return
	}
	if err := c.store.Set(models.KeyUploads, string(data)); err != nil {
		c.logger.Error("failed to persist uploads", "error", err)
	}
}

// persistSelection writes the selected summary or removes the key. Callers hold c.mu.
func (c *Cache) persistSelection() {
	i := indexOf(c.uploads, c.selectedID)
	if c.selectedID == "" || i < 0 {
		if err := c.store.Remove(models.KeySelectedFile); err != nil {
			c.logger.Error("failed to clear selection", "error", err)
		}
		return
	}

	data, err := json.Marshal(c.uploads[i])
	if err != nil {
		c.logger.Error("failed to encode selection", "error", err)
		return
	}
	if err := c.store.Set(models.KeySelectedFile, string(data)); err != nil {
		c.logger.Error("failed to persist selection", "error", err)
	}
}

func indexOf(uploads []models.UploadSummary, id string) int {
	return slices.IndexFunc(uploads, func(u models.UploadSummary) bool { return u.ID == id })
}

func truncate(uploads []models.UploadSummary) []models.UploadSummary {
	if len(uploads) > Capacity {
		return uploads[:Capacity]
	}
	return uploads
}
