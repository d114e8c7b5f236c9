package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
)

var _ list.Item = uploadItem{}

// uploadItem wraps [models.UploadSummary] to implement [list.Item].
type uploadItem struct {
	upload   models.UploadSummary
	selected bool
}

func (i uploadItem) FilterValue() string { return i.upload.FileName }
func (i uploadItem) Title() string {
	if i.selected {
		return "● " + i.upload.FileName
	}
	return i.upload.FileName
}
func (i uploadItem) Description() string {
	desc := fmt.Sprintf("%d records", i.upload.TotalRecords)
	if ts := shared.FormatTimestamp(i.upload.UploadedAt); ts != "" {
		desc = fmt.Sprintf("%s • %s", ts, desc)
	}
	return desc
}

func uploadItems(uploads []models.UploadSummary, selectedID string) []list.Item {
	items := make([]list.Item, len(uploads))
	for i, u := range uploads {
		items[i] = uploadItem{upload: u, selected: u.ID == selectedID}
	}
	return items
}
