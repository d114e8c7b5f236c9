package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/eqviz/internal/formatter"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/server"
	"github.com/desertthunder/eqviz/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"number":    formatter.FormatNumber,
	"timestamp": shared.FormatTimestamp,
	"percent":   func(v float64) string { return formatter.FormatNumber(v) + "%" },
}).ParseFS(templateFS, "templates/*.html"))

type uploadItem struct {
	ID         string
	FileName   string
	UploadedAt string
	Records    int
	Selected   bool
	Current    bool
}

type overallItem struct {
	Label string
	Value float64
}

type chartItem struct {
	Title string
	URL   string
}

type pageData struct {
	Authenticated bool
	Uploads       []uploadItem
	Current       *models.UploadSummary
	Overall       []overallItem
	Rows          []formatter.TypeRow
	Charts        []chartItem
	Message       string
}

// DashboardHandler renders the HTML dashboard.
type DashboardHandler struct {
	source server.UploadSource
	logger *log.Logger
}

// NewDashboardHandler creates a [DashboardHandler] reading from source.
func NewDashboardHandler(source server.UploadSource, logger *log.Logger) *DashboardHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DashboardHandler{source: source, logger: logger}
}

// Routes implements [server.Handler].
func (h *DashboardHandler) Routes() []string {
	return []string{"/"}
}

// ServeHTTP implements [http.Handler].
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	data := pageData{
		Authenticated: h.source.Authenticated(),
	}

	current, err := h.current(r.URL.Query().Get("id"))
	if err != nil {
		status = http.StatusNotFound
		data.Message = shared.UserMessage(err)
	}
	if current != nil {
		data.Current = current
		data.Rows = formatter.TypeRows(*current)
		for _, m := range models.Metrics {
			data.Overall = append(data.Overall, overallItem{Label: m.Label(), Value: m.Overall(*current)})
		}
		for _, kind := range formatter.ChartKinds {
			data.Charts = append(data.Charts, chartItem{
				Title: kind.Title(),
				URL:   "/charts/" + current.ID + "/" + kind.Filename(),
			})
		}
	}

	var selectedID string
	if sel := h.source.Selected(); sel != nil {
		selectedID = sel.ID
	}
	for _, u := range h.source.Uploads() {
		data.Uploads = append(data.Uploads, uploadItem{
			ID:         u.ID,
			FileName:   u.FileName,
			UploadedAt: u.UploadedAt,
			Records:    u.TotalRecords,
			Selected:   u.ID == selectedID,
			Current:    current != nil && u.ID == current.ID,
		})
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		h.logger.Error("template render failed", "error", err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// current picks the upload to display: the requested id, else the selection, else the newest upload.
func (h *DashboardHandler) current(id string) (*models.UploadSummary, error) {
	if id != "" {
		return h.source.Get(id)
	}
	if sel := h.source.Selected(); sel != nil {
		return sel, nil
	}
	if uploads := h.source.Uploads(); len(uploads) > 0 {
		return &uploads[0], nil
	}
	return nil, nil
}
