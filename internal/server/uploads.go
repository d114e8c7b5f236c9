package server

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/eqviz/internal/formatter"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
	"github.com/go-chi/chi/v5"
)

const (
	statusRoute  = "/api/status"
	uploadsRoute = "/api/uploads"
	uploadRoute  = "/api/uploads/{id}"
	chartRoute   = "/charts/{id}/{kind}"
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Uploads       int    `json:"uploads"`
	SelectedID    string `json:"selected_id,omitempty"`
}

// UploadsResponse is the body of GET /api/uploads.
type UploadsResponse struct {
	SelectedID string                 `json:"selected_id,omitempty"`
	Uploads    []models.UploadSummary `json:"uploads"`
}

// UploadsHandler serves the cached summaries as JSON and their charts as PNG.
type UploadsHandler struct {
	source UploadSource
	logger *log.Logger
}

// NewUploadsHandler creates an [UploadsHandler] reading from source.
func NewUploadsHandler(source UploadSource, logger *log.Logger) *UploadsHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &UploadsHandler{source: source, logger: logger}
}

// Routes implements [Handler].
func (h *UploadsHandler) Routes() []string {
	return []string{statusRoute, uploadsRoute, uploadRoute, chartRoute}
}

// ServeHTTP implements [http.Handler], dispatching on the matched route pattern.
func (h *UploadsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pattern := ""
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		pattern = rctx.RoutePattern()
	}

	switch pattern {
	case statusRoute:
		h.status(w)
	case uploadsRoute:
		h.list(w)
	case uploadRoute:
		h.show(w, chi.URLParam(r, "id"))
	case chartRoute:
		h.chart(w, chi.URLParam(r, "id"), chi.URLParam(r, "kind"))
	default:
		WriteError(w, http.StatusNotFound, "not found")
	}
}

func (h *UploadsHandler) status(w http.ResponseWriter) {
	resp := StatusResponse{
		Authenticated: h.source.Authenticated(),
		Uploads:       len(h.source.Uploads()),
	}
	if sel := h.source.Selected(); sel != nil {
		resp.SelectedID = sel.ID
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *UploadsHandler) list(w http.ResponseWriter) {
	resp := UploadsResponse{Uploads: h.source.Uploads()}
	if resp.Uploads == nil {
		resp.Uploads = []models.UploadSummary{}
	}
	if sel := h.source.Selected(); sel != nil {
		resp.SelectedID = sel.ID
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *UploadsHandler) show(w http.ResponseWriter, id string) {
	upload, ok := h.lookup(w, id)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, upload)
}

func (h *UploadsHandler) chart(w http.ResponseWriter, id, name string) {
	kind, err := formatter.ParseChartKind(strings.TrimSuffix(name, ".png"))
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	upload, ok := h.lookup(w, id)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := formatter.RenderChart(&buf, *upload, kind); err != nil {
		if errors.Is(err, shared.ErrInvalidInput) {
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("chart render failed", "id", id, "kind", kind, "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *UploadsHandler) lookup(w http.ResponseWriter, id string) (*models.UploadSummary, bool) {
	upload, err := h.source.Get(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, shared.UserMessage(err))
		return nil, false
	}
	return upload, true
}
