package testing

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const (
	FakeToken         = "tok-123"
	FakeRegisterToken = "tok-new"
)

// DefaultUploadBody is a successful /upload_csv/ response for a 120 record file.
const DefaultUploadBody = `{
	"message": "File processed successfully",
	"overall_stats": {
		"total_records": 120,
		"avg_flowrate": 101.25,
		"avg_pressure": 5.5,
		"avg_temperature": 80.125,
		"type_distribution": {"Pump": 70, "Valve": 50}
	},
	"per_type_stats": {
		"Pump": {"count": 70, "avg_flowrate": 120.5, "avg_pressure": 6.25, "avg_temperature": 82.0},
		"Valve": {"count": 50, "avg_flowrate": 74.3, "avg_pressure": 4.45, "avg_temperature": 77.5}
	}
}`

type fakeRoute struct {
	status int
	body   string
}

// FakeAPI is an httptest server that imitates the equipment statistics API.
//
// Responses are canned per endpoint and every request is counted.
type FakeAPI struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]fakeRoute
	counts map[string]int

	LastAuthorization string
	LastFileName      string
	LastFileContent   string
	LastBody          string
}

// NewFakeAPI starts a server that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		routes: map[string]fakeRoute{
			"/login/":      {http.StatusOK, fmt.Sprintf(`{"token": %q, "last_uploads": []}`, FakeToken)},
			"/register/":   {http.StatusCreated, fmt.Sprintf(`{"token": %q}`, FakeRegisterToken)},
			"/upload_csv/": {http.StatusCreated, DefaultUploadBody},
		},
		counts: map[string]int{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Respond sets the canned response for path.
func (f *FakeAPI) Respond(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = fakeRoute{status, body}
}

// Count returns the number of requests received on path.
func (f *FakeAPI) Count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[path]
}

// Requests returns the total number of requests received.
func (f *FakeAPI) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.counts {
		total += n
	}
	return total
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counts[r.URL.Path]++
	f.LastAuthorization = r.Header.Get("Authorization")

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if file, header, err := r.FormFile("file"); err == nil {
			content, _ := io.ReadAll(file)
			file.Close()
			f.LastFileName = header.Filename
			f.LastFileContent = string(content)
		}
	} else {
		body, _ := io.ReadAll(r.Body)
		f.LastBody = string(body)
	}

	route, ok := f.routes[r.URL.Path]
	if !ok || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(route.status)
	_, _ = io.WriteString(w, route.body)
}

// SummaryJSON renders one last_uploads entry with a numeric id.
func SummaryJSON(id, totalRecords int) string {
	return fmt.Sprintf(`{
		"id": %d,
		"file_name": "file-%d.csv",
		"uploaded_at": "2025-01-0%dT10:00:00.123456Z",
		"total_records": %d,
		"avg_flowrate": 100.5,
		"avg_pressure": 5.25,
		"avg_temperature": 80.0,
		"type_distribution": {"Pump": %d},
		"per_type_stats": {"Pump": {"count": %d, "avg_flowrate": 100.5, "avg_pressure": 5.25, "avg_temperature": 80.0}}
	}`, id, id, id%10, totalRecords, totalRecords, totalRecords)
}

// LoginBody renders a login response carrying n recent uploads with ids 1..n.
func LoginBody(n int) string {
	entries := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		entries = append(entries, SummaryJSON(i, i*10))
	}
	return fmt.Sprintf(`{"token": %q, "last_uploads": [%s]}`, FakeToken, strings.Join(entries, ","))
}
