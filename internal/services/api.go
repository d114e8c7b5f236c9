// API service for the equipment statistics server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the hosted API used when no base URL is configured.
const DefaultBaseURL = "https://equipmentanalyzer.pythonanywhere.com/api"

// tokenType is the authorization scheme expected by the server ("Authorization: Token <key>").
const tokenType = "Token"

const (
	loginPath    = "/login/"
	registerPath = "/register/"
	uploadPath   = "/upload_csv/"
)

// Fallback messages used when a failure body carries no error text.
const (
	LoginFailed        = "Login failed"
	RegistrationFailed = "Registration failed"
	UploadFailed       = "Upload failed"
	MalformedResponse  = "Upload failed: malformed response from server"
)

var _ Client = (*APIService)(nil)

// APIService implements [Client] over HTTP.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures an [APIService].
type Option func(*APIService)

// WithRateLimit throttles requests to rps per second. Non-positive values disable throttling.
func WithRateLimit(rps float64) Option {
	return func(a *APIService) {
		if rps > 0 {
			a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewAPIService creates a new API service instance.
//
// An empty baseURL selects [DefaultBaseURL]; a nil client selects [http.DefaultClient].
func NewAPIService(baseURL string, client *http.Client, opts ...Option) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseURL returns the API root requests are sent to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// apiResponse is a raw response with its fully read body.
type apiResponse struct {
	StatusCode int
	Body       []byte
}

func (r *apiResponse) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// errorMessage extracts the server's error text, falling back when the body has none.
//
// Token authentication failures come back as {"detail": "..."} rather than {"error": "..."}.
func (r *apiResponse) errorMessage(fallback string) string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(r.Body, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != "" {
			return body.Detail
		}
	}
	return fallback
}

// do waits on the limiter, sends req with client and reads the whole body.
func (a *APIService) do(client *http.Client, req *http.Request) (*apiResponse, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrAPIRequest, err)
	}

	return &apiResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// postJSON performs a POST request with data encoded as the JSON body.
func (a *APIService) postJSON(ctx context.Context, path string, data any) (*apiResponse, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return a.do(a.httpClient, req)
}

// authorizedClient returns a copy of the configured client whose transport sets the token header.
func (a *APIService) authorizedClient(token string) *http.Client {
	c := *a.httpClient
	c.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: tokenType}),
		Base:   a.httpClient.Transport,
	}
	return &c
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and the account's recent uploads.
func (a *APIService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	return a.authenticate(ctx, loginPath, username, password, LoginFailed)
}

// Register creates an account. The server never returns recent uploads for a new account.
func (a *APIService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	result, err := a.authenticate(ctx, registerPath, username, password, RegistrationFailed)
	if err != nil {
		return nil, err
	}
	result.LastUploads = nil
	result.Skipped = 0
	return result, nil
}

func (a *APIService) authenticate(ctx context.Context, path, username, password, fallback string) (*AuthResult, error) {
	resp, err := a.postJSON(ctx, path, credentials{Username: username, Password: password})
	if err != nil {
		return nil, &shared.AuthenticationError{Message: fallback, Err: err}
	}

	if !resp.ok() {
		return nil, &shared.AuthenticationError{Status: resp.StatusCode, Message: resp.errorMessage(fallback)}
	}

	var body authPayload
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, &shared.AuthenticationError{
			Status:  resp.StatusCode,
			Message: fallback,
			Err:     fmt.Errorf("failed to decode response: %w", err),
		}
	}

	if body.Token == "" {
		return nil, &shared.AuthenticationError{
			Status:  resp.StatusCode,
			Message: fallback,
			Err:     fmt.Errorf("response carried no token"),
		}
	}

	result := &AuthResult{Token: body.Token}
	if body.LastUploads != nil {
		result.LastUploads = make([]models.UploadSummary, 0, len(body.LastUploads))
		for _, raw := range body.LastUploads {
			var p summaryPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				result.Skipped++
				continue
			}
			summary, err := p.summary()
			if err != nil {
				result.Skipped++
				continue
			}
			result.LastUploads = append(result.LastUploads, summary)
		}
	}
	return result, nil
}

// UploadCSV submits file as multipart form field "file" with the session token.
func (a *APIService) UploadCSV(ctx context.Context, token string, file UploadFile) (*UploadStats, error) {
	if token == "" {
		return nil, &shared.UploadError{Message: "Not authenticated", Err: shared.ErrNotAuthenticated}
	}
	if file.Content == nil {
		return nil, &shared.UploadError{Message: UploadFailed, Err: fmt.Errorf("%w: no file content", shared.ErrMissingArgument)}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := filepath.Base(file.Name)
	if name == "." || name == string(filepath.Separator) {
		name = "upload.csv"
	}

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, &shared.UploadError{Message: UploadFailed, Err: fmt.Errorf("failed to create form file: %w", err)}
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, &shared.UploadError{Message: UploadFailed, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	if err := mw.Close(); err != nil {
		return nil, &shared.UploadError{Message: UploadFailed, Err: fmt.Errorf("failed to finish form: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+uploadPath, &buf)
	if err != nil {
		return nil, &shared.UploadError{Message: UploadFailed, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := a.do(a.authorizedClient(token), req)
	if err != nil {
		return nil, &shared.UploadError{Message: UploadFailed, Err: err}
	}

	if !resp.ok() {
		uErr := &shared.UploadError{Status: resp.StatusCode, Message: resp.errorMessage(UploadFailed)}
		if resp.StatusCode == http.StatusUnauthorized {
			uErr.Err = shared.ErrNotAuthenticated
		}
		return nil, uErr
	}

	var body uploadResponsePayload
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, &shared.UploadError{
			Status:  resp.StatusCode,
			Message: MalformedResponse,
			Err:     fmt.Errorf("failed to decode response: %w", err),
		}
	}

	stats, err := body.stats()
	if err != nil {
		return nil, &shared.UploadError{Status: resp.StatusCode, Message: MalformedResponse, Err: err}
	}
	return stats, nil
}
