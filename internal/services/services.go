package services

import (
	"context"
	"io"
	"time"

	"github.com/desertthunder/eqviz/internal/models"
)

// Client defines the remote API operations used by the session and dashboard layers.
type Client interface {
	// Login exchanges credentials for a token and the account's most recent uploads.
	Login(ctx context.Context, username, password string) (*AuthResult, error)

	// Register creates an account and returns its token.
	Register(ctx context.Context, username, password string) (*AuthResult, error)

	// UploadCSV submits a CSV file and returns the server-computed statistics.
	UploadCSV(ctx context.Context, token string, file UploadFile) (*UploadStats, error)
}

// AuthResult is a validated credential exchange response.
type AuthResult struct {
	Token string
	// LastUploads is nil when the server omitted the field.
	LastUploads []models.UploadSummary
	// Skipped counts recent uploads dropped because they failed validation.
	Skipped int
}

// UploadFile is the payload of a CSV submission.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// UploadStats holds the validated statistics returned for an uploaded file.
type UploadStats struct {
	TotalRecords     int
	AvgFlowrate      float64
	AvgPressure      float64
	AvgTemperature   float64
	TypeDistribution map[string]int
	PerTypeStats     map[string]models.TypeStats
}

// Summary maps the statistics into a new [models.UploadSummary].
func (s UploadStats) Summary(id, fileName string, uploadedAt time.Time) models.UploadSummary {
	return models.UploadSummary{
		ID:               id,
		FileName:         fileName,
		UploadedAt:       uploadedAt.Format(time.RFC3339),
		TotalRecords:     s.TotalRecords,
		AvgFlowrate:      s.AvgFlowrate,
		AvgPressure:      s.AvgPressure,
		AvgTemperature:   s.AvgTemperature,
		TypeDistribution: s.TypeDistribution,
		PerTypeStats:     s.PerTypeStats,
	}
}
