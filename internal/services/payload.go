package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/eqviz/internal/models"
)

// flexibleID accepts both numeric and string identifiers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexibleID(n.String())
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*f = flexibleID(s)
	return nil
}

// authPayload is the body of a successful /login/ or /register/ response.
//
// Recent uploads are decoded one by one so a single malformed entry cannot fail the login.
type authPayload struct {
	Token       string            `json:"token"`
	LastUploads []json.RawMessage `json:"last_uploads"`
}

type typeStatsPayload struct {
	Count          int      `json:"count"`
	AvgFlowrate    *float64 `json:"avg_flowrate"`
	AvgPressure    *float64 `json:"avg_pressure"`
	AvgTemperature *float64 `json:"avg_temperature"`
}

func (p typeStatsPayload) stats() models.TypeStats {
	return models.TypeStats{
		Count:          p.Count,
		AvgFlowrate:    value(p.AvgFlowrate),
		AvgPressure:    value(p.AvgPressure),
		AvgTemperature: value(p.AvgTemperature),
	}
}

// summaryPayload is one serialized upload record as returned in last_uploads.
type summaryPayload struct {
	ID               flexibleID                  `json:"id"`
	FileName         string                      `json:"file_name"`
	UploadedAt       string                      `json:"uploaded_at"`
	TotalRecords     *int                        `json:"total_records"`
	AvgFlowrate      *float64                    `json:"avg_flowrate"`
	AvgPressure      *float64                    `json:"avg_pressure"`
	AvgTemperature   *float64                    `json:"avg_temperature"`
	TypeDistribution map[string]int              `json:"type_distribution"`
	PerTypeStats     map[string]typeStatsPayload `json:"per_type_stats"`
}

func (p summaryPayload) summary() (models.UploadSummary, error) {
	if p.TotalRecords == nil {
		return models.UploadSummary{}, fmt.Errorf("upload %q: total_records is missing", p.ID)
	}

	s := models.UploadSummary{
		ID:               string(p.ID),
		FileName:         p.FileName,
		UploadedAt:       p.UploadedAt,
		TotalRecords:     *p.TotalRecords,
		AvgFlowrate:      value(p.AvgFlowrate),
		AvgPressure:      value(p.AvgPressure),
		AvgTemperature:   value(p.AvgTemperature),
		TypeDistribution: p.TypeDistribution,
		PerTypeStats:     perTypeStats(p.PerTypeStats),
	}
	if s.TypeDistribution == nil {
		s.TypeDistribution = map[string]int{}
	}
	if err := s.Validate(); err != nil {
		return models.UploadSummary{}, err
	}
	return s, nil
}

type overallStatsPayload struct {
	TotalRecords     *int           `json:"total_records"`
	AvgFlowrate      *float64       `json:"avg_flowrate"`
	AvgPressure      *float64       `json:"avg_pressure"`
	AvgTemperature   *float64       `json:"avg_temperature"`
	TypeDistribution map[string]int `json:"type_distribution"`
}

// uploadResponsePayload is the body of a successful /upload_csv/ response.
type uploadResponsePayload struct {
	OverallStats *overallStatsPayload        `json:"overall_stats"`
	PerTypeStats map[string]typeStatsPayload `json:"per_type_stats"`
}

func (p uploadResponsePayload) stats() (*UploadStats, error) {
	if p.OverallStats == nil {
		return nil, fmt.Errorf("response is missing overall_stats")
	}
	o := p.OverallStats
	if o.TotalRecords == nil {
		return nil, fmt.Errorf("response is missing overall_stats.total_records")
	}
	if *o.TotalRecords < 0 {
		return nil, fmt.Errorf("total_records must be non-negative, got %d", *o.TotalRecords)
	}

	dist := o.TypeDistribution
	if dist == nil {
		dist = map[string]int{}
	}
	for label, n := range dist {
		if n < 0 {
			return nil, fmt.Errorf("type %q has negative count %d", label, n)
		}
	}

	return &UploadStats{
		TotalRecords:     *o.TotalRecords,
		AvgFlowrate:      value(o.AvgFlowrate),
		AvgPressure:      value(o.AvgPressure),
		AvgTemperature:   value(o.AvgTemperature),
		TypeDistribution: dist,
		PerTypeStats:     perTypeStats(p.PerTypeStats),
	}, nil
}

func perTypeStats(in map[string]typeStatsPayload) map[string]models.TypeStats {
	out := make(map[string]models.TypeStats, len(in))
	for label, p := range in {
		out[label] = p.stats()
	}
	return out
}

// value dereferences f, treating null as zero.
func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
