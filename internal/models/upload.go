package models

import (
	"fmt"
	"sort"
)

// PlaceholderFileName names summaries created from a local upload, where the server does not echo the file name.
const PlaceholderFileName = "New Upload"

// TypeStats holds the averages for one equipment type.
type TypeStats struct {
	Count          int     `json:"count" yaml:"count"`
	AvgFlowrate    float64 `json:"avg_flowrate" yaml:"avg_flowrate"`
	AvgPressure    float64 `json:"avg_pressure" yaml:"avg_pressure"`
	AvgTemperature float64 `json:"avg_temperature" yaml:"avg_temperature"`
}

// UploadSummary is the statistical digest of one uploaded file.
type UploadSummary struct {
	ID               string               `json:"id" yaml:"id"`
	FileName         string               `json:"file_name" yaml:"file_name"`
	UploadedAt       string               `json:"uploaded_at,omitempty" yaml:"uploaded_at,omitempty"`
	TotalRecords     int                  `json:"total_records" yaml:"total_records"`
	AvgFlowrate      float64              `json:"avg_flowrate" yaml:"avg_flowrate"`
	AvgPressure      float64              `json:"avg_pressure" yaml:"avg_pressure"`
	AvgTemperature   float64              `json:"avg_temperature" yaml:"avg_temperature"`
	TypeDistribution map[string]int       `json:"type_distribution" yaml:"type_distribution"`
	PerTypeStats     map[string]TypeStats `json:"per_type_stats" yaml:"per_type_stats"`
}

// Validate checks the invariants a summary must hold before it enters the cache.
func (u UploadSummary) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("summary id is required")
	}
	if u.TotalRecords < 0 {
		return fmt.Errorf("total records must be non-negative, got %d", u.TotalRecords)
	}
	for label, n := range u.TypeDistribution {
		if n < 0 {
			return fmt.Errorf("type %q has negative count %d", label, n)
		}
	}
	return nil
}

// Types returns the equipment type labels of the summary in sorted order.
//
// Labels from both the distribution and the per-type stats are included.
func (u UploadSummary) Types() []string {
	seen := make(map[string]struct{}, len(u.TypeDistribution)+len(u.PerTypeStats))
	for k := range u.TypeDistribution {
		seen[k] = struct{}{}
	}
	for k := range u.PerTypeStats {
		seen[k] = struct{}{}
	}

	labels := make([]string, 0, len(seen))
	for k := range seen {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

// Metric names one of the three averaged sensor readings.
type Metric string

const (
	MetricFlowrate    Metric = "flowrate"
	MetricPressure    Metric = "pressure"
	MetricTemperature Metric = "temperature"
)

// Metrics lists every [Metric] in display order.
var Metrics = []Metric{MetricFlowrate, MetricPressure, MetricTemperature}

// ParseMetric resolves a metric name, accepting the "avg_" prefixed field names as well.
func ParseMetric(name string) (Metric, error) {
	switch name {
	case "flowrate", "avg_flowrate":
		return MetricFlowrate, nil
	case "pressure", "avg_pressure":
		return MetricPressure, nil
	case "temperature", "avg_temperature":
		return MetricTemperature, nil
	}
	return "", fmt.Errorf("unknown metric %q", name)
}

// Label returns the human readable column title for the metric.
func (m Metric) Label() string {
	switch m {
	case MetricFlowrate:
		return "Avg Flowrate"
	case MetricPressure:
		return "Avg Pressure"
	case MetricTemperature:
		return "Avg Temperature"
	}
	return string(m)
}

// Of returns the metric's value from the given stats.
func (m Metric) Of(s TypeStats) float64 {
	switch m {
	case MetricFlowrate:
		return s.AvgFlowrate
	case MetricPressure:
		return s.AvgPressure
	case MetricTemperature:
		return s.AvgTemperature
	}
	return 0
}

// Overall returns the metric's file-wide average.
func (m Metric) Overall(u UploadSummary) float64 {
	return m.Of(TypeStats{AvgFlowrate: u.AvgFlowrate, AvgPressure: u.AvgPressure, AvgTemperature: u.AvgTemperature})
}
