package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartKind names one of the charts rendered for a summary.
type ChartKind string

// ChartDistribution is the pie chart of records per equipment type. The remaining kinds are bar charts of one
// metric per type and share their names with [models.Metric].
const (
	ChartDistribution ChartKind = "distribution"
	ChartFlowrate     ChartKind = ChartKind(models.MetricFlowrate)
	ChartPressure     ChartKind = ChartKind(models.MetricPressure)
	ChartTemperature  ChartKind = ChartKind(models.MetricTemperature)
)

// ChartKinds lists every [ChartKind] in display order.
var ChartKinds = []ChartKind{ChartDistribution, ChartFlowrate, ChartPressure, ChartTemperature}

const (
	chartWidth  = 640
	chartHeight = 480
)

// Bar colours per metric, matching the dashboard palette.
var metricColors = map[models.Metric]drawing.Color{
	models.MetricFlowrate:    drawing.ColorFromHex("3b82f6"),
	models.MetricPressure:    drawing.ColorFromHex("10b981"),
	models.MetricTemperature: drawing.ColorFromHex("f59e0b"),
}

// ParseChartKind resolves a chart name. Metric names with the "avg_" prefix are accepted.
func ParseChartKind(name string) (ChartKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == string(ChartDistribution) || name == "type_distribution" {
		return ChartDistribution, nil
	}
	m, err := models.ParseMetric(name)
	if err != nil {
		return "", fmt.Errorf("%w: unknown chart %q", shared.ErrInvalidArgument, name)
	}
	return ChartKind(m), nil
}

// Metric returns the metric plotted by a bar chart kind.
func (k ChartKind) Metric() (models.Metric, bool) {
	if k == ChartDistribution {
		return "", false
	}
	m, err := models.ParseMetric(string(k))
	return m, err == nil
}

// Title returns the chart heading.
func (k ChartKind) Title() string {
	if m, ok := k.Metric(); ok {
		return m.Label() + " by Type"
	}
	return "Type Distribution"
}

// Filename returns the PNG file name used for the chart.
func (k ChartKind) Filename() string {
	return string(k) + ".png"
}

// RenderChart writes the chart of the given kind as PNG.
func RenderChart(w io.Writer, summary models.UploadSummary, kind ChartKind) error {
	if kind == ChartDistribution {
		return RenderDistributionChart(w, summary)
	}
	m, ok := kind.Metric()
	if !ok {
		return fmt.Errorf("%w: unknown chart %q", shared.ErrInvalidArgument, kind)
	}
	return RenderMetricChart(w, summary, m)
}

// RenderDistributionChart writes a pie chart of records per type as PNG.
func RenderDistributionChart(w io.Writer, summary models.UploadSummary) error {
	values := make([]chart.Value, 0, len(summary.TypeDistribution))
	for _, row := range TypeRows(summary) {
		if row.Count <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", row.Type, row.Count),
			Value: float64(row.Count),
		})
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: upload %s has no type distribution", shared.ErrInvalidInput, summary.ID)
	}

	pie := chart.PieChart{
		Title:  ChartDistribution.Title(),
		Width:  chartWidth,
		Height: chartHeight,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render distribution chart: %w", err)
	}
	return nil
}

// RenderMetricChart writes a bar chart of metric per type as PNG.
func RenderMetricChart(w io.Writer, summary models.UploadSummary, metric models.Metric) error {
	rows := TypeRows(summary)
	if len(rows) == 0 {
		return fmt.Errorf("%w: upload %s has no per-type statistics", shared.ErrInvalidInput, summary.ID)
	}

	style := chart.Style{FillColor: metricColors[metric], StrokeColor: metricColors[metric], StrokeWidth: 1}

	// The axis always includes zero; negative averages hang below it.
	bars := make([]chart.Value, 0, len(rows))
	low, high := 0.0, 0.0
	for _, row := range rows {
		v := metric.Of(row.Stats)
		low = min(low, v)
		high = max(high, v)
		bars = append(bars, chart.Value{Label: row.Type, Value: v, Style: style})
	}
	if low == 0 && high == 0 {
		high = 1
	}

	width := chartWidth
	if n := len(bars) * 110; n > width {
		width = n
	}

	bar := chart.BarChart{
		Title:        ChartKind(metric).Title(),
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:        width,
		Height:       chartHeight,
		BarWidth:     60,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis:        chart.YAxis{Range: &chart.ContinuousRange{Min: low * 1.1, Max: high * 1.1}},
		Bars:         bars,
	}
	if err := bar.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", metric, err)
	}
	return nil
}
