// package formatter renders upload summaries as reports (plain text, Markdown, CSV, JSON, YAML) and PNG charts
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format names a report encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported [Format].
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON, FormatYAML}

// ParseFormat resolves a format name or common alias ("txt", "md", "yml").
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, name)
}

// Extension returns the file extension used for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// Export renders summary in the given format.
func Export(summary models.UploadSummary, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return ExportToText(summary)
	case FormatMarkdown:
		return ExportToMarkdown(summary, nil)
	case FormatCSV:
		return ExportToCSV(summary)
	case FormatJSON:
		return ExportToJSON(summary)
	case FormatYAML:
		return ExportToYAML(summary)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
}

// FormatNumber renders a metric with two decimals.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// TypeRow is one line of the per-type breakdown.
type TypeRow struct {
	Type  string
	Count int
	Stats models.TypeStats
	Share float64
}

// TypeRows returns the per-type breakdown sorted by type label.
//
// A type present only in the distribution gets zero averages.
func TypeRows(summary models.UploadSummary) []TypeRow {
	labels := summary.Types()
	rows := make([]TypeRow, 0, len(labels))

	for _, label := range labels {
		stats, ok := summary.PerTypeStats[label]
		count := stats.Count
		if n, found := summary.TypeDistribution[label]; found && (!ok || count == 0) {
			count = n
		}

		var share float64
		if summary.TotalRecords > 0 {
			share = float64(count) / float64(summary.TotalRecords) * 100
		}
		rows = append(rows, TypeRow{Type: label, Count: count, Stats: stats, Share: share})
	}
	return rows
}

func statsTable(summary models.UploadSummary) *table.Table {
	headers := []string{"Type", "Count"}
	for _, m := range models.Metrics {
		headers = append(headers, m.Label())
	}

	t := table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
	for _, row := range TypeRows(summary) {
		cells := []string{row.Type, strconv.Itoa(row.Count)}
		for _, m := range models.Metrics {
			cells = append(cells, FormatNumber(m.Of(row.Stats)))
		}
		t.Row(cells...)
	}
	return t
}

// ExportToText renders summary as plain text with an overall block and a per-type table.
func ExportToText(summary models.UploadSummary) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("File: %s\n", summary.FileName))
	buf.WriteString(fmt.Sprintf("ID: %s\n", summary.ID))
	if summary.UploadedAt != "" {
		buf.WriteString(fmt.Sprintf("Uploaded: %s\n", shared.FormatTimestamp(summary.UploadedAt)))
	}
	buf.WriteString("\n")

	buf.WriteString(fmt.Sprintf("Total Records: %d\n", summary.TotalRecords))
	for _, m := range models.Metrics {
		buf.WriteString(fmt.Sprintf("%s: %s\n", m.Label(), FormatNumber(m.Overall(summary))))
	}

	rows := TypeRows(summary)
	if len(rows) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("\nType Distribution:\n")
	for _, row := range rows {
		buf.WriteString(fmt.Sprintf("  %s: %d (%s%%)\n", row.Type, row.Count, FormatNumber(row.Share)))
	}

	buf.WriteString("\nPer-Type Statistics:\n")
	buf.WriteString(statsTable(summary).String())
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// ChartFile is a rendered chart referenced from a Markdown report.
type ChartFile struct {
	Kind     ChartKind
	Filename string
}

// ExportToMarkdown renders summary as Markdown, embedding any given chart images.
func ExportToMarkdown(summary models.UploadSummary, charts []ChartFile) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", summary.FileName))
	buf.WriteString(fmt.Sprintf("**ID**: `%s`\n", summary.ID))
	if summary.UploadedAt != "" {
		buf.WriteString(fmt.Sprintf("**Uploaded**: %s\n", shared.FormatTimestamp(summary.UploadedAt)))
	}
	buf.WriteString("\n## Overall\n\n")
	buf.WriteString("| Metric | Value |\n|---|---|\n")
	buf.WriteString(fmt.Sprintf("| Total Records | %d |\n", summary.TotalRecords))
	for _, m := range models.Metrics {
		buf.WriteString(fmt.Sprintf("| %s | %s |\n", m.Label(), FormatNumber(m.Overall(summary))))
	}

	if rows := TypeRows(summary); len(rows) > 0 {
		buf.WriteString("\n## Type Distribution\n\n")
		buf.WriteString("| Type | Count | Share |\n|---|---|---|\n")
		for _, row := range rows {
			buf.WriteString(fmt.Sprintf("| %s | %d | %s%% |\n", row.Type, row.Count, FormatNumber(row.Share)))
		}

		buf.WriteString("\n## Per-Type Statistics\n\n")
		buf.WriteString("| Type | Count |")
		for _, m := range models.Metrics {
			buf.WriteString(fmt.Sprintf(" %s |", m.Label()))
		}
		buf.WriteString("\n|---|---|---|---|---|\n")
		for _, row := range rows {
			buf.WriteString(fmt.Sprintf("| %s | %d |", row.Type, row.Count))
			for _, m := range models.Metrics {
				buf.WriteString(fmt.Sprintf(" %s |", FormatNumber(m.Of(row.Stats))))
			}
			buf.WriteString("\n")
		}
	}

	if len(charts) > 0 {
		buf.WriteString("\n## Charts\n\n")
		for _, c := range charts {
			buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", c.Kind.Title(), c.Filename))
		}
	}

	return buf.Bytes(), nil
}

// ExportToCSV renders the per-type breakdown with a trailing "Overall" row.
//
// Columns: Type, Count, Avg Flowrate, Avg Pressure, Avg Temperature
func ExportToCSV(summary models.UploadSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Type", "Count"}
	for _, m := range models.Metrics {
		headers = append(headers, m.Label())
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range TypeRows(summary) {
		record := []string{row.Type, strconv.Itoa(row.Count)}
		for _, m := range models.Metrics {
			record = append(record, FormatNumber(m.Of(row.Stats)))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	overall := []string{"Overall", strconv.Itoa(summary.TotalRecords)}
	for _, m := range models.Metrics {
		overall = append(overall, FormatNumber(m.Overall(summary)))
	}
	if err := writer.Write(overall); err != nil {
		return nil, fmt.Errorf("failed to write CSV record: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders summary as indented JSON using the persisted field names.
func ExportToJSON(summary models.UploadSummary) ([]byte, error) {
	return shared.MarshalJSON(summary, true)
}

// ExportToYAML renders summary as YAML using the persisted field names.
func ExportToYAML(summary models.UploadSummary) ([]byte, error) {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return data, nil
}

// ExportUploadsTable renders the recent-uploads list as a table, marking the selected entry.
func ExportUploadsTable(uploads []models.UploadSummary, selectedID string) string {
	t := table.New().Border(lipgloss.NormalBorder()).Headers("", "ID", "File", "Uploaded", "Records")
	for _, u := range uploads {
		marker := ""
		if u.ID == selectedID {
			marker = "*"
		}
		t.Row(marker, u.ID, u.FileName, shared.FormatTimestamp(u.UploadedAt), strconv.Itoa(u.TotalRecords))
	}
	return t.String()
}
