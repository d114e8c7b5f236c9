package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
)

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	StatsFile   string
	SummaryFile string
}

// WriteCSVExport writes the per-type CSV with an accompanying summary JSON file.
//
// Defaults to the upload ID as the base filename & creates {base}_types.csv and {base}_summary.json
func WriteCSVExport(summary models.UploadSummary, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = summary.ID
	}

	csvData, err := ExportToCSV(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	statsFile := baseFilepath + "_types.csv"
	if err := os.WriteFile(statsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	summaryJSON, err := ExportToJSON(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary JSON: %w", err)
	}

	summaryFile := baseFilepath + "_summary.json"
	if err := os.WriteFile(summaryFile, summaryJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary file: %w", err)
	}

	return &CSVExportResult{StatsFile: statsFile, SummaryFile: summaryFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Charts    []string
}

// WriteMarkdownExport writes a README.md report and its PNG charts into a dedicated directory.
//
// Directory name defaults to the upload ID. Charts that cannot be drawn for the data (no types, all-zero metric)
// are left out of the report.
func WriteMarkdownExport(summary models.UploadSummary, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = summary.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	charts := make([]ChartFile, 0, len(ChartKinds))
	for _, kind := range ChartKinds {
		path, err := WriteChart(summary, kind, filepath.Join(outputDir, kind.Filename()))
		if errors.Is(err, shared.ErrInvalidInput) {
			continue
		}
		if err != nil {
			return nil, err
		}
		charts = append(charts, ChartFile{Kind: kind, Filename: kind.Filename()})
		result.Charts = append(result.Charts, path)
		result.Files = append(result.Files, path)
	}

	mdData, err := ExportToMarkdown(summary, charts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteChart renders the chart of the given kind to path.
//
// Defaults to {summary.ID}_{kind}.png. Nothing is written when rendering fails.
func WriteChart(summary models.UploadSummary, kind ChartKind, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_%s", summary.ID, kind.Filename())
	}

	var buf bytes.Buffer
	if err := RenderChart(&buf, summary, kind); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write chart: %w", err)
	}
	return path, nil
}

// WriteExport writes summary in format f to path.
//
// Defaults to {summary.ID}.{ext} as the filename.
func WriteExport(summary models.UploadSummary, f Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.%s", summary.ID, f.Extension())
	}

	data, err := Export(summary, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}
