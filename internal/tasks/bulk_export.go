package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/eqviz/internal/formatter"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
)

const (
	defaultWorkers = 4
	maxWorkers     = 8
	manifestName   = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk report exports.
type BulkExportOpts struct {
	Format     formatter.Format // Report format (markdown always includes charts)
	OutputDir  string           // Base output directory (default: eqviz_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4)
	Charts     bool             // Also write PNG charts next to non-markdown reports
}

// UploadExportResult is the outcome of exporting one upload.
type UploadExportResult struct {
	UploadID string   `json:"upload_id"`
	FileName string   `json:"file_name"`
	Success  bool     `json:"success"`
	Files    []string `json:"files"`
	Error    error    `json:"-"`
	Message  string   `json:"error,omitempty"`

	index int
}

// BulkExportResult summarises a bulk export and is written as the manifest.
type BulkExportResult struct {
	Format            formatter.Format     `json:"format"`
	ExportedAt        string               `json:"exported_at"`
	TotalUploads      int                  `json:"total_uploads"`
	SuccessfulExports int                  `json:"successful_exports"`
	FailedExports     int                  `json:"failed_exports"`
	OutputDirectory   string               `json:"output_directory"`
	ManifestPath      string               `json:"-"`
	Results           []UploadExportResult `json:"results"`
}

type exportJob struct {
	index  int
	upload models.UploadSummary
}

// BulkExport writes a report for every upload using a worker pool and records the outcome in a manifest.
//
// Individual failures do not stop the export; they are counted and listed in the manifest.
func BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	uploads []models.UploadSummary,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no uploads to export", shared.ErrUploadMissing)
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatMarkdown
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("eqviz_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC().Format(time.RFC3339),
		TotalUploads:    len(uploads),
		OutputDirectory: opts.OutputDir,
		Results:         make([]UploadExportResult, 0, len(uploads)),
	}

	jobs := make(chan exportJob, len(uploads))
	results := make(chan UploadExportResult, len(uploads))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(ctx, &wg, jobs, results, opts)
	}

	sendProgress(prog, prepareUpdate(len(uploads), opts.OutputDir))
	for i, u := range uploads {
		jobs <- exportJob{index: i, upload: u}
		sendProgress(prog, exportingUploadUpdate(i+1, len(uploads), u))
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(uploads), res))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(uploads), res))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export cancelled: %w", err)
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].index < result.Results[j].index })

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	sendProgress(prog, manifestUpdate(manifestPath))
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports uploads from the jobs channel.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- UploadExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := exportSingleUpload(job, opts)
		res.index = job.index
		results <- res
	}
}

// exportSingleUpload writes the report files for one upload.
func exportSingleUpload(j exportJob, opts BulkExportOpts) UploadExportResult {
	u := j.upload
	result := UploadExportResult{
		UploadID: u.ID,
		FileName: u.FileName,
		Files:    []string{},
	}

	fail := func(err error) UploadExportResult {
		result.Error = err
		result.Message = err.Error()
		return result
	}

	if u.ID == "" {
		return fail(fmt.Errorf("%w: upload has no id", shared.ErrInvalidInput))
	}
	base := filepath.Join(opts.OutputDir, u.ID)

	switch opts.Format {
	case formatter.FormatMarkdown:
		mdRes, err := formatter.WriteMarkdownExport(u, base)
		if err != nil {
			return fail(fmt.Errorf("markdown export failed: %w", err))
		}
		result.Files = mdRes.Files
		result.Success = true
		return result

	case formatter.FormatCSV:
		csvRes, err := formatter.WriteCSVExport(u, base)
		if err != nil {
			return fail(fmt.Errorf("CSV export failed: %w", err))
		}
		result.Files = []string{csvRes.StatsFile, csvRes.SummaryFile}

	default:
		path, err := formatter.WriteExport(u, opts.Format, fmt.Sprintf("%s.%s", base, opts.Format.Extension()))
		if err != nil {
			return fail(fmt.Errorf("%s export failed: %w", opts.Format, err))
		}
		result.Files = []string{path}
	}

	if opts.Charts {
		for _, kind := range formatter.ChartKinds {
			path, err := formatter.WriteChart(u, kind, fmt.Sprintf("%s_%s", base, kind.Filename()))
			if errors.Is(err, shared.ErrInvalidInput) {
				continue
			}
			if err != nil {
				return fail(fmt.Errorf("chart export failed: %w", err))
			}
			result.Files = append(result.Files, path)
		}
	}

	result.Success = true
	return result
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
