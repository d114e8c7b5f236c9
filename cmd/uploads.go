package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/eqviz/internal/formatter"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
	"github.com/desertthunder/eqviz/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Upload submits a CSV file and prints the statistics the server computed.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	path := cmd.StringArg("path")
	r.logger.Info("uploading file", "path", path)

	summary, err := dash.SubmitFile(ctx, path)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(summary, true)
	}

	text, err := formatter.ExportToText(*summary)
	if err != nil {
		return err
	}
	r.writePlain("✓ Uploaded %s (id %s)\n\n", path, summary.ID)
	return r.writeBytes(text)
}

// UploadsList prints the cached uploads, newest first, marking the selection.
func (r *Runner) UploadsList(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	uploads := dash.Uploads()
	if cmd.Bool("json") {
		if uploads == nil {
			uploads = []models.UploadSummary{}
		}
		return r.writeJSON(uploads, cmd.Bool("pretty"))
	}

	if len(uploads) == 0 {
		return r.writePlain("No cached uploads\n")
	}

	var selectedID string
	if sel := dash.Selected(); sel != nil {
		selectedID = sel.ID
	}
	return r.writePlain("%s\n", formatter.ExportUploadsTable(uploads, selectedID))
}

// UploadsSelect changes the selected upload.
func (r *Runner) UploadsSelect(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: upload id", shared.ErrMissingArgument)
	}

	// An unknown id still clears the previous selection.
	selected := dash.Select(id)
	if selected == nil {
		return fmt.Errorf("%w: %s", shared.ErrUploadMissing, id)
	}
	return r.writePlain("✓ Selected %s (%s)\n", selected.FileName, selected.ID)
}

// UploadsShow renders one upload in the requested format.
func (r *Runner) UploadsShow(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	summary, err := dash.Resolve(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if out := cmd.String("output"); out != "" {
		path, err := formatter.WriteExport(*summary, format, out)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s\n", path)
	}

	data, err := formatter.Export(*summary, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// Chart renders one chart of an upload to a PNG file.
func (r *Runner) Chart(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	name := cmd.StringArg("kind")
	if name == "" {
		return fmt.Errorf("%w: chart kind", shared.ErrMissingArgument)
	}
	kind, err := formatter.ParseChartKind(name)
	if err != nil {
		return err
	}

	summary, err := dash.Resolve(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	out := cmd.String("output")
	if out == "" {
		out = fmt.Sprintf("%s_%s", summary.ID, kind.Filename())
	}

	path, err := formatter.WriteChart(*summary, kind, out)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s written to %s\n", kind.Title(), path)
}

// Export writes a report for every cached upload, printing progress as uploads complete.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug("export progress", "phase", update.Phase, "step", update.Step, "total", update.Total)
			if _, queued := update.Data.(string); queued {
				continue
			}
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := tasks.BulkExport(ctx, progress, dash.Uploads(), tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
		Charts:     cmd.Bool("charts"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("✓ Exported %d/%d uploads to %s", result.SuccessfulExports, result.TotalUploads, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("%d failed, see %s\n", result.FailedExports, result.ManifestPath)
	}
	return nil
}
