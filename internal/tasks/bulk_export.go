package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/jamming/internal/formatter"
	"github.com/desertthunder/jamming/internal/models"
)

// BulkExportOpts contains configuration for bulk draft exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: json)
	OutputDir  string           // Base output directory (default: jamming_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
}

// DraftExportResult describes the export of one draft.
type DraftExportResult struct {
	DraftID   string `json:"draft_id"`
	DraftName string `json:"draft_name"`
	File      string `json:"file,omitempty"`
	Success   bool   `json:"success"`
	Error     error  `json:"-"`
	Message   string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export; it is also written as the manifest.
type BulkExportResult struct {
	TotalDrafts       int                 `json:"total_drafts"`
	SuccessfulExports int                 `json:"successful_exports"`
	FailedExports     int                 `json:"failed_exports"`
	Format            formatter.Format    `json:"format"`
	OutputDirectory   string              `json:"output_directory"`
	ExportedAt        time.Time           `json:"exported_at"`
	Results           []DraftExportResult `json:"results"`
	ManifestPath      string              `json:"-"`
}

type exportJob struct {
	step  int
	draft *models.Draft
}

// ExportDrafts writes each draft to its own file under opts.OutputDir using a
// bounded worker pool, then writes export_manifest.json summarizing the run.
//
// A draft that fails to export does not stop the others.
func (e *PlaylistEngine) ExportDrafts(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	drafts []*models.Draft,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("jamming_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalDrafts:     len(drafts),
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]DraftExportResult, 0, len(drafts)),
	}

	jobs := make(chan exportJob, len(drafts))
	results := make(chan DraftExportResult, len(drafts))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, prog, len(drafts), jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, d := range drafts {
			select {
			case <-ctx.Done():
				return
			case jobs <- exportJob{step: i + 1, draft: d}:
			}
		}
	}()

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
			e.sendProgress(prog, exportCompletedUpdate(completed, len(drafts), res.DraftName, res.File))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(drafts), res.DraftName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export cancelled: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker exports drafts from the jobs channel until it is closed.
func (e *PlaylistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	prog chan<- ProgressUpdate,
	total int,
	jobs <-chan exportJob,
	results chan<- DraftExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		e.sendProgress(prog, exportingDraftUpdate(job.step, total, job.draft.Name()))
		results <- exportSingleDraft(job.draft, opts)
	}
}

// exportSingleDraft writes one draft. Files are named by draft id so that
// drafts sharing a name do not overwrite each other.
func exportSingleDraft(d *models.Draft, opts BulkExportOpts) DraftExportResult {
	result := DraftExportResult{DraftID: d.ID(), DraftName: d.Name()}

	base := formatter.Slug(d.Name())
	if d.ID() != "" {
		base = base + "_" + d.ID()
	}
	path := filepath.Join(opts.OutputDir, base+opts.Format.Extension())

	written, err := formatter.WriteExport(d, opts.Format, path)
	if err != nil {
		result.Error = err
		result.Message = err.Error()
		return result
	}

	result.File = written
	result.Success = true
	return result
}
