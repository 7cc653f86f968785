// Package importer orchestrates the batch import pipeline: each archive
// in a directory is read, extracted, and loaded in sequence, with
// per-archive failures logged and isolated so one bad save never aborts
// the batch.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/turnstone-io/turnstone/internal/extract"
	"github.com/turnstone-io/turnstone/internal/metrics"
	"github.com/turnstone-io/turnstone/internal/savefile"
	"github.com/turnstone-io/turnstone/internal/store"
	"github.com/turnstone-io/turnstone/pkg/types"
)

// Store is the persistence interface the importer drives.
type Store interface {
	MatchExists(ctx context.Context, matchID string) (bool, error)
	LoadMatch(ctx context.Context, rec *types.MatchRecords, force bool) (types.RowCounts, error)
	InsertImportRun(ctx context.Context, run types.ImportRun) error
}

// Options controls one batch import.
type Options struct {
	// Force re-imports matches that are already present.
	Force bool
	// DryRun performs Read and Extract but writes nothing, reporting what
	// would have been loaded.
	DryRun bool
	// Verbose logs per-archive row counts.
	Verbose bool
}

// ArchiveResult is the outcome of one archive.
type ArchiveResult struct {
	Archive  string
	MatchID  string
	Stage    types.ImportStage
	Status   types.ImportStatus
	Counts   types.RowCounts
	Err      error
	Duration time.Duration
}

// BatchResult collects per-archive outcomes in processing order.
type BatchResult struct {
	Results []ArchiveResult
}

// Succeeded returns the number of archives loaded (or extracted, in dry
// run) successfully.
func (b *BatchResult) Succeeded() int { return b.count(types.ImportSucceeded, types.ImportDryRun) }

// Failed returns the number of archives that failed.
func (b *BatchResult) Failed() int { return b.count(types.ImportFailed) }

// Skipped returns the number of already-imported archives skipped.
func (b *BatchResult) Skipped() int { return b.count(types.ImportSkipped) }

func (b *BatchResult) count(statuses ...types.ImportStatus) int {
	n := 0
	for _, r := range b.Results {
		for _, s := range statuses {
			if r.Status == s {
				n++
			}
		}
	}
	return n
}

// Importer runs the per-archive pipeline Discovered -> Read -> Extracted
// -> Loaded.
type Importer struct {
	store  Store
	logger *slog.Logger

	// readFile is savefile.Read, injectable for tests.
	readFile func(path string) ([]byte, error)
}

// New creates an Importer.
func New(st Store, logger *slog.Logger) *Importer {
	return &Importer{store: st, logger: logger, readFile: savefile.Read}
}

// ImportDir processes every .zip archive in dir sequentially, in name
// order. Per-archive failures are recorded in the result and the audit
// table; the returned error is non-nil only when the directory itself
// cannot be read.
func (imp *Importer) ImportDir(ctx context.Context, dir string, opts Options) (*BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading save directory: %w", err)
	}

	batch := &BatchResult{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		res := imp.importArchive(ctx, filepath.Join(dir, entry.Name()), opts)
		batch.Results = append(batch.Results, res)

		switch res.Status {
		case types.ImportFailed:
			metrics.ArchivesFailed.Add(1)
			imp.logger.Error("archive import failed",
				"archive", res.Archive, "stage", res.Stage, "error", res.Err)
		case types.ImportSkipped:
			metrics.ArchivesSkipped.Add(1)
			imp.logger.Info("archive already imported, skipping",
				"archive", res.Archive, "match", res.MatchID)
		case types.ImportDryRun:
			imp.logger.Info("dry run, nothing written",
				"archive", res.Archive, "match", res.MatchID, "rows", res.Counts.Total())
		default:
			metrics.ArchivesImported.Add(1)
			metrics.RowsInserted.Add(int64(res.Counts.Total()))
			imp.logger.Info("archive imported",
				"archive", res.Archive, "match", res.MatchID,
				"rows", res.Counts.Total(), "duration", res.Duration)
		}
		if opts.Verbose && res.Err == nil {
			imp.logger.Info("row counts",
				"archive", res.Archive,
				"players", res.Counts.Players, "states", res.Counts.States,
				"events", res.Counts.Events, "territories", res.Counts.Territories)
		}

		// Dry runs must not write anything, audit included.
		if !opts.DryRun {
			imp.recordRun(ctx, res)
		}
	}

	return batch, nil
}

func (imp *Importer) importArchive(ctx context.Context, path string, opts Options) ArchiveResult {
	started := time.Now()
	res := ArchiveResult{
		Archive: filepath.Base(path),
		Stage:   types.StageDiscovered,
	}
	fail := func(err error) ArchiveResult {
		res.Status = types.ImportFailed
		res.Err = err
		res.Duration = time.Since(started)
		return res
	}

	data, err := imp.readFile(path)
	if err != nil {
		return fail(err)
	}
	if err := Advance(res.Stage, types.StageRead); err != nil {
		return fail(err)
	}
	res.Stage = types.StageRead

	rec, err := extract.Extract(res.Archive, data)
	if err != nil {
		return fail(err)
	}
	if err := Advance(res.Stage, types.StageExtracted); err != nil {
		return fail(err)
	}
	res.Stage = types.StageExtracted
	res.MatchID = rec.Match.MatchID
	res.Counts = rec.Counts()

	if opts.DryRun {
		res.Status = types.ImportDryRun
		res.Duration = time.Since(started)
		return res
	}

	if !opts.Force {
		exists, err := imp.store.MatchExists(ctx, rec.Match.MatchID)
		if err != nil {
			return fail(fmt.Errorf("checking match %s: %w", rec.Match.MatchID, err))
		}
		if exists {
			res.Status = types.ImportSkipped
			res.Duration = time.Since(started)
			return res
		}
	}

	counts, err := imp.store.LoadMatch(ctx, rec, opts.Force)
	if err != nil {
		// Lost the race with a concurrent import of the same match id.
		if errors.Is(err, store.ErrMatchExists) {
			res.Status = types.ImportSkipped
			res.Duration = time.Since(started)
			return res
		}
		return fail(err)
	}
	if err := Advance(res.Stage, types.StageLoaded); err != nil {
		return fail(err)
	}
	res.Stage = types.StageLoaded
	res.Status = types.ImportSucceeded
	res.Counts = counts
	res.Duration = time.Since(started)
	return res
}

// recordRun writes the audit row for one archive attempt. Audit failures
// are logged, never fatal to the batch.
func (imp *Importer) recordRun(ctx context.Context, res ArchiveResult) {
	run := types.ImportRun{
		ImportID:    ulid.Make().String(),
		Archive:     res.Archive,
		MatchID:     res.MatchID,
		Stage:       res.Stage,
		Status:      res.Status,
		Counts:      res.Counts,
		StartedAt:   time.Now().Add(-res.Duration),
		CompletedAt: time.Now(),
	}
	if res.Err != nil {
		run.Error = res.Err.Error()
	}
	if err := imp.store.InsertImportRun(ctx, run); err != nil {
		imp.logger.Error("failed to record import run",
			"archive", res.Archive, "error", err)
	}
}
