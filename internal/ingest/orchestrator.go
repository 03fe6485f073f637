// File path: internal/ingest/orchestrator.go

// Package ingest coordinates the multi-step mutations of the catalog: upload,
// delete and visibility changes. Each operation keeps the database
// authoritative; file and mirror steps that fail after the commit degrade to
// logged partial failures instead of errors.
package ingest

import (
	"context"
	"io"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/snvbench/benchdb/internal/auth"
	"github.com/snvbench/benchdb/internal/bench"
	"github.com/snvbench/benchdb/internal/common"
	"github.com/snvbench/benchdb/internal/files"
	"github.com/snvbench/benchdb/internal/happy"
	"github.com/snvbench/benchdb/internal/mirror"
	"github.com/snvbench/benchdb/internal/sqlite"
)

// Catalog is the database surface the orchestrator drives. *sqlite.Store
// satisfies it.
type Catalog interface {
	Begin(ctx context.Context) (*sqlx.Tx, error)
	GetExperiment(ctx context.Context, id int64) (bench.ExperimentDetail, error)
}

// ResultFiles is the data-directory surface behind uploads and deletes.
// *files.Manager satisfies it.
type ResultFiles interface {
	Stage(r io.Reader) (string, error)
	Commit(stagedPath, fileName string) (string, error)
	Discard(stagedPath string)
	Remove(fileName string) error
	Find(id int64, fileName string) string
	Archive(path string, now time.Time) (string, error)
}

// Orchestrator wires the store, file manager, mirror and policy into the
// catalog's mutating operations.
type Orchestrator struct {
	store        Catalog
	files        ResultFiles
	mirror       *mirror.Mirror
	policy       *auth.Policy
	partitionIDs bool
}

// Options configures orchestrator construction.
type Options struct {
	Store Catalog
	Files ResultFiles
	// Mirror may be nil; mirror maintenance is then skipped entirely.
	Mirror       *mirror.Mirror
	Policy       *auth.Policy
	PartitionIDs bool
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{
		store:        opts.Store,
		files:        opts.Files,
		mirror:       opts.Mirror,
		policy:       opts.Policy,
		partitionIDs: opts.PartitionIDs,
	}
}

// UploadRequest is one experiment submission: the metadata record plus the
// hap.py result file stream.
type UploadRequest struct {
	Metadata    bench.Metadata
	File        io.Reader
	RequestedID *int64
}

// UploadResult reports the outcome of a successful upload. Warnings carry
// post-commit partial failures; their presence does not negate success.
type UploadResult struct {
	ExperimentID   int64
	FileName       string
	BenchmarkRows  int
	OverallRows    int
	SkippedRegions []string
	Warnings       []string
}

// Upload runs the staged ingestion flow: validate, stage the file, resolve
// dimensions and allocate an id, parse the results, move the file into its
// final name, commit. A failure before the commit leaves no trace; a commit
// failure after the file move removes the orphaned file.
func (o *Orchestrator) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	log := common.Logger()
	start := time.Now()
	outcome := "error"
	defer func() {
		uploadsTotal.WithLabelValues(outcome).Inc()
		uploadDuration.Observe(time.Since(start).Seconds())
	}()

	if err := req.Metadata.Validate(); err != nil {
		outcome = "invalid"
		return nil, err
	}

	staged, err := o.files.Stage(req.File)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			o.files.Discard(staged)
		}
	}()

	tx, err := o.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	exp, err := sqlite.AssembleExperiment(ctx, tx, &req.Metadata, sqlite.AssembleOptions{
		RequestedID:  req.RequestedID,
		PartitionIDs: o.partitionIDs,
	})
	if err != nil {
		if bench.IsValidation(err) || bench.IsConflict(err) {
			outcome = "invalid"
		}
		return nil, err
	}
	exp.FileName = files.ResultFileName(exp.ID, &req.Metadata)

	if err := sqlite.InsertExperiment(ctx, tx, exp); err != nil {
		return nil, err
	}

	parsed, err := happy.ParseFile(staged, exp.ID)
	if err != nil {
		if bench.IsValidation(err) {
			outcome = "invalid"
		}
		return nil, err
	}
	for _, label := range parsed.Skipped {
		skippedRegionsTotal.Inc()
		log.Warn("ingest: skipping unknown region", "experiment_id", exp.ID, "label", label)
	}
	if err := sqlite.InsertBenchmarkResults(ctx, tx, parsed.Benchmark); err != nil {
		return nil, err
	}
	if err := sqlite.InsertOverallResults(ctx, tx, parsed.Overall); err != nil {
		return nil, err
	}

	finalPath, err := o.files.Commit(staged, exp.FileName)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		// The file moved but the database did not record it; remove the
		// orphan so the data directory stays consistent with the catalog.
		if rmErr := o.files.Remove(exp.FileName); rmErr != nil {
			log.Error("ingest: orphan cleanup failed", "path", finalPath, "error", rmErr)
		}
		return nil, err
	}
	committed = true

	result := &UploadResult{
		ExperimentID:   exp.ID,
		FileName:       exp.FileName,
		BenchmarkRows:  len(parsed.Benchmark),
		OverallRows:    len(parsed.Overall),
		SkippedRegions: parsed.Skipped,
	}

	if o.mirror != nil {
		detail, err := o.store.GetExperiment(ctx, exp.ID)
		if err == nil {
			err = o.mirror.Append(detail)
		}
		if err != nil {
			mirrorFailuresTotal.Inc()
			pf := &bench.PartialFailure{Step: "mirror append", Err: err}
			log.Error("ingest: partial failure", "experiment_id", exp.ID, "error", pf)
			result.Warnings = append(result.Warnings, pf.Error())
		}
	}

	outcome = "success"
	log.Info("ingest: experiment uploaded",
		"experiment_id", exp.ID,
		"file_name", exp.FileName,
		"benchmark_rows", result.BenchmarkRows,
		"overall_rows", result.OverallRows)
	return result, nil
}

// DeleteResult reports a completed deletion and its post-commit warnings.
type DeleteResult struct {
	ExperimentID int64
	ArchivedFile string
	Warnings     []string
}

// Delete removes an experiment: policy check, child-first database delete in
// one transaction, then mirror archival and file archival. Post-commit
// failures are logged and reported as warnings.
func (o *Orchestrator) Delete(ctx context.Context, principal auth.Principal, id int64) (*DeleteResult, error) {
	log := common.Logger()
	outcome := "error"
	defer func() { deletesTotal.WithLabelValues(outcome).Inc() }()

	tx, err := o.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	detail, err := sqlite.GetExperimentTx(ctx, tx, id)
	if err != nil {
		if bench.IsNotFound(err) {
			outcome = "not_found"
		}
		return nil, err
	}
	if err := o.policy.AuthorizeDelete(principal, detail); err != nil {
		outcome = "unauthorized"
		return nil, err
	}
	if err := sqlite.DeleteExperimentTx(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	result := &DeleteResult{ExperimentID: id}
	now := time.Now().UTC()

	if o.mirror != nil {
		if err := o.mirror.Remove(id, principal.Username, now); err != nil {
			mirrorFailuresTotal.Inc()
			pf := &bench.PartialFailure{Step: "mirror remove", Err: err}
			log.Error("ingest: partial failure", "experiment_id", id, "error", pf)
			result.Warnings = append(result.Warnings, pf.Error())
		}
	}

	if path := o.files.Find(id, detail.FileName); path != "" {
		archived, err := o.files.Archive(path, now)
		if err != nil {
			pf := &bench.PartialFailure{Step: "file archive", Err: err}
			log.Error("ingest: partial failure", "experiment_id", id, "error", pf)
			result.Warnings = append(result.Warnings, pf.Error())
		} else {
			result.ArchivedFile = archived
		}
	}

	outcome = "success"
	log.Info("ingest: experiment deleted", "experiment_id", id, "deleted_by", principal.Username)
	return result, nil
}

// SetVisibility flips an experiment's public flag. Admin only; switching to
// public clears the owner reference and the mirror follows the database.
func (o *Orchestrator) SetVisibility(ctx context.Context, principal auth.Principal, id int64, public bool) error {
	log := common.Logger()
	if err := o.policy.AuthorizeVisibilityChange(principal); err != nil {
		return err
	}

	tx, err := o.store.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()
	if err := sqlite.SetVisibilityTx(ctx, tx, id, public); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	if o.mirror != nil {
		if err := o.mirror.UpdateVisibility(id, public); err != nil {
			mirrorFailuresTotal.Inc()
			pf := &bench.PartialFailure{Step: "mirror visibility", Err: err}
			log.Error("ingest: partial failure", "experiment_id", id, "error", pf)
		}
	}
	log.Info("ingest: visibility changed", "experiment_id", id, "is_public", public, "changed_by", principal.Username)
	return nil
}

// Reprocess re-parses the recorded result file of an experiment. Existing
// result rows short-circuit to a skip so repeated runs stay idempotent.
func (o *Orchestrator) Reprocess(ctx context.Context, id int64) (processed bool, err error) {
	detail, err := o.store.GetExperiment(ctx, id)
	if err != nil {
		return false, err
	}
	path := o.files.Find(id, detail.FileName)
	if path == "" {
		return false, &bench.ValidationError{Field: "result_file", Reason: "no result file on disk"}
	}

	tx, err := o.store.Begin(ctx)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	exists, err := sqlite.HasResultsTx(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if exists {
		common.Logger().Info("ingest: results already processed", "experiment_id", id)
		return false, nil
	}

	parsed, err := happy.ParseFile(path, id)
	if err != nil {
		return false, err
	}
	if err := sqlite.InsertBenchmarkResults(ctx, tx, parsed.Benchmark); err != nil {
		return false, err
	}
	if err := sqlite.InsertOverallResults(ctx, tx, parsed.Overall); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}
