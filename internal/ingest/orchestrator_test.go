// File path: internal/ingest/orchestrator_test.go
package ingest

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/snvbench/benchdb/internal/auth"
	"github.com/snvbench/benchdb/internal/bench"
	"github.com/snvbench/benchdb/internal/files"
	"github.com/snvbench/benchdb/internal/mirror"
	"github.com/snvbench/benchdb/internal/sqlite"
)

const happyCSV = `Type,Subtype,Subset,Filter,METRIC.Recall,METRIC.Precision,METRIC.F1_Score,TRUTH.TOTAL,TRUTH.TP,TRUTH.FN,QUERY.TOTAL,QUERY.TP,QUERY.FP
SNP,*,*,ALL,0.991,0.987,0.989,100000,99100,900,100500,99100,1400
SNP,*,easy,ALL,0.999,0.998,0.9985,80000,79920,80,80000,79920,80
INDEL,*,*,ALL,0.96,0.955,0.9575,15000,14400,600,15200,14400,800
SNP,*,weird,ALL,0.5,0.5,0.5,10,5,5,10,5,5
`

type testEnv struct {
	orch   *Orchestrator
	store  *sqlite.Store
	files  *files.Manager
	mirror *mirror.Mirror
	dir    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	store, err := sqlite.Open(filepath.Join(dir, "benchdb.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	manager, err := files.NewManager(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("file manager: %v", err)
	}
	csvMirror, err := mirror.New(manager.Root(), manager.DeletedDir())
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	orch := New(Options{
		Store:        store,
		Files:        manager,
		Mirror:       csvMirror,
		Policy:       auth.NewPolicy([]string{"admin"}),
		PartitionIDs: true,
	})
	return &testEnv{orch: orch, store: store, files: manager, mirror: csvMirror, dir: dir}
}

func uploadMetadata() bench.Metadata {
	owner := int64(42)
	private := false
	return bench.Metadata{
		Name:           "HG002_illumina_novaseq",
		Technology:     "ILLUMINA",
		PlatformName:   "NovaSeq 6000",
		CallerName:     "DeepVariant",
		CallerType:     "ML",
		CallerVersion:  "1.6.0",
		TruthSetName:   "GIAB",
		TruthSetSample: "HG002",
		MeanCoverage:   "35.2",
		IsPublic:       &private,
		OwnerID:        &owner,
		OwnerUsername:  "carol",
	}
}

func mirrorRowCount(t *testing.T, m *mirror.Mirror) int {
	t.Helper()
	f, err := os.Open(m.Path())
	if err != nil {
		t.Fatalf("open mirror: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	return len(rows) - 1
}

func TestUploadSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.orch.Upload(ctx, UploadRequest{
		Metadata: uploadMetadata(),
		File:     strings.NewReader(happyCSV),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	// Private upload with partitioning lands at the private floor.
	if result.ExperimentID != 1000 {
		t.Errorf("experiment id = %d, want 1000", result.ExperimentID)
	}
	if result.BenchmarkRows != 3 || result.OverallRows != 2 {
		t.Errorf("rows = %d/%d, want 3 benchmark, 2 overall", result.BenchmarkRows, result.OverallRows)
	}
	if len(result.SkippedRegions) != 1 || result.SkippedRegions[0] != "weird" {
		t.Errorf("skipped = %v", result.SkippedRegions)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", result.Warnings)
	}

	// The result file sits in the data root under its generated name.
	wantName := "1000_hg002_illumina_novaseq6000_deepvariant_giab.csv"
	if result.FileName != wantName {
		t.Errorf("file name = %q, want %q", result.FileName, wantName)
	}
	if _, err := os.Stat(filepath.Join(env.files.Root(), wantName)); err != nil {
		t.Errorf("result file missing: %v", err)
	}

	detail, err := env.store.GetExperiment(ctx, result.ExperimentID)
	if err != nil {
		t.Fatalf("get experiment: %v", err)
	}
	if detail.FileName != wantName {
		t.Errorf("recorded file name = %q", detail.FileName)
	}

	if n := mirrorRowCount(t, env.mirror); n != 1 {
		t.Errorf("mirror rows = %d, want 1", n)
	}
}

func TestUploadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	meta := uploadMetadata()
	result, err := env.orch.Upload(ctx, UploadRequest{Metadata: meta, File: strings.NewReader(happyCSV)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	detail, err := env.store.GetExperiment(ctx, result.ExperimentID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Name != meta.Name {
		t.Errorf("name = %q, want %q", detail.Name, meta.Name)
	}
	if detail.Technology == nil || *detail.Technology != "ILLUMINA" {
		t.Errorf("technology = %v", detail.Technology)
	}
	if detail.CallerVersion == nil || *detail.CallerVersion != "1.6.0" {
		t.Errorf("caller version = %v", detail.CallerVersion)
	}

	overall, err := env.store.OverallResults(ctx, result.ExperimentID)
	if err != nil {
		t.Fatalf("overall: %v", err)
	}
	if len(overall) != 2 {
		t.Fatalf("overall rows = %d, want 2", len(overall))
	}
	for _, row := range overall {
		if row.VariantType == "SNP" {
			if row.MetricRecall == nil || *row.MetricRecall != 0.991 {
				t.Errorf("SNP recall = %v, want 0.991", row.MetricRecall)
			}
		}
	}
}

func TestUploadInvalidMetadataLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	meta := uploadMetadata()
	meta.Technology = "sanger"

	_, err := env.orch.Upload(context.Background(), UploadRequest{
		Metadata: meta,
		File:     strings.NewReader(happyCSV),
	})
	if err == nil || !bench.IsValidation(err) {
		t.Fatalf("upload = %v, want validation error", err)
	}
	assertNoSideEffects(t, env)
}

func TestUploadUnusableFileRollsBack(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.orch.Upload(context.Background(), UploadRequest{
		Metadata: uploadMetadata(),
		File:     strings.NewReader("Type,Subtype,Subset,Filter\nSNP,ins,*,ALL\n"),
	})
	if err == nil || !bench.IsValidation(err) {
		t.Fatalf("upload = %v, want validation error", err)
	}
	assertNoSideEffects(t, env)
}

func TestUploadDuplicateRequestedID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requested := int64(5)

	if _, err := env.orch.Upload(ctx, UploadRequest{
		Metadata:    uploadMetadata(),
		File:        strings.NewReader(happyCSV),
		RequestedID: &requested,
	}); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	_, err := env.orch.Upload(ctx, UploadRequest{
		Metadata:    uploadMetadata(),
		File:        strings.NewReader(happyCSV),
		RequestedID: &requested,
	})
	if err == nil || !bench.IsConflict(err) {
		t.Fatalf("duplicate id upload = %v, want conflict", err)
	}
}

func assertNoSideEffects(t *testing.T, env *testEnv) {
	t.Helper()
	details, err := env.store.ListExperiments(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(details) != 0 {
		t.Fatalf("experiments = %d, want 0", len(details))
	}
	entries, err := os.ReadDir(env.files.Root())
	if err != nil {
		t.Fatalf("read data dir: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".csv") && !strings.HasPrefix(entry.Name(), "000_") {
			t.Fatalf("unexpected file in data dir: %s", entry.Name())
		}
	}
	staging, err := os.ReadDir(filepath.Join(env.files.Root(), "staging"))
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(staging) != 0 {
		t.Fatalf("staging not cleaned: %d entries", len(staging))
	}
}

// txTrackingStore remembers the transaction handed to the orchestrator so a
// test can interfere with it mid-flow.
type txTrackingStore struct {
	*sqlite.Store
	last *sqlx.Tx
}

func (s *txTrackingStore) Begin(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := s.Store.Begin(ctx)
	s.last = tx
	return tx, err
}

// abortAfterMoveFiles performs the real file move, then kills the open
// transaction. That lands the upload in the window between the rename and the
// database commit.
type abortAfterMoveFiles struct {
	*files.Manager
	store *txTrackingStore
}

func (f *abortAfterMoveFiles) Commit(stagedPath, fileName string) (string, error) {
	final, err := f.Manager.Commit(stagedPath, fileName)
	if err == nil && f.store.last != nil {
		f.store.last.Rollback()
	}
	return final, err
}

func TestUploadCommitFailureRemovesOrphanFile(t *testing.T) {
	dir := t.TempDir()
	store, err := sqlite.Open(filepath.Join(dir, "benchdb.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	manager, err := files.NewManager(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("file manager: %v", err)
	}

	tracking := &txTrackingStore{Store: store}
	orch := New(Options{
		Store:        tracking,
		Files:        &abortAfterMoveFiles{Manager: manager, store: tracking},
		Policy:       auth.NewPolicy([]string{"admin"}),
		PartitionIDs: true,
	})

	_, err = orch.Upload(context.Background(), UploadRequest{
		Metadata: uploadMetadata(),
		File:     strings.NewReader(happyCSV),
	})
	if err == nil {
		t.Fatal("upload should fail when the database commit fails")
	}

	// The moved file must not linger under its final name; the database
	// recorded nothing, so the data directory has to match.
	wantName := "1000_hg002_illumina_novaseq6000_deepvariant_giab.csv"
	if _, statErr := os.Stat(filepath.Join(manager.Root(), wantName)); !os.IsNotExist(statErr) {
		t.Fatalf("orphaned result file survived: %v", statErr)
	}
	details, err := store.ListExperiments(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(details) != 0 {
		t.Fatalf("experiments = %d, want 0", len(details))
	}
	staging, err := os.ReadDir(filepath.Join(manager.Root(), "staging"))
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(staging) != 0 {
		t.Fatalf("staging not cleaned: %d entries", len(staging))
	}
}

func TestDeleteByAdminArchivesEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.orch.Upload(ctx, UploadRequest{Metadata: uploadMetadata(), File: strings.NewReader(happyCSV)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	deleted, err := env.orch.Delete(ctx, auth.Principal{Username: "admin"}, result.ExperimentID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(deleted.Warnings) != 0 {
		t.Errorf("warnings = %v", deleted.Warnings)
	}

	if _, err := env.store.GetExperiment(ctx, result.ExperimentID); !bench.IsNotFound(err) {
		t.Fatalf("get after delete = %v, want not found", err)
	}
	if n := mirrorRowCount(t, env.mirror); n != 0 {
		t.Errorf("mirror rows after delete = %d, want 0", n)
	}
	if deleted.ArchivedFile == "" {
		t.Fatal("expected archived file path")
	}
	if _, err := os.Stat(deleted.ArchivedFile); err != nil {
		t.Errorf("archived file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.files.Root(), result.FileName)); !os.IsNotExist(err) {
		t.Errorf("original file should be gone")
	}
}

func TestDeleteByOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	result, err := env.orch.Upload(ctx, UploadRequest{Metadata: uploadMetadata(), File: strings.NewReader(happyCSV)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := env.orch.Delete(ctx, auth.Principal{Username: "carol"}, result.ExperimentID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestDeleteUnauthorizedChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	result, err := env.orch.Upload(ctx, UploadRequest{Metadata: uploadMetadata(), File: strings.NewReader(happyCSV)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	_, err = env.orch.Delete(ctx, auth.Principal{Username: "mallory"}, result.ExperimentID)
	if err == nil || !bench.IsUnauthorized(err) {
		t.Fatalf("delete = %v, want unauthorized", err)
	}
	if _, err := env.store.GetExperiment(ctx, result.ExperimentID); err != nil {
		t.Fatalf("experiment should survive: %v", err)
	}
	if n := mirrorRowCount(t, env.mirror); n != 1 {
		t.Errorf("mirror rows = %d, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(env.files.Root(), result.FileName)); err != nil {
		t.Errorf("result file should survive: %v", err)
	}
}

func TestDeleteMissingExperiment(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.orch.Delete(context.Background(), auth.Principal{Username: "admin"}, 404)
	if err == nil || !bench.IsNotFound(err) {
		t.Fatalf("delete missing = %v, want not found", err)
	}
}

func TestSetVisibilityFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	result, err := env.orch.Upload(ctx, UploadRequest{Metadata: uploadMetadata(), File: strings.NewReader(happyCSV)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	err = env.orch.SetVisibility(ctx, auth.Principal{Username: "carol"}, result.ExperimentID, true)
	if err == nil || !bench.IsUnauthorized(err) {
		t.Fatalf("non-admin visibility = %v, want unauthorized", err)
	}

	if err := env.orch.SetVisibility(ctx, auth.Principal{Username: "admin"}, result.ExperimentID, true); err != nil {
		t.Fatalf("admin visibility: %v", err)
	}
	detail, err := env.store.GetExperiment(ctx, result.ExperimentID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !detail.IsPublic || detail.OwnerID != nil {
		t.Fatalf("detail = public %v owner %v, want public with nil owner", detail.IsPublic, detail.OwnerID)
	}
}

func TestReprocessIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	result, err := env.orch.Upload(ctx, UploadRequest{Metadata: uploadMetadata(), File: strings.NewReader(happyCSV)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// Results already exist from the upload; reprocessing skips.
	processed, err := env.orch.Reprocess(ctx, result.ExperimentID)
	if err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	if processed {
		t.Fatal("reprocess should skip existing results")
	}
	rows, err := env.store.BenchmarkResults(ctx, result.ExperimentID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("benchmark rows = %d, want unchanged 3", len(rows))
	}
}
