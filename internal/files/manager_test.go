// File path: internal/files/manager_test.go
package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/snvbench/benchdb/internal/bench"
)

func testMetadata() *bench.Metadata {
	return &bench.Metadata{
		Name:         "HG002_run1",
		Technology:   "ILLUMINA",
		PlatformName: "NovaSeq 6000",
		CallerName:   "DeepVariant",
		TruthSetName: "GIAB",
	}
}

func TestResultFileName(t *testing.T) {
	got := ResultFileName(7, testMetadata())
	want := "007_hg002_illumina_novaseq6000_deepvariant_giab.csv"
	if got != want {
		t.Fatalf("ResultFileName = %q, want %q", got, want)
	}
}

func TestResultFileNamePadsWide(t *testing.T) {
	got := ResultFileName(1234, testMetadata())
	if !strings.HasPrefix(got, "1234_") {
		t.Fatalf("wide id should keep full digits: %q", got)
	}
}

func TestStageCommitFind(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	staged, err := m.Stage(strings.NewReader("Type,Subtype\n"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if filepath.Dir(staged) != filepath.Join(m.Root(), "staging") {
		t.Fatalf("staged file outside staging dir: %s", staged)
	}
	// Staged files are invisible to lookups.
	if found := m.Find(1, ""); found != "" {
		t.Fatalf("Find located staged file: %s", found)
	}

	name := ResultFileName(1, testMetadata())
	final, err := m.Commit(staged, name)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("final file missing: %v", err)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Fatalf("staged file should be gone after commit")
	}

	if found := m.Find(1, name); found != final {
		t.Fatalf("Find exact = %q, want %q", found, final)
	}
	// Prefix fallback when the recorded name is stale.
	if found := m.Find(1, "missing.csv"); found != final {
		t.Fatalf("Find prefix = %q, want %q", found, final)
	}
	if found := m.Find(2, ""); found != "" {
		t.Fatalf("Find for other id = %q, want empty", found)
	}
}

func TestRemoveTolerant(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Remove("not_there.csv"); err != nil {
		t.Fatalf("Remove missing file: %v", err)
	}
}

func TestArchive(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	staged, err := m.Stage(strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	final, err := m.Commit(staged, "003_hg002_x_y_z_w.csv")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	now := time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)
	archived, err := m.Archive(final, now)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if filepath.Dir(archived) != filepath.Join(m.Root(), "deleted_experiments") {
		t.Fatalf("archive landed outside deleted_experiments: %s", archived)
	}
	wantName := "003_hg002_x_y_z_w_20260301_123045.csv"
	if filepath.Base(archived) != wantName {
		t.Fatalf("archived name = %q, want %q", filepath.Base(archived), wantName)
	}
	if _, err := os.Stat(final); !os.IsNotExist(err) {
		t.Fatalf("original should be gone after archive")
	}
}
