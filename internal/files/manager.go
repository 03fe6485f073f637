// File path: internal/files/manager.go

// Package files manages result files under the data directory: staging of
// uploads, the atomic move into the final name, lookup and archival.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snvbench/benchdb/internal/bench"
)

const (
	stagingDirName  = "staging"
	deletedDirName  = "deleted"
	archivedDirName = "deleted_experiments"
)

// Manager owns the data directory layout. All paths it hands out stay inside
// the root; callers never build result-file paths themselves.
type Manager struct {
	root string
}

// NewManager creates the data directory layout rooted at dir.
func NewManager(dir string) (*Manager, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	for _, sub := range []string{"", stagingDirName, deletedDirName, archivedDirName} {
		if err := os.MkdirAll(filepath.Join(abs, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &Manager{root: abs}, nil
}

// Root returns the data directory.
func (m *Manager) Root() string { return m.root }

// ResultFileName builds the canonical result-file name. The numeric prefix is
// zero padded to three digits so lexical order matches id order; all metadata
// components are lowercased and whitespace stripped.
func ResultFileName(id int64, meta *bench.Metadata) string {
	component := func(value string) string {
		cleaned := bench.Clean(value)
		return strings.ReplaceAll(cleaned, " ", "")
	}
	return fmt.Sprintf("%03d_%s_%s_%s_%s_%s.csv",
		id,
		component(meta.Sample()),
		component(meta.Technology),
		component(meta.PlatformName),
		component(meta.CallerName),
		component(meta.TruthSetName))
}

// Stage copies an incoming upload into a uuid-named scratch file. The staged
// file is invisible to lookups until Commit renames it into the data root.
func (m *Manager) Stage(r io.Reader) (string, error) {
	path := filepath.Join(m.root, stagingDirName, uuid.NewString()+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return path, nil
}

// Commit moves a staged file to its final name inside the data root.
func (m *Manager) Commit(stagedPath, fileName string) (string, error) {
	final := filepath.Join(m.root, filepath.Base(fileName))
	if err := os.Rename(stagedPath, final); err != nil {
		return "", fmt.Errorf("commit result file: %w", err)
	}
	return final, nil
}

// Discard removes a staged file, tolerating its absence.
func (m *Manager) Discard(stagedPath string) {
	os.Remove(stagedPath)
}

// Remove deletes a committed result file, used to clean up the orphan when
// the database transaction fails after the file move.
func (m *Manager) Remove(fileName string) error {
	path := filepath.Join(m.root, filepath.Base(fileName))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove result file: %w", err)
	}
	return nil
}

// Find locates the result file for an experiment: first the exact recorded
// name, then any file carrying the id prefix when the record predates the
// naming convention. Empty return means no file exists, which delete flows
// tolerate.
func (m *Manager) Find(id int64, fileName string) string {
	if fileName != "" {
		path := filepath.Join(m.root, filepath.Base(fileName))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	prefix := fmt.Sprintf("%03d_", id)
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(m.root, entry.Name())
		}
	}
	return ""
}

// Archive moves a result file into deleted_experiments/ with a timestamp
// suffix so repeated deletes of recycled ids never collide.
func (m *Manager) Archive(path string, now time.Time) (string, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	archived := fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), ext)
	dest := filepath.Join(m.root, archivedDirName, archived)
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("archive result file: %w", err)
	}
	return dest, nil
}

// DeletedDir returns the directory holding mirror snapshots taken before
// destructive mirror edits.
func (m *Manager) DeletedDir() string {
	return filepath.Join(m.root, deletedDirName)
}
