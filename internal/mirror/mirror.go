// File path: internal/mirror/mirror.go

// Package mirror maintains the flat CSV projection of the experiment catalog.
// The database is the sole authority; the mirror is a derived export kept for
// spreadsheet consumers and can be rebuilt from scratch at any time.
package mirror

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/snvbench/benchdb/internal/bench"
)

const (
	fileName        = "000_benchmark_dashboard_default_metadata.csv"
	deletedFileName = "000_deleted.csv"
)

var columns = []string{
	"ID", "name", "technology", "target", "platform_name", "platform_type",
	"platform_version", "chemistry_name", "chemistry_version", "caller_name",
	"caller_type", "caller_version", "caller_model", "aligner_name",
	"aligner_version", "truth_set_name", "truth_set_sample",
	"truth_set_version", "truth_set_reference", "variant_type", "variant_size",
	"variant_origin", "is_phased", "benchmark_tool_name",
	"benchmark_tool_version", "mean_coverage", "read_length",
	"mean_insert_size", "mean_read_length", "file_name", "created_at",
	"is_public", "owner_username",
}

var deletedColumns = append(append([]string{}, columns...), "deleted_at", "deleted_by")

var (
	fileNameColumn = columnIndex("file_name")
	isPublicColumn = columnIndex("is_public")
)

func columnIndex(name string) int {
	for i, col := range columns {
		if col == name {
			return i
		}
	}
	panic("mirror: unknown column " + name)
}

// Lister is the slice of the catalog the mirror needs for rebuilds.
type Lister interface {
	ListExperiments(ctx context.Context) ([]bench.ExperimentDetail, error)
}

// Mirror serializes all edits of the CSV pair through one mutex; the files
// are rewritten whole, never patched in place.
type Mirror struct {
	mu   sync.Mutex
	path string
	// deletedPath accumulates archived rows with deleted_at/deleted_by.
	deletedPath string
	snapshotDir string
}

// New sets up the mirror inside the data directory, creating an empty file
// with headers when none exists. snapshotDir receives a timestamped copy of
// the mirror before each destructive edit.
func New(dataDir, snapshotDir string) (*Mirror, error) {
	m := &Mirror{
		path:        filepath.Join(dataDir, fileName),
		deletedPath: filepath.Join(dataDir, deletedFileName),
		snapshotDir: snapshotDir,
	}
	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		if err := writeAll(m.path, columns, nil); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Path returns the mirror file location.
func (m *Mirror) Path() string { return m.path }

// Append adds one experiment row.
func (m *Mirror) Append(detail bench.ExperimentDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, err := m.readRows()
	if err != nil {
		return err
	}
	rows = append(rows, projectRow(detail))
	return writeAll(m.path, columns, rows)
}

// Remove archives the experiment's row into the deleted CSV and drops it from
// the mirror. A missing row is not an error; the mirror may lag the database.
func (m *Mirror) Remove(id int64, deletedBy string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.snapshot(now); err != nil {
		return err
	}
	rows, err := m.readRows()
	if err != nil {
		return err
	}
	kept := rows[:0]
	var removed []string
	for _, row := range rows {
		if len(row) > 0 && row[0] == strconv.FormatInt(id, 10) {
			removed = row
			continue
		}
		kept = append(kept, row)
	}
	if removed != nil {
		if deletedBy == "" {
			deletedBy = "unknown"
		}
		archived := append(append([]string{}, removed...),
			now.Format("2006-01-02 15:04:05"), deletedBy)
		if err := m.appendDeleted(archived); err != nil {
			return err
		}
	}
	return writeAll(m.path, columns, kept)
}

// UpdateVisibility rewrites the is_public cell of one row.
func (m *Mirror) UpdateVisibility(id int64, public bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, err := m.readRows()
	if err != nil {
		return err
	}
	target := strconv.FormatInt(id, 10)
	for _, row := range rows {
		if len(row) >= len(columns) && row[0] == target {
			row[isPublicColumn] = strconv.FormatBool(public)
		}
	}
	return writeAll(m.path, columns, rows)
}

// FileName returns the file_name cell recorded for an experiment, the
// fallback lookup when the database row predates file-name tracking.
func (m *Mirror) FileName(id int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, err := m.readRows()
	if err != nil {
		return "", false
	}
	target := strconv.FormatInt(id, 10)
	for _, row := range rows {
		if len(row) >= len(columns) && row[0] == target {
			return row[fileNameColumn], row[fileNameColumn] != ""
		}
	}
	return "", false
}

// Rebuild regenerates the whole mirror from the database.
func (m *Mirror) Rebuild(ctx context.Context, lister Lister) error {
	details, err := lister.ListExperiments(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(details))
	for _, detail := range details {
		rows = append(rows, projectRow(detail))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return writeAll(m.path, columns, rows)
}

// snapshot copies the current mirror into the snapshot directory before a
// destructive edit.
func (m *Mirror) snapshot(now time.Time) error {
	if m.snapshotDir == "" {
		return nil
	}
	src, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("snapshot mirror: %w", err)
	}
	defer src.Close()
	name := fmt.Sprintf("metadata_backup_%s.csv", now.Format("20060102_150405"))
	dst, err := os.Create(filepath.Join(m.snapshotDir, name))
	if err != nil {
		return fmt.Errorf("snapshot mirror: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("snapshot mirror: %w", err)
	}
	return dst.Close()
}

func (m *Mirror) readRows() ([][]string, error) {
	f, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read mirror: %w", err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read mirror: %w", err)
	}
	if len(all) <= 1 {
		return nil, nil
	}
	return all[1:], nil
}

func (m *Mirror) appendDeleted(row []string) error {
	exists := true
	if _, err := os.Stat(m.deletedPath); os.IsNotExist(err) {
		exists = false
	}
	f, err := os.OpenFile(m.deletedPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open deleted archive: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(deletedColumns); err != nil {
			return fmt.Errorf("write deleted archive: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write deleted archive: %w", err)
	}
	w.Flush()
	return w.Error()
}

func writeAll(path string, header []string, rows [][]string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write mirror: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write mirror: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write mirror: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}
	return nil
}

func projectRow(d bench.ExperimentDetail) []string {
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	num := func(p *float64) string {
		if p == nil {
			return ""
		}
		return strconv.FormatFloat(*p, 'g', -1, 64)
	}
	phased := ""
	if d.IsPhased != nil {
		phased = strconv.FormatBool(*d.IsPhased)
	}
	return []string{
		strconv.FormatInt(d.ID, 10),
		d.Name,
		str(d.Technology),
		str(d.Target),
		str(d.PlatformName),
		str(d.PlatformType),
		str(d.PlatformVersion),
		str(d.ChemistryName),
		str(d.ChemistryVersion),
		str(d.CallerName),
		str(d.CallerType),
		str(d.CallerVersion),
		str(d.CallerModel),
		str(d.AlignerName),
		str(d.AlignerVersion),
		str(d.TruthSetName),
		str(d.TruthSetSample),
		str(d.TruthSetVersion),
		str(d.TruthSetReference),
		str(d.VariantType),
		str(d.VariantSize),
		str(d.VariantOrigin),
		phased,
		str(d.BenchmarkToolName),
		str(d.BenchmarkToolVersion),
		num(d.MeanCoverage),
		num(d.ReadLength),
		num(d.MeanInsertSize),
		num(d.MeanReadLength),
		d.FileName,
		d.CreatedAt.Format("2006-01-02 15:04:05"),
		strconv.FormatBool(d.IsPublic),
		d.OwnerUsername,
	}
}
