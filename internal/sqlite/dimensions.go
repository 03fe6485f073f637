// File path: internal/sqlite/dimensions.go
package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/snvbench/benchdb/internal/bench"
)

// Dimension rows are deduplicated by a normalized natural key computed here.
// Each get-or-create runs INSERT ... ON CONFLICT DO NOTHING followed by a
// SELECT of the surviving row, so concurrent transactions converge on one id
// with the unique index as the backstop.

func natKey(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = bench.Clean(p)
	}
	return strings.Join(normalized, "|")
}

func floatKey(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

// GetOrCreateSequencingTechnology returns the id of the matching technology
// row, inserting it when absent.
func GetOrCreateSequencingTechnology(ctx context.Context, tx *sqlx.Tx, row bench.SequencingTechnology) (int64, error) {
	key := natKey(row.Technology, row.Target, row.PlatformType, row.PlatformName)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sequencing_technologies (nat_key, technology, target, platform_type, platform_name, platform_version)
                 VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT(nat_key) DO NOTHING`,
		key, row.Technology, row.Target, row.PlatformType, row.PlatformName, row.PlatformVersion); err != nil {
		return 0, fmt.Errorf("insert sequencing technology: %w", err)
	}
	return selectDimensionID(ctx, tx, "sequencing_technologies", key)
}

func GetOrCreateVariantCaller(ctx context.Context, tx *sqlx.Tx, row bench.VariantCaller) (int64, error) {
	key := natKey(row.Name, row.Type, row.Version)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO variant_callers (nat_key, name, type, version, model)
                 VALUES (?, ?, ?, ?, ?) ON CONFLICT(nat_key) DO NOTHING`,
		key, row.Name, row.Type, row.Version, row.Model); err != nil {
		return 0, fmt.Errorf("insert variant caller: %w", err)
	}
	return selectDimensionID(ctx, tx, "variant_callers", key)
}

func GetOrCreateAligner(ctx context.Context, tx *sqlx.Tx, row bench.Aligner) (int64, error) {
	key := natKey(row.Name, row.Version)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO aligners (nat_key, name, version)
                 VALUES (?, ?, ?) ON CONFLICT(nat_key) DO NOTHING`,
		key, row.Name, row.Version); err != nil {
		return 0, fmt.Errorf("insert aligner: %w", err)
	}
	return selectDimensionID(ctx, tx, "aligners", key)
}

func GetOrCreateTruthSet(ctx context.Context, tx *sqlx.Tx, row bench.TruthSet) (int64, error) {
	key := natKey(row.Name, row.Version, row.Reference, row.Sample)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO truth_sets (nat_key, name, version, reference, sample)
                 VALUES (?, ?, ?, ?, ?) ON CONFLICT(nat_key) DO NOTHING`,
		key, row.Name, row.Version, row.Reference, row.Sample); err != nil {
		return 0, fmt.Errorf("insert truth set: %w", err)
	}
	return selectDimensionID(ctx, tx, "truth_sets", key)
}

func GetOrCreateBenchmarkTool(ctx context.Context, tx *sqlx.Tx, row bench.BenchmarkTool) (int64, error) {
	key := natKey(row.Name, row.Version)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO benchmark_tools (nat_key, name, version)
                 VALUES (?, ?, ?) ON CONFLICT(nat_key) DO NOTHING`,
		key, row.Name, row.Version); err != nil {
		return 0, fmt.Errorf("insert benchmark tool: %w", err)
	}
	return selectDimensionID(ctx, tx, "benchmark_tools", key)
}

func GetOrCreateVariant(ctx context.Context, tx *sqlx.Tx, row bench.Variant) (int64, error) {
	phased := "0"
	if row.IsPhased {
		phased = "1"
	}
	key := natKey(row.Type, row.Size, row.Origin, phased)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO variants (nat_key, type, size, origin, is_phased)
                 VALUES (?, ?, ?, ?, ?) ON CONFLICT(nat_key) DO NOTHING`,
		key, row.Type, row.Size, row.Origin, row.IsPhased); err != nil {
		return 0, fmt.Errorf("insert variant: %w", err)
	}
	return selectDimensionID(ctx, tx, "variants", key)
}

func GetOrCreateQualityControl(ctx context.Context, tx *sqlx.Tx, row bench.QualityControl) (int64, error) {
	key := natKey(floatKey(row.MeanCoverage), floatKey(row.ReadLength), floatKey(row.MeanReadLength), floatKey(row.MeanInsertSize))
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quality_controls (nat_key, mean_coverage, read_length, mean_read_length, mean_insert_size)
                 VALUES (?, ?, ?, ?, ?) ON CONFLICT(nat_key) DO NOTHING`,
		key, row.MeanCoverage, row.ReadLength, row.MeanReadLength, row.MeanInsertSize); err != nil {
		return 0, fmt.Errorf("insert quality control: %w", err)
	}
	return selectDimensionID(ctx, tx, "quality_controls", key)
}

func GetOrCreateChemistry(ctx context.Context, tx *sqlx.Tx, row bench.Chemistry) (int64, error) {
	key := natKey(row.Name, row.Version, row.Technology, row.Platform)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chemistries (nat_key, name, version, technology, platform)
                 VALUES (?, ?, ?, ?, ?) ON CONFLICT(nat_key) DO NOTHING`,
		key, row.Name, row.Version, row.Technology, row.Platform); err != nil {
		return 0, fmt.Errorf("insert chemistry: %w", err)
	}
	return selectDimensionID(ctx, tx, "chemistries", key)
}

func selectDimensionID(ctx context.Context, tx *sqlx.Tx, table, key string) (int64, error) {
	var id int64
	query := fmt.Sprintf(`SELECT id FROM %s WHERE nat_key = ?`, table)
	if err := tx.GetContext(ctx, &id, query, key); err != nil {
		return 0, fmt.Errorf("select %s id: %w", table, err)
	}
	return id, nil
}
