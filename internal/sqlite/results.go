// File path: internal/sqlite/results.go
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/snvbench/benchdb/internal/bench"
)

// HasResultsTx reports whether result rows already exist for the experiment,
// the idempotency guard for repeated parses of the same file.
func HasResultsTx(ctx context.Context, tx *sqlx.Tx, experimentID int64) (bool, error) {
	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(
                        SELECT 1 FROM benchmark_results WHERE experiment_id = ?
                        UNION
                        SELECT 1 FROM overall_results WHERE experiment_id = ?
                )`, experimentID, experimentID); err != nil {
		return false, fmt.Errorf("check results: %w", err)
	}
	return exists, nil
}

// InsertOverallResults writes the whole-genome summary rows.
func InsertOverallResults(ctx context.Context, tx *sqlx.Tx, rows []bench.OverallResult) error {
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO overall_results (
                        experiment_id, variant_type,
                        metric_recall, metric_precision, metric_f1_score,
                        truth_total, truth_tp, truth_fn,
                        query_total, query_tp, query_fp
                ) VALUES (
                        :experiment_id, :variant_type,
                        :metric_recall, :metric_precision, :metric_f1_score,
                        :truth_total, :truth_tp, :truth_fn,
                        :query_total, :query_tp, :query_fp
                )`, row); err != nil {
			return fmt.Errorf("insert overall result: %w", err)
		}
	}
	return nil
}

// InsertBenchmarkResults writes the stratified rows.
func InsertBenchmarkResults(ctx context.Context, tx *sqlx.Tx, rows []bench.BenchmarkResult) error {
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO benchmark_results (
                        experiment_id, variant_type, subtype, subset, filter_type,
                        metric_recall, metric_precision, metric_f1_score,
                        subset_size, subset_is_conf_size,
                        truth_total, truth_total_het, truth_total_homalt,
                        truth_tp, truth_tp_het, truth_tp_homalt,
                        truth_fn, truth_fn_het, truth_fn_homalt,
                        query_total, query_total_het, query_total_homalt,
                        query_tp, query_tp_het, query_tp_homalt,
                        query_fp, query_fp_het, query_fp_homalt,
                        query_unk, query_unk_het, query_unk_homalt
                ) VALUES (
                        :experiment_id, :variant_type, :subtype, :subset, :filter_type,
                        :metric_recall, :metric_precision, :metric_f1_score,
                        :subset_size, :subset_is_conf_size,
                        :truth_total, :truth_total_het, :truth_total_homalt,
                        :truth_tp, :truth_tp_het, :truth_tp_homalt,
                        :truth_fn, :truth_fn_het, :truth_fn_homalt,
                        :query_total, :query_total_het, :query_total_homalt,
                        :query_tp, :query_tp_het, :query_tp_homalt,
                        :query_fp, :query_fp_het, :query_fp_homalt,
                        :query_unk, :query_unk_het, :query_unk_homalt
                )`, row); err != nil {
			return fmt.Errorf("insert benchmark result: %w", err)
		}
	}
	return nil
}

// OverallResults returns the summary rows for one experiment.
func (s *Store) OverallResults(ctx context.Context, experimentID int64) ([]bench.OverallResult, error) {
	var rows []bench.OverallResult
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM overall_results WHERE experiment_id = ? ORDER BY variant_type`,
		experimentID); err != nil {
		return nil, fmt.Errorf("select overall results: %w", err)
	}
	return rows, nil
}

// BenchmarkResults returns the stratified rows for one experiment.
func (s *Store) BenchmarkResults(ctx context.Context, experimentID int64) ([]bench.BenchmarkResult, error) {
	var rows []bench.BenchmarkResult
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM benchmark_results WHERE experiment_id = ? ORDER BY variant_type, subset`,
		experimentID); err != nil {
		return nil, fmt.Errorf("select benchmark results: %w", err)
	}
	return rows, nil
}
