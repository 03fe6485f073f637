// File path: internal/happy/parser.go

// Package happy reads hap.py extended CSV output and projects it onto the
// benchmark result rows the catalog stores.
package happy

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/snvbench/benchdb/internal/bench"
)

// requiredColumns must be present in the header; metric and count columns are
// optional and coerce to NULL when absent.
var requiredColumns = []string{"Type", "Subtype", "Subset", "Filter"}

// ParseResult carries the retained rows of one result file plus the region
// labels that were skipped as unrecognized.
type ParseResult struct {
	Benchmark []bench.BenchmarkResult
	Overall   []bench.OverallResult
	Skipped   []string
}

// ParseFile parses the hap.py CSV at path for the given experiment.
func ParseFile(path string, experimentID int64) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result file: %w", err)
	}
	defer f.Close()
	return Parse(f, experimentID)
}

// Parse reads a hap.py CSV stream. Rows are retained when Subtype is "*" and
// Filter is "ALL"; rows whose Subset label does not resolve to a known region
// are skipped. Zero retained rows is a validation failure: the file is not a
// usable hap.py export.
func Parse(r io.Reader, experimentID int64) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, &bench.ValidationError{Field: "result_file", Reason: "empty or unreadable CSV"}
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, &bench.ValidationError{Field: "result_file", Reason: fmt.Sprintf("missing column %q", name)}
		}
	}

	result := &ParseResult{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read result row: %w", err)
		}
		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		if field("Subtype") != "*" || field("Filter") != "ALL" {
			continue
		}

		region, ok := bench.ParseRegion(field("Subset"))
		if !ok {
			result.Skipped = append(result.Skipped, field("Subset"))
			continue
		}

		row := bench.BenchmarkResult{
			ExperimentID: experimentID,
			VariantType:  field("Type"),
			Subtype:      "ALL_SUBTYPES",
			Subset:       region,
			FilterType:   field("Filter"),

			MetricRecall:    bench.ParseFloat(field("METRIC.Recall")),
			MetricPrecision: bench.ParseFloat(field("METRIC.Precision")),
			MetricF1Score:   bench.ParseFloat(field("METRIC.F1_Score")),

			SubsetSize:       bench.ParseFloat(field("Subset.Size")),
			SubsetIsConfSize: bench.ParseFloat(field("Subset.IS_CONF.Size")),

			TruthTotal:       bench.ParseInt(field("TRUTH.TOTAL")),
			TruthTotalHet:    bench.ParseInt(field("TRUTH.TOTAL.het")),
			TruthTotalHomalt: bench.ParseInt(field("TRUTH.TOTAL.homalt")),
			TruthTP:          bench.ParseInt(field("TRUTH.TP")),
			TruthTPHet:       bench.ParseInt(field("TRUTH.TP.het")),
			TruthTPHomalt:    bench.ParseInt(field("TRUTH.TP.homalt")),
			TruthFN:          bench.ParseInt(field("TRUTH.FN")),
			TruthFNHet:       bench.ParseInt(field("TRUTH.FN.het")),
			TruthFNHomalt:    bench.ParseInt(field("TRUTH.FN.homalt")),
			QueryTotal:       bench.ParseInt(field("QUERY.TOTAL")),
			QueryTotalHet:    bench.ParseInt(field("QUERY.TOTAL.het")),
			QueryTotalHomalt: bench.ParseInt(field("QUERY.TOTAL.homalt")),
			QueryTP:          bench.ParseInt(field("QUERY.TP")),
			QueryTPHet:       bench.ParseInt(field("QUERY.TP.het")),
			QueryTPHomalt:    bench.ParseInt(field("QUERY.TP.homalt")),
			QueryFP:          bench.ParseInt(field("QUERY.FP")),
			QueryFPHet:       bench.ParseInt(field("QUERY.FP.het")),
			QueryFPHomalt:    bench.ParseInt(field("QUERY.FP.homalt")),
			QueryUnk:         bench.ParseInt(field("QUERY.UNK")),
			QueryUnkHet:      bench.ParseInt(field("QUERY.UNK.het")),
			QueryUnkHomalt:   bench.ParseInt(field("QUERY.UNK.homalt")),
		}
		result.Benchmark = append(result.Benchmark, row)

		// Whole-genome rows feed the summary table read by the
		// dashboard's fast path.
		if region == bench.RegionAll {
			result.Overall = append(result.Overall, bench.OverallResult{
				ExperimentID:    experimentID,
				VariantType:     row.VariantType,
				MetricRecall:    row.MetricRecall,
				MetricPrecision: row.MetricPrecision,
				MetricF1Score:   row.MetricF1Score,
				TruthTotal:      row.TruthTotal,
				TruthTP:         row.TruthTP,
				TruthFN:         row.TruthFN,
				QueryTotal:      row.QueryTotal,
				QueryTP:         row.QueryTP,
				QueryFP:         row.QueryFP,
			})
		}
	}

	if len(result.Benchmark) == 0 {
		return nil, &bench.ValidationError{Field: "result_file", Reason: `no rows with Subtype "*" and Filter "ALL"`}
	}
	return result, nil
}

// Validate checks that a stream is a parseable hap.py export without
// retaining its rows, used before any upload side effect.
func Validate(r io.Reader) error {
	_, err := Parse(r, 0)
	return err
}
