// File path: internal/bench/records.go
package bench

import "time"

// Plain row records for the normalized schema. The store takes and returns
// these by value; references between tables are integer identifiers, never
// object graphs.

// SequencingTechnology is one deduplicated technology/platform combination.
type SequencingTechnology struct {
	ID              int64   `db:"id"`
	Technology      string  `db:"technology"`
	Target          string  `db:"target"`
	PlatformType    string  `db:"platform_type"`
	PlatformName    string  `db:"platform_name"`
	PlatformVersion *string `db:"platform_version"`
}

// VariantCaller is one caller name/type/version combination.
type VariantCaller struct {
	ID      int64   `db:"id"`
	Name    string  `db:"name"`
	Type    string  `db:"type"`
	Version string  `db:"version"`
	Model   *string `db:"model"`
}

type Aligner struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Version string `db:"version"`
}

type TruthSet struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Version   string `db:"version"`
	Reference string `db:"reference"`
	Sample    string `db:"sample"`
}

type BenchmarkTool struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Version string `db:"version"`
}

type Variant struct {
	ID       int64  `db:"id"`
	Type     string `db:"type"`
	Size     string `db:"size"`
	Origin   string `db:"origin"`
	IsPhased bool   `db:"is_phased"`
}

// QualityControl has no string natural key; two experiments with identical
// metrics legitimately share one row.
type QualityControl struct {
	ID             int64    `db:"id"`
	MeanCoverage   *float64 `db:"mean_coverage"`
	ReadLength     *float64 `db:"read_length"`
	MeanReadLength *float64 `db:"mean_read_length"`
	MeanInsertSize *float64 `db:"mean_insert_size"`
}

type Chemistry struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Version    string `db:"version"`
	Technology string `db:"technology"`
	Platform   string `db:"platform"`
}

// Experiment is the central fact row. Nil dimension references mean the
// optional dimension was not provided.
type Experiment struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	IsPublic    bool      `db:"is_public"`
	// OwnerID stays nil on public experiments by convention even when an
	// owning user exists; attribution then lives in OwnerUsername only.
	OwnerID       *int64 `db:"owner_id"`
	OwnerUsername string `db:"owner_username"`
	FileName      string `db:"file_name"`

	SequencingTechnologyID *int64 `db:"sequencing_technology_id"`
	VariantCallerID        *int64 `db:"variant_caller_id"`
	AlignerID              *int64 `db:"aligner_id"`
	TruthSetID             *int64 `db:"truth_set_id"`
	BenchmarkToolID        *int64 `db:"benchmark_tool_id"`
	VariantID              *int64 `db:"variant_id"`
	QualityControlID       *int64 `db:"quality_control_id"`
	ChemistryID            *int64 `db:"chemistry_id"`
}

// OverallResult is the whole-genome fast-path row, one per experiment and
// variant type.
type OverallResult struct {
	ID           int64  `db:"id"`
	ExperimentID int64  `db:"experiment_id"`
	VariantType  string `db:"variant_type"`

	MetricRecall    *float64 `db:"metric_recall"`
	MetricPrecision *float64 `db:"metric_precision"`
	MetricF1Score   *float64 `db:"metric_f1_score"`

	TruthTotal *int64 `db:"truth_total"`
	TruthTP    *int64 `db:"truth_tp"`
	TruthFN    *int64 `db:"truth_fn"`
	QueryTotal *int64 `db:"query_total"`
	QueryTP    *int64 `db:"query_tp"`
	QueryFP    *int64 `db:"query_fp"`
}

// BenchmarkResult is one stratified row per experiment, variant type and
// region code.
type BenchmarkResult struct {
	ID           int64  `db:"id"`
	ExperimentID int64  `db:"experiment_id"`
	VariantType  string `db:"variant_type"`
	Subtype      string `db:"subtype"`
	Subset       Region `db:"subset"`
	FilterType   string `db:"filter_type"`

	MetricRecall    *float64 `db:"metric_recall"`
	MetricPrecision *float64 `db:"metric_precision"`
	MetricF1Score   *float64 `db:"metric_f1_score"`

	SubsetSize       *float64 `db:"subset_size"`
	SubsetIsConfSize *float64 `db:"subset_is_conf_size"`

	TruthTotal       *int64 `db:"truth_total"`
	TruthTotalHet    *int64 `db:"truth_total_het"`
	TruthTotalHomalt *int64 `db:"truth_total_homalt"`
	TruthTP          *int64 `db:"truth_tp"`
	TruthTPHet       *int64 `db:"truth_tp_het"`
	TruthTPHomalt    *int64 `db:"truth_tp_homalt"`
	TruthFN          *int64 `db:"truth_fn"`
	TruthFNHet       *int64 `db:"truth_fn_het"`
	TruthFNHomalt    *int64 `db:"truth_fn_homalt"`
	QueryTotal       *int64 `db:"query_total"`
	QueryTotalHet    *int64 `db:"query_total_het"`
	QueryTotalHomalt *int64 `db:"query_total_homalt"`
	QueryTP          *int64 `db:"query_tp"`
	QueryTPHet       *int64 `db:"query_tp_het"`
	QueryTPHomalt    *int64 `db:"query_tp_homalt"`
	QueryFP          *int64 `db:"query_fp"`
	QueryFPHet       *int64 `db:"query_fp_het"`
	QueryFPHomalt    *int64 `db:"query_fp_homalt"`
	QueryUnk         *int64 `db:"query_unk"`
	QueryUnkHet      *int64 `db:"query_unk_het"`
	QueryUnkHomalt   *int64 `db:"query_unk_homalt"`
}

// ExperimentDetail is the flattened read model of one experiment joined with
// its dimension values, used for API reads and the CSV mirror projection.
type ExperimentDetail struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	CreatedAt     time.Time `db:"created_at"`
	IsPublic      bool      `db:"is_public"`
	OwnerID       *int64    `db:"owner_id"`
	OwnerUsername string    `db:"owner_username"`
	FileName      string    `db:"file_name"`

	Technology      *string `db:"technology"`
	Target          *string `db:"target"`
	PlatformType    *string `db:"platform_type"`
	PlatformName    *string `db:"platform_name"`
	PlatformVersion *string `db:"platform_version"`

	CallerName    *string `db:"caller_name"`
	CallerType    *string `db:"caller_type"`
	CallerVersion *string `db:"caller_version"`
	CallerModel   *string `db:"caller_model"`

	AlignerName    *string `db:"aligner_name"`
	AlignerVersion *string `db:"aligner_version"`

	TruthSetName      *string `db:"truth_set_name"`
	TruthSetSample    *string `db:"truth_set_sample"`
	TruthSetVersion   *string `db:"truth_set_version"`
	TruthSetReference *string `db:"truth_set_reference"`

	BenchmarkToolName    *string `db:"benchmark_tool_name"`
	BenchmarkToolVersion *string `db:"benchmark_tool_version"`

	VariantType   *string `db:"variant_type"`
	VariantSize   *string `db:"variant_size"`
	VariantOrigin *string `db:"variant_origin"`
	IsPhased      *bool   `db:"is_phased"`

	MeanCoverage   *float64 `db:"mean_coverage"`
	ReadLength     *float64 `db:"read_length"`
	MeanReadLength *float64 `db:"mean_read_length"`
	MeanInsertSize *float64 `db:"mean_insert_size"`

	ChemistryName    *string `db:"chemistry_name"`
	ChemistryVersion *string `db:"chemistry_version"`
}
