// File path: internal/sqlite/experiments.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/snvbench/benchdb/internal/bench"
)

const privateIDFloor = 1000

// AssembleOptions controls identifier allocation during assembly.
type AssembleOptions struct {
	// RequestedID pins the experiment id; a collision is a ConflictError.
	RequestedID *int64
	// PartitionIDs keeps public experiments in 1..999 and private ones at
	// 1000 and above. Off means plain max+1 allocation.
	PartitionIDs bool
	Now          time.Time
}

// AssembleExperiment resolves the metadata record into dimension rows and an
// allocated identifier, returning the experiment ready for insertion. The
// caller sets the file name (it embeds the id) and calls InsertExperiment in
// the same transaction.
func AssembleExperiment(ctx context.Context, tx *sqlx.Tx, meta *bench.Metadata, opts AssembleOptions) (bench.Experiment, error) {
	if err := meta.Validate(); err != nil {
		return bench.Experiment{}, err
	}

	isPublic := meta.IsPublic != nil && *meta.IsPublic
	if !isPublic && meta.OwnerID == nil && meta.OwnerUsername == "" {
		return bench.Experiment{}, &bench.ValidationError{Field: "owner", Reason: "private experiment requires an owner"}
	}

	exp := bench.Experiment{
		Name:          meta.Name,
		Description:   meta.Description,
		IsPublic:      isPublic,
		OwnerUsername: meta.OwnerUsername,
	}
	if !isPublic {
		// Public rows keep owner_id null; attribution stays in the
		// username column.
		exp.OwnerID = meta.OwnerID
	}

	exp.CreatedAt = opts.Now
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}
	if v := meta.CreatedAt; v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			exp.CreatedAt = parsed
		} else if parsed, err := time.Parse("2006-01-02", v); err == nil {
			exp.CreatedAt = parsed
		}
	}

	if err := resolveDimensions(ctx, tx, meta, &exp); err != nil {
		return bench.Experiment{}, err
	}

	id, err := AllocateExperimentID(ctx, tx, opts.RequestedID, isPublic, opts.PartitionIDs)
	if err != nil {
		return bench.Experiment{}, err
	}
	exp.ID = id
	return exp, nil
}

func resolveDimensions(ctx context.Context, tx *sqlx.Tx, meta *bench.Metadata, exp *bench.Experiment) error {
	tech, _ := bench.Resolve(bench.CatTechnology, meta.Technology)
	target := string(bench.TargetWGS)
	if code, ok := bench.Resolve(bench.CatTarget, meta.Target); ok {
		target = code
	}
	platformType := derivePlatformType(tech)
	if code, ok := bench.Resolve(bench.CatPlatformType, meta.PlatformType); ok {
		platformType = code
	}
	seqID, err := GetOrCreateSequencingTechnology(ctx, tx, bench.SequencingTechnology{
		Technology:      tech,
		Target:          target,
		PlatformType:    platformType,
		PlatformName:    meta.PlatformName,
		PlatformVersion: optional(meta.PlatformVersion),
	})
	if err != nil {
		return err
	}
	exp.SequencingTechnologyID = &seqID

	callerName, _ := bench.Resolve(bench.CatCallerName, meta.CallerName)
	if callerName == "" {
		callerName = meta.CallerName
	}
	callerType, _ := bench.Resolve(bench.CatCallerType, meta.CallerType)
	callerID, err := GetOrCreateVariantCaller(ctx, tx, bench.VariantCaller{
		Name:    callerName,
		Type:    callerType,
		Version: meta.CallerVersion,
		Model:   optional(meta.CallerModel),
	})
	if err != nil {
		return err
	}
	exp.VariantCallerID = &callerID

	if provided(meta.AlignerName) {
		alignerID, err := GetOrCreateAligner(ctx, tx, bench.Aligner{
			Name:    meta.AlignerName,
			Version: meta.AlignerVersion,
		})
		if err != nil {
			return err
		}
		exp.AlignerID = &alignerID
	}

	truthName, _ := bench.Resolve(bench.CatTruthSetName, meta.TruthSetName)
	reference, _ := bench.Resolve(bench.CatReference, meta.TruthSetReference)
	sample, _ := bench.Resolve(bench.CatSample, meta.TruthSetSample)
	if sample == "" {
		// Spreadsheet rows that omit the sample are HG002 runs.
		sample = string(bench.SampleHG002)
	}
	truthID, err := GetOrCreateTruthSet(ctx, tx, bench.TruthSet{
		Name:      truthName,
		Version:   meta.TruthSetVersion,
		Reference: reference,
		Sample:    sample,
	})
	if err != nil {
		return err
	}
	exp.TruthSetID = &truthID

	// Uploads rarely name the comparison tool because hap.py is the default
	// pipeline; absent fields fall back to it.
	toolName := string(bench.ToolHappy)
	if provided(meta.BenchmarkToolName) {
		if code, ok := bench.Resolve(bench.CatTool, meta.BenchmarkToolName); ok {
			toolName = code
		} else {
			toolName = meta.BenchmarkToolName
		}
	}
	toolID, err := GetOrCreateBenchmarkTool(ctx, tx, bench.BenchmarkTool{
		Name:    toolName,
		Version: meta.BenchmarkToolVersion,
	})
	if err != nil {
		return err
	}
	exp.BenchmarkToolID = &toolID

	variantType, _ := bench.Resolve(bench.CatVariantType, meta.VariantType)
	if variantType == "" {
		// hap.py reports both classes, so an unstated type means SNP+INDEL.
		variantType = string(bench.VariantSNPINDEL)
	}
	variantSize, _ := bench.Resolve(bench.CatSize, meta.VariantSize)
	variantOrigin, _ := bench.Resolve(bench.CatOrigin, meta.VariantOrigin)
	variantID, err := GetOrCreateVariant(ctx, tx, bench.Variant{
		Type:     variantType,
		Size:     variantSize,
		Origin:   variantOrigin,
		IsPhased: meta.Phased(),
	})
	if err != nil {
		return err
	}
	exp.VariantID = &variantID

	qc := bench.QualityControl{
		MeanCoverage:   bench.ParseFloat(meta.MeanCoverage),
		ReadLength:     bench.ParseFloat(meta.ReadLength),
		MeanReadLength: bench.ParseFloat(meta.MeanReadLength),
		MeanInsertSize: bench.ParseFloat(meta.MeanInsertSize),
	}
	if qc.MeanCoverage != nil || qc.ReadLength != nil || qc.MeanReadLength != nil || qc.MeanInsertSize != nil {
		qcID, err := GetOrCreateQualityControl(ctx, tx, qc)
		if err != nil {
			return err
		}
		exp.QualityControlID = &qcID
	}

	if provided(meta.ChemistryName) {
		chemID, err := GetOrCreateChemistry(ctx, tx, bench.Chemistry{
			Name:       meta.ChemistryName,
			Version:    meta.ChemistryVersion,
			Technology: tech,
			Platform:   meta.PlatformName,
		})
		if err != nil {
			return err
		}
		exp.ChemistryID = &chemID
	}

	return nil
}

// derivePlatformType infers read-length class from the technology when the
// upload does not state one.
func derivePlatformType(technology string) string {
	switch technology {
	case string(bench.TechONT), string(bench.TechPacBio):
		return string(bench.PlatformLRS)
	default:
		return string(bench.PlatformSRS)
	}
}

// provided reports whether a free-text field carries usable content. The
// spreadsheet exports use "no data" and "-" as absence markers.
func provided(value string) bool {
	switch bench.Clean(value) {
	case "", "no data", "nodata", "-", "n/a", "na":
		return false
	}
	return true
}

func optional(value string) *string {
	if !provided(value) {
		return nil
	}
	return &value
}

// AllocateExperimentID returns a free identifier. A requested id that is
// already taken yields a ConflictError. With partitioning on, public ids fill
// the lowest gap in 1..999 and private ids continue above 999.
func AllocateExperimentID(ctx context.Context, tx *sqlx.Tx, requested *int64, isPublic, partition bool) (int64, error) {
	if requested != nil {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM experiments WHERE id = ?)`, *requested); err != nil {
			return 0, fmt.Errorf("check experiment id: %w", err)
		}
		if exists {
			return 0, &bench.ConflictError{Resource: "experiment", ID: *requested}
		}
		return *requested, nil
	}

	if partition && isPublic {
		var taken []int64
		if err := tx.SelectContext(ctx, &taken,
			`SELECT id FROM experiments WHERE id < ? ORDER BY id`, privateIDFloor); err != nil {
			return 0, fmt.Errorf("scan public ids: %w", err)
		}
		next := int64(1)
		for _, id := range taken {
			if id > next {
				break
			}
			next = id + 1
		}
		if next >= privateIDFloor {
			return 0, errors.New("public experiment id range exhausted")
		}
		return next, nil
	}

	var max int64
	if err := tx.GetContext(ctx, &max,
		`SELECT COALESCE(MAX(id), 0) FROM experiments`); err != nil {
		return 0, fmt.Errorf("scan max experiment id: %w", err)
	}
	if partition && max < privateIDFloor-1 {
		max = privateIDFloor - 1
	}
	return max + 1, nil
}

// InsertExperiment writes the assembled row.
func InsertExperiment(ctx context.Context, tx *sqlx.Tx, exp bench.Experiment) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO experiments (
                id, name, description, created_at, is_public, owner_id, owner_username, file_name,
                sequencing_technology_id, variant_caller_id, aligner_id, truth_set_id,
                benchmark_tool_id, variant_id, quality_control_id, chemistry_id
        ) VALUES (
                :id, :name, :description, :created_at, :is_public, :owner_id, :owner_username, :file_name,
                :sequencing_technology_id, :variant_caller_id, :aligner_id, :truth_set_id,
                :benchmark_tool_id, :variant_id, :quality_control_id, :chemistry_id
        )`, exp)
	if err != nil {
		return fmt.Errorf("insert experiment: %w", err)
	}
	return nil
}

const detailColumns = `
        e.id, e.name, e.description, e.created_at, e.is_public, e.owner_id, e.owner_username, e.file_name,
        st.technology, st.target, st.platform_type, st.platform_name, st.platform_version,
        vc.name AS caller_name, vc.type AS caller_type, vc.version AS caller_version, vc.model AS caller_model,
        al.name AS aligner_name, al.version AS aligner_version,
        ts.name AS truth_set_name, ts.sample AS truth_set_sample, ts.version AS truth_set_version, ts.reference AS truth_set_reference,
        bt.name AS benchmark_tool_name, bt.version AS benchmark_tool_version,
        v.type AS variant_type, v.size AS variant_size, v.origin AS variant_origin, v.is_phased,
        qc.mean_coverage, qc.read_length, qc.mean_read_length, qc.mean_insert_size,
        ch.name AS chemistry_name, ch.version AS chemistry_version`

const detailJoins = `
        FROM experiments e
        LEFT JOIN sequencing_technologies st ON st.id = e.sequencing_technology_id
        LEFT JOIN variant_callers vc ON vc.id = e.variant_caller_id
        LEFT JOIN aligners al ON al.id = e.aligner_id
        LEFT JOIN truth_sets ts ON ts.id = e.truth_set_id
        LEFT JOIN benchmark_tools bt ON bt.id = e.benchmark_tool_id
        LEFT JOIN variants v ON v.id = e.variant_id
        LEFT JOIN quality_controls qc ON qc.id = e.quality_control_id
        LEFT JOIN chemistries ch ON ch.id = e.chemistry_id`

// GetExperiment returns the flattened view of one experiment.
func (s *Store) GetExperiment(ctx context.Context, id int64) (bench.ExperimentDetail, error) {
	var detail bench.ExperimentDetail
	query := `SELECT` + detailColumns + detailJoins + ` WHERE e.id = ?`
	if err := s.db.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bench.ExperimentDetail{}, &bench.NotFoundError{ID: id}
		}
		return bench.ExperimentDetail{}, fmt.Errorf("get experiment %d: %w", id, err)
	}
	return detail, nil
}

// GetExperimentTx is GetExperiment inside an open transaction.
func GetExperimentTx(ctx context.Context, tx *sqlx.Tx, id int64) (bench.ExperimentDetail, error) {
	var detail bench.ExperimentDetail
	query := `SELECT` + detailColumns + detailJoins + ` WHERE e.id = ?`
	if err := tx.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bench.ExperimentDetail{}, &bench.NotFoundError{ID: id}
		}
		return bench.ExperimentDetail{}, fmt.Errorf("get experiment %d: %w", id, err)
	}
	return detail, nil
}

// ListExperiments returns all experiments in id order.
func (s *Store) ListExperiments(ctx context.Context) ([]bench.ExperimentDetail, error) {
	var details []bench.ExperimentDetail
	query := `SELECT` + detailColumns + detailJoins + ` ORDER BY e.id`
	if err := s.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	return details, nil
}

// DeleteExperimentTx removes an experiment and its result rows, children
// first. The declared FK cascade is the backstop, not the mechanism.
func DeleteExperimentTx(ctx context.Context, tx *sqlx.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM benchmark_results WHERE experiment_id = ?`, id); err != nil {
		return fmt.Errorf("delete benchmark results: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM overall_results WHERE experiment_id = ?`, id); err != nil {
		return fmt.Errorf("delete overall results: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM experiments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete experiment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete experiment: %w", err)
	}
	if affected == 0 {
		return &bench.NotFoundError{ID: id}
	}
	return nil
}

// SetVisibilityTx flips the public flag. Switching to public nulls the owner
// reference while keeping the username for attribution.
func SetVisibilityTx(ctx context.Context, tx *sqlx.Tx, id int64, public bool) error {
	var res sql.Result
	var err error
	if public {
		res, err = tx.ExecContext(ctx,
			`UPDATE experiments SET is_public = 1, owner_id = NULL WHERE id = ?`, id)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE experiments SET is_public = 0 WHERE id = ?`, id)
	}
	if err != nil {
		return fmt.Errorf("set visibility: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set visibility: %w", err)
	}
	if affected == 0 {
		return &bench.NotFoundError{ID: id}
	}
	return nil
}

// SetFileNameTx records the generated result-file name after allocation.
func SetFileNameTx(ctx context.Context, tx *sqlx.Tx, id int64, fileName string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE experiments SET file_name = ? WHERE id = ?`, fileName, id); err != nil {
		return fmt.Errorf("set file name: %w", err)
	}
	return nil
}
