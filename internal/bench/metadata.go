// File path: internal/bench/metadata.go
package bench

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Metadata is one raw experiment description as received from a spreadsheet
// row or the upload form. Category fields carry free text; the resolver maps
// them to codes during assembly. Zero values mean "not provided".
type Metadata struct {
	Name        string `json:"exp_name"`
	Description string `json:"description"`

	Technology      string `json:"technology"`
	Target          string `json:"target"`
	PlatformName    string `json:"platform_name"`
	PlatformType    string `json:"platform_type"`
	PlatformVersion string `json:"platform_version"`

	ChemistryName    string `json:"chemistry_name"`
	ChemistryVersion string `json:"chemistry_version"`

	CallerName    string `json:"caller_name"`
	CallerType    string `json:"caller_type"`
	CallerVersion string `json:"caller_version"`
	CallerModel   string `json:"caller_model"`

	AlignerName    string `json:"aligner_name"`
	AlignerVersion string `json:"aligner_version"`

	TruthSetName      string `json:"truth_set_name"`
	TruthSetSample    string `json:"truth_set_sample"`
	TruthSetVersion   string `json:"truth_set_version"`
	TruthSetReference string `json:"truth_set_reference"`

	VariantType   string `json:"variant_type"`
	VariantSize   string `json:"variant_size"`
	VariantOrigin string `json:"variant_origin"`
	IsPhased      string `json:"is_phased"`

	BenchmarkToolName    string `json:"benchmark_tool_name"`
	BenchmarkToolVersion string `json:"benchmark_tool_version"`

	MeanCoverage   string `json:"mean_coverage"`
	ReadLength     string `json:"read_length"`
	MeanReadLength string `json:"mean_read_length"`
	MeanInsertSize string `json:"mean_insert_size"`

	CreatedAt     string `json:"created_at"`
	OwnerID       *int64 `json:"owner_id"`
	OwnerUsername string `json:"owner_username"`
	IsPublic      *bool  `json:"is_public"`
}

// requiredCategories are the enumerated fields whose values must resolve for
// an upload to be accepted. Optional categories are treated as absent when
// unrecognized.
var requiredCategories = []struct {
	field string
	cat   Category
	get   func(*Metadata) string
}{
	{"technology", CatTechnology, func(m *Metadata) string { return m.Technology }},
	{"caller_name", CatCallerName, func(m *Metadata) string { return m.CallerName }},
	{"caller_type", CatCallerType, func(m *Metadata) string { return m.CallerType }},
	{"truth_set_name", CatTruthSetName, func(m *Metadata) string { return m.TruthSetName }},
}

// Validate checks required fields and required category values, accumulating
// every problem so the caller sees them all at once. A nil return means the
// record is ingestible.
func (m *Metadata) Validate() error {
	var result *multierror.Error

	required := []struct{ field, value string }{
		{"exp_name", m.Name},
		{"technology", m.Technology},
		{"platform_name", m.PlatformName},
		{"caller_name", m.CallerName},
		{"caller_version", m.CallerVersion},
		{"caller_type", m.CallerType},
		{"mean_coverage", m.MeanCoverage},
		{"truth_set_name", m.TruthSetName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			result = multierror.Append(result, &ValidationError{Field: r.field, Reason: "required field is missing"})
		}
	}

	for _, rc := range requiredCategories {
		value := strings.TrimSpace(rc.get(m))
		if value == "" {
			continue // already reported as missing above where required
		}
		if _, ok := Resolve(rc.cat, value); !ok {
			result = multierror.Append(result, &ValidationError{
				Field:  rc.field,
				Reason: fmt.Sprintf("unrecognized value %q (expected one of %s)", value, strings.Join(Codes(rc.cat), ", ")),
			})
		}
	}

	if v := strings.TrimSpace(m.MeanCoverage); v != "" {
		if ParseFloat(v) == nil {
			result = multierror.Append(result, &ValidationError{Field: "mean_coverage", Reason: fmt.Sprintf("not numeric: %q", v)})
		}
	}

	return result.ErrorOrNil()
}

// Sample returns the sample component of the experiment name, the token
// before the first underscore, used in the generated result-file name.
func (m *Metadata) Sample() string {
	name := strings.TrimSpace(m.Name)
	if idx := strings.Index(name, "_"); idx > 0 {
		return name[:idx]
	}
	return name
}

// Phased interprets the free-text phasing flag.
func (m *Metadata) Phased() bool {
	return strings.EqualFold(strings.TrimSpace(m.IsPhased), "true")
}

// ParseFloat converts a free-text numeric value, tolerating comma thousands
// separators. Non-numeric or empty input yields nil rather than an error.
func ParseFloat(value string) *float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseInt converts a free-text count value, accepting float renderings of
// whole numbers ("1523.0") the way benchmark tools emit them.
func ParseInt(value string) *int64 {
	f := ParseFloat(value)
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

// Clean trims a value and lowercases it for use in normalized comparisons and
// generated file names.
func Clean(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
