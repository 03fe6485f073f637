// File path: internal/bench/enums.go
package bench

import "strings"

// The closed category code sets for benchmarking metadata. Every package that
// needs a category string imports it from here; nothing else declares one.

type Technology string

const (
	TechIllumina Technology = "ILLUMINA"
	TechMGI      Technology = "MGI"
	TechONT      Technology = "ONT"
	TechPacBio   Technology = "PACBIO"
	TechTenX     Technology = "TENX"
)

type Target string

const (
	TargetWGS Target = "WGS"
	TargetWES Target = "WES"
)

type PlatformType string

const (
	PlatformSRS PlatformType = "SRS"
	PlatformLRS PlatformType = "LRS"
)

type CallerName string

const (
	CallerDeepVariant CallerName = "DEEPVARIANT"
	CallerGATK        CallerName = "GATK"
	CallerClair3      CallerName = "CLAIR3"
)

type CallerType string

const (
	CallerML          CallerType = "ML"
	CallerTraditional CallerType = "TRADITIONAL"
)

type TruthSetName string

const (
	TruthSetGIAB TruthSetName = "GIAB"
	TruthSetCMRG TruthSetName = "CMRG"
	TruthSetT2T  TruthSetName = "T2T"
)

type Reference string

const (
	RefGRCh37 Reference = "GRCH37"
	RefGRCh38 Reference = "GRCH38"
)

type Sample string

const (
	SampleHG001   Sample = "HG001"
	SampleHG002   Sample = "HG002"
	SampleHG003   Sample = "HG003"
	SampleHG004   Sample = "HG004"
	SampleHCC1395 Sample = "HCC1395"
)

type VariantOrigin string

const (
	OriginGermline VariantOrigin = "GERMLINE"
	OriginSomatic  VariantOrigin = "SOMATIC"
)

type VariantSize string

const (
	SizeSmall VariantSize = "SMALL"
	SizeLarge VariantSize = "LARGE"
)

type VariantType string

const (
	VariantSNP      VariantType = "SNP"
	VariantINDEL    VariantType = "INDEL"
	VariantDEL      VariantType = "DEL"
	VariantINS      VariantType = "INS"
	VariantSNPINDEL VariantType = "SNPINDEL"
)

type ToolName string

const (
	ToolHappy   ToolName = "HAPPY"
	ToolVcfdist ToolName = "VCFDIST"
	ToolTruvari ToolName = "TRUVARI"
)

// Category names a closed code set for alias resolution and validation.
type Category string

const (
	CatTechnology   Category = "technology"
	CatTarget       Category = "target"
	CatPlatformType Category = "platform_type"
	CatCallerName   Category = "caller_name"
	CatCallerType   Category = "caller_type"
	CatTruthSetName Category = "truth_set_name"
	CatReference    Category = "truth_set_reference"
	CatSample       Category = "truth_set_sample"
	CatOrigin       Category = "variant_origin"
	CatSize         Category = "variant_size"
	CatVariantType  Category = "variant_type"
	CatTool         Category = "benchmark_tool_name"
)

// aliases carries the historical and alternate spellings that do not follow
// from a code's own name. Add new aliases here, not at call sites.
var aliases = map[Category]map[string]string{
	CatTechnology: {
		"10x genomics": string(TechTenX),
		"10x":          string(TechTenX),
	},
	CatTool: {
		"hap.py": string(ToolHappy),
		"happy":  string(ToolHappy),
	},
	CatVariantType: {
		"snp+indel": string(VariantSNPINDEL),
		"snpindel":  string(VariantSNPINDEL),
	},
}

var members = map[Category][]string{
	CatTechnology:   {string(TechIllumina), string(TechMGI), string(TechONT), string(TechPacBio), string(TechTenX)},
	CatTarget:       {string(TargetWGS), string(TargetWES)},
	CatPlatformType: {string(PlatformSRS), string(PlatformLRS)},
	CatCallerName:   {string(CallerDeepVariant), string(CallerGATK), string(CallerClair3)},
	CatCallerType:   {string(CallerML), string(CallerTraditional)},
	CatTruthSetName: {string(TruthSetGIAB), string(TruthSetCMRG), string(TruthSetT2T)},
	CatReference:    {string(RefGRCh37), string(RefGRCh38)},
	CatSample:       {string(SampleHG001), string(SampleHG002), string(SampleHG003), string(SampleHG004), string(SampleHCC1395)},
	CatOrigin:       {string(OriginGermline), string(OriginSomatic)},
	CatSize:         {string(SizeSmall), string(SizeLarge)},
	CatVariantType:  {string(VariantSNP), string(VariantINDEL), string(VariantDEL), string(VariantINS), string(VariantSNPINDEL)},
	CatTool:         {string(ToolHappy), string(ToolVcfdist), string(ToolTruvari)},
}

var lookup = buildLookup()

func buildLookup() map[Category]map[string]string {
	out := make(map[Category]map[string]string, len(members))
	for cat, codes := range members {
		table := make(map[string]string, len(codes)+len(aliases[cat]))
		for _, code := range codes {
			table[strings.ToLower(code)] = code
		}
		for alias, code := range aliases[cat] {
			table[strings.ToLower(alias)] = code
		}
		out[cat] = table
	}
	return out
}

// Resolve maps a free-text category value to its canonical code,
// case/whitespace insensitively. The second return reports whether the value
// was recognized; callers decide whether an unrecognized value is fatal.
func Resolve(cat Category, value string) (string, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	if cleaned == "" {
		return "", false
	}
	table, ok := lookup[cat]
	if !ok {
		return "", false
	}
	code, ok := table[cleaned]
	return code, ok
}

// Codes returns the canonical code set of a category, for validation messages.
func Codes(cat Category) []string {
	out := make([]string, len(members[cat]))
	copy(out, members[cat])
	return out
}
