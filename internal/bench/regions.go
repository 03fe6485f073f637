// File path: internal/bench/regions.go
package bench

import "strings"

// Region is one member of the closed set of genome-region classifications
// used to stratify benchmark results.
type Region string

const (
	RegionAll              Region = "ALL"
	RegionEasy             Region = "EASY"
	RegionDifficult        Region = "DIFFICULT"
	RegionGCVeryLow        Region = "GC_VERY_LOW"
	RegionGC15to20         Region = "GC_15_20"
	RegionGC20to25         Region = "GC_20_25"
	RegionGC25to30         Region = "GC_25_30"
	RegionGC30to55         Region = "GC_30_55"
	RegionGC55to60         Region = "GC_55_60"
	RegionGC60to65         Region = "GC_60_65"
	RegionGC65to70         Region = "GC_65_70"
	RegionGC70to75         Region = "GC_70_75"
	RegionGC75to80         Region = "GC_75_80"
	RegionGC80to85         Region = "GC_80_85"
	RegionGCVeryHigh       Region = "GC_VERY_HIGH"
	RegionRefSeqCDS        Region = "REFSEQ_CDS"
	RegionNotInCDS         Region = "NOT_IN_CDS"
	RegionSegDup           Region = "SEGDUP"
	RegionHomopolymer4to6  Region = "HOMOPOLYMER_4TO6"
	RegionHomopolymer7to11 Region = "HOMOPOLYMER_7TO11"
	RegionHomopolymerGT11  Region = "HOMOPOLYMER_GT11"
	RegionLowMappability   Region = "LOW_MAPPABILITY"
	RegionMHC              Region = "MHC"
	RegionTSBoundary       Region = "TS_BOUNDARY"
	RegionTSContained      Region = "TS_CONTAINED"
)

// regionSynonyms lists, per region, every raw label that must resolve to it:
// the hap.py-native label, the symbolic code, and the UI display name.
// Lookup is insensitive to case and punctuation, so near spellings such as
// "gc15" for "GC_<15" resolve as well.
var regionSynonyms = map[Region][]string{
	RegionAll:              {"*", "ALL", "All Regions"},
	RegionEasy:             {"easy", "EASY", "Easy Regions"},
	RegionDifficult:        {"difficult", "DIFFICULT", "Difficult Regions"},
	RegionGCVeryLow:        {"GC_<15", "GC_VERY_LOW"},
	RegionGC15to20:         {"GC_15_20"},
	RegionGC20to25:         {"GC_20_25"},
	RegionGC25to30:         {"GC_25_30"},
	RegionGC30to55:         {"GC_30_55"},
	RegionGC55to60:         {"GC_55_60"},
	RegionGC60to65:         {"GC_60_65"},
	RegionGC65to70:         {"GC_65_70"},
	RegionGC70to75:         {"GC_70_75"},
	RegionGC75to80:         {"GC_75_80"},
	RegionGC80to85:         {"GC_80_85"},
	RegionGCVeryHigh:       {"GC_>85", "GC_VERY_HIGH"},
	RegionRefSeqCDS:        {"refseq_cds", "RefSeq CDS"},
	RegionNotInCDS:         {"not_in_cds", "NOT_IN_CDS", "Non-CDS Regions"},
	RegionSegDup:           {"segdup", "SEGDUP", "Segmental Duplications"},
	RegionHomopolymer4to6:  {"homopolymer_4to6", "Homopolymer 4-6bp"},
	RegionHomopolymer7to11: {"homopolymer_7to11", "Homopolymer 7-11bp"},
	RegionHomopolymerGT11:  {"homopolymer_gt11", "Homopolymer >11bp"},
	RegionLowMappability:   {"low_mappability", "Low Mappability"},
	RegionMHC:              {"MHC", "MHC Region"},
	RegionTSBoundary:       {"TS_boundary", "Truth Set Boundary"},
	RegionTSContained:      {"TS_contained", "Truth Set Contained"},
}

// displayNames maps regions to the names the dashboard shows.
var displayNames = map[Region]string{
	RegionAll:              "All Regions",
	RegionEasy:             "Easy Regions",
	RegionDifficult:        "Difficult Regions",
	RegionGCVeryLow:        "GC_<15",
	RegionGC15to20:         "GC_15_20",
	RegionGC20to25:         "GC_20_25",
	RegionGC25to30:         "GC_25_30",
	RegionGC30to55:         "GC_30_55",
	RegionGC55to60:         "GC_55_60",
	RegionGC60to65:         "GC_60_65",
	RegionGC65to70:         "GC_65_70",
	RegionGC70to75:         "GC_70_75",
	RegionGC75to80:         "GC_75_80",
	RegionGC80to85:         "GC_80_85",
	RegionGCVeryHigh:       "GC_>85",
	RegionRefSeqCDS:        "RefSeq CDS",
	RegionNotInCDS:         "Non-CDS Regions",
	RegionSegDup:           "Segmental Duplications",
	RegionHomopolymer4to6:  "Homopolymer 4-6bp",
	RegionHomopolymer7to11: "Homopolymer 7-11bp",
	RegionHomopolymerGT11:  "Homopolymer >11bp",
	RegionLowMappability:   "Low Mappability",
	RegionMHC:              "MHC Region",
	RegionTSBoundary:       "Truth Set Boundary",
	RegionTSContained:      "Truth Set Contained",
}

var regionLookup = buildRegionLookup()

func buildRegionLookup() map[string]Region {
	out := make(map[string]Region)
	for region, labels := range regionSynonyms {
		for _, label := range labels {
			out[normalizeRegionLabel(label)] = region
		}
	}
	return out
}

// normalizeRegionLabel folds case and drops punctuation so the three label
// families (hap.py, symbolic, display) share one key space. "*" is kept
// verbatim since it would otherwise normalize to the empty string.
func normalizeRegionLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "*" {
		return "*"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseRegion maps a raw region label to its region code. Unrecognized labels
// return false; callers skip those rows rather than storing them.
func ParseRegion(label string) (Region, bool) {
	key := normalizeRegionLabel(label)
	if key == "" {
		return "", false
	}
	region, ok := regionLookup[key]
	return region, ok
}

// DisplayName returns the dashboard-facing name for a region code.
func (r Region) DisplayName() string {
	if name, ok := displayNames[r]; ok {
		return name
	}
	return string(r)
}

// Regions returns all region codes in a stable order.
func Regions() []Region {
	return []Region{
		RegionAll, RegionEasy, RegionDifficult,
		RegionGCVeryLow, RegionGC15to20, RegionGC20to25, RegionGC25to30,
		RegionGC30to55, RegionGC55to60, RegionGC60to65, RegionGC65to70,
		RegionGC70to75, RegionGC75to80, RegionGC80to85, RegionGCVeryHigh,
		RegionRefSeqCDS, RegionNotInCDS,
		RegionSegDup, RegionHomopolymer4to6, RegionHomopolymer7to11, RegionHomopolymerGT11,
		RegionLowMappability, RegionMHC, RegionTSBoundary, RegionTSContained,
	}
}
