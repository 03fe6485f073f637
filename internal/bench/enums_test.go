// File path: internal/bench/enums_test.go
package bench

import "testing"

func TestResolveCanonicalCodes(t *testing.T) {
	cases := []struct {
		cat   Category
		value string
		want  string
	}{
		{CatTechnology, "ILLUMINA", "ILLUMINA"},
		{CatTechnology, "illumina", "ILLUMINA"},
		{CatTechnology, "  PacBio  ", "PACBIO"},
		{CatCallerName, "DeepVariant", "DEEPVARIANT"},
		{CatCallerType, "ml", "ML"},
		{CatTruthSetName, "giab", "GIAB"},
		{CatReference, "GRCh38", "GRCH38"},
		{CatSample, "hg002", "HG002"},
		{CatTool, "truvari", "TRUVARI"},
	}
	for _, tc := range cases {
		got, ok := Resolve(tc.cat, tc.value)
		if !ok {
			t.Errorf("Resolve(%s, %q) not recognized", tc.cat, tc.value)
			continue
		}
		if got != tc.want {
			t.Errorf("Resolve(%s, %q) = %q, want %q", tc.cat, tc.value, got, tc.want)
		}
	}
}

func TestResolveAliases(t *testing.T) {
	cases := []struct {
		cat   Category
		value string
		want  string
	}{
		{CatTechnology, "10X Genomics", "TENX"},
		{CatTechnology, "10x", "TENX"},
		{CatTool, "hap.py", "HAPPY"},
		{CatTool, "Happy", "HAPPY"},
		{CatVariantType, "SNP+INDEL", "SNPINDEL"},
		{CatVariantType, "snpindel", "SNPINDEL"},
	}
	for _, tc := range cases {
		got, ok := Resolve(tc.cat, tc.value)
		if !ok || got != tc.want {
			t.Errorf("Resolve(%s, %q) = %q, %v; want %q", tc.cat, tc.value, got, ok, tc.want)
		}
	}
}

func TestResolveRejectsUnknown(t *testing.T) {
	if _, ok := Resolve(CatTechnology, "sanger"); ok {
		t.Fatal("expected sanger to be unrecognized")
	}
	if _, ok := Resolve(CatTechnology, ""); ok {
		t.Fatal("expected empty value to be unrecognized")
	}
	if _, ok := Resolve(Category("bogus"), "ILLUMINA"); ok {
		t.Fatal("expected unknown category to resolve nothing")
	}
}
