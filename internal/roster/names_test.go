package roster

import "testing"

func TestSimilarName(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Alexander Marshall", "Alex Marshall", true},
		{"John Smith", "Jane Doe", false},
		{"John Smith", "john smith", true},
		{"  O'Brien, Sean ", "obrien sean", true},
		{"José García", "Jose Garcia", true},
		{"Maria Lopez", "Maria Fernandez", true},
		{"Ana Maria Cruz", "Luis Maria Reyes", false},
		{"Ana Maria Cruz", "Beatriz Maria Cruz", true},
		{"Kim Lee Park", "Lee Kim Park", true},
		{"", "", false},
		{"!!!", "???", false},
	}
	for _, tc := range cases {
		if got := SimilarName(tc.a, tc.b); got != tc.want {
			t.Fatalf("SimilarName(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilarNameSharedTokenRatio(t *testing.T) {
	// No first/last token match; two of four tokens shared.
	if !SimilarName("Anne Marie Louise Dupont", "Claire Marie Louise Martin") {
		t.Fatalf("expected 50%% shared tokens to match")
	}
	// One of four tokens shared.
	if SimilarName("Anne Marie Louise Dupont", "Claire Marie Sophie Martin") {
		t.Fatalf("expected 25%% shared tokens not to match")
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Zoë   Saint-Clair\t"); got != "zoe saintclair" {
		t.Fatalf("unexpected normalization %q", got)
	}
}
