package ani

import "testing"

func TestLookupMETExact(t *testing.T) {
	if got := LookupMET("Back Squat"); got != 6.0 {
		t.Fatalf("Back Squat want=6.0 got=%v", got)
	}
	if got := LookupMET("burpee"); got != 8.0 {
		t.Fatalf("burpee want=8.0 got=%v", got)
	}
}

func TestLookupMETSubstringFallback(t *testing.T) {
	// No exact entry; "squat variation" contains the generic "squat" entry.
	if got := LookupMET("Squat Variation"); got != 5.5 {
		t.Fatalf("Squat Variation want=5.5 got=%v", got)
	}
}

func TestLookupMETDefault(t *testing.T) {
	if got := LookupMET("Unknown Super Exercise"); got != defaultMET {
		t.Fatalf("unknown exercise want=%v got=%v", defaultMET, got)
	}
	if got := LookupMET(""); got != defaultMET {
		t.Fatalf("empty name want=%v got=%v", defaultMET, got)
	}
}
