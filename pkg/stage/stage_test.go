package stage

import (
	"math"
	"testing"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		prediction float64
		want       LifeStage
	}{
		{-10, Critical},
		{0, Critical},
		{44.9, Critical},
		{45.0, Critical},
		{45.0001, AtRisk},
		{55.0, AtRisk},
		{55.0001, Unhealthy},
		{68.3, Unhealthy},
		{70.0, Unhealthy},
		{70.0001, Healthy},
		{120, Healthy},
		{math.Inf(-1), Critical},
		{math.Inf(1), Healthy},
	}
	for _, tc := range cases {
		if got := Classify(tc.prediction); got != tc.want {
			t.Fatalf("Classify(%v) = %s, want %s", tc.prediction, got, tc.want)
		}
	}
}

// Stages must cover the line without gaps or overlaps: walking upward the
// stage never decreases and changes exactly at the three bounds.
func TestClassifyPartitionsLine(t *testing.T) {
	prev := Classify(-1000)
	changes := 0
	for p := -1000.0; p <= 1000.0; p += 0.25 {
		got := Classify(p)
		if got < prev {
			t.Fatalf("stage decreased at %v", p)
		}
		if got != prev {
			changes++
		}
		prev = got
	}
	if changes != 3 {
		t.Fatalf("expected 3 stage changes, got %d", changes)
	}
}

func TestStageMetadata(t *testing.T) {
	want := map[LifeStage][3]string{
		Critical:  {"Critical", "critical", "red"},
		AtRisk:    {"At Risk", "at_risk", "orange"},
		Unhealthy: {"Unhealthy", "unhealthy", "green"},
		Healthy:   {"Healthy", "healthy", "blue"},
	}
	for _, s := range All {
		w := want[s]
		if s.Label() != w[0] || s.Illustration() != w[1] || s.Indicator() != w[2] {
			t.Fatalf("unexpected metadata for %s: %q %q %q", s, s.Label(), s.Illustration(), s.Indicator())
		}
		if s.Range() == "" {
			t.Fatalf("missing range for %s", s)
		}
	}
	if LifeStage(9).Label() != "" || LifeStage(9).String() != "LifeStage(9)" {
		t.Fatal("unexpected metadata for invalid stage")
	}
}

// Rounding is half to even.
func TestRoundYears(t *testing.T) {
	cases := map[float64]int{
		68.3: 68,
		44.9: 45,
		68.5: 68,
		69.5: 70,
		45.5: 46,
		-0.4: 0,
	}
	for in, want := range cases {
		if got := RoundYears(in); got != want {
			t.Fatalf("RoundYears(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestHeadline(t *testing.T) {
	if got := Headline(68); got != "Predicted Life Expectancy: 68 years" {
		t.Fatalf("unexpected headline %q", got)
	}
}
