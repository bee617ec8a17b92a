package ani

import (
	"math"
	"testing"
	"time"
)

func day(offset int) time.Time {
	base := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestAnalyzeWindowRequiresMinEntries(t *testing.T) {
	samples := []WeightSample{{At: day(0), LBS: 180}}
	if got := AnalyzeWindow(samples, 2, false); got != nil {
		t.Fatalf("want nil for under-populated window, got %+v", got)
	}
}

func TestAnalyzeWindowDeltaPerWeek(t *testing.T) {
	samples := []WeightSample{
		{At: day(-6), LBS: 183},
		{At: day(0), LBS: 180},
	}
	got := AnalyzeWindow(samples, 2, false)
	if got == nil {
		t.Fatalf("want trend, got nil")
	}
	if math.Abs(got.DeltaPerWeek-(-3.5)) > 1e-9 {
		t.Fatalf("DeltaPerWeek want=-3.5 got=%v", got.DeltaPerWeek)
	}
}

func TestAnalyzeWindowNoisyShortWindow(t *testing.T) {
	// Stdev of [150, 153, 149, 155] is ~2.39 lbs, above the 2.0 noise bar.
	samples := []WeightSample{
		{At: day(-6), LBS: 150},
		{At: day(-4), LBS: 153},
		{At: day(-2), LBS: 149},
		{At: day(0), LBS: 155},
	}
	got := AnalyzeWindow(samples, 2, true)
	if got == nil {
		t.Fatalf("want trend, got nil")
	}
	if !got.Noisy {
		t.Fatalf("want noisy window, got stable")
	}
	// Without the noise check requested the same data is not flagged.
	if AnalyzeWindow(samples, 2, false).Noisy {
		t.Fatalf("noise flag should only be set when requested")
	}
}

func TestBlendTrendNoisyWindowExcluded(t *testing.T) {
	noisy := []WeightSample{
		{At: day(-6), LBS: 150},
		{At: day(-4), LBS: 153},
		{At: day(-2), LBS: 149},
		{At: day(0), LBS: 155},
	}
	got := BlendTrend(noisy, nil, nil, nil)
	if got.DeltaPerWeek != nil {
		t.Fatalf("noisy-only data should yield no delta, got %v", *got.DeltaPerWeek)
	}
	if got.SignalUsed != SignalCaloriesOnly {
		t.Fatalf("SignalUsed want=%q got=%q", SignalCaloriesOnly, got.SignalUsed)
	}
	detail := got.Windows["7d"]
	if !detail.Noisy || detail.Used {
		t.Fatalf("7d window should be noisy and unused, got %+v", detail)
	}
}

func TestBlendTrendSingleWindowSignalName(t *testing.T) {
	w30 := []WeightSample{
		{At: day(-28), LBS: 190},
		{At: day(-14), LBS: 185},
		{At: day(0), LBS: 180},
	}
	got := BlendTrend(nil, w30, nil, nil)
	if got.SignalUsed != "weight_30d" {
		t.Fatalf("SignalUsed want=weight_30d got=%q", got.SignalUsed)
	}
	if got.DeltaPerWeek == nil || math.Abs(*got.DeltaPerWeek-(-2.5)) > 1e-9 {
		t.Fatalf("DeltaPerWeek want=-2.5 got=%v", got.DeltaPerWeek)
	}
}

func TestBlendTrendRenormalizesWeights(t *testing.T) {
	w7 := []WeightSample{
		{At: day(-6), LBS: 183},
		{At: day(0), LBS: 180},
	}
	w30 := []WeightSample{
		{At: day(-28), LBS: 190},
		{At: day(-14), LBS: 185},
		{At: day(0), LBS: 180},
	}
	got := BlendTrend(w7, w30, nil, nil)
	if got.SignalUsed != SignalMultiWindow {
		t.Fatalf("SignalUsed want=%q got=%q", SignalMultiWindow, got.SignalUsed)
	}
	// (0.15*-3.5 + 0.50*-2.5) / 0.65
	want := (0.15*-3.5 + 0.50*-2.5) / 0.65
	if got.DeltaPerWeek == nil || math.Abs(*got.DeltaPerWeek-want) > 1e-9 {
		t.Fatalf("DeltaPerWeek want=%v got=%v", want, got.DeltaPerWeek)
	}
	if len(got.WindowsUsed) != 2 {
		t.Fatalf("WindowsUsed want 2 windows got=%v", got.WindowsUsed)
	}
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		goal  string
		delta float64
		want  string
	}{
		{"lose", -2.5, TrendTooFast},
		{"lose", -1.0, TrendOnTrack},
		{"lose", -0.2, TrendTooSlow},
		{"lose", 0.5, TrendWrongDirection},
		{"gain", 1.5, TrendTooFast},
		{"gain", 0.5, TrendOnTrack},
		{"gain", 0.1, TrendTooSlow},
		{"gain", -0.5, TrendWrongDirection},
		{"maintain", -1.5, TrendTooFast},
		{"maintain", 1.5, TrendTooSlow},
		{"maintain", 0.0, TrendOnTrack},
	}
	for _, tc := range cases {
		if got := ClassifyTrend(tc.goal, tc.delta); got != tc.want {
			t.Fatalf("ClassifyTrend(%q, %v) want=%q got=%q", tc.goal, tc.delta, tc.want, got)
		}
	}
}
