package ani

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Signal names recorded in the analysis payload.
const (
	SignalMultiWindow  = "multi_window"
	SignalCaloriesOnly = "calories_only"

	TrendTooFast        = "too_fast"
	TrendOnTrack        = "on_track"
	TrendTooSlow        = "too_slow"
	TrendWrongDirection = "wrong_direction"
	TrendNoData         = "no_data"
)

// noisyStdevLBS marks a short window as measurement noise rather than trend.
const noisyStdevLBS = 2.0

type WeightSample struct {
	At  time.Time
	LBS float64
}

type WindowTrend struct {
	DeltaPerWeek float64
	Entries      int
	DaysSpan     float64
	Noisy        bool
}

// AnalyzeWindow computes the linear weight-change rate for one window.
// Returns nil when fewer than minEntries samples exist. The noise check is
// only requested for the shortest window.
func AnalyzeWindow(samples []WeightSample, minEntries int, noiseCheck bool) *WindowTrend {
	if len(samples) < minEntries {
		return nil
	}
	sorted := make([]WeightSample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	first, last := sorted[0], sorted[len(sorted)-1]
	daysSpan := last.At.Sub(first.At).Hours() / 24.0
	if daysSpan < 1 {
		daysSpan = 1
	}
	deltaPerWeek := (last.LBS - first.LBS) * 7.0 / daysSpan

	noisy := false
	if noiseCheck && weightStdev(sorted) > noisyStdevLBS {
		noisy = true
	}

	return &WindowTrend{
		DeltaPerWeek: deltaPerWeek,
		Entries:      len(sorted),
		DaysSpan:     daysSpan,
		Noisy:        noisy,
	}
}

func weightStdev(samples []WeightSample) float64 {
	if len(samples) < 2 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s.LBS
	}
	mean := sum / float64(len(samples))
	var sq float64
	for _, s := range samples {
		d := s.LBS - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(samples)))
}

// windowSpec fixes the blend: base weights renormalize over whichever
// windows are actually available.
type windowSpec struct {
	name       string
	baseWeight float64
	minEntries int
	noiseCheck bool
}

var blendWindows = []windowSpec{
	{name: "7d", baseWeight: 0.15, minEntries: 2, noiseCheck: true},
	{name: "30d", baseWeight: 0.50, minEntries: 3},
	{name: "60d", baseWeight: 0.25, minEntries: 4},
	{name: "90d", baseWeight: 0.10, minEntries: 5},
}

type WindowDetail struct {
	DeltaPerWeek *float64 `json:"delta_per_week"`
	Entries      int      `json:"entries"`
	Noisy        bool     `json:"noisy"`
	Used         bool     `json:"used"`
}

type BlendedTrend struct {
	DeltaPerWeek *float64
	SignalUsed   string
	Windows      map[string]WindowDetail
	WindowsUsed  []string
}

// BlendTrend combines the four overlapping windows into one weighted
// delta-per-week. Noisy or under-populated windows drop out and the
// remaining base weights renormalize to sum to 1.
func BlendTrend(w7, w30, w60, w90 []WeightSample) BlendedTrend {
	samples := map[string][]WeightSample{
		"7d":  w7,
		"30d": w30,
		"60d": w60,
		"90d": w90,
	}

	out := BlendedTrend{
		SignalUsed: SignalCaloriesOnly,
		Windows:    make(map[string]WindowDetail, len(blendWindows)),
	}

	var (
		weightSum float64
		weighted  float64
		used      []string
	)
	for _, spec := range blendWindows {
		trend := AnalyzeWindow(samples[spec.name], spec.minEntries, spec.noiseCheck)
		detail := WindowDetail{}
		if trend != nil {
			delta := trend.DeltaPerWeek
			detail.DeltaPerWeek = &delta
			detail.Entries = trend.Entries
			detail.Noisy = trend.Noisy
			if !trend.Noisy {
				detail.Used = true
				weightSum += spec.baseWeight
				weighted += spec.baseWeight * delta
				used = append(used, spec.name)
			}
		}
		out.Windows[spec.name] = detail
	}

	if weightSum > 0 {
		delta := weighted / weightSum
		out.DeltaPerWeek = &delta
		out.WindowsUsed = used
		if len(used) >= 2 {
			out.SignalUsed = SignalMultiWindow
		} else {
			out.SignalUsed = fmt.Sprintf("weight_%s", used[0])
		}
	}
	return out
}

// ClassifyTrend maps a blended delta-per-week onto the goal-specific
// classification bands.
func ClassifyTrend(goalType string, deltaPerWeek float64) string {
	switch goalType {
	case "lose":
		switch {
		case deltaPerWeek < -2:
			return TrendTooFast
		case deltaPerWeek <= -0.5:
			return TrendOnTrack
		case deltaPerWeek <= 0:
			return TrendTooSlow
		default:
			return TrendWrongDirection
		}
	case "gain":
		switch {
		case deltaPerWeek > 1.0:
			return TrendTooFast
		case deltaPerWeek >= 0.25:
			return TrendOnTrack
		case deltaPerWeek > 0:
			return TrendTooSlow
		default:
			return TrendWrongDirection
		}
	default: // maintain
		switch {
		case deltaPerWeek < -1:
			return TrendTooFast
		case deltaPerWeek > 1:
			return TrendTooSlow
		default:
			return TrendOnTrack
		}
	}
}
