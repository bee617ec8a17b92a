package ani

import (
	"math"
	"strconv"
	"strings"
)

// Defaults applied when a stored exercise is missing fields. Malformed data
// never fails an estimate.
const (
	defaultSets        = 3
	defaultReps        = "10"
	defaultRestSeconds = 60
	secondsPerRep      = 3.5
)

// Exercise mirrors one element of a plan session's exercises_json.
type Exercise struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        string `json:"reps"`
	RestSeconds int    `json:"rest_seconds"`
}

type WorkoutEstimate struct {
	Calories        int `json:"calories"`
	DurationMinutes int `json:"duration_minutes"`
}

// parseReps interprets a reps string: a plain integer, a range "A-B" (uses
// the midpoint, integer division), or a duration "Ns" / "N sec" which is
// treated as seconds of work rather than a rep count.
func parseReps(raw string) (value int, timed bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		s = defaultReps
	}

	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n, false
	}

	if a, b, ok := strings.Cut(s, "-"); ok {
		lo, errA := strconv.Atoi(strings.TrimSpace(a))
		hi, errB := strconv.Atoi(strings.TrimSpace(b))
		if errA == nil && errB == nil && lo > 0 && hi > 0 {
			return (lo + hi) / 2, false
		}
	}

	for _, suffix := range []string{"sec", "s"} {
		if rest, ok := strings.CutSuffix(s, suffix); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n > 0 {
				return n, true
			}
		}
	}

	n, _ := strconv.Atoi(defaultReps)
	return n, false
}

// EstimateWorkoutEnergy estimates calories burned and duration for a list
// of exercises using MET coefficients and a time-under-tension model:
// each rep averages 3.5 seconds of work, each set is followed by its rest.
func EstimateWorkoutEnergy(exercises []Exercise, weightKG float64) WorkoutEstimate {
	if len(exercises) == 0 || weightKG <= 0 {
		return WorkoutEstimate{}
	}

	var totalCalories, totalMinutes float64
	for _, ex := range exercises {
		sets := ex.Sets
		if sets <= 0 {
			sets = defaultSets
		}
		rest := ex.RestSeconds
		if rest <= 0 {
			rest = defaultRestSeconds
		}

		reps, timed := parseReps(ex.Reps)
		workSeconds := float64(reps) * secondsPerRep
		if timed {
			workSeconds = float64(reps)
		}

		durationMinutes := float64(sets) * (workSeconds + float64(rest)) / 60.0
		met := LookupMET(ex.Name)
		calories := (met * 3.5 * weightKG / 200.0) * durationMinutes

		totalCalories += calories
		totalMinutes += durationMinutes
	}

	calories := int(math.Round(totalCalories))
	if calories < 1 {
		calories = 1
	}
	return WorkoutEstimate{
		Calories:        calories,
		DurationMinutes: int(math.Round(totalMinutes)),
	}
}
