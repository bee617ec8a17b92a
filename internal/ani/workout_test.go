package ani

import "testing"

func TestParseReps(t *testing.T) {
	cases := []struct {
		raw       string
		wantValue int
		wantTimed bool
	}{
		{"10", 10, false},
		{"8-12", 10, false},
		{"5-8", 6, false}, // midpoint with integer division
		{"30s", 30, true},
		{"45 sec", 45, true},
		{"", 10, false},
		{"garbage", 10, false},
	}
	for _, tc := range cases {
		value, timed := parseReps(tc.raw)
		if value != tc.wantValue || timed != tc.wantTimed {
			t.Fatalf("parseReps(%q) want=(%d,%v) got=(%d,%v)", tc.raw, tc.wantValue, tc.wantTimed, value, timed)
		}
	}
}

func TestEstimateWorkoutEnergyDefaults(t *testing.T) {
	// Missing sets/reps/rest fall back to 3 x 10 with 60s rest: 3 sets of
	// (35s work + 60s rest) = 285s = 4.75 min at the default 4.0 MET.
	got := EstimateWorkoutEnergy([]Exercise{{Name: "Unknown Super Exercise"}}, 70)
	if got.Calories != 23 {
		t.Fatalf("Calories want=23 got=%d", got.Calories)
	}
	if got.DurationMinutes != 5 {
		t.Fatalf("DurationMinutes want=5 got=%d", got.DurationMinutes)
	}
}

func TestEstimateWorkoutEnergyTimedReps(t *testing.T) {
	// "30s" means 30 seconds of work per set, not 30 reps.
	timed := EstimateWorkoutEnergy([]Exercise{{Name: "plank", Sets: 3, Reps: "30s", RestSeconds: 30}}, 70)
	counted := EstimateWorkoutEnergy([]Exercise{{Name: "plank", Sets: 3, Reps: "30", RestSeconds: 30}}, 70)
	if timed.Calories >= counted.Calories {
		t.Fatalf("timed reps should burn less than 30 counted reps: timed=%d counted=%d", timed.Calories, counted.Calories)
	}
}

func TestEstimateWorkoutEnergyMinimumOneCalorie(t *testing.T) {
	got := EstimateWorkoutEnergy([]Exercise{{Name: "x", Sets: 1, Reps: "1"}}, 1)
	if got.Calories < 1 {
		t.Fatalf("Calories floor want>=1 got=%d", got.Calories)
	}
}

func TestEstimateWorkoutEnergyEmpty(t *testing.T) {
	got := EstimateWorkoutEnergy(nil, 70)
	if got.Calories != 0 || got.DurationMinutes != 0 {
		t.Fatalf("empty exercise list want zero estimate got=%+v", got)
	}
	got = EstimateWorkoutEnergy([]Exercise{{Name: "squat"}}, 0)
	if got.Calories != 0 {
		t.Fatalf("zero weight want zero estimate got=%+v", got)
	}
}

func TestEstimateWorkoutEnergyBackSquatUsesHigherMET(t *testing.T) {
	squat := EstimateWorkoutEnergy([]Exercise{{Name: "Back Squat", Sets: 3, Reps: "10", RestSeconds: 60}}, 80)
	generic := EstimateWorkoutEnergy([]Exercise{{Name: "Unknown Super Exercise", Sets: 3, Reps: "10", RestSeconds: 60}}, 80)
	if squat.Calories <= generic.Calories {
		t.Fatalf("back squat (MET 6.0) should out-burn default (MET 4.0): squat=%d generic=%d", squat.Calories, generic.Calories)
	}
}
