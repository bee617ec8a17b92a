package ani

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"
)

type fakePersister struct {
	values []float64
	err    error
}

func (f *fakePersister) PersistNEAT(_ context.Context, neat float64) error {
	if f.err != nil {
		return f.err
	}
	f.values = append(f.values, neat)
	return nil
}

func weekOfLogs(now time.Time, calories, protein float64) []FoodLog {
	logs := make([]FoodLog, 0, 7)
	for i := 0; i < 7; i++ {
		logs = append(logs, FoodLog{At: now.AddDate(0, 0, -i), Calories: calories, Protein: protein})
	}
	return logs
}

func floatPtr(v float64) *float64 { return &v }

func hasInsight(insights []Insight, insightType, title string) bool {
	for _, in := range insights {
		if in.Type == insightType && in.Title == title {
			return true
		}
	}
	return false
}

func TestRecalibrateRapidLossRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	age, sex, height, activity := 35, "M", 178.0, "moderate"
	snap := Snapshot{
		Now:         now,
		PeriodStart: now.AddDate(0, 0, -7),
		PeriodEnd:   now,
		Profile: UserProfile{
			GoalType:      "lose",
			Age:           &age,
			Sex:           &sex,
			HeightCM:      &height,
			ActivityLevel: &activity,
		},
		Goals:    Goals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65},
		FoodLogs: weekOfLogs(now, 1600, 120),
		Weights7: []WeightSample{
			{At: now.AddDate(0, 0, -6), LBS: 183},
			{At: now, LBS: 180},
		},
		Weights30: []WeightSample{
			{At: now.AddDate(0, 0, -28), LBS: 190},
			{At: now.AddDate(0, 0, -14), LBS: 185},
			{At: now, LBS: 180},
		},
		LatestWeightLBS: floatPtr(180),
	}

	persist := &fakePersister{}
	res := Recalibrate(context.Background(), snap, persist)

	want := Goals{Calories: 2100, Protein: 150, Carbs: 218, Fat: 70}
	if res.Goals != want {
		t.Fatalf("goals want=%+v got=%+v", want, res.Goals)
	}

	if res.Analysis.WeightTrendSignal != TrendTooFast {
		t.Fatalf("trend want=%q got=%q", TrendTooFast, res.Analysis.WeightTrendSignal)
	}
	if res.Analysis.SignalUsed != SignalMultiWindow {
		t.Fatalf("signal want=%q got=%q", SignalMultiWindow, res.Analysis.SignalUsed)
	}
	if res.Analysis.EnergyBalanceAgrees == nil || !*res.Analysis.EnergyBalanceAgrees {
		t.Fatalf("energy balance should agree, got %v", res.Analysis.EnergyBalanceAgrees)
	}
	if !strings.Contains(res.Reasoning, "faster than the safe range") {
		t.Fatalf("reasoning missing rapid-loss explanation: %q", res.Reasoning)
	}
	if !hasInsight(res.Insights, InsightWarningType, "Rapid weight loss") {
		t.Fatalf("missing rapid-loss warning insight: %+v", res.Insights)
	}

	// NEAT: 0.7 * baseline TDEE (2726.4) + 0.3 * back-solved (2965.4).
	if len(persist.values) != 1 {
		t.Fatalf("want 1 persisted NEAT value got=%d", len(persist.values))
	}
	if math.Abs(persist.values[0]-2798.09) > 0.05 {
		t.Fatalf("learned NEAT want~2798.09 got=%v", persist.values[0])
	}
	if res.NEATPersistErr != nil {
		t.Fatalf("unexpected persist error: %v", res.NEATPersistErr)
	}
}

func TestRecalibrateCleanWeekIsNoOp(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Now:      now,
		Profile:  UserProfile{GoalType: "maintain"},
		Goals:    Goals{Calories: 2000, Protein: 150, Carbs: 218, Fat: 67},
		FoodLogs: weekOfLogs(now, 2000, 100),
		Weights7: []WeightSample{
			{At: now.AddDate(0, 0, -6), LBS: 180},
			{At: now, LBS: 180},
		},
		LatestWeightLBS: floatPtr(180),
	}

	first := Recalibrate(context.Background(), snap, &fakePersister{})
	if first.Goals != snap.Goals {
		t.Fatalf("stable week must not move goals: want=%+v got=%+v", snap.Goals, first.Goals)
	}
	if !hasInsight(first.Insights, InsightAchievementType, "Holding steady") {
		t.Fatalf("missing on-track insight: %+v", first.Insights)
	}

	second := Recalibrate(context.Background(), snap, &fakePersister{})
	if first.Goals != second.Goals || first.Reasoning != second.Reasoning {
		t.Fatalf("same snapshot must produce identical results:\nfirst=%+v %q\nsecond=%+v %q",
			first.Goals, first.Reasoning, second.Goals, second.Reasoning)
	}
}

func TestRecalibrateStalledLossHeldWhenBalanceAgrees(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Now: now,
		Profile: UserProfile{
			GoalType:    "lose",
			LearnedNEAT: floatPtr(2000),
		},
		Goals:    Goals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65},
		FoodLogs: weekOfLogs(now, 1500, 100),
		Weights30: []WeightSample{
			{At: now.AddDate(0, 0, -28), LBS: 180.8},
			{At: now.AddDate(0, 0, -14), LBS: 180.4},
			{At: now, LBS: 180},
		},
		LatestWeightLBS: floatPtr(180),
	}

	res := Recalibrate(context.Background(), snap, &fakePersister{})
	if res.Analysis.WeightTrendSignal != TrendTooSlow {
		t.Fatalf("trend want=%q got=%q", TrendTooSlow, res.Analysis.WeightTrendSignal)
	}
	if res.Analysis.EnergyBalanceAgrees == nil || !*res.Analysis.EnergyBalanceAgrees {
		t.Fatalf("energy balance should agree, got %v", res.Analysis.EnergyBalanceAgrees)
	}
	if res.Goals != snap.Goals {
		t.Fatalf("stalled loss with agreeing balance must hold: want=%+v got=%+v", snap.Goals, res.Goals)
	}
	if !strings.Contains(res.Reasoning, "water retention") {
		t.Fatalf("reasoning should mention the hold: %q", res.Reasoning)
	}
}

func TestRecalibrateStalledLossCutWhenBalanceDisagrees(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Now: now,
		Profile: UserProfile{
			GoalType:    "lose",
			LearnedNEAT: floatPtr(1550),
		},
		Goals:    Goals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65},
		FoodLogs: weekOfLogs(now, 1500, 100),
		Weights30: []WeightSample{
			{At: now.AddDate(0, 0, -28), LBS: 180.8},
			{At: now.AddDate(0, 0, -14), LBS: 180.4},
			{At: now, LBS: 180},
		},
		LatestWeightLBS: floatPtr(180),
	}

	res := Recalibrate(context.Background(), snap, &fakePersister{})
	if res.Analysis.EnergyBalanceAgrees == nil || *res.Analysis.EnergyBalanceAgrees {
		t.Fatalf("energy balance should disagree, got %v", res.Analysis.EnergyBalanceAgrees)
	}
	if res.Goals.Calories != 1940 {
		t.Fatalf("calories want=1940 (3%% cut) got=%d", res.Goals.Calories)
	}
}

func TestRecalibrateClampCapsLargeAdjustments(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	// Wrong-direction gain (+7%) stacked with a consistent overshoot should
	// still never move any target more than 10%.
	snap := Snapshot{
		Now:      now,
		Profile:  UserProfile{GoalType: "gain"},
		Goals:    Goals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65},
		FoodLogs: weekOfLogs(now, 3000, 100),
		Weights30: []WeightSample{
			{At: now.AddDate(0, 0, -28), LBS: 184},
			{At: now.AddDate(0, 0, -14), LBS: 182},
			{At: now, LBS: 180},
		},
		LatestWeightLBS: floatPtr(180),
	}

	res := Recalibrate(context.Background(), snap, &fakePersister{})
	prev := snap.Goals
	if res.Goals.Calories != 2200 {
		t.Fatalf("calories want=2200 (clamped to +10%%) got=%d", res.Goals.Calories)
	}
	check := func(name string, got, prevVal int) {
		band := int(math.Round(float64(prevVal) * 0.10))
		if got > prevVal+band || got < prevVal-band {
			t.Fatalf("%s moved more than 10%%: prev=%d got=%d", name, prevVal, got)
		}
	}
	check("calories", res.Goals.Calories, prev.Calories)
	check("protein", res.Goals.Protein, prev.Protein)
	check("carbs", res.Goals.Carbs, prev.Carbs)
	check("fat", res.Goals.Fat, prev.Fat)
}

func TestRecalibrateNoWeightDataYieldsTip(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Now:      now,
		Profile:  UserProfile{GoalType: "lose"},
		Goals:    Goals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65},
		FoodLogs: weekOfLogs(now, 1600, 100),
	}

	res := Recalibrate(context.Background(), snap, &fakePersister{})
	if res.Goals != snap.Goals {
		t.Fatalf("no weight data must not move goals: got=%+v", res.Goals)
	}
	if res.Analysis.WeightTrendSignal != TrendNoData {
		t.Fatalf("trend want=%q got=%q", TrendNoData, res.Analysis.WeightTrendSignal)
	}
	if !hasInsight(res.Insights, InsightTipType, "Step on the scale") {
		t.Fatalf("missing weigh-in tip: %+v", res.Insights)
	}
}

func TestRecalibrateWeekendProteinDip(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC) // a Sunday
	logs := make([]FoodLog, 0, 7)
	for i := 0; i < 7; i++ {
		at := now.AddDate(0, 0, -i)
		protein := 150.0
		if wd := at.Weekday(); wd == time.Saturday || wd == time.Sunday {
			protein = 60
		}
		logs = append(logs, FoodLog{At: at, Calories: 2000, Protein: protein})
	}
	snap := Snapshot{
		Now:      now,
		Profile:  UserProfile{GoalType: "maintain"},
		Goals:    Goals{Calories: 2000, Protein: 140, Carbs: 218, Fat: 67},
		FoodLogs: logs,
		Weights7: []WeightSample{
			{At: now.AddDate(0, 0, -6), LBS: 180},
			{At: now, LBS: 180},
		},
		LatestWeightLBS: floatPtr(180),
	}

	res := Recalibrate(context.Background(), snap, &fakePersister{})
	if res.Goals.Protein != 147 {
		t.Fatalf("protein want=147 (+5%%) got=%d", res.Goals.Protein)
	}
	if !hasInsight(res.Insights, InsightPatternType, "Weekend protein dip") {
		t.Fatalf("missing weekend dip insight: %+v", res.Insights)
	}
	found := false
	for _, p := range res.Analysis.DetectedPatterns {
		if p == "weekend_protein_dip" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing weekend_protein_dip pattern: %v", res.Analysis.DetectedPatterns)
	}
}

func TestRecalibrateLowAdherenceTrimsCalories(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Now:      now,
		Profile:  UserProfile{GoalType: "maintain"},
		Goals:    Goals{Calories: 2000, Protein: 150, Carbs: 218, Fat: 67},
		FoodLogs: weekOfLogs(now, 2000, 100),
		Weights7: []WeightSample{
			{At: now.AddDate(0, 0, -6), LBS: 180},
			{At: now, LBS: 180},
		},
		Sessions: []Session{
			{Completed: true},
			{Completed: false},
			{Completed: false},
			{Completed: false},
		},
		LatestWeightLBS: floatPtr(180),
	}

	res := Recalibrate(context.Background(), snap, &fakePersister{})
	if res.Goals.Calories != 1940 {
		t.Fatalf("calories want=1940 (3%% trim) got=%d", res.Goals.Calories)
	}
	if res.Analysis.WorkoutAdherence == nil || math.Abs(*res.Analysis.WorkoutAdherence-25.0) > 1e-9 {
		t.Fatalf("adherence want=25%% got=%v", res.Analysis.WorkoutAdherence)
	}
	if !hasInsight(res.Insights, InsightWarningType, "Workouts slipping") {
		t.Fatalf("missing adherence warning: %+v", res.Insights)
	}
}

func TestRecalibrateDeviceNudgeCapped(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	age, sex, height, activity := 35, "M", 178.0, "moderate"
	device := make([]DeviceDay, 0, 7)
	for i := 0; i < 7; i++ {
		device = append(device, DeviceDay{Date: now.AddDate(0, 0, -i), TotalExpenditure: floatPtr(3800)})
	}
	snap := Snapshot{
		Now: now,
		Profile: UserProfile{
			GoalType:      "maintain",
			Age:           &age,
			Sex:           &sex,
			HeightCM:      &height,
			ActivityLevel: &activity,
		},
		Goals:    Goals{Calories: 2000, Protein: 150, Carbs: 218, Fat: 67},
		FoodLogs: weekOfLogs(now, 2000, 100),
		Weights7: []WeightSample{
			{At: now.AddDate(0, 0, -6), LBS: 180},
			{At: now, LBS: 180},
		},
		Device:          device,
		LatestWeightLBS: floatPtr(180),
	}

	res := Recalibrate(context.Background(), snap, &fakePersister{})
	// Gap to the static estimate is over 1000 kcal; 30% of that exceeds the
	// 5% cap (100 kcal), so calories land at exactly prev + 100.
	if res.Goals.Calories != 2100 {
		t.Fatalf("calories want=2100 (capped device nudge) got=%d", res.Goals.Calories)
	}
	if !hasInsight(res.Insights, InsightPatternType, "Device data refined your target") {
		t.Fatalf("missing device insight: %+v", res.Insights)
	}
}

func TestSmoothNEATStaysBetweenInputs(t *testing.T) {
	cases := []struct{ prior, calculated float64 }{
		{2000, 3000},
		{3000, 2000},
		{2500, 2500},
		{1000, 900},
	}
	for _, tc := range cases {
		got := smoothNEAT(tc.prior, tc.calculated)
		lo, hi := math.Min(tc.prior, tc.calculated), math.Max(tc.prior, tc.calculated)
		if got < lo || got > hi {
			t.Fatalf("smoothNEAT(%v, %v)=%v escapes [%v, %v]", tc.prior, tc.calculated, got, lo, hi)
		}
		want := 0.7*tc.prior + 0.3*tc.calculated
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("smoothNEAT(%v, %v) want=%v got=%v", tc.prior, tc.calculated, want, got)
		}
	}
}

func TestLearnNEATRejectsLongHorizonSignals(t *testing.T) {
	intake := intakeSummary{daysLogged: 7, avgCalories: floatPtr(2000)}
	delta := -0.5
	blend := BlendedTrend{DeltaPerWeek: &delta, SignalUsed: "weight_60d"}
	if got := learnNEAT(intake, blend, nil, nil); got != nil {
		t.Fatalf("60d-only signal must not teach NEAT, got %v", *got)
	}
	blend.SignalUsed = "weight_7d"
	if got := learnNEAT(intake, blend, nil, nil); got == nil {
		t.Fatalf("7d signal should teach NEAT")
	}
}

func TestLearnNEATSanityFloor(t *testing.T) {
	intake := intakeSummary{daysLogged: 7, avgCalories: floatPtr(600)}
	delta := 0.0
	blend := BlendedTrend{DeltaPerWeek: &delta, SignalUsed: SignalMultiWindow}
	if got := learnNEAT(intake, blend, nil, nil); got != nil {
		t.Fatalf("implausibly low expenditure must be rejected, got %v", *got)
	}
}

func TestClampGoalsCalorieFloorOverridesBand(t *testing.T) {
	prev := Goals{Calories: 1250, Protein: 100, Carbs: 120, Fat: 42}
	got := clampGoals(1000, 100, prev)
	if got.Calories != 1200 {
		t.Fatalf("calories want=1200 (absolute floor) got=%d", got.Calories)
	}
}
