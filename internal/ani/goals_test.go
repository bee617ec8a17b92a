package ani

import "testing"

func TestCalculateGoalsLose(t *testing.T) {
	got := CalculateGoals(GoalInput{
		WeightLBS:     180,
		HeightCM:      178,
		Age:           35,
		Sex:           "M",
		ActivityLevel: "moderate",
		Goal:          "lose",
	})
	if got.BMR != 1759 {
		t.Fatalf("BMR want=1759 got=%d", got.BMR)
	}
	if got.TDEE != 2726 {
		t.Fatalf("TDEE want=2726 got=%d", got.TDEE)
	}
	if got.Calories != 2226 {
		t.Fatalf("Calories want=2226 got=%d", got.Calories)
	}
	if got.Protein != 163 {
		t.Fatalf("Protein want=163 got=%d", got.Protein)
	}
	if got.Fat != 74 {
		t.Fatalf("Fat want=74 got=%d", got.Fat)
	}
	if got.Carbs != 227 {
		t.Fatalf("Carbs want=227 got=%d", got.Carbs)
	}
}

func TestCalculateGoalsCalorieFloor(t *testing.T) {
	got := CalculateGoals(GoalInput{
		WeightLBS:     80,
		HeightCM:      140,
		Age:           80,
		Sex:           "F",
		ActivityLevel: "sedentary",
		Goal:          "lose",
	})
	if got.Calories != 1200 {
		t.Fatalf("Calories want=1200 (floor) got=%d", got.Calories)
	}
}

func TestCalculateGoalsProteinTrimmedToFit(t *testing.T) {
	// 2 g/kg protein plus 30% fat would exceed the calorie target here, so
	// protein gets trimmed to whatever calories remain after fat.
	got := CalculateGoals(GoalInput{
		WeightLBS:     250,
		HeightCM:      145,
		Age:           78,
		Sex:           "F",
		ActivityLevel: "sedentary",
		Goal:          "lose",
	})
	if got.Calories != 1287 {
		t.Fatalf("Calories want=1287 got=%d", got.Calories)
	}
	if got.Protein != 225 {
		t.Fatalf("Protein want=225 got=%d", got.Protein)
	}
	if got.Carbs != 0 {
		t.Fatalf("Carbs want=0 got=%d", got.Carbs)
	}
	total := got.Protein*4 + got.Fat*9 + got.Carbs*4
	if total > got.Calories+10 {
		t.Fatalf("macros exceed calorie target: macros=%d calories=%d", total, got.Calories)
	}
}

func TestCalculateGoalsGainAddsSurplus(t *testing.T) {
	maintain := CalculateGoals(GoalInput{WeightLBS: 180, HeightCM: 178, Age: 35, Sex: "M", ActivityLevel: "moderate", Goal: "maintain"})
	gain := CalculateGoals(GoalInput{WeightLBS: 180, HeightCM: 178, Age: 35, Sex: "M", ActivityLevel: "moderate", Goal: "gain"})
	if gain.Calories-maintain.Calories != 300 {
		t.Fatalf("gain surplus want=300 got=%d", gain.Calories-maintain.Calories)
	}
}

func TestActivityMultiplierFallback(t *testing.T) {
	known := CalculateGoals(GoalInput{WeightLBS: 180, HeightCM: 178, Age: 35, Sex: "M", ActivityLevel: "moderate", Goal: "maintain"})
	unknown := CalculateGoals(GoalInput{WeightLBS: 180, HeightCM: 178, Age: 35, Sex: "M", ActivityLevel: "ultra_marathon", Goal: "maintain"})
	if known.Calories != unknown.Calories {
		t.Fatalf("unknown activity should fall back to moderate: want=%d got=%d", known.Calories, unknown.Calories)
	}
}

func TestIsMalePrefixMatching(t *testing.T) {
	cases := []struct {
		sex  string
		want bool
	}{
		{"M", true},
		{"male", true},
		{" Male ", true},
		{"F", false},
		{"female", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isMale(tc.sex); got != tc.want {
			t.Fatalf("isMale(%q) want=%v got=%v", tc.sex, tc.want, got)
		}
	}
}
