// Package ani holds the adaptive goal recalibration core: the goal
// calculator, workout energy estimator, weight trend analyzer, and the
// weekly recalibration engine. Everything here is pure computation over
// in-memory snapshots; persistence happens through narrow capabilities
// supplied by the caller.
package ani

import (
	"math"
	"strings"
)

const (
	lbsToKG        = 0.453592
	kcalPerLB      = 3500.0
	calorieFloor   = 1200
	proteinPerKG   = 2.0
	fatCalShare    = 0.30
	kcalPerGramPro = 4.0
	kcalPerGramFat = 9.0
)

// activityMultipliers maps activity level to its TDEE multiplier. Immutable
// after init; moderate doubles as the fallback for unrecognized levels.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

type GoalInput struct {
	WeightLBS     float64
	HeightCM      float64
	Age           int
	Sex           string // "M"/"F", case-insensitive
	ActivityLevel string
	Goal          string // lose | maintain | gain
}

type GoalResult struct {
	Calories int
	Protein  int
	Carbs    int
	Fat      int
	TDEE     int
	BMR      int
}

// mifflinBMR computes basal metabolic rate via Mifflin-St Jeor.
func mifflinBMR(weightKG, heightCM float64, age int, sex string) float64 {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if isMale(sex) {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr
}

func isMale(sex string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(sex)), "m")
}

func activityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[strings.ToLower(strings.TrimSpace(level))]; ok {
		return m
	}
	return activityMultipliers["moderate"]
}

// CalculateGoals computes baseline calorie and macro targets from
// anthropometrics. Pure; input validation is the caller's job.
func CalculateGoals(in GoalInput) GoalResult {
	weightKG := in.WeightLBS * lbsToKG
	bmr := mifflinBMR(weightKG, in.HeightCM, in.Age, in.Sex)
	tdee := bmr * activityMultiplier(in.ActivityLevel)

	target := tdee
	switch in.Goal {
	case "lose":
		target = tdee - 500
	case "gain":
		target = tdee + 300
	}
	if target < calorieFloor {
		target = calorieFloor
	}
	calories := int(math.Round(target))

	protein := int(math.Round(proteinPerKG * weightKG))
	fat := int(math.Round(fatCalShare * float64(calories) / kcalPerGramFat))

	// If protein+fat alone blow the calorie target, trim protein to the
	// calories left after fat.
	if float64(protein)*kcalPerGramPro+float64(fat)*kcalPerGramFat > float64(calories) {
		remaining := float64(calories) - float64(fat)*kcalPerGramFat
		if remaining < 0 {
			remaining = 0
		}
		protein = int(math.Round(remaining / kcalPerGramPro))
	}

	carbCals := float64(calories) - float64(protein)*kcalPerGramPro - float64(fat)*kcalPerGramFat
	if carbCals < 0 {
		carbCals = 0
	}
	carbs := int(math.Round(carbCals / 4.0))

	return GoalResult{
		Calories: calories,
		Protein:  protein,
		Carbs:    carbs,
		Fat:      fat,
		TDEE:     int(math.Round(tdee)),
		BMR:      int(math.Round(bmr)),
	}
}

// maintenanceTDEE is the engine's fallback NEAT baseline when no learned
// value exists: Mifflin at the user's latest weight with no goal adjustment.
func maintenanceTDEE(weightLBS, heightCM float64, age int, sex, activityLevel string) float64 {
	weightKG := weightLBS * lbsToKG
	return mifflinBMR(weightKG, heightCM, age, sex) * activityMultiplier(activityLevel)
}
