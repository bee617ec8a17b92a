package ani

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Engine tuning constants. These encode numeric policy, not configuration:
// they are fixed across all users.
const (
	neatSmoothOld       = 0.7
	neatSmoothNew       = 0.3
	neatSanityFloor     = 800.0
	minDaysForNEATLearn = 5
	minDeviceDays       = 3

	balanceKcalThreshold = 300.0
	balanceLBThreshold   = 1.0

	deviceHighGap   = 300.0
	deviceLowGap    = -200.0
	deviceNudgeRate = 0.30
	deviceNudgeCap  = 0.05

	adherenceLowCutoff  = 0.5
	adherenceHighCutoff = 0.8

	overTargetRatio   = 1.15
	maxAdjustFraction = 0.10
)

type UserProfile struct {
	GoalType      string
	Age           *int
	Sex           *string
	HeightCM      *float64
	ActivityLevel *string
	LearnedNEAT   *float64
}

type Goals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

type FoodLog struct {
	At       time.Time
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

type Session struct {
	Exercises []Exercise
	Completed bool
}

type BurnRecord struct {
	At       time.Time
	Calories float64
}

type DeviceDay struct {
	Date             time.Time
	TotalExpenditure *float64
}

// Snapshot is everything one recalibration run reads: a bounded, consistent
// view assembled by the scheduler. The engine performs no I/O beyond the
// NEAT persistence capability.
type Snapshot struct {
	Now         time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time

	Profile UserProfile
	Goals   Goals

	FoodLogs  []FoodLog // trailing 7 days
	Weights7  []WeightSample
	Weights30 []WeightSample
	Weights60 []WeightSample
	Weights90 []WeightSample

	Sessions []Session    // active plan's sessions
	Burns    []BurnRecord // trailing 7 days
	Device   []DeviceDay  // health metrics for the period

	LatestWeightLBS *float64
}

// NEATPersister is the engine's single outbound write capability. The
// scheduler binds it to the per-user transaction.
type NEATPersister interface {
	PersistNEAT(ctx context.Context, neat float64) error
}

type Insight struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Analysis struct {
	DaysLogged            int                     `json:"days_logged"`
	AvgCalories           *float64                `json:"avg_calories"`
	AvgProtein            *float64                `json:"avg_protein"`
	WeightDelta           *float64                `json:"weight_delta"`
	WorkoutAdherence      *float64                `json:"workout_adherence"`
	DetectedPatterns      []string                `json:"detected_patterns"`
	AvgExpenditure        *float64                `json:"avg_expenditure"`
	ExpenditureVsEstimate *float64                `json:"expenditure_vs_estimate"`
	NEATEstimate          *float64                `json:"neat_estimate"`
	CaloriesOut           *float64                `json:"calories_out"`
	NetBalance            *float64                `json:"net_balance"`
	WeightTrendSignal     string                  `json:"weight_trend_signal"`
	EnergyBalanceAgrees   *bool                   `json:"energy_balance_agrees"`
	SignalUsed            string                  `json:"signal_used"`
	TrendWindows          map[string]WindowDetail `json:"trend_windows"`
	WindowsUsed           []string                `json:"windows_used"`
}

type Result struct {
	Goals        Goals
	Analysis     Analysis
	Reasoning    string
	Insights     []Insight
	NEATEstimate *float64

	// NEATPersistErr carries a persistence-capability failure out to the
	// scheduler so it can roll the transaction back; the engine itself
	// never aborts a run.
	NEATPersistErr error
}

/* ─── Decision matrix ─────────────────────────────────────────────────── */

type adjustGate int

const (
	gateAlways adjustGate = iota
	// gateBalanceDisagrees fires only when the energy-balance cross-check
	// explicitly disagrees; agreement or an unknown balance blocks it.
	gateBalanceDisagrees
	// gateBalanceDisagreesSurplus additionally requires a positive net
	// balance (logged intake above estimated expenditure).
	gateBalanceDisagreesSurplus
)

type trendRule struct {
	multiplier     float64 // applied to the calorie goal; 1.0 means hold
	gate           adjustGate
	reason         string // appended when the adjustment applies
	fallbackReason string // appended when the gate blocks the adjustment
	insightType    string
	insightTitle   string
	insightBody    string
	insightOnHold  bool // emit the insight even when no adjustment is made
}

// trendMatrix is the (goal type × trend classification) decision table.
// Keeping it as data makes the branching independently testable.
var trendMatrix = map[string]map[string]trendRule{
	"lose": {
		TrendTooFast: {
			multiplier:    1.05,
			reason:        "You're losing weight faster than the safe range, so calories are coming up 5% to keep the loss sustainable.",
			insightType:   InsightWarningType,
			insightTitle:  "Rapid weight loss",
			insightBody:   "You lost more than 2 lbs this week. A small calorie increase protects muscle and energy while you keep losing.",
			insightOnHold: true,
		},
		TrendOnTrack: {
			multiplier:    1.0,
			reason:        "Weight loss is right on track. Keep doing what you're doing.",
			insightType:   InsightAchievementType,
			insightTitle:  "Right on track",
			insightBody:   "Your rate of loss is inside the safe, sustainable range. Keep doing what you're doing.",
			insightOnHold: true,
		},
		TrendTooSlow: {
			multiplier:     0.97,
			gate:           gateBalanceDisagrees,
			reason:         "Loss has stalled and your logged intake doesn't explain it, so calories are nudged down 3%.",
			fallbackReason: "Loss is slower than expected this week. That could be water retention, so targets hold steady for now.",
		},
		TrendWrongDirection: {
			multiplier:     0.95,
			gate:           gateBalanceDisagreesSurplus,
			reason:         "The scale moved up while you're aiming to lose and intake looks above expenditure, so calories are coming down 5%.",
			fallbackReason: "The scale ticked up this week. Holding targets steady while more data comes in.",
			insightType:    InsightWarningType,
			insightTitle:   "Trending the wrong way",
			insightBody:    "Weight moved up during a cut. Calories were reduced to get the trend pointing back down.",
		},
	},
	"gain": {
		TrendOnTrack: {
			multiplier:    1.0,
			reason:        "Weight gain is right on track. Keep doing what you're doing.",
			insightType:   InsightAchievementType,
			insightTitle:  "Steady gains",
			insightBody:   "Your rate of gain is inside the lean-gain range. Keep it up.",
			insightOnHold: true,
		},
		TrendTooSlow: {
			multiplier: 1.05,
			reason:     "Gain is slower than planned, so calories are coming up 5%.",
		},
		TrendTooFast: {
			multiplier:    0.97,
			reason:        "You're gaining faster than the lean range, so calories are trimmed 3%.",
			insightType:   InsightWarningType,
			insightTitle:  "Gaining too fast",
			insightBody:   "Gaining more than 1 lb/week tends to add fat rather than muscle. A small trim keeps the gain lean.",
			insightOnHold: true,
		},
		TrendWrongDirection: {
			multiplier: 1.07,
			reason:     "You're losing weight while trying to gain, so calories are coming up 7%.",
		},
	},
	"maintain": {
		TrendOnTrack: {
			multiplier:    1.0,
			reason:        "Your weight is stable and right where you want it.",
			insightType:   InsightAchievementType,
			insightTitle:  "Holding steady",
			insightBody:   "Weight stayed inside the maintenance band this week. Targets are dialed in.",
			insightOnHold: true,
		},
		TrendTooFast: {
			multiplier: 1.07,
			reason:     "You're losing weight while maintaining, so calories are coming up 7%.",
		},
		TrendTooSlow: {
			multiplier: 0.95,
			reason:     "You're gaining weight while maintaining, so calories are coming down 5%.",
		},
	},
}

// Insight type names re-exported here so the matrix literals stay local.
const (
	InsightPatternType     = "pattern"
	InsightAchievementType = "achievement"
	InsightWarningType     = "warning"
	InsightTipType         = "tip"
)

/* ─── Engine ──────────────────────────────────────────────────────────── */

// Recalibrate runs the weekly three-signal reconciliation. It never returns
// an error: every missing signal degrades to "skip that contribution", and
// a run with no usable data yields unchanged goals with generic reasoning.
func Recalibrate(ctx context.Context, snap Snapshot, persist NEATPersister) Result {
	ctx, span := otel.Tracer("ani").Start(ctx, "ani.recalibrate")
	defer span.End()

	prev := snap.Goals
	res := Result{Goals: prev}
	var (
		reasons  []string
		insights []Insight
		patterns []string
	)

	// Step 1: aggregate intake.
	intake := aggregateIntake(snap.FoodLogs)
	res.Analysis.DaysLogged = intake.daysLogged
	res.Analysis.AvgCalories = intake.avgCalories
	res.Analysis.AvgProtein = intake.avgProtein

	// Step 2: weight signal.
	blend := BlendTrend(snap.Weights7, snap.Weights30, snap.Weights60, snap.Weights90)
	classification := TrendNoData
	if blend.DeltaPerWeek != nil {
		classification = ClassifyTrend(snap.Profile.GoalType, *blend.DeltaPerWeek)
	}
	res.Analysis.WeightDelta = blend.DeltaPerWeek
	res.Analysis.WeightTrendSignal = classification
	res.Analysis.SignalUsed = blend.SignalUsed
	res.Analysis.TrendWindows = blend.Windows
	res.Analysis.WindowsUsed = blend.WindowsUsed
	span.SetAttributes(
		attribute.String("trend.classification", classification),
		attribute.String("trend.signal_used", blend.SignalUsed),
		attribute.Int("intake.days_logged", intake.daysLogged),
	)

	// Step 3: expenditure signal.
	baselineNEAT := neatBaseline(snap.Profile, snap.LatestWeightLBS)
	workoutPerDay := workoutCaloriesPerDay(snap)
	deviceAvg, deviceDays := deviceExpenditure(snap.Device)
	hasRealExpenditure := deviceDays >= minDeviceDays

	var caloriesOut *float64
	switch {
	case hasRealExpenditure:
		caloriesOut = &deviceAvg
		res.Analysis.AvgExpenditure = &deviceAvg
	case baselineNEAT != nil:
		out := *baselineNEAT + workoutPerDay
		caloriesOut = &out
	}

	// Step 4: learn NEAT from the week's intake and weight delta.
	neatUsed := snap.Profile.LearnedNEAT
	if neatUsed == nil {
		neatUsed = baselineNEAT
	}
	if learned := learnNEAT(intake, blend, snap.Profile.LearnedNEAT, baselineNEAT); learned != nil {
		neatUsed = learned
		res.NEATEstimate = learned
		if persist != nil {
			if err := persist.PersistNEAT(ctx, *learned); err != nil {
				res.NEATPersistErr = fmt.Errorf("persist learned NEAT: %w", err)
			}
		}
		if !hasRealExpenditure {
			out := *learned + workoutPerDay
			caloriesOut = &out
		}
	}
	if res.NEATEstimate == nil {
		res.NEATEstimate = neatUsed
	}
	res.Analysis.NEATEstimate = neatUsed
	res.Analysis.CaloriesOut = caloriesOut

	// Step 5: energy-balance cross-check.
	var netBalance *float64
	if intake.avgCalories != nil && caloriesOut != nil {
		nb := *intake.avgCalories - *caloriesOut
		netBalance = &nb
	}
	res.Analysis.NetBalance = netBalance
	agrees := energyBalanceAgrees(snap.Profile.GoalType, netBalance, blend.DeltaPerWeek)
	res.Analysis.EnergyBalanceAgrees = agrees

	// Step 6: adjustment policy.
	newCal := float64(prev.Calories)
	newPro := float64(prev.Protein)
	adjusted := false

	if classification == TrendNoData {
		insights = append(insights, Insight{
			Type:  InsightTipType,
			Title: "Step on the scale",
			Body:  "Log a few weigh-ins this week so recalibration has a weight signal to work from.",
		})
	} else if rule, ok := trendMatrix[snap.Profile.GoalType][classification]; ok {
		apply := gateOpen(rule.gate, agrees, netBalance)
		if apply && rule.multiplier != 1.0 {
			newCal *= rule.multiplier
			adjusted = true
			reasons = append(reasons, rule.reason)
		} else if rule.multiplier == 1.0 {
			reasons = append(reasons, rule.reason)
		} else if rule.fallbackReason != "" {
			reasons = append(reasons, rule.fallbackReason)
		}
		if rule.insightType != "" && (apply || rule.insightOnHold) {
			insights = append(insights, Insight{Type: rule.insightType, Title: rule.insightTitle, Body: rule.insightBody})
		}
	}

	// Cross-check insight whenever the agreement signal exists.
	if agrees != nil {
		if *agrees {
			insights = append(insights, Insight{
				Type:  InsightAchievementType,
				Title: "Signals agree",
				Body:  "Your logged intake and weight trend tell the same story. The targets are working from solid data.",
			})
		} else {
			insights = append(insights, Insight{
				Type:  InsightPatternType,
				Title: "Signals disagree",
				Body:  "Your weight trend doesn't match what your logged intake predicts. Unlogged food or water shifts are the usual suspects.",
			})
			patterns = append(patterns, "energy_balance_mismatch")
		}
	}

	// Device expenditure vs the static estimate.
	if hasRealExpenditure && baselineNEAT != nil {
		static := *baselineNEAT + workoutPerDay
		gap := deviceAvg - static
		res.Analysis.ExpenditureVsEstimate = &gap
		if gap > deviceHighGap || gap < deviceLowGap {
			nudge := deviceNudgeRate * gap
			limit := deviceNudgeCap * float64(prev.Calories)
			if nudge > limit {
				nudge = limit
			} else if nudge < -limit {
				nudge = -limit
			}
			newCal += nudge
			adjusted = true
			direction := "more"
			if gap < 0 {
				direction = "fewer"
			}
			reasons = append(reasons, fmt.Sprintf("Your device reports you burn %s calories than estimated, so the target shifted part of the way toward it.", direction))
			insights = append(insights, Insight{
				Type:  InsightPatternType,
				Title: "Device data refined your target",
				Body:  fmt.Sprintf("Wearable expenditure averaged %.0f kcal/day against an estimate of %.0f. Targets lean on the measured number.", deviceAvg, static),
			})
			patterns = append(patterns, "device_expenditure_divergence")
		}
	}

	// Weekend protein dip.
	if intake.weekendProteinDip {
		newPro *= 1.05
		adjusted = true
		reasons = append(reasons, "Protein drops off on weekends, so the protein target is up 5% to keep the weekly average on target.")
		insights = append(insights, Insight{
			Type:  InsightPatternType,
			Title: "Weekend protein dip",
			Body:  "Your weekend protein runs well below weekdays. Front-loading protein at weekend breakfasts usually closes the gap.",
		})
		patterns = append(patterns, "weekend_protein_dip")
	}

	// Workout adherence.
	planned := len(snap.Sessions)
	completed := 0
	for _, s := range snap.Sessions {
		if s.Completed {
			completed++
		}
	}
	adherence := 0.0
	if planned > 0 {
		adherence = float64(completed) / float64(planned)
	}
	adherencePct := adherence * 100
	res.Analysis.WorkoutAdherence = &adherencePct
	if planned > 0 && adherence < adherenceLowCutoff {
		newCal *= 0.97
		adjusted = true
		reasons = append(reasons, "Fewer than half of planned workouts happened, so calories are trimmed 3% to match the lower output.")
		insights = append(insights, Insight{
			Type:  InsightWarningType,
			Title: "Workouts slipping",
			Body:  fmt.Sprintf("Only %d of %d planned sessions were completed. Targets assume the training you log actually happens.", completed, planned),
		})
		patterns = append(patterns, "low_workout_adherence")
	} else if planned > 0 && adherence >= adherenceHighCutoff {
		insights = append(insights, Insight{
			Type:  InsightAchievementType,
			Title: "Training consistency",
			Body:  fmt.Sprintf("%d of %d planned sessions done. That consistency is what makes the numbers trustworthy.", completed, planned),
		})
	}

	// Consistent overshoot: meet the user partway rather than pretending.
	if snap.Profile.GoalType != "lose" &&
		intake.avgCalories != nil &&
		intake.daysLogged >= minDaysForNEATLearn &&
		*intake.avgCalories > overTargetRatio*float64(prev.Calories) {
		newCal += (*intake.avgCalories - newCal) / 2
		adjusted = true
		reasons = append(reasons, "You consistently eat above target, so the target moved partway toward your actual intake.")
		patterns = append(patterns, "consistently_over_target")
	}

	// Step 7: clamp and recompute macros. Skipped entirely when nothing
	// adjusted, so a clean week returns goals byte-for-byte unchanged.
	if adjusted {
		res.Goals = clampGoals(newCal, newPro, prev)
	}

	// Step 8: logging consistency.
	switch {
	case intake.daysLogged >= 6:
		insights = append(insights, Insight{
			Type:  InsightAchievementType,
			Title: "Consistent logging",
			Body:  fmt.Sprintf("You logged food on %d of the last 7 days. That's what makes weekly recalibration accurate.", intake.daysLogged),
		})
	case intake.daysLogged == 5:
		insights = append(insights, Insight{
			Type:  InsightTipType,
			Title: "A couple days missing",
			Body:  "Two unlogged days this week. Even a rough estimate on busy days keeps the weekly math honest.",
		})
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Your targets look good, no changes needed.")
	}
	res.Reasoning = strings.Join(reasons, " ")
	res.Insights = insights
	res.Analysis.DetectedPatterns = patterns
	return res
}

/* ─── Step helpers ────────────────────────────────────────────────────── */

type intakeSummary struct {
	daysLogged        int
	avgCalories       *float64
	avgProtein        *float64
	weekendProteinDip bool
}

// aggregateIntake reduces raw food logs to per-day totals and averages over
// days that actually have a log.
func aggregateIntake(logs []FoodLog) intakeSummary {
	type dayTotal struct {
		calories float64
		protein  float64
		weekend  bool
	}
	days := make(map[string]*dayTotal)
	for _, l := range logs {
		utc := l.At.UTC()
		key := utc.Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			wd := utc.Weekday()
			d = &dayTotal{weekend: wd == time.Saturday || wd == time.Sunday}
			days[key] = d
		}
		d.calories += l.Calories
		d.protein += l.Protein
	}

	out := intakeSummary{daysLogged: len(days)}
	if len(days) == 0 {
		return out
	}

	var calSum, proSum float64
	var weekdayPro, weekendPro []float64
	for _, d := range days {
		calSum += d.calories
		proSum += d.protein
		if d.weekend {
			weekendPro = append(weekendPro, d.protein)
		} else {
			weekdayPro = append(weekdayPro, d.protein)
		}
	}
	avgCal := calSum / float64(len(days))
	avgPro := proSum / float64(len(days))
	out.avgCalories = &avgCal
	out.avgProtein = &avgPro

	if len(weekdayPro) > 0 && len(weekendPro) > 0 {
		if mean(weekendPro) < 0.75*mean(weekdayPro) {
			out.weekendProteinDip = true
		}
	}
	return out
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// neatBaseline returns the starting NEAT estimate: the learned value if one
// exists, else a Mifflin maintenance TDEE when the profile is complete.
func neatBaseline(p UserProfile, latestWeightLBS *float64) *float64 {
	if p.LearnedNEAT != nil {
		v := *p.LearnedNEAT
		return &v
	}
	if latestWeightLBS == nil || p.HeightCM == nil || p.Age == nil || p.Sex == nil || p.ActivityLevel == nil {
		return nil
	}
	v := maintenanceTDEE(*latestWeightLBS, *p.HeightCM, *p.Age, *p.Sex, *p.ActivityLevel)
	return &v
}

// workoutCaloriesPerDay prefers explicit burn logs; otherwise it estimates
// from completed plan sessions that stored exercises.
func workoutCaloriesPerDay(snap Snapshot) float64 {
	if len(snap.Burns) > 0 {
		var sum float64
		for _, b := range snap.Burns {
			sum += b.Calories
		}
		return sum / 7.0
	}
	if snap.LatestWeightLBS == nil {
		return 0
	}
	weightKG := *snap.LatestWeightLBS * lbsToKG
	var sum float64
	for _, s := range snap.Sessions {
		if !s.Completed || len(s.Exercises) == 0 {
			continue
		}
		sum += float64(EstimateWorkoutEnergy(s.Exercises, weightKG).Calories)
	}
	return sum / 7.0
}

func deviceExpenditure(days []DeviceDay) (avg float64, count int) {
	var sum float64
	for _, d := range days {
		if d.TotalExpenditure != nil {
			sum += *d.TotalExpenditure
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

// learnNEAT back-solves daily expenditure from the week's intake and weight
// change, then blends it with the prior. Only short-horizon signals (7d,
// 30d, or the multi-window blend) are considered attributable enough to
// learn from.
func learnNEAT(intake intakeSummary, blend BlendedTrend, prior, baseline *float64) *float64 {
	if blend.DeltaPerWeek == nil || intake.avgCalories == nil || intake.daysLogged < minDaysForNEATLearn {
		return nil
	}
	switch blend.SignalUsed {
	case SignalMultiWindow, "weight_7d", "weight_30d":
	default:
		return nil
	}

	impliedDailySurplus := (*blend.DeltaPerWeek / 7.0) * kcalPerLB
	calculated := *intake.avgCalories - impliedDailySurplus
	if calculated <= neatSanityFloor {
		return nil
	}

	p := calculated
	if prior != nil {
		p = *prior
	} else if baseline != nil {
		p = *baseline
	}
	learned := smoothNEAT(p, calculated)
	return &learned
}

// smoothNEAT is the exponential blend that makes learned_neat converge
// instead of oscillate.
func smoothNEAT(prior, calculated float64) float64 {
	return neatSmoothOld*prior + neatSmoothNew*calculated
}

// energyBalanceAgrees checks whether the intake-implied surplus/deficit
// direction matches the observed weight trend, within ±300 kcal and ±1 lb
// thresholds. Nil when either signal is unavailable.
func energyBalanceAgrees(goalType string, netBalance, deltaPerWeek *float64) *bool {
	if netBalance == nil || deltaPerWeek == nil {
		return nil
	}
	var agrees bool
	switch goalType {
	case "lose":
		agrees = *netBalance < -balanceKcalThreshold && *deltaPerWeek < 0
	case "gain":
		agrees = *netBalance > balanceKcalThreshold && *deltaPerWeek > 0
	default:
		agrees = math.Abs(*netBalance) <= balanceKcalThreshold && math.Abs(*deltaPerWeek) <= balanceLBThreshold
	}
	return &agrees
}

func gateOpen(gate adjustGate, agrees *bool, netBalance *float64) bool {
	switch gate {
	case gateBalanceDisagrees:
		return agrees != nil && !*agrees
	case gateBalanceDisagreesSurplus:
		return agrees != nil && !*agrees && netBalance != nil && *netBalance > 0
	default:
		return true
	}
}

// clampGoals applies the two-stage clamp: calories and protein bounded to
// ±10% of their previous values (calories additionally floored at 1200),
// then fat recomputed from the new calories and carbs from the remainder,
// each bounded to ±10% of their own previous values. No single week can
// move any one target more than 10%, even through the recompute chain.
func clampGoals(newCal, newPro float64, prev Goals) Goals {
	cal := clampBand(int(math.Round(newCal)), prev.Calories)
	if lo := calorieLowerBound(prev.Calories); cal < lo {
		cal = lo
	}

	pro := clampBand(int(math.Round(newPro)), prev.Protein)

	fat := clampBand(int(math.Round(fatCalShare*float64(cal)/kcalPerGramFat)), prev.Fat)

	carbCals := float64(cal) - float64(pro)*kcalPerGramPro - float64(fat)*kcalPerGramFat
	if carbCals < 0 {
		carbCals = 0
	}
	carbs := clampBand(int(math.Round(carbCals/4.0)), prev.Carbs)

	return Goals{Calories: cal, Protein: pro, Carbs: carbs, Fat: fat}
}

// clampBand bounds value to prev ± round(prev*0.10).
func clampBand(value, prev int) int {
	band := int(math.Round(float64(prev) * maxAdjustFraction))
	if value > prev+band {
		return prev + band
	}
	if value < prev-band {
		return prev - band
	}
	return value
}

// calorieLowerBound is max(1200, prev−10%): the absolute floor overrides
// the percentage band downward.
func calorieLowerBound(prev int) int {
	band := int(math.Round(float64(prev) * maxAdjustFraction))
	lo := prev - band
	if lo < calorieFloor {
		return calorieFloor
	}
	return lo
}
