package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/ani"
	"github.com/foodenough/foodenough-backend/internal/clients/redislock"
	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/repos"
	"github.com/foodenough/foodenough-backend/internal/types"
)

// Eligibility gate failures. The sweep treats all of these as "skip", only a
// manual trigger surfaces them to the caller.
var (
	ErrNotPremium          = errors.New("recalibration requires a premium account")
	ErrGoalsNotSet         = errors.New("goals must be set before recalibration")
	ErrInsufficientHistory = errors.New("at least 7 days of food logging history required")
	ErrInsufficientLogging = errors.New("at least 5 of the last 7 days must have food logs")
	ErrCooldown            = errors.New("recalibration already ran within the last 6 days")
	ErrRecalInProgress     = errors.New("a recalibration for this user is already running")
)

const (
	minHistoryDays   = 7
	minLoggedDays    = 5
	cooldownDays     = 6
	recalLockTTL     = 2 * time.Minute
	sweepConcurrency = 4

	// The sweep only revisits users already in the weekly cycle, and waits
	// the full seven-day period between revisits. A user's first
	// recalibration happens on demand.
	sweepCooldownDays = 7
)

type SweepResult struct {
	Processed    int `json:"processed"`
	Recalibrated int `json:"recalibrated"`
	Skipped      int `json:"skipped"`
	Errors       int `json:"errors"`
}

type RecalibrationService interface {
	TriggerForUser(ctx context.Context, userID uuid.UUID) (*types.RecalibrationRecord, error)
	Latest(ctx context.Context, userID uuid.UUID) (*types.RecalibrationRecord, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.RecalibrationRecord, error)
	RunBatchSweep(ctx context.Context) (*SweepResult, error)
	StartWorker(ctx context.Context)
}

type recalibrationService struct {
	db     *gorm.DB
	log    *logger.Logger
	locker redislock.Locker

	userRepo    repos.UserRepo
	foodLogRepo repos.FoodLogRepo
	weightRepo  repos.WeightEntryRepo
	planRepo    repos.WorkoutPlanRepo
	sessionRepo repos.PlanSessionRepo
	burnRepo    repos.BurnLogRepo
	metricRepo  repos.HealthMetricRepo
	recalRepo   repos.RecalibrationRepo
	insightRepo repos.InsightRepo

	sweepInterval time.Duration
}

func NewRecalibrationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	locker redislock.Locker,
	userRepo repos.UserRepo,
	foodLogRepo repos.FoodLogRepo,
	weightRepo repos.WeightEntryRepo,
	planRepo repos.WorkoutPlanRepo,
	sessionRepo repos.PlanSessionRepo,
	burnRepo repos.BurnLogRepo,
	metricRepo repos.HealthMetricRepo,
	recalRepo repos.RecalibrationRepo,
	insightRepo repos.InsightRepo,
	sweepInterval time.Duration,
) RecalibrationService {
	serviceLog := baseLog.With("service", "RecalibrationService")
	if sweepInterval <= 0 {
		sweepInterval = 6 * time.Hour
	}
	return &recalibrationService{
		db:            db,
		log:           serviceLog,
		locker:        locker,
		userRepo:      userRepo,
		foodLogRepo:   foodLogRepo,
		weightRepo:    weightRepo,
		planRepo:      planRepo,
		sessionRepo:   sessionRepo,
		burnRepo:      burnRepo,
		metricRepo:    metricRepo,
		recalRepo:     recalRepo,
		insightRepo:   insightRepo,
		sweepInterval: sweepInterval,
	}
}

// txNEATPersister binds the engine's NEAT write to the run's transaction so
// a failed record insert rolls the learned value back too.
type txNEATPersister struct {
	tx       *gorm.DB
	userRepo repos.UserRepo
	userID   uuid.UUID
}

func (p *txNEATPersister) PersistNEAT(ctx context.Context, neat float64) error {
	return p.userRepo.UpdateLearnedNEAT(ctx, p.tx, p.userID, neat)
}

func (rs *recalibrationService) TriggerForUser(ctx context.Context, userID uuid.UUID) (*types.RecalibrationRecord, error) {
	release, acquired, err := rs.locker.Acquire(ctx, "ani:recal:"+userID.String(), recalLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire recal lock: %w", err)
	}
	if !acquired {
		return nil, ErrRecalInProgress
	}
	defer release()

	now := time.Now().UTC()
	user, err := rs.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := rs.checkGates(ctx, user, now); err != nil {
		return nil, err
	}

	snap, err := rs.buildSnapshot(ctx, user, now)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	var record *types.RecalibrationRecord
	err = rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		persist := &txNEATPersister{tx: tx, userRepo: rs.userRepo, userID: userID}
		result := ani.Recalibrate(ctx, *snap, persist)
		if result.NEATPersistErr != nil {
			return result.NEATPersistErr
		}

		analysisJSON, mErr := json.Marshal(result.Analysis)
		if mErr != nil {
			return fmt.Errorf("encode analysis: %w", mErr)
		}

		rec := &types.RecalibrationRecord{
			ID:              uuid.New(),
			UserID:          userID,
			PeriodStart:     snap.PeriodStart,
			PeriodEnd:       snap.PeriodEnd,
			PeriodDay:       snap.PeriodEnd.UTC().Format("2006-01-02"),
			PrevCalorieGoal: snap.Goals.Calories,
			PrevProteinGoal: snap.Goals.Protein,
			PrevCarbsGoal:   snap.Goals.Carbs,
			PrevFatGoal:     snap.Goals.Fat,
			NewCalorieGoal:  result.Goals.Calories,
			NewProteinGoal:  result.Goals.Protein,
			NewCarbsGoal:    result.Goals.Carbs,
			NewFatGoal:      result.Goals.Fat,
			NEATEstimate:    result.NEATEstimate,
			Analysis:        datatypes.JSON(analysisJSON),
			Reasoning:       result.Reasoning,
		}
		created, cErr := rs.recalRepo.Create(ctx, tx, rec)
		if cErr != nil {
			if errors.Is(cErr, repos.ErrDuplicatePeriod) {
				return ErrCooldown
			}
			return fmt.Errorf("create recalibration record: %w", cErr)
		}

		if len(result.Insights) > 0 {
			insights := make([]*types.Insight, 0, len(result.Insights))
			for _, in := range result.Insights {
				recID := created.ID
				insights = append(insights, &types.Insight{
					ID:              uuid.New(),
					UserID:          userID,
					RecalibrationID: &recID,
					InsightType:     in.Type,
					Title:           in.Title,
					Body:            in.Body,
				})
			}
			if iErr := rs.insightRepo.CreateBatch(ctx, tx, insights); iErr != nil {
				return fmt.Errorf("create insights: %w", iErr)
			}
		}

		if uErr := rs.userRepo.UpdateGoals(ctx, tx, userID,
			result.Goals.Calories, result.Goals.Protein, result.Goals.Carbs, result.Goals.Fat); uErr != nil {
			return fmt.Errorf("update user goals: %w", uErr)
		}

		record = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	rs.log.Info("recalibration complete",
		"user_id", userID,
		"prev_calories", record.PrevCalorieGoal,
		"new_calories", record.NewCalorieGoal,
	)
	return record, nil
}

func (rs *recalibrationService) checkGates(ctx context.Context, user *types.User, now time.Time) error {
	if !user.IsPremium {
		return ErrNotPremium
	}
	if user.CalorieGoal == nil || user.ProteinGoal == nil || user.CarbsGoal == nil || user.FatGoal == nil {
		return ErrGoalsNotSet
	}

	earliest, err := rs.foodLogRepo.EarliestTimestamp(ctx, nil, user.ID)
	if err != nil {
		return fmt.Errorf("check history: %w", err)
	}
	if earliest == nil || now.Sub(*earliest) < minHistoryDays*24*time.Hour {
		return ErrInsufficientHistory
	}

	loggedDays, err := rs.foodLogRepo.CountDistinctDays(ctx, nil, user.ID, now.AddDate(0, 0, -7), now)
	if err != nil {
		return fmt.Errorf("count logged days: %w", err)
	}
	if loggedDays < minLoggedDays {
		return ErrInsufficientLogging
	}

	latest, err := rs.recalRepo.LatestByUser(ctx, nil, user.ID)
	if err != nil {
		return fmt.Errorf("check cooldown: %w", err)
	}
	if latest != nil && now.Sub(latest.CreatedAt) < cooldownDays*24*time.Hour {
		return ErrCooldown
	}
	return nil
}

func (rs *recalibrationService) buildSnapshot(ctx context.Context, user *types.User, now time.Time) (*ani.Snapshot, error) {
	periodStart := now.AddDate(0, 0, -7)

	snap := &ani.Snapshot{
		Now:         now,
		PeriodStart: periodStart,
		PeriodEnd:   now,
		Profile: ani.UserProfile{
			GoalType:      user.GoalType,
			Age:           user.Age,
			Sex:           user.Sex,
			HeightCM:      user.HeightCM,
			ActivityLevel: user.ActivityLevel,
			LearnedNEAT:   user.LearnedNEAT,
		},
		Goals: ani.Goals{
			Calories: *user.CalorieGoal,
			Protein:  *user.ProteinGoal,
			Carbs:    *user.CarbsGoal,
			Fat:      *user.FatGoal,
		},
	}

	foodLogs, err := rs.foodLogRepo.ListByUserBetween(ctx, nil, user.ID, periodStart, now)
	if err != nil {
		return nil, fmt.Errorf("food logs: %w", err)
	}
	for _, e := range foodLogs {
		snap.FoodLogs = append(snap.FoodLogs, ani.FoodLog{
			At:       e.Timestamp,
			Calories: e.Calories,
			Protein:  e.Protein,
			Carbs:    e.Carbs,
			Fat:      e.Fat,
		})
	}

	for _, w := range []struct {
		days int
		dst  *[]ani.WeightSample
	}{
		{7, &snap.Weights7},
		{30, &snap.Weights30},
		{60, &snap.Weights60},
		{90, &snap.Weights90},
	} {
		entries, wErr := rs.weightRepo.ListByUserBetween(ctx, nil, user.ID, now.AddDate(0, 0, -w.days), now)
		if wErr != nil {
			return nil, fmt.Errorf("weights %dd: %w", w.days, wErr)
		}
		for _, e := range entries {
			*w.dst = append(*w.dst, ani.WeightSample{At: e.Timestamp, LBS: e.WeightLBS})
		}
	}

	latest, err := rs.weightRepo.Latest(ctx, nil, user.ID)
	if err != nil {
		return nil, fmt.Errorf("latest weight: %w", err)
	}
	if latest != nil {
		snap.LatestWeightLBS = &latest.WeightLBS
	}

	plan, err := rs.planRepo.ActiveByUser(ctx, nil, user.ID)
	if err != nil {
		return nil, fmt.Errorf("active plan: %w", err)
	}
	if plan != nil {
		sessions, sErr := rs.sessionRepo.ListByPlan(ctx, nil, plan.ID)
		if sErr != nil {
			return nil, fmt.Errorf("plan sessions: %w", sErr)
		}
		for _, s := range sessions {
			var exercises []ani.Exercise
			if len(s.Exercises) > 0 {
				// Malformed exercise JSON degrades to an empty list.
				_ = json.Unmarshal(s.Exercises, &exercises)
			}
			snap.Sessions = append(snap.Sessions, ani.Session{
				Exercises: exercises,
				Completed: s.Completed,
			})
		}
	}

	burns, err := rs.burnRepo.ListByUserBetween(ctx, nil, user.ID, periodStart, now)
	if err != nil {
		return nil, fmt.Errorf("burn logs: %w", err)
	}
	for _, b := range burns {
		snap.Burns = append(snap.Burns, ani.BurnRecord{At: b.Timestamp, Calories: b.CaloriesBurned})
	}

	metrics, err := rs.metricRepo.ListByUserBetween(ctx, nil, user.ID, periodStart, now)
	if err != nil {
		return nil, fmt.Errorf("health metrics: %w", err)
	}
	for _, m := range metrics {
		snap.Device = append(snap.Device, ani.DeviceDay{Date: m.Date, TotalExpenditure: m.TotalExpenditure})
	}

	return snap, nil
}

func (rs *recalibrationService) Latest(ctx context.Context, userID uuid.UUID) (*types.RecalibrationRecord, error) {
	return rs.recalRepo.LatestByUser(ctx, nil, userID)
}

func (rs *recalibrationService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.RecalibrationRecord, error) {
	return rs.recalRepo.ListByUser(ctx, nil, userID, limit)
}

func isGateError(err error) bool {
	return errors.Is(err, ErrNotPremium) ||
		errors.Is(err, ErrGoalsNotSet) ||
		errors.Is(err, ErrInsufficientHistory) ||
		errors.Is(err, ErrInsufficientLogging) ||
		errors.Is(err, ErrCooldown) ||
		errors.Is(err, ErrRecalInProgress)
}

// sweepEligible scopes the background sweep to users with at least one
// prior recalibration that is at least seven days old. Users who have never
// been recalibrated are left alone until they trigger a run themselves.
func (rs *recalibrationService) sweepEligible(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	latest, err := rs.recalRepo.LatestByUser(ctx, nil, userID)
	if err != nil {
		return false, fmt.Errorf("check sweep eligibility: %w", err)
	}
	if latest == nil {
		return false, nil
	}
	return now.Sub(latest.CreatedAt) >= sweepCooldownDays*24*time.Hour, nil
}

// RunBatchSweep tries every premium user with goals, bounded to four at a
// time. Gate failures count as skips; one user's error never stops the rest.
func (rs *recalibrationService) RunBatchSweep(ctx context.Context) (*SweepResult, error) {
	users, err := rs.userRepo.ListPremiumWithGoals(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list premium users: %w", err)
	}

	result := &SweepResult{Processed: len(users)}
	type outcome struct {
		recalibrated bool
		skipped      bool
		failed       bool
	}
	outcomes := make([]outcome, len(users))

	now := time.Now().UTC()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for i, user := range users {
		g.Go(func() error {
			eligible, eErr := rs.sweepEligible(gctx, user.ID, now)
			if eErr != nil {
				outcomes[i].failed = true
				rs.log.Error("sweep eligibility check failed", "user_id", user.ID, "error", eErr)
				return nil
			}
			if !eligible {
				outcomes[i].skipped = true
				return nil
			}
			_, tErr := rs.TriggerForUser(gctx, user.ID)
			switch {
			case tErr == nil:
				outcomes[i].recalibrated = true
			case isGateError(tErr):
				outcomes[i].skipped = true
			default:
				outcomes[i].failed = true
				rs.log.Error("sweep recalibration failed", "user_id", user.ID, "error", tErr)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, o := range outcomes {
		switch {
		case o.recalibrated:
			result.Recalibrated++
		case o.skipped:
			result.Skipped++
		case o.failed:
			result.Errors++
		}
	}
	rs.log.Info("recalibration sweep finished",
		"processed", result.Processed,
		"recalibrated", result.Recalibrated,
		"skipped", result.Skipped,
		"errors", result.Errors,
	)
	return result, nil
}

// StartWorker runs the sweep on a fixed interval until the context ends.
func (rs *recalibrationService) StartWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(rs.sweepInterval)
		defer ticker.Stop()
		rs.log.Info("recalibration worker started", "interval", rs.sweepInterval.String())
		for {
			select {
			case <-ctx.Done():
				rs.log.Info("recalibration worker stopped")
				return
			case <-ticker.C:
				if _, err := rs.RunBatchSweep(ctx); err != nil {
					rs.log.Error("recalibration sweep error", "error", err)
				}
			}
		}
	}()
}
