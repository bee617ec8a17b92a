package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

type fakeLocker struct {
	denied bool
	keys   []string
}

func (f *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	f.keys = append(f.keys, key)
	if f.denied {
		return nil, false, nil
	}
	return func() {}, true, nil
}

func (f *fakeLocker) Close() error { return nil }

type fakeUserRepo struct {
	users      map[uuid.UUID]*types.User
	getErr     error
	getCalls   int
	premium    []*types.User
	neatValues []float64
}

func (f *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *types.User) (*types.User, error) {
	return user, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.User, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ *gorm.DB, _ string) (*types.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) EmailExists(_ context.Context, _ *gorm.DB, _ string) (bool, error) {
	return false, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ map[string]interface{}) error {
	return nil
}

func (f *fakeUserRepo) UpdateGoals(_ context.Context, _ *gorm.DB, _ uuid.UUID, _, _, _, _ int) error {
	return nil
}

func (f *fakeUserRepo) UpdateLearnedNEAT(_ context.Context, _ *gorm.DB, _ uuid.UUID, neat float64) error {
	f.neatValues = append(f.neatValues, neat)
	return nil
}

func (f *fakeUserRepo) ListPremiumWithGoals(_ context.Context, _ *gorm.DB) ([]*types.User, error) {
	return f.premium, nil
}

type fakeFoodLogRepo struct {
	earliest     *time.Time
	distinctDays int
	entries      []*types.FoodLogEntry
	created      int
}

func (f *fakeFoodLogRepo) Create(_ context.Context, _ *gorm.DB, entry *types.FoodLogEntry) (*types.FoodLogEntry, error) {
	f.created++
	return entry, nil
}

func (f *fakeFoodLogRepo) GetByID(_ context.Context, _ *gorm.DB, _ uuid.UUID) (*types.FoodLogEntry, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFoodLogRepo) Update(_ context.Context, _ *gorm.DB, _ *types.FoodLogEntry) error {
	return nil
}

func (f *fakeFoodLogRepo) Delete(_ context.Context, _ *gorm.DB, _ uuid.UUID) error {
	return nil
}

func (f *fakeFoodLogRepo) ListByUserBetween(_ context.Context, _ *gorm.DB, _ uuid.UUID, _, _ time.Time) ([]*types.FoodLogEntry, error) {
	return f.entries, nil
}

func (f *fakeFoodLogRepo) ListByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.FoodLogEntry, error) {
	return nil, nil
}

func (f *fakeFoodLogRepo) EarliestTimestamp(_ context.Context, _ *gorm.DB, _ uuid.UUID) (*time.Time, error) {
	return f.earliest, nil
}

func (f *fakeFoodLogRepo) CountDistinctDays(_ context.Context, _ *gorm.DB, _ uuid.UUID, _, _ time.Time) (int, error) {
	return f.distinctDays, nil
}

type fakeRecalRepo struct {
	latest *types.RecalibrationRecord
}

func (f *fakeRecalRepo) Create(_ context.Context, _ *gorm.DB, record *types.RecalibrationRecord) (*types.RecalibrationRecord, error) {
	return record, nil
}

func (f *fakeRecalRepo) LatestByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID) (*types.RecalibrationRecord, error) {
	return f.latest, nil
}

func (f *fakeRecalRepo) ListByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ int) ([]*types.RecalibrationRecord, error) {
	return nil, nil
}

func intPtr(v int) *int { return &v }

func premiumUserWithGoals() *types.User {
	return &types.User{
		ID:          uuid.New(),
		Email:       "gate-test@example.com",
		IsPremium:   true,
		GoalType:    types.GoalLose,
		CalorieGoal: intPtr(2000),
		ProteinGoal: intPtr(150),
		CarbsGoal:   intPtr(200),
		FatGoal:     intPtr(65),
	}
}

// The eligibility gates all run before the service opens a transaction, so
// these tests drive TriggerForUser with a nil *gorm.DB.
func newGateService(t *testing.T, locker *fakeLocker, users *fakeUserRepo, food *fakeFoodLogRepo, recal *fakeRecalRepo) RecalibrationService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewRecalibrationService(nil, log, locker, users, food, nil, nil, nil, nil, nil, recal, nil, 0)
}

func TestTriggerForUserRequiresPremium(t *testing.T) {
	user := premiumUserWithGoals()
	user.IsPremium = false
	svc := newGateService(t,
		&fakeLocker{},
		&fakeUserRepo{users: map[uuid.UUID]*types.User{user.ID: user}},
		&fakeFoodLogRepo{},
		&fakeRecalRepo{},
	)

	_, err := svc.TriggerForUser(context.Background(), user.ID)
	if !errors.Is(err, ErrNotPremium) {
		t.Fatalf("want=%v got=%v", ErrNotPremium, err)
	}
}

func TestTriggerForUserRequiresGoals(t *testing.T) {
	user := premiumUserWithGoals()
	user.CalorieGoal = nil
	svc := newGateService(t,
		&fakeLocker{},
		&fakeUserRepo{users: map[uuid.UUID]*types.User{user.ID: user}},
		&fakeFoodLogRepo{},
		&fakeRecalRepo{},
	)

	_, err := svc.TriggerForUser(context.Background(), user.ID)
	if !errors.Is(err, ErrGoalsNotSet) {
		t.Fatalf("want=%v got=%v", ErrGoalsNotSet, err)
	}
}

func TestTriggerForUserRequiresSevenDaysOfHistory(t *testing.T) {
	user := premiumUserWithGoals()
	userRepo := &fakeUserRepo{users: map[uuid.UUID]*types.User{user.ID: user}}

	// No food logs at all.
	svc := newGateService(t, &fakeLocker{}, userRepo, &fakeFoodLogRepo{}, &fakeRecalRepo{})
	if _, err := svc.TriggerForUser(context.Background(), user.ID); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("no history: want=%v got=%v", ErrInsufficientHistory, err)
	}

	// First log only three days old.
	recent := time.Now().UTC().AddDate(0, 0, -3)
	svc = newGateService(t, &fakeLocker{}, userRepo, &fakeFoodLogRepo{earliest: &recent}, &fakeRecalRepo{})
	if _, err := svc.TriggerForUser(context.Background(), user.ID); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("3-day history: want=%v got=%v", ErrInsufficientHistory, err)
	}
}

func TestTriggerForUserRequiresFiveLoggedDays(t *testing.T) {
	user := premiumUserWithGoals()
	earliest := time.Now().UTC().AddDate(0, 0, -30)
	svc := newGateService(t,
		&fakeLocker{},
		&fakeUserRepo{users: map[uuid.UUID]*types.User{user.ID: user}},
		&fakeFoodLogRepo{earliest: &earliest, distinctDays: 3},
		&fakeRecalRepo{},
	)

	_, err := svc.TriggerForUser(context.Background(), user.ID)
	if !errors.Is(err, ErrInsufficientLogging) {
		t.Fatalf("want=%v got=%v", ErrInsufficientLogging, err)
	}
}

func TestTriggerForUserCooldown(t *testing.T) {
	user := premiumUserWithGoals()
	earliest := time.Now().UTC().AddDate(0, 0, -30)
	svc := newGateService(t,
		&fakeLocker{},
		&fakeUserRepo{users: map[uuid.UUID]*types.User{user.ID: user}},
		&fakeFoodLogRepo{earliest: &earliest, distinctDays: 6},
		&fakeRecalRepo{latest: &types.RecalibrationRecord{
			ID:        uuid.New(),
			UserID:    user.ID,
			CreatedAt: time.Now().UTC().AddDate(0, 0, -2),
		}},
	)

	_, err := svc.TriggerForUser(context.Background(), user.ID)
	if !errors.Is(err, ErrCooldown) {
		t.Fatalf("want=%v got=%v", ErrCooldown, err)
	}
}

func TestTriggerForUserLockDenied(t *testing.T) {
	user := premiumUserWithGoals()
	locker := &fakeLocker{denied: true}
	userRepo := &fakeUserRepo{users: map[uuid.UUID]*types.User{user.ID: user}}
	svc := newGateService(t, locker, userRepo, &fakeFoodLogRepo{}, &fakeRecalRepo{})

	_, err := svc.TriggerForUser(context.Background(), user.ID)
	if !errors.Is(err, ErrRecalInProgress) {
		t.Fatalf("want=%v got=%v", ErrRecalInProgress, err)
	}
	if userRepo.getCalls != 0 {
		t.Fatalf("lock denial must short-circuit before any reads, got %d reads", userRepo.getCalls)
	}
	wantKey := "ani:recal:" + user.ID.String()
	if len(locker.keys) != 1 || locker.keys[0] != wantKey {
		t.Fatalf("lock key want=%q got=%v", wantKey, locker.keys)
	}
}

func weekOldRecalRepo(userID uuid.UUID) *fakeRecalRepo {
	return &fakeRecalRepo{latest: &types.RecalibrationRecord{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -8),
	}}
}

func TestRunBatchSweepCountsGateFailuresAsSkips(t *testing.T) {
	a := premiumUserWithGoals()
	b := premiumUserWithGoals()
	userRepo := &fakeUserRepo{
		users:   map[uuid.UUID]*types.User{a.ID: a, b.ID: b},
		premium: []*types.User{a, b},
	}
	// Prior recalibration old enough for the sweep, but no food history:
	// every user fails the history gate.
	svc := newGateService(t, &fakeLocker{}, userRepo, &fakeFoodLogRepo{}, weekOldRecalRepo(a.ID))

	res, err := svc.RunBatchSweep(context.Background())
	if err != nil {
		t.Fatalf("RunBatchSweep: %v", err)
	}
	if res.Processed != 2 || res.Skipped != 2 || res.Recalibrated != 0 || res.Errors != 0 {
		t.Fatalf("want processed=2 skipped=2 got %+v", res)
	}
}

func TestRunBatchSweepCountsRealErrors(t *testing.T) {
	a := premiumUserWithGoals()
	userRepo := &fakeUserRepo{
		users:   map[uuid.UUID]*types.User{},
		premium: []*types.User{a},
		getErr:  errors.New("connection reset"),
	}
	svc := newGateService(t, &fakeLocker{}, userRepo, &fakeFoodLogRepo{}, weekOldRecalRepo(a.ID))

	res, err := svc.RunBatchSweep(context.Background())
	if err != nil {
		t.Fatalf("RunBatchSweep: %v", err)
	}
	if res.Errors != 1 || res.Skipped != 0 || res.Recalibrated != 0 {
		t.Fatalf("want errors=1 got %+v", res)
	}
}

func TestRunBatchSweepSkipsUsersWithNoPriorRecalibration(t *testing.T) {
	user := premiumUserWithGoals()
	earliest := time.Now().UTC().AddDate(0, 0, -30)
	locker := &fakeLocker{}
	userRepo := &fakeUserRepo{
		users:   map[uuid.UUID]*types.User{user.ID: user},
		premium: []*types.User{user},
	}
	// Fully eligible on every trigger gate, but never recalibrated before:
	// the sweep must leave the first run to an on-demand trigger.
	svc := newGateService(t, locker, userRepo, &fakeFoodLogRepo{earliest: &earliest, distinctDays: 7}, &fakeRecalRepo{})

	res, err := svc.RunBatchSweep(context.Background())
	if err != nil {
		t.Fatalf("RunBatchSweep: %v", err)
	}
	if res.Processed != 1 || res.Skipped != 1 || res.Recalibrated != 0 || res.Errors != 0 {
		t.Fatalf("want processed=1 skipped=1 got %+v", res)
	}
	if len(locker.keys) != 0 {
		t.Fatalf("skipped user must never reach the trigger, got lock attempts %v", locker.keys)
	}
}

func TestSweepEligibility(t *testing.T) {
	user := premiumUserWithGoals()
	now := time.Now().UTC()
	cases := []struct {
		name   string
		latest *types.RecalibrationRecord
		want   bool
	}{
		{"no prior record", nil, false},
		{"five days old", &types.RecalibrationRecord{UserID: user.ID, CreatedAt: now.AddDate(0, 0, -5)}, false},
		{"eight days old", &types.RecalibrationRecord{UserID: user.ID, CreatedAt: now.AddDate(0, 0, -8)}, true},
	}
	for _, tc := range cases {
		svc := newGateService(t, &fakeLocker{},
			&fakeUserRepo{users: map[uuid.UUID]*types.User{user.ID: user}},
			&fakeFoodLogRepo{},
			&fakeRecalRepo{latest: tc.latest},
		)
		got, err := svc.(*recalibrationService).sweepEligible(context.Background(), user.ID, now)
		if err != nil {
			t.Fatalf("%s: sweepEligible: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}
