package gamification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/rprx-coach/backend/internal/models"
)

type fakeProfiles struct {
	profile models.Profile
	points  int
}

func (f *fakeProfiles) Get(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	return f.profile, nil
}

func (f *fakeProfiles) AddPoints(ctx context.Context, userID uuid.UUID, points int) error {
	f.points += points
	f.profile.TotalPointsEarned += points
	return nil
}

func (f *fakeProfiles) UpdateStreak(ctx context.Context, userID uuid.UUID, current int, lastActive time.Time) error {
	f.profile.CurrentStreak = current
	if current > f.profile.LongestStreak {
		f.profile.LongestStreak = current
	}
	f.profile.LastActiveDate = &lastActive
	return nil
}

type fakeBadges struct {
	definitions []models.BadgeDefinition
	earned      map[uuid.UUID]struct{}
}

func newFakeBadges(definitions ...models.BadgeDefinition) *fakeBadges {
	return &fakeBadges{definitions: definitions, earned: make(map[uuid.UUID]struct{})}
}

func (f *fakeBadges) ListActiveByTriggers(ctx context.Context, triggers []models.TriggerType) ([]models.BadgeDefinition, error) {
	matched := make([]models.BadgeDefinition, 0)
	for _, badge := range f.definitions {
		for _, trigger := range triggers {
			if badge.TriggerType == trigger {
				matched = append(matched, badge)
				break
			}
		}
	}
	return matched, nil
}

func (f *fakeBadges) EarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	earned := make(map[uuid.UUID]struct{}, len(f.earned))
	for id := range f.earned {
		earned[id] = struct{}{}
	}
	return earned, nil
}

func (f *fakeBadges) Award(ctx context.Context, userID, badgeID uuid.UUID) (models.UserBadge, bool, error) {
	if _, already := f.earned[badgeID]; already {
		return models.UserBadge{UserID: userID, BadgeID: badgeID}, false, nil
	}
	f.earned[badgeID] = struct{}{}
	return models.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: time.Now()}, true, nil
}

type fakeActivities struct {
	entries []models.ActivityLogEntry
}

func (f *fakeActivities) Insert(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeActivities) CountByType(ctx context.Context, userID uuid.UUID, activityType models.ActivityType) (int, error) {
	count := 0
	for _, entry := range f.entries {
		if entry.Type == activityType {
			count++
		}
	}
	return count, nil
}

type fakeStrategies struct {
	horsemen []models.Horseman
	impacts  []string
}

func (f *fakeStrategies) CompletedHorsemen(ctx context.Context, userID uuid.UUID) ([]models.Horseman, error) {
	return f.horsemen, nil
}

func (f *fakeStrategies) ActivatedImpacts(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return f.impacts, nil
}

type fakeScores struct {
	calls int
}

func (f *fakeScores) Recompute(ctx context.Context, userID uuid.UUID) (models.RPRxScoreResult, error) {
	f.calls++
	return models.RPRxScoreResult{Total: 50, Grade: models.GradeAwakening}, nil
}

func newTestEngine(profiles *fakeProfiles, badges *fakeBadges) (*Engine, *fakeActivities, *fakeScores) {
	activities := &fakeActivities{}
	scores := &fakeScores{}
	engine := NewEngine(profiles, badges, activities, &fakeStrategies{}, scores, nil)
	return engine, activities, scores
}

// TestLogActivityAwardsPointsAndRecomputes проверяет полный цикл события активности.
func TestLogActivityAwardsPointsAndRecomputes(t *testing.T) {
	profiles := &fakeProfiles{}
	engine, activities, scores := newTestEngine(profiles, newFakeBadges())

	result, err := engine.LogActivity(context.Background(), uuid.New(), models.ActivityAssessmentComplete, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Entry.PointsEarned != 50 {
		t.Fatalf("expected 50 points for assessment, got %d", result.Entry.PointsEarned)
	}
	if profiles.points != 50 {
		t.Fatalf("expected 50 points added to profile, got %d", profiles.points)
	}
	if len(activities.entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(activities.entries))
	}
	if scores.calls != 1 {
		t.Fatalf("expected one score recompute, got %d", scores.calls)
	}
	if result.Score.Total != 50 {
		t.Fatalf("expected recomputed score in result, got %d", result.Score.Total)
	}
}

// TestBadgeAwardedOnce проверяет выдачу бейджа строго один раз.
func TestBadgeAwardedOnce(t *testing.T) {
	badge := models.BadgeDefinition{
		ID:          uuid.New(),
		Name:        "First Assessment",
		TriggerType: models.TriggerAssessmentDone,
		Points:      25,
		IsActive:    true,
	}
	profiles := &fakeProfiles{}
	engine, _, _ := newTestEngine(profiles, newFakeBadges(badge))
	userID := uuid.New()

	first, err := engine.LogActivity(context.Background(), userID, models.ActivityAssessmentComplete, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Awarded) != 1 || first.Awarded[0].Badge.ID != badge.ID {
		t.Fatalf("expected badge on first assessment, got %+v", first.Awarded)
	}
	if profiles.points != 50+25 {
		t.Fatalf("expected activity and badge points, got %d", profiles.points)
	}

	second, err := engine.LogActivity(context.Background(), userID, models.ActivityAssessmentComplete, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Awarded) != 0 {
		t.Fatalf("expected no badge on repeat, got %+v", second.Awarded)
	}
}

// TestBadgeMalformedTriggerValue проверяет, что кривой trigger_value не роняет оценку.
func TestBadgeMalformedTriggerValue(t *testing.T) {
	broken := models.BadgeDefinition{
		ID:           uuid.New(),
		Name:         "Broken",
		TriggerType:  models.TriggerAssessmentDone,
		TriggerValue: json.RawMessage(`{not json`),
		IsActive:     true,
	}
	healthy := models.BadgeDefinition{
		ID:          uuid.New(),
		Name:        "Healthy",
		TriggerType: models.TriggerAssessmentDone,
		IsActive:    true,
	}
	engine, _, _ := newTestEngine(&fakeProfiles{}, newFakeBadges(broken, healthy))

	result, err := engine.LogActivity(context.Background(), uuid.New(), models.ActivityAssessmentComplete, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Awarded) != 1 || result.Awarded[0].Badge.ID != healthy.ID {
		t.Fatalf("expected only the healthy badge, got %+v", result.Awarded)
	}
}

// TestCheckinSameDay проверяет, что повторный заход в тот же день ничего не меняет.
func TestCheckinSameDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	lastActive := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	profiles := &fakeProfiles{profile: models.Profile{
		CurrentStreak:  4,
		LongestStreak:  9,
		LastActiveDate: &lastActive,
	}}
	engine, activities, scores := newTestEngine(profiles, newFakeBadges())

	state, awarded, err := engine.Checkin(context.Background(), uuid.New(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Current != 4 || state.Longest != 9 {
		t.Fatalf("expected unchanged streak 4/9, got %d/%d", state.Current, state.Longest)
	}
	if len(awarded) != 0 || len(activities.entries) != 0 || scores.calls != 0 {
		t.Fatal("same-day checkin must not log activity or recompute")
	}
	if profiles.points != 0 {
		t.Fatalf("same-day checkin must not add points, got %d", profiles.points)
	}
}

// TestCheckinNextDay проверяет прирост streak при заходе на следующий день.
func TestCheckinNextDay(t *testing.T) {
	now := time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)
	lastActive := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	profiles := &fakeProfiles{profile: models.Profile{
		CurrentStreak:  4,
		LongestStreak:  4,
		LastActiveDate: &lastActive,
	}}
	engine, _, scores := newTestEngine(profiles, newFakeBadges())

	state, _, err := engine.Checkin(context.Background(), uuid.New(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Current != 5 {
		t.Fatalf("expected streak 5, got %d", state.Current)
	}
	if state.Longest != 5 {
		t.Fatalf("expected longest 5, got %d", state.Longest)
	}
	if profiles.points != 5 {
		t.Fatalf("expected checkin points, got %d", profiles.points)
	}
	if scores.calls != 1 {
		t.Fatalf("expected score recompute, got %d calls", scores.calls)
	}
}

// TestCheckinAfterGap проверяет сброс streak при пропуске дня.
func TestCheckinAfterGap(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	lastActive := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	profiles := &fakeProfiles{profile: models.Profile{
		CurrentStreak:  7,
		LongestStreak:  12,
		LastActiveDate: &lastActive,
	}}
	engine, _, _ := newTestEngine(profiles, newFakeBadges())

	state, _, err := engine.Checkin(context.Background(), uuid.New(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Current != 1 {
		t.Fatalf("expected streak reset to 1, got %d", state.Current)
	}
	if state.Longest != 12 {
		t.Fatalf("expected longest preserved at 12, got %d", state.Longest)
	}
}

// TestCheckinStreakBadge проверяет выдачу бейджа за достигнутый streak.
func TestCheckinStreakBadge(t *testing.T) {
	count := 5
	trigger, _ := json.Marshal(map[string]int{"count": count})
	badge := models.BadgeDefinition{
		ID:           uuid.New(),
		Name:         "Five in a Row",
		TriggerType:  models.TriggerStreakReached,
		TriggerValue: trigger,
		IsActive:     true,
	}

	lastActive := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	profiles := &fakeProfiles{profile: models.Profile{
		CurrentStreak:  4,
		LongestStreak:  4,
		LastActiveDate: &lastActive,
	}}
	engine, _, _ := newTestEngine(profiles, newFakeBadges(badge))

	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	_, awarded, err := engine.Checkin(context.Background(), uuid.New(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(awarded) != 1 || awarded[0].Badge.ID != badge.ID {
		t.Fatalf("expected streak badge, got %+v", awarded)
	}
}

// TestProfileCompleteness проверяет шкалу заполненности профиля.
func TestProfileCompleteness(t *testing.T) {
	if got := ProfileCompleteness(models.Profile{}); got != 0 {
		t.Fatalf("expected 0 for empty profile, got %d", got)
	}

	filing := "single"
	worry := models.WorrySometimes
	full := models.Profile{
		MonthlyIncomeCents:           500000,
		MonthlyHousingCents:          150000,
		MonthlyLivingCents:           100000,
		EmergencyFundCents:           200000,
		RetirementBalanceCents:       1000000,
		MonthlyContributionCents:     50000,
		DesiredRetirementIncomeCents: 300000,
		FilingStatus:                 &filing,
		TaxAdvantagedAccounts:        []string{"401k"},
		MoneyWorry:                   &worry,
	}
	if got := ProfileCompleteness(full); got != 100 {
		t.Fatalf("expected 100 for full profile, got %d", got)
	}
}
