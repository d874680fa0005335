package gamification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/rprx-coach/backend/internal/models"
)

// ProfileStore описывает операции над профилем. Счетчики обновляются атомарными
// инкрементами на стороне хранилища, без read-modify-write.
type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	AddPoints(ctx context.Context, userID uuid.UUID, points int) error
	UpdateStreak(ctx context.Context, userID uuid.UUID, current int, lastActive time.Time) error
}

type BadgeStore interface {
	ListActiveByTriggers(ctx context.Context, triggers []models.TriggerType) ([]models.BadgeDefinition, error)
	EarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error)
	// Award выдает бейдж at-most-once; awarded=false означает конфликт
	// вставки: бейдж уже выдан параллельным путем.
	Award(ctx context.Context, userID, badgeID uuid.UUID) (models.UserBadge, bool, error)
}

type ActivityStore interface {
	Insert(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error)
	CountByType(ctx context.Context, userID uuid.UUID, activityType models.ActivityType) (int, error)
}

type StrategyStats interface {
	CompletedHorsemen(ctx context.Context, userID uuid.UUID) ([]models.Horseman, error)
	ActivatedImpacts(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// ScoreRecomputer пересчитывает и сохраняет RPRx-балл вместе с тиром.
type ScoreRecomputer interface {
	Recompute(ctx context.Context, userID uuid.UUID) (models.RPRxScoreResult, error)
}

// ActivityResult содержит итог одного события активности: запись лога, выданные
// бейджи и пересчитанный балл.
type ActivityResult struct {
	Entry   models.ActivityLogEntry
	Awarded []models.AwardedBadge
	Score   models.RPRxScoreResult
}

type Engine struct {
	profiles   ProfileStore
	badges     BadgeStore
	activities ActivityStore
	strategies StrategyStats
	scores     ScoreRecomputer
	points     map[models.ActivityType]int
}

// DefaultPoints возвращает базовые XP за типы активности.
func DefaultPoints() map[models.ActivityType]int {
	return map[models.ActivityType]int{
		models.ActivityAssessmentComplete: 50,
		models.ActivityDeepDiveComplete:   30,
		models.ActivityStrategyActivated:  15,
		models.ActivityStrategyCompleted:  40,
		models.ActivityDebtPayment:        10,
		models.ActivityDailyCheckin:       5,
		models.ActivityProfileUpdated:     5,
	}
}

// NewEngine создает движок геймификации поверх портов хранилища.
func NewEngine(profiles ProfileStore, badges BadgeStore, activities ActivityStore, strategies StrategyStats, scores ScoreRecomputer, points map[models.ActivityType]int) *Engine {
	if points == nil {
		points = DefaultPoints()
	}

	return &Engine{
		profiles:   profiles,
		badges:     badges,
		activities: activities,
		strategies: strategies,
		scores:     scores,
		points:     points,
	}
}

// LogActivity записывает событие активности и выполняет полный цикл:
// лог, начисление очков, оценка бейджей, пересчет балла. Порядок шагов
// важен: каждый следующий шаг читает состояние, записанное предыдущим.
func (e *Engine) LogActivity(ctx context.Context, userID uuid.UUID, activityType models.ActivityType, activityContext json.RawMessage) (ActivityResult, error) {
	points := e.points[activityType]

	entry, err := e.activities.Insert(ctx, models.ActivityLogEntry{
		UserID:       userID,
		Type:         activityType,
		PointsEarned: points,
		Context:      activityContext,
	})
	if err != nil {
		return ActivityResult{}, fmt.Errorf("log activity: %w", err)
	}

	if points > 0 {
		if err := e.profiles.AddPoints(ctx, userID, points); err != nil {
			return ActivityResult{}, fmt.Errorf("add points: %w", err)
		}
	}

	awarded, err := e.evaluateBadges(ctx, userID, triggersForActivity(activityType), nil)
	if err != nil {
		return ActivityResult{}, err
	}

	score, err := e.scores.Recompute(ctx, userID)
	if err != nil {
		return ActivityResult{}, err
	}

	return ActivityResult{Entry: entry, Awarded: awarded, Score: score}, nil
}

// Checkin обновляет дневной streak. Повторный заход в тот же день ничего не меняет,
// заход на следующий день увеличивает streak, любой другой разрыв сбрасывает к 1.
func (e *Engine) Checkin(ctx context.Context, userID uuid.UUID, now time.Time) (models.StreakState, []models.AwardedBadge, error) {
	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return models.StreakState{}, nil, fmt.Errorf("load profile: %w", err)
	}

	today := toDate(now)
	if profile.LastActiveDate != nil && toDate(*profile.LastActiveDate).Equal(today) {
		state := models.StreakState{
			Current:  profile.CurrentStreak,
			Longest:  profile.LongestStreak,
			IsActive: true,
		}
		return state, nil, nil
	}

	streak := 1
	if profile.LastActiveDate != nil && toDate(*profile.LastActiveDate).AddDate(0, 0, 1).Equal(today) {
		streak = profile.CurrentStreak + 1
	}

	if err := e.profiles.UpdateStreak(ctx, userID, streak, today); err != nil {
		return models.StreakState{}, nil, fmt.Errorf("update streak: %w", err)
	}

	longest := profile.LongestStreak
	if streak > longest {
		longest = streak
	}

	if _, err := e.activities.Insert(ctx, models.ActivityLogEntry{
		UserID:       userID,
		Type:         models.ActivityDailyCheckin,
		PointsEarned: e.points[models.ActivityDailyCheckin],
	}); err != nil {
		return models.StreakState{}, nil, fmt.Errorf("log checkin: %w", err)
	}

	if points := e.points[models.ActivityDailyCheckin]; points > 0 {
		if err := e.profiles.AddPoints(ctx, userID, points); err != nil {
			return models.StreakState{}, nil, fmt.Errorf("add points: %w", err)
		}
	}

	awarded, err := e.evaluateBadges(ctx, userID, []models.TriggerType{models.TriggerStreakReached, models.TriggerTierReached}, &streak)
	if err != nil {
		return models.StreakState{}, nil, err
	}

	if _, err := e.scores.Recompute(ctx, userID); err != nil {
		return models.StreakState{}, nil, err
	}

	state := models.StreakState{Current: streak, Longest: longest, IsActive: true}
	return state, awarded, nil
}

type triggerPayload struct {
	Count        *int   `json:"count,omitempty"`
	AllHorsemen  bool   `json:"all_horsemen,omitempty"`
	Tier         string `json:"tier,omitempty"`
	Completeness *int   `json:"completeness,omitempty"`
	Amount       *int64 `json:"amount,omitempty"`
}

func (e *Engine) evaluateBadges(ctx context.Context, userID uuid.UUID, triggers []models.TriggerType, streak *int) ([]models.AwardedBadge, error) {
	candidates, err := e.badges.ListActiveByTriggers(ctx, triggers)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	earned, err := e.badges.EarnedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}

	awarded := make([]models.AwardedBadge, 0)
	for _, badge := range candidates {
		if _, already := earned[badge.ID]; already {
			continue
		}

		eligible, err := e.isEligible(ctx, userID, badge, streak)
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}

		userBadge, inserted, err := e.badges.Award(ctx, userID, badge.ID)
		if err != nil {
			return nil, fmt.Errorf("award badge: %w", err)
		}
		if !inserted {
			continue
		}

		badgeContext, _ := json.Marshal(map[string]string{"badge_id": badge.ID.String(), "badge_name": badge.Name})
		if _, err := e.activities.Insert(ctx, models.ActivityLogEntry{
			UserID:       userID,
			Type:         models.ActivityBadgeEarned,
			PointsEarned: badge.Points,
			Context:      badgeContext,
		}); err != nil {
			return nil, fmt.Errorf("log badge award: %w", err)
		}

		if badge.Points > 0 {
			if err := e.profiles.AddPoints(ctx, userID, badge.Points); err != nil {
				return nil, fmt.Errorf("add badge points: %w", err)
			}
		}

		awarded = append(awarded, models.AwardedBadge{Badge: badge, EarnedAt: userBadge.EarnedAt})
	}

	return awarded, nil
}

func (e *Engine) isEligible(ctx context.Context, userID uuid.UUID, badge models.BadgeDefinition, streak *int) (bool, error) {
	var payload triggerPayload
	if len(badge.TriggerValue) > 0 {
		// Кривой trigger_value делает бейдж непригодным, но не роняет оценку остальных.
		if err := json.Unmarshal(badge.TriggerValue, &payload); err != nil {
			return false, nil
		}
	}

	switch badge.TriggerType {
	case models.TriggerStreakReached:
		if streak == nil {
			return false, nil
		}
		return *streak >= countOrDefault(payload.Count, 1), nil

	case models.TriggerAssessmentDone:
		return e.countReached(ctx, userID, models.ActivityAssessmentComplete, payload.Count)

	case models.TriggerDeepDiveDone:
		return e.countReached(ctx, userID, models.ActivityDeepDiveComplete, payload.Count)

	case models.TriggerStrategyActivated:
		if payload.AllHorsemen {
			return e.allHorsemenCovered(ctx, userID)
		}
		return e.countReached(ctx, userID, models.ActivityStrategyActivated, payload.Count)

	case models.TriggerStrategyCompleted:
		return e.countReached(ctx, userID, models.ActivityStrategyCompleted, payload.Count)

	case models.TriggerTierReached:
		if payload.Tier == "" {
			return false, nil
		}
		profile, err := e.profiles.Get(ctx, userID)
		if err != nil {
			return false, fmt.Errorf("load profile: %w", err)
		}
		return string(profile.Tier) == payload.Tier, nil

	case models.TriggerProfileComplete:
		profile, err := e.profiles.Get(ctx, userID)
		if err != nil {
			return false, fmt.Errorf("load profile: %w", err)
		}
		return ProfileCompleteness(profile) >= countOrDefault(payload.Completeness, 100), nil

	case models.TriggerSavingsMilestone:
		if payload.Amount == nil {
			return false, nil
		}
		impacts, err := e.strategies.ActivatedImpacts(ctx, userID)
		if err != nil {
			return false, fmt.Errorf("load strategy impacts: %w", err)
		}
		return totalImpactDollars(impacts) >= *payload.Amount, nil
	}

	return false, nil
}

func (e *Engine) countReached(ctx context.Context, userID uuid.UUID, activityType models.ActivityType, threshold *int) (bool, error) {
	count, err := e.activities.CountByType(ctx, userID, activityType)
	if err != nil {
		return false, fmt.Errorf("count %s: %w", activityType, err)
	}

	return count >= countOrDefault(threshold, 1), nil
}

func (e *Engine) allHorsemenCovered(ctx context.Context, userID uuid.UUID) (bool, error) {
	horsemen, err := e.strategies.CompletedHorsemen(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load completed horsemen: %w", err)
	}

	covered := make(map[models.Horseman]struct{}, len(horsemen))
	for _, h := range horsemen {
		covered[h] = struct{}{}
	}

	for _, h := range models.HorsemenOrder() {
		if _, ok := covered[h]; !ok {
			return false, nil
		}
	}

	return true, nil
}

// ProfileCompleteness считает заполненность профиля: 10% за каждое из десяти
// отслеживаемых полей.
func ProfileCompleteness(p models.Profile) int {
	fields := []bool{
		p.MonthlyIncomeCents > 0,
		p.MonthlyHousingCents > 0,
		p.MonthlyLivingCents > 0,
		p.EmergencyFundCents > 0,
		p.RetirementBalanceCents > 0,
		p.MonthlyContributionCents > 0,
		p.DesiredRetirementIncomeCents > 0,
		p.FilingStatus != nil && *p.FilingStatus != "",
		len(p.TaxAdvantagedAccounts) > 0,
		p.MoneyWorry != nil,
	}

	completeness := 0
	for _, filled := range fields {
		if filled {
			completeness += 10
		}
	}

	return completeness
}

func triggersForActivity(activityType models.ActivityType) []models.TriggerType {
	// Каждое действие дополнительно проверяет tier_reached.
	switch activityType {
	case models.ActivityAssessmentComplete:
		return []models.TriggerType{models.TriggerAssessmentDone, models.TriggerTierReached}
	case models.ActivityDeepDiveComplete:
		return []models.TriggerType{models.TriggerDeepDiveDone, models.TriggerTierReached}
	case models.ActivityStrategyActivated:
		return []models.TriggerType{models.TriggerStrategyActivated, models.TriggerSavingsMilestone, models.TriggerTierReached}
	case models.ActivityStrategyCompleted:
		return []models.TriggerType{models.TriggerStrategyCompleted, models.TriggerTierReached}
	case models.ActivityProfileUpdated:
		return []models.TriggerType{models.TriggerProfileComplete, models.TriggerTierReached}
	default:
		return []models.TriggerType{models.TriggerTierReached}
	}
}

func countOrDefault(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func toDate(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
