package wellness

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"example.com/rprx-coach/backend/internal/models"
)

// ProfileStore читает профиль и сохраняет пересчитанный балл.
type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	UpdateScore(ctx context.Context, userID uuid.UUID, result models.RPRxScoreResult) error
}

// StrategyStats отдает количество завершенных стратегий по всаднику.
type StrategyStats interface {
	CountCompletedByHorseman(ctx context.Context, userID uuid.UUID, horseman models.Horseman) (int, error)
}

// DeepDiveStats отдает факт прохождения deep dive и первый ответ по всаднику.
type DeepDiveStats interface {
	HasCompleted(ctx context.Context, userID uuid.UUID, horseman models.Horseman) (bool, error)
	FirstAnswerValue(ctx context.Context, userID uuid.UUID, horseman models.Horseman) (string, error)
}

type Service struct {
	profiles   ProfileStore
	strategies StrategyStats
	deepDives  DeepDiveStats
}

// NewService создает сервис пересчета RPRx-балла.
func NewService(profiles ProfileStore, strategies StrategyStats, deepDives DeepDiveStats) *Service {
	return &Service{profiles: profiles, strategies: strategies, deepDives: deepDives}
}

// Recompute собирает входные данные, считает балл и сохраняет его в профиле.
func (s *Service) Recompute(ctx context.Context, userID uuid.UUID) (models.RPRxScoreResult, error) {
	in, err := s.collectInputs(ctx, userID)
	if err != nil {
		return models.RPRxScoreResult{}, err
	}

	result := Calculate(in)
	if err := s.profiles.UpdateScore(ctx, userID, result); err != nil {
		return models.RPRxScoreResult{}, fmt.Errorf("persist rprx score: %w", err)
	}

	return result, nil
}

func (s *Service) collectInputs(ctx context.Context, userID uuid.UUID) (Inputs, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return Inputs{}, fmt.Errorf("load profile: %w", err)
	}

	interestDone, err := s.strategies.CountCompletedByHorseman(ctx, userID, models.HorsemanInterest)
	if err != nil {
		return Inputs{}, fmt.Errorf("count interest strategies: %w", err)
	}

	taxDone, err := s.strategies.CountCompletedByHorseman(ctx, userID, models.HorsemanTaxes)
	if err != nil {
		return Inputs{}, fmt.Errorf("count tax strategies: %w", err)
	}

	taxDeepDive, err := s.deepDives.HasCompleted(ctx, userID, models.HorsemanTaxes)
	if err != nil {
		return Inputs{}, fmt.Errorf("check tax deep dive: %w", err)
	}

	firstAnswer, err := s.deepDives.FirstAnswerValue(ctx, userID, models.HorsemanTaxes)
	if err != nil {
		return Inputs{}, fmt.Errorf("load deep dive answer: %w", err)
	}

	return Inputs{
		Profile:                     profile,
		CompletedInterestStrategies: interestDone,
		CompletedTaxStrategies:      taxDone,
		TaxDeepDiveCompleted:        taxDeepDive,
		FirstTaxDeepDiveAnswer:      firstAnswer,
	}, nil
}
