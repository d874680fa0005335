package assessment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"example.com/rprx-coach/backend/internal/gamification"
	"example.com/rprx-coach/backend/internal/models"
	"example.com/rprx-coach/backend/internal/scoring"
)

// QuestionSource отдает упорядоченный список core-вопросов.
type QuestionSource interface {
	ListCore(ctx context.Context) ([]models.Question, error)
}

// AssessmentStore сохраняет оценку вместе с ответами одной транзакцией.
type AssessmentStore interface {
	Create(ctx context.Context, assessment models.Assessment, responses []models.Response, deepAnswers []models.DeepDiveAnswer) (models.Assessment, error)
}

// ProfileSource читает профиль для классификации денежного потока.
type ProfileSource interface {
	Get(ctx context.Context, userID uuid.UUID) (models.Profile, error)
}

// Rewards описывает порт к движку геймификации. События после отправки ожидаются,
// их ошибки доходят до вызывающего, а не проглатываются.
type Rewards interface {
	LogActivity(ctx context.Context, userID uuid.UUID, activityType models.ActivityType, activityContext json.RawMessage) (gamification.ActivityResult, error)
}

// SubmitResult содержит итог отправки оценки.
type SubmitResult struct {
	Assessment models.Assessment
	CashFlow   models.CashFlowResult
	Awarded    []models.AwardedBadge
	Score      models.RPRxScoreResult
}

type Service struct {
	questions   QuestionSource
	deepDives   DeepDiveSource
	assessments AssessmentStore
	profiles    ProfileSource
	rewards     Rewards
}

// NewService создает оркестратор оценки.
func NewService(questions QuestionSource, deepDives DeepDiveSource, assessments AssessmentStore, profiles ProfileSource, rewards Rewards) *Service {
	return &Service{
		questions:   questions,
		deepDives:   deepDives,
		assessments: assessments,
		profiles:    profiles,
		rewards:     rewards,
	}
}

// StartFlow загружает core-вопросы и создает автомат прохождения.
func (s *Service) StartFlow(ctx context.Context) (*Flow, error) {
	questions, err := s.questions.ListCore(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	return NewFlow(questions)
}

// DeepDives возвращает источник deep-dive вопросов для переходов автомата.
func (s *Service) DeepDives() DeepDiveSource { return s.deepDives }

// Submit завершает оценку: пересчитывает баллы, классифицирует денежный
// поток, сохраняет оценку с ответами и проводит события геймификации.
// Ошибка любого шага прерывает отправку и возвращается вызывающему.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, flow *Flow) (SubmitResult, error) {
	if !flow.CanSubmit() {
		return SubmitResult{}, ErrInvalidPhase
	}

	scores := scoring.CalculateHorsemanScores(flow.answeredPairs())
	primary := scoring.DeterminePrimaryHorseman(scores)

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load profile: %w", err)
	}
	cashFlow := scoring.ClassifyCashFlow(scoring.FlowFromProfile(profile))

	assessment, err := s.assessments.Create(ctx, models.Assessment{
		UserID:          userID,
		Scores:          scores,
		PrimaryHorseman: primary,
		CashFlowStatus:  cashFlow.Status,
	}, flow.Responses(), flow.DeepDiveAnswers())
	if err != nil {
		return SubmitResult{}, fmt.Errorf("persist assessment: %w", err)
	}

	assessmentContext, _ := json.Marshal(map[string]string{
		"assessment_id":    assessment.ID.String(),
		"primary_horseman": string(primary),
	})

	result := SubmitResult{Assessment: assessment, CashFlow: cashFlow}

	activity, err := s.rewards.LogActivity(ctx, userID, models.ActivityAssessmentComplete, assessmentContext)
	if err != nil {
		return result, fmt.Errorf("assessment activity: %w", err)
	}
	result.Awarded = append(result.Awarded, activity.Awarded...)
	result.Score = activity.Score

	if len(flow.DeepDiveAnswers()) > 0 {
		deepDive, err := s.rewards.LogActivity(ctx, userID, models.ActivityDeepDiveComplete, assessmentContext)
		if err != nil {
			return result, fmt.Errorf("deep dive activity: %w", err)
		}
		result.Awarded = append(result.Awarded, deepDive.Awarded...)
		result.Score = deepDive.Score
	}

	flow.markSubmitted()
	return result, nil
}
