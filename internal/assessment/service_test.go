package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"example.com/rprx-coach/backend/internal/gamification"
	"example.com/rprx-coach/backend/internal/models"
)

type fakeQuestions struct {
	questions []models.Question
}

func (f *fakeQuestions) ListCore(ctx context.Context) ([]models.Question, error) {
	return f.questions, nil
}

type fakeAssessments struct {
	created     *models.Assessment
	responses   []models.Response
	deepAnswers []models.DeepDiveAnswer
}

func (f *fakeAssessments) Create(ctx context.Context, assessment models.Assessment, responses []models.Response, deepAnswers []models.DeepDiveAnswer) (models.Assessment, error) {
	assessment.ID = uuid.New()
	f.created = &assessment
	f.responses = responses
	f.deepAnswers = deepAnswers
	return assessment, nil
}

type fakeProfileSource struct {
	profile models.Profile
}

func (f *fakeProfileSource) Get(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	return f.profile, nil
}

type fakeRewards struct {
	activities []models.ActivityType
	failOn     models.ActivityType
	failErr    error
}

func (f *fakeRewards) LogActivity(ctx context.Context, userID uuid.UUID, activityType models.ActivityType, activityContext json.RawMessage) (gamification.ActivityResult, error) {
	if f.failErr != nil && activityType == f.failOn {
		return gamification.ActivityResult{}, f.failErr
	}
	f.activities = append(f.activities, activityType)
	return gamification.ActivityResult{
		Score: models.RPRxScoreResult{Total: 60, Grade: models.GradeProgressing},
	}, nil
}

func submittableFlow(t *testing.T, service *Service, deep *fakeDeepDives) *Flow {
	t.Helper()

	flow, err := service.StartFlow(context.Background())
	if err != nil {
		t.Fatalf("start flow: %v", err)
	}
	answerAllCore(t, flow)

	if err := flow.TransitionToDeepDive(context.Background(), deep); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if flow.CanStartDeepDive() {
		if err := flow.StartDeepDive(); err != nil {
			t.Fatalf("start deep dive: %v", err)
		}
		for i, q := range flow.deep {
			if err := flow.Answer(q.ID, "a"); err != nil {
				t.Fatalf("answer deep question %d: %v", i, err)
			}
			if !flow.AtLastStep() {
				if err := flow.Next(); err != nil {
					t.Fatalf("advance deep dive: %v", err)
				}
			}
		}
	}

	return flow
}

// TestSubmitPersistsAndFiresEvents проверяет сохранение оценки и оба события
// геймификации.
func TestSubmitPersistsAndFiresEvents(t *testing.T) {
	questions := &fakeQuestions{questions: []models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 80),
		coreQuestion(2, map[models.Horseman]float64{models.HorsemanTaxes: 1}, 30),
	}}
	deep := &fakeDeepDives{questions: []models.DeepDiveQuestion{deepQuestion(models.HorsemanInterest, 1)}}
	store := &fakeAssessments{}
	profiles := &fakeProfileSource{profile: models.Profile{
		MonthlyIncomeCents: 500000,
		MonthlyLivingCents: 300000,
	}}
	rewards := &fakeRewards{}
	service := NewService(questions, deep, store, profiles, rewards)

	flow := submittableFlow(t, service, deep)

	result, err := service.Submit(context.Background(), uuid.New(), flow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.created == nil {
		t.Fatal("expected assessment to be persisted")
	}
	if store.created.PrimaryHorseman != models.HorsemanInterest {
		t.Fatalf("expected interest primary, got %s", store.created.PrimaryHorseman)
	}
	if len(store.responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(store.responses))
	}
	if len(store.deepAnswers) != 1 {
		t.Fatalf("expected 1 deep dive answer, got %d", len(store.deepAnswers))
	}
	if result.CashFlow.Status != models.CashFlowSurplus {
		t.Fatalf("expected surplus cash flow, got %s", result.CashFlow.Status)
	}

	want := []models.ActivityType{models.ActivityAssessmentComplete, models.ActivityDeepDiveComplete}
	if len(rewards.activities) != len(want) {
		t.Fatalf("expected activities %v, got %v", want, rewards.activities)
	}
	for i, activity := range want {
		if rewards.activities[i] != activity {
			t.Fatalf("expected activities %v, got %v", want, rewards.activities)
		}
	}

	if flow.Phase() != PhaseSubmitted {
		t.Fatalf("expected submitted phase, got %s", flow.Phase())
	}
}

// TestSubmitSkipsDeepDiveEventWhenEmpty проверяет отправку без deep-dive вопросов.
func TestSubmitSkipsDeepDiveEventWhenEmpty(t *testing.T) {
	questions := &fakeQuestions{questions: []models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanEducation: 1}, 70),
	}}
	deep := &fakeDeepDives{}
	rewards := &fakeRewards{}
	service := NewService(questions, deep, &fakeAssessments{}, &fakeProfileSource{}, rewards)

	flow := submittableFlow(t, service, deep)

	if _, err := service.Submit(context.Background(), uuid.New(), flow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rewards.activities) != 1 || rewards.activities[0] != models.ActivityAssessmentComplete {
		t.Fatalf("expected only assessment event, got %v", rewards.activities)
	}
}

// TestSubmitPropagatesRewardErrors проверяет, что ошибка события доходит до
// вызывающего, а не проглатывается.
func TestSubmitPropagatesRewardErrors(t *testing.T) {
	questions := &fakeQuestions{questions: []models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 80),
	}}
	deep := &fakeDeepDives{questions: []models.DeepDiveQuestion{deepQuestion(models.HorsemanInterest, 1)}}
	bang := errors.New("gamification down")
	rewards := &fakeRewards{failOn: models.ActivityDeepDiveComplete, failErr: bang}
	service := NewService(questions, deep, &fakeAssessments{}, &fakeProfileSource{}, rewards)

	flow := submittableFlow(t, service, deep)

	if _, err := service.Submit(context.Background(), uuid.New(), flow); !errors.Is(err, bang) {
		t.Fatalf("expected propagated reward error, got %v", err)
	}
	if flow.Phase() == PhaseSubmitted {
		t.Fatal("flow must not be marked submitted after a failed event")
	}
}

// TestSubmitRejectsIncompleteFlow проверяет защиту от отправки до завершения.
func TestSubmitRejectsIncompleteFlow(t *testing.T) {
	questions := &fakeQuestions{questions: []models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 80),
	}}
	service := NewService(questions, &fakeDeepDives{}, &fakeAssessments{}, &fakeProfileSource{}, &fakeRewards{})

	flow, err := service.StartFlow(context.Background())
	if err != nil {
		t.Fatalf("start flow: %v", err)
	}

	if _, err := service.Submit(context.Background(), uuid.New(), flow); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
}
