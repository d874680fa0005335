package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"example.com/rprx-coach/backend/internal/models"
)

type fakeDeepDives struct {
	questions []models.DeepDiveQuestion
	err       error
	calls     int
}

func (f *fakeDeepDives) ListByHorseman(ctx context.Context, horseman models.Horseman) ([]models.DeepDiveQuestion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

func coreQuestion(orderIndex int, weights map[models.Horseman]float64, score int) models.Question {
	return models.Question{
		ID:              uuid.New(),
		Type:            models.QuestionTypeSingleChoice,
		OrderIndex:      orderIndex,
		Options:         []models.Option{{Value: "a", Score: score}},
		HorsemanWeights: weights,
	}
}

func deepQuestion(horseman models.Horseman, orderIndex int) models.DeepDiveQuestion {
	return models.DeepDiveQuestion{
		ID:         uuid.New(),
		Horseman:   horseman,
		Type:       models.QuestionTypeSingleChoice,
		OrderIndex: orderIndex,
		Options:    []models.Option{{Value: "a", Score: 50}},
	}
}

func answerAllCore(t *testing.T, flow *Flow) {
	t.Helper()
	for i, q := range flow.core {
		if err := flow.Answer(q.ID, "a"); err != nil {
			t.Fatalf("answer question %d: %v", i, err)
		}
		if !flow.AtLastStep() {
			if err := flow.Next(); err != nil {
				t.Fatalf("advance from step %d: %v", i, err)
			}
		}
	}
}

// TestNewFlowEmpty проверяет отказ при пустом списке вопросов.
func TestNewFlowEmpty(t *testing.T) {
	if _, err := NewFlow(nil); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

// TestNewFlowOrdersQuestions проверяет сортировку по order_index.
func TestNewFlowOrdersQuestions(t *testing.T) {
	second := coreQuestion(2, map[models.Horseman]float64{models.HorsemanTaxes: 1}, 50)
	first := coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 50)

	flow, err := NewFlow([]models.Question{second, first})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.core[0].ID != first.ID {
		t.Fatal("expected questions ordered by order_index")
	}
}

// TestFlowNextRequiresAnswer проверяет блокировку перехода без ответа.
func TestFlowNextRequiresAnswer(t *testing.T) {
	flow, _ := NewFlow([]models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 50),
		coreQuestion(2, map[models.Horseman]float64{models.HorsemanTaxes: 1}, 50),
	})

	if err := flow.Next(); !errors.Is(err, ErrUnanswered) {
		t.Fatalf("expected ErrUnanswered, got %v", err)
	}

	if err := flow.Answer(flow.core[0].ID, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := flow.Next(); err != nil {
		t.Fatalf("expected advance after answer, got %v", err)
	}
	if flow.Step() != 1 {
		t.Fatalf("expected step 1, got %d", flow.Step())
	}
}

// TestFlowBackBounds проверяет границы возврата назад.
func TestFlowBackBounds(t *testing.T) {
	flow, _ := NewFlow([]models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 50),
	})

	if err := flow.Back(); !errors.Is(err, ErrStepBounds) {
		t.Fatalf("expected ErrStepBounds, got %v", err)
	}
}

// TestFlowAnswerUnknownQuestion проверяет отказ на чужой вопрос.
func TestFlowAnswerUnknownQuestion(t *testing.T) {
	flow, _ := NewFlow([]models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 50),
	})

	if err := flow.Answer(uuid.New(), "a"); !errors.Is(err, ErrUnknownAnswer) {
		t.Fatalf("expected ErrUnknownAnswer, got %v", err)
	}
}

// TestTransitionComputesScores проверяет подсчет баллов и загрузку deep dive.
func TestTransitionComputesScores(t *testing.T) {
	flow, _ := NewFlow([]models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 80),
		coreQuestion(2, map[models.Horseman]float64{models.HorsemanTaxes: 1}, 40),
	})
	answerAllCore(t, flow)

	source := &fakeDeepDives{questions: []models.DeepDiveQuestion{deepQuestion(models.HorsemanInterest, 1)}}
	if err := flow.TransitionToDeepDive(context.Background(), source); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if flow.Phase() != PhaseTransition {
		t.Fatalf("expected transition phase, got %s", flow.Phase())
	}
	if flow.Primary() != models.HorsemanInterest {
		t.Fatalf("expected interest primary, got %s", flow.Primary())
	}
	if flow.Scores().Interest != 80 || flow.Scores().Taxes != 40 {
		t.Fatalf("unexpected scores: %+v", flow.Scores())
	}
	if len(flow.DeepDiveQuestions()) != 1 {
		t.Fatalf("expected one deep dive question, got %d", len(flow.DeepDiveQuestions()))
	}
}

// TestTransitionGuards проверяет запрет перехода не с последнего шага.
func TestTransitionGuards(t *testing.T) {
	flow, _ := NewFlow([]models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 50),
		coreQuestion(2, map[models.Horseman]float64{models.HorsemanTaxes: 1}, 50),
	})

	source := &fakeDeepDives{}
	if err := flow.TransitionToDeepDive(context.Background(), source); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase on non-last step, got %v", err)
	}

	_ = flow.Answer(flow.core[0].ID, "a")
	_ = flow.Next()
	if err := flow.TransitionToDeepDive(context.Background(), source); !errors.Is(err, ErrUnanswered) {
		t.Fatalf("expected ErrUnanswered on unanswered last step, got %v", err)
	}
}

// TestTransitionPhaseSurvivesFetchError проверяет, что фаза меняется даже при
// ошибке загрузки deep-dive вопросов и переход можно повторить.
func TestTransitionPhaseSurvivesFetchError(t *testing.T) {
	flow, _ := NewFlow([]models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 50),
	})
	answerAllCore(t, flow)

	failing := &fakeDeepDives{err: errors.New("db down")}
	if err := flow.TransitionToDeepDive(context.Background(), failing); err == nil {
		t.Fatal("expected fetch error")
	}
	if flow.Phase() != PhaseTransition {
		t.Fatalf("expected transition phase despite fetch error, got %s", flow.Phase())
	}

	working := &fakeDeepDives{questions: []models.DeepDiveQuestion{deepQuestion(models.HorsemanInterest, 1)}}
	if err := flow.LoadDeepDive(context.Background(), working); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if !flow.CanStartDeepDive() {
		t.Fatal("expected deep dive to be startable after retry")
	}
}

// TestCanSubmitWithoutDeepDive проверяет отправку из transition при пустом deep dive.
func TestCanSubmitWithoutDeepDive(t *testing.T) {
	flow, _ := NewFlow([]models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 50),
	})
	answerAllCore(t, flow)

	source := &fakeDeepDives{}
	if err := flow.TransitionToDeepDive(context.Background(), source); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if flow.CanStartDeepDive() {
		t.Fatal("deep dive must not start with zero questions")
	}
	if !flow.CanSubmit() {
		t.Fatal("expected submission to be allowed without deep dive questions")
	}
}

// TestDeepDivePhaseSubmitGate проверяет допуск к отправке только с последнего
// отвеченного deep-dive вопроса.
func TestDeepDivePhaseSubmitGate(t *testing.T) {
	flow, _ := NewFlow([]models.Question{
		coreQuestion(1, map[models.Horseman]float64{models.HorsemanInterest: 1}, 90),
	})
	answerAllCore(t, flow)

	deep := []models.DeepDiveQuestion{
		deepQuestion(models.HorsemanInterest, 1),
		deepQuestion(models.HorsemanInterest, 2),
	}
	source := &fakeDeepDives{questions: deep}
	if err := flow.TransitionToDeepDive(context.Background(), source); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := flow.StartDeepDive(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.CanSubmit() {
		t.Fatal("submission must be blocked before deep dive answers")
	}

	if err := flow.Answer(flow.deep[0].ID, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := flow.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.CanSubmit() {
		t.Fatal("submission must require the last answer")
	}

	if err := flow.Answer(flow.deep[1].ID, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !flow.CanSubmit() {
		t.Fatal("expected submission after the last deep dive answer")
	}
}
