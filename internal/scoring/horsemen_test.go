package scoring

import (
	"testing"

	"github.com/google/uuid"

	"example.com/rprx-coach/backend/internal/models"
)

func answered(q models.Question, value string) AnsweredQuestion {
	return AnsweredQuestion{
		Question: q,
		Response: models.Response{QuestionID: q.ID, Value: value},
	}
}

func weightedQuestion(weights map[models.Horseman]float64, options ...models.Option) models.Question {
	return models.Question{
		ID:              uuid.New(),
		Type:            models.QuestionTypeSingleChoice,
		Options:         options,
		HorsemanWeights: weights,
	}
}

// TestCalculateHorsemanScores проверяет взвешенное усреднение по ответам.
func TestCalculateHorsemanScores(t *testing.T) {
	q1 := weightedQuestion(
		map[models.Horseman]float64{models.HorsemanInterest: 1.0},
		models.Option{Value: "high", Score: 80},
	)
	q2 := weightedQuestion(
		map[models.Horseman]float64{models.HorsemanInterest: 1.0, models.HorsemanTaxes: 0.5},
		models.Option{Value: "low", Score: 40},
	)

	scores := CalculateHorsemanScores([]AnsweredQuestion{
		answered(q1, "high"),
		answered(q2, "low"),
	})

	if scores.Interest != 60 {
		t.Fatalf("expected interest 60, got %d", scores.Interest)
	}
	if scores.Taxes != 40 {
		t.Fatalf("expected taxes 40, got %d", scores.Taxes)
	}
	if scores.Insurance != 0 || scores.Education != 0 {
		t.Fatalf("expected zero for unanswered horsemen, got %+v", scores)
	}
}

// TestCalculateHorsemanScoresSkipsCashFlow проверяет, что вопросы cash_flow
// не участвуют в баллах всадников.
func TestCalculateHorsemanScoresSkipsCashFlow(t *testing.T) {
	q := weightedQuestion(
		map[models.Horseman]float64{models.HorsemanInterest: 1.0},
		models.Option{Value: "yes", Score: 100},
	)
	q.Category = models.CategoryCashFlow

	scores := CalculateHorsemanScores([]AnsweredQuestion{answered(q, "yes")})
	if scores.Interest != 0 {
		t.Fatalf("expected cash_flow question to be skipped, got interest %d", scores.Interest)
	}
}

// TestCalculateHorsemanScoresUnknownOption проверяет пропуск неизвестного варианта.
func TestCalculateHorsemanScoresUnknownOption(t *testing.T) {
	q := weightedQuestion(
		map[models.Horseman]float64{models.HorsemanTaxes: 1.0},
		models.Option{Value: "known", Score: 50},
	)

	scores := CalculateHorsemanScores([]AnsweredQuestion{answered(q, "unknown")})
	if scores.Taxes != 0 {
		t.Fatalf("expected unknown option to be skipped, got taxes %d", scores.Taxes)
	}
}

// TestDeterminePrimaryHorseman проверяет выбор строго наибольшего балла.
func TestDeterminePrimaryHorseman(t *testing.T) {
	scores := models.HorsemanScores{Interest: 40, Taxes: 70, Insurance: 55, Education: 10}

	if got := DeterminePrimaryHorseman(scores); got != models.HorsemanTaxes {
		t.Fatalf("expected taxes, got %s", got)
	}
}

// TestDeterminePrimaryHorsemanTie проверяет, что при равенстве побеждает
// первый всадник в фиксированном порядке.
func TestDeterminePrimaryHorsemanTie(t *testing.T) {
	scores := models.HorsemanScores{Interest: 30, Taxes: 70, Insurance: 70, Education: 30}

	if got := DeterminePrimaryHorseman(scores); got != models.HorsemanTaxes {
		t.Fatalf("expected taxes to win the tie, got %s", got)
	}

	allEqual := models.HorsemanScores{Interest: 50, Taxes: 50, Insurance: 50, Education: 50}
	if got := DeterminePrimaryHorseman(allEqual); got != models.HorsemanInterest {
		t.Fatalf("expected interest to win the full tie, got %s", got)
	}
}
