package scoring

import (
	"math"

	"example.com/rprx-coach/backend/internal/models"
)

// AnsweredQuestion связывает ответ пользователя с вопросом, из которого берутся веса.
type AnsweredQuestion struct {
	Question models.Question
	Response models.Response
}

// CalculateHorsemanScores агрегирует ответы в баллы по четырем всадникам.
// Вопросы категории cash_flow, неотвеченные вопросы и неизвестные варианты
// пропускаются: скоринг деградирует к нулю, а не падает.
func CalculateHorsemanScores(answered []AnsweredQuestion) models.HorsemanScores {
	sums := make(map[models.Horseman]float64, 4)
	weights := make(map[models.Horseman]float64, 4)

	for _, pair := range answered {
		if pair.Question.Category == models.CategoryCashFlow {
			continue
		}

		option, ok := findOption(pair.Question.Options, pair.Response.Value)
		if !ok {
			continue
		}

		for horseman, weight := range pair.Question.HorsemanWeights {
			if weight <= 0 {
				continue
			}

			sums[horseman] += float64(option.Score) * weight
			weights[horseman] += weight
		}
	}

	var scores models.HorsemanScores
	scores.Interest = finalize(sums, weights, models.HorsemanInterest)
	scores.Taxes = finalize(sums, weights, models.HorsemanTaxes)
	scores.Insurance = finalize(sums, weights, models.HorsemanInsurance)
	scores.Education = finalize(sums, weights, models.HorsemanEducation)
	return scores
}

// DeterminePrimaryHorseman выбирает всадника со строго наибольшим баллом.
// При равенстве побеждает первый в порядке interest, taxes, insurance, education.
func DeterminePrimaryHorseman(scores models.HorsemanScores) models.Horseman {
	order := models.HorsemenOrder()
	primary := order[0]
	best := scores.Score(primary)

	for _, horseman := range order[1:] {
		if scores.Score(horseman) > best {
			primary = horseman
			best = scores.Score(horseman)
		}
	}

	return primary
}

func finalize(sums, weights map[models.Horseman]float64, horseman models.Horseman) int {
	total := weights[horseman]
	if total <= 0 {
		return 0
	}

	score := int(math.Round(sums[horseman] / total))
	return clampInt(score, 0, 100)
}

func findOption(options []models.Option, value string) (models.Option, bool) {
	for _, option := range options {
		if option.Value == value {
			return option, true
		}
	}

	return models.Option{}, false
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
