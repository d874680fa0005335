package wellness

import (
	"fmt"
	"math"

	"example.com/rprx-coach/backend/internal/models"
)

const (
	MaxRiver   = 25
	MaxLake    = 25
	MaxRainbow = 20
	MaxTax     = 15
	MaxStress  = 15

	annualGrowthRate = 0.055
	nestEggMultiple  = 25
	maxInsights      = 3
)

// Inputs собирает все данные, которые нужны расчету RPRx. Агрегаты по стратегиям и
// deep dive поставляет репозиторий; сам расчет чистый.
type Inputs struct {
	Profile models.Profile

	CompletedInterestStrategies int
	CompletedTaxStrategies      int
	TaxDeepDiveCompleted        bool
	FirstTaxDeepDiveAnswer      string
}

var w4AnswerPoints = map[string]int{
	"reviewed_this_year": 4,
	"reviewed_last_year": 3,
	"aware_of_settings":  2,
	"never_reviewed":     0,
}

var worryPoints = map[models.WorryFrequency]int{
	models.WorryRarely:     5,
	models.WorrySometimes:  4,
	models.WorryOften:      2,
	models.WorryConstantly: 0,
}

var confidencePoints = map[models.ConfidenceLevel]int{
	models.ConfidenceFull:     5,
	models.ConfidenceMostly:   4,
	models.ConfidenceSomewhat: 2,
	models.ConfidenceNone:     0,
}

var controlPoints = map[models.ControlLevel]int{
	models.ControlFull:   5,
	models.ControlMostly: 4,
	models.ControlSome:   2,
	models.ControlNone:   0,
}

var matchPoints = map[models.MatchCapture]int{
	models.MatchCaptureNone:    0,
	models.MatchCapturePartial: 2,
	models.MatchCaptureMost:    3,
	models.MatchCaptureFull:    5,
}

// Calculate считает пять столпов, итог, грейд и инсайты.
func Calculate(in Inputs) models.RPRxScoreResult {
	result := models.RPRxScoreResult{
		River:   riverScore(in),
		Lake:    lakeScore(in.Profile),
		Rainbow: rainbowScore(in.Profile),
		Tax:     taxScore(in),
		Stress:  stressScore(in.Profile),
	}

	total := result.River + result.Lake + result.Rainbow + result.Tax + result.Stress
	result.Total = clamp(total, 0, 100)
	result.Grade = GradeFor(result.Total)
	result.Insights = buildInsights(result)
	return result
}

// GradeFor переводит итоговый балл в грейд по фиксированным порогам.
func GradeFor(total int) models.Grade {
	switch {
	case total >= 85:
		return models.GradeThriving
	case total >= 70:
		return models.GradeRecovering
	case total >= 55:
		return models.GradeProgressing
	case total >= 40:
		return models.GradeAwakening
	default:
		return models.GradeAtRisk
	}
}

// riverScore оценивает денежный поток: соотношение доходов и расходов, долговая
// нагрузка, подушка безопасности и бонус за закрытые interest-стратегии.
func riverScore(in Inputs) int {
	p := in.Profile
	expenses := p.MonthlyDebtPaymentsCents + p.MonthlyHousingCents + p.MonthlyInsuranceCents + p.MonthlyLivingCents

	score := surplusRatioTier(p.MonthlyIncomeCents, expenses)
	score += dtiTier(p.MonthlyDebtPaymentsCents, p.MonthlyIncomeCents)
	score += emergencyFundTier(p.EmergencyFundCents, expenses)

	bonus := in.CompletedInterestStrategies
	if bonus > 5 {
		bonus = 5
	}
	score += bonus

	return clamp(score, 0, MaxRiver)
}

func surplusRatioTier(incomeCents, expensesCents int64) int {
	ratio := 1.0
	if expensesCents > 0 {
		ratio = float64(incomeCents) / float64(expensesCents)
	}

	switch {
	case ratio >= 1.5:
		return 8
	case ratio >= 1.2:
		return 6
	case ratio >= 1.05:
		return 4
	case ratio >= 1.0:
		return 2
	default:
		return 0
	}
}

func dtiTier(debtPaymentsCents, incomeCents int64) int {
	if incomeCents <= 0 {
		return 0
	}

	dti := float64(debtPaymentsCents) / float64(incomeCents)
	switch {
	case dti <= 0.20:
		return 7
	case dti <= 0.30:
		return 5
	case dti <= 0.40:
		return 3
	case dti <= 0.50:
		return 2
	default:
		return 0
	}
}

func emergencyFundTier(fundCents, monthlyExpensesCents int64) int {
	if fundCents <= 0 {
		return 0
	}
	if monthlyExpensesCents <= 0 {
		return 5
	}

	months := float64(fundCents) / float64(monthlyExpensesCents)
	switch {
	case months >= 6:
		return 5
	case months >= 3:
		return 4
	case months >= 1:
		return 2
	default:
		return 1
	}
}

// lakeScore оценивает пенсионную готовность: проекция будущего баланса сложным
// процентом против целевой суммы desired_annual_income x 25.
func lakeScore(p models.Profile) int {
	score := readinessTier(p)
	score += matchPoints[p.EmployerMatch]
	score += contributionRateTier(p.MonthlyContributionCents, p.MonthlyIncomeCents)
	return clamp(score, 0, MaxLake)
}

func readinessTier(p models.Profile) int {
	target := p.DesiredRetirementIncomeCents * nestEggMultiple
	projected := projectBalance(p.RetirementBalanceCents, p.MonthlyContributionCents, p.YearsToRetirement*12)

	if target <= 0 {
		if projected > 0 {
			return 15
		}
		return 0
	}

	ratio := float64(projected) / float64(target)
	switch {
	case ratio >= 1.0:
		return 15
	case ratio >= 0.75:
		return 13
	case ratio >= 0.5:
		return 11
	case ratio >= 0.25:
		return 7
	case ratio >= 0.1:
		return 3
	default:
		return 0
	}
}

func projectBalance(balanceCents, contributionCents int64, months int) int64 {
	if months <= 0 {
		return balanceCents
	}

	monthlyRate := annualGrowthRate / 12
	growth := math.Pow(1+monthlyRate, float64(months))

	projected := float64(balanceCents)*growth +
		float64(contributionCents)*((growth-1)/monthlyRate)
	return int64(projected)
}

func contributionRateTier(contributionCents, incomeCents int64) int {
	if incomeCents <= 0 || contributionCents <= 0 {
		return 0
	}

	rate := float64(contributionCents) / float64(incomeCents)
	switch {
	case rate >= 0.10:
		return 5
	case rate >= 0.05:
		return 3
	default:
		return 2
	}
}

// rainbowScore оценивает страховое покрытие. Возраст пользователя неизвестен, для
// возрастных ограничений принят фиксированный возраст 40 лет.
func rainbowScore(p models.Profile) int {
	score := 0
	if p.HasHealthInsurance {
		score += 6
	}

	life := 0
	if p.HasLifeInsurance {
		life = 6
	}
	disability := 0
	if p.HasDisabilityInsurance {
		disability = 4
	}

	if p.Dependents == 0 {
		if life > 3 {
			life = 3
		}
		if disability > 5 {
			disability = 5
		}
	}

	score += life + disability
	if p.HasLongTermCare {
		score += 4
	}

	return clamp(score, 0, MaxRainbow)
}

func taxScore(in Inputs) int {
	p := in.Profile

	score := 0
	if p.FilingStatus != nil && *p.FilingStatus != "" {
		score = 2
		if in.TaxDeepDiveCompleted {
			score = 3
		}
	}

	switch count := len(p.TaxAdvantagedAccounts); {
	case count >= 3:
		score += 5
	case count == 2:
		score += 3
	case count == 1:
		score += 2
	}

	if points, ok := w4AnswerPoints[in.FirstTaxDeepDiveAnswer]; ok {
		score += points
	} else {
		score += 2
	}

	bonus := in.CompletedTaxStrategies
	if bonus > 3 {
		bonus = 3
	}
	score += bonus

	return clamp(score, 0, MaxTax)
}

// stressScore суммирует три самооценки, без ответа каждая дает 2 балла.
func stressScore(p models.Profile) int {
	score := lookupOrDefault(worryPoints, p.MoneyWorry)
	score += lookupOrDefault(confidencePoints, p.EmergencyConfidence)
	score += lookupOrDefault(controlPoints, p.SenseOfControl)
	return clamp(score, 0, MaxStress)
}

func lookupOrDefault[K comparable](table map[K]int, key *K) int {
	if key == nil {
		return 2
	}
	if points, ok := table[*key]; ok {
		return points
	}
	return 2
}

type pillar struct {
	name         string
	score        int
	max          int
	lowThreshold int
	positive     string
	improve      string
}

func buildInsights(result models.RPRxScoreResult) []string {
	pillars := []pillar{
		{
			name: "river", score: result.River, max: MaxRiver, lowThreshold: 10,
			positive: "Your cash flow is strong: income comfortably covers your monthly obligations.",
			improve:  "Your cash flow is under pressure. Freeing up even a small monthly surplus will compound quickly.",
		},
		{
			name: "lake", score: result.Lake, max: MaxLake, lowThreshold: 10,
			positive: "Your retirement savings are on track for the income you want.",
			improve:  "Your retirement projection falls short of your target. Raising contributions now has the biggest effect.",
		},
		{
			name: "rainbow", score: result.Rainbow, max: MaxRainbow, lowThreshold: 8,
			positive: "Your insurance coverage protects the essentials.",
			improve:  "Gaps in your insurance coverage leave you exposed to setbacks.",
		},
		{
			name: "tax", score: result.Tax, max: MaxTax, lowThreshold: 6,
			positive: "You are making good use of tax-advantaged opportunities.",
			improve:  "You are likely leaving tax savings on the table. Start with your withholding and account options.",
		},
		{
			name: "stress", score: result.Stress, max: MaxStress, lowThreshold: 6,
			positive: "Money feels manageable to you day to day. That confidence is worth protecting.",
			improve:  "Money worries are weighing on you. Small, concrete wins tend to relieve that fastest.",
		},
	}

	positives := make([]string, 0, len(pillars))
	improvements := make([]string, 0, len(pillars))
	for _, p := range pillars {
		if p.score*100 >= p.max*80 {
			positives = append(positives, p.positive)
			continue
		}
		if p.score < p.lowThreshold {
			improvements = append(improvements, p.improve)
		}
	}

	insights := append(positives, improvements...)
	if len(insights) == 0 {
		best := pillars[0]
		for _, p := range pillars[1:] {
			if p.score > best.score {
				best = p
			}
		}
		insights = append(insights, fmt.Sprintf("Your strongest area right now is %s. Build on it while you shore up the rest.", best.name))
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}

	return insights
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
