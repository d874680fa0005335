package scoring

import "example.com/rprx-coach/backend/internal/models"

const (
	surplusRatio = 1.2
	deficitRatio = 1.0
)

// MonthlyFlow содержит месячный доход и четыре статьи расходов в центах.
type MonthlyFlow struct {
	IncomeCents       int64
	DebtPaymentsCents int64
	HousingCents      int64
	InsuranceCents    int64
	LivingCents       int64
}

// FlowFromProfile собирает месячные суммы из профиля пользователя.
func FlowFromProfile(profile models.Profile) MonthlyFlow {
	return MonthlyFlow{
		IncomeCents:       profile.MonthlyIncomeCents,
		DebtPaymentsCents: profile.MonthlyDebtPaymentsCents,
		HousingCents:      profile.MonthlyHousingCents,
		InsuranceCents:    profile.MonthlyInsuranceCents,
		LivingCents:       profile.MonthlyLivingCents,
	}
}

// ClassifyCashFlow относит денежный поток к surplus, tight или deficit.
func ClassifyCashFlow(flow MonthlyFlow) models.CashFlowResult {
	totalExpenses := flow.DebtPaymentsCents + flow.HousingCents + flow.InsuranceCents + flow.LivingCents
	surplus := flow.IncomeCents - totalExpenses

	// При нулевых расходах ratio принимается равным 1, чтобы не делить на ноль.
	ratio := 1.0
	if totalExpenses > 0 {
		ratio = float64(flow.IncomeCents) / float64(totalExpenses)
	}

	status := models.CashFlowTight
	switch {
	case ratio > surplusRatio:
		status = models.CashFlowSurplus
	case ratio < deficitRatio:
		status = models.CashFlowDeficit
	}

	return models.CashFlowResult{
		Status:             status,
		SurplusCents:       surplus,
		TotalExpensesCents: totalExpenses,
	}
}
