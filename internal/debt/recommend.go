package debt

import (
	"fmt"
	"sort"

	"example.com/rprx-coach/backend/internal/models"
)

const (
	// HighAPRThreshold задает годовую ставку в процентах, начиная с которой долг
	// считается приоритетным независимо от быстрых побед.
	HighAPRThreshold = 18.0

	// QuickWinMaxMonths задает горизонт быстрой победы в месяцах.
	QuickWinMaxMonths = 6
)

// Recommend строит рекомендацию по фокусному долгу и полный ранжированный список.
// surplusCents задает месячный профицит из классификатора денежного потока; nil
// трактуется как ноль. Пустой список активных долгов дает nil-рекомендацию.
func Recommend(debts []models.UserDebt, surplusCents *int64) (*models.DebtRecommendation, []models.RankedDebt) {
	active := activeDebts(debts)
	if len(active) == 0 {
		return nil, nil
	}

	var surplus int64
	if surplusCents != nil {
		surplus = *surplusCents
	}

	if surplus <= 0 {
		return stabilize(active)
	}

	return attack(active, surplus)
}

// OverrideWarning сравнивает выбранный пользователем фокусный долг с рекомендацией
// движка. Предупреждение возвращается только когда пользователь уходит с долга,
// подходящего под порог высокой ставки, на долг с меньшей ставкой.
func OverrideWarning(debts []models.UserDebt, chosen models.UserDebt, surplusCents *int64) string {
	recommendation, _ := Recommend(debts, surplusCents)
	if recommendation == nil {
		return ""
	}

	var recommended *models.UserDebt
	for i := range debts {
		if debts[i].ID == recommendation.FocusDebtID {
			recommended = &debts[i]
			break
		}
	}

	if recommended == nil || recommended.ID == chosen.ID {
		return ""
	}

	if recommended.InterestRate >= HighAPRThreshold && chosen.InterestRate < recommended.InterestRate {
		return fmt.Sprintf(
			"%s carries a %.1f%% APR. Focusing on %s (%.1f%%) instead will cost you more in interest.",
			recommended.Name, recommended.InterestRate, chosen.Name, chosen.InterestRate,
		)
	}

	return ""
}

// PayoffMonths возвращает ceil(balance / payment) и признак достижимости.
// Нулевой или отрицательный платеж означает, что долг не выплачивается никогда.
func PayoffMonths(balanceCents, monthlyPaymentCents int64) (int, bool) {
	if monthlyPaymentCents <= 0 {
		return 0, false
	}
	if balanceCents <= 0 {
		return 0, true
	}

	months := (balanceCents + monthlyPaymentCents - 1) / monthlyPaymentCents
	return int(months), true
}

func stabilize(active []models.UserDebt) (*models.DebtRecommendation, []models.RankedDebt) {
	sorted := sortByAPR(active)
	focus := sorted[0]

	recommendation := &models.DebtRecommendation{
		FocusDebtID: focus.ID,
		Mode:        models.ModeStabilize,
		Reason: fmt.Sprintf(
			"Watch this debt: %s has your highest interest rate at %.1f%%. Keep up minimum payments until your cash flow improves.",
			focus.Name, focus.InterestRate,
		),
	}

	ranked := make([]models.RankedDebt, 0, len(sorted))
	for i, d := range sorted {
		reason := "Maintain the minimum payment for now."
		if i == 0 {
			reason = recommendation.Reason
		}
		ranked = append(ranked, models.RankedDebt{Debt: d, Rank: i + 1, Reason: reason})
	}

	return recommendation, ranked
}

func attack(active []models.UserDebt, surplus int64) (*models.DebtRecommendation, []models.RankedDebt) {
	focus, reason, payoff, freed := pickAttackFocus(active, surplus)

	recommendation := &models.DebtRecommendation{
		FocusDebtID:           focus.ID,
		Mode:                  models.ModeAttack,
		Reason:                reason,
		EstimatedPayoffMonths: payoff,
		FreedPaymentCents:     freed,
	}

	return recommendation, rankForAttack(active, focus, reason, surplus)
}

func pickAttackFocus(active []models.UserDebt, surplus int64) (models.UserDebt, string, *int, *int64) {
	// Ветка высокой ставки: быстрые победы в других долгах игнорируются.
	if focus, ok := highestHighAPR(active); ok {
		reason := fmt.Sprintf(
			"%s carries a %.1f%% APR. Attacking it first saves the most in interest charges.",
			focus.Name, focus.InterestRate,
		)
		payoff := payoffWithSurplus(focus, surplus)
		return focus, reason, payoff, nil
	}

	if focus, months, ok := quickWin(active, surplus); ok {
		freed := focus.MinPaymentCents
		reason := fmt.Sprintf(
			"You can pay off %s in about %d months, freeing up $%.2f/month for the next debt.",
			focus.Name, months, float64(freed)/100,
		)
		return focus, reason, &months, &freed
	}

	// Ипотека может стать фокусом только когда других долгов нет.
	candidates := make([]models.UserDebt, 0, len(active))
	for _, d := range active {
		if d.Type != models.DebtTypeMortgage {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		candidates = active
	}

	focus := sortByAPR(candidates)[0]
	reason := fmt.Sprintf(
		"%s has the highest interest rate of your debts at %.1f%%. Start there.",
		focus.Name, focus.InterestRate,
	)
	return focus, reason, payoffWithSurplus(focus, surplus), nil
}

func rankForAttack(active []models.UserDebt, focus models.UserDebt, focusReason string, surplus int64) []models.RankedDebt {
	others := make([]models.UserDebt, 0, len(active))
	mortgages := make([]models.UserDebt, 0)

	for _, d := range active {
		if d.ID == focus.ID {
			continue
		}
		if d.Type == models.DebtTypeMortgage {
			mortgages = append(mortgages, d)
			continue
		}
		others = append(others, d)
	}

	others = sortByAPR(others)
	mortgages = sortByAPR(mortgages)

	ranked := make([]models.RankedDebt, 0, len(active))
	ranked = append(ranked, models.RankedDebt{
		Debt:         focus,
		Rank:         1,
		Reason:       focusReason,
		PayoffMonths: payoffWithSurplus(focus, surplus),
	})

	for _, d := range others {
		ranked = append(ranked, models.RankedDebt{
			Debt:         d,
			Rank:         len(ranked) + 1,
			Reason:       "Next in line by interest rate.",
			PayoffMonths: payoffWithSurplus(d, surplus),
		})
	}

	// Ипотека всегда в конце списка независимо от ставки.
	for _, d := range mortgages {
		ranked = append(ranked, models.RankedDebt{
			Debt:   d,
			Rank:   len(ranked) + 1,
			Reason: "Mortgage: lowest priority while other debts remain.",
		})
	}

	return ranked
}

func highestHighAPR(active []models.UserDebt) (models.UserDebt, bool) {
	candidates := make([]models.UserDebt, 0, len(active))
	for _, d := range active {
		if d.Type == models.DebtTypeMortgage {
			continue
		}
		if d.InterestRate >= HighAPRThreshold {
			candidates = append(candidates, d)
		}
	}

	if len(candidates) == 0 {
		return models.UserDebt{}, false
	}

	return sortByAPR(candidates)[0], true
}

func quickWin(active []models.UserDebt, surplus int64) (models.UserDebt, int, bool) {
	var best models.UserDebt
	bestMonths := 0
	found := false

	for _, d := range active {
		if d.Type == models.DebtTypeMortgage {
			continue
		}

		months, payable := PayoffMonths(d.CurrentBalanceCents, d.MinPaymentCents+surplus)
		if !payable || months > QuickWinMaxMonths {
			continue
		}

		// Строгое сравнение сохраняет порядок обхода при равенстве.
		if !found || months < bestMonths {
			best = d
			bestMonths = months
			found = true
		}
	}

	return best, bestMonths, found
}

func payoffWithSurplus(d models.UserDebt, surplus int64) *int {
	months, payable := PayoffMonths(d.CurrentBalanceCents, d.MinPaymentCents+surplus)
	if !payable {
		return nil
	}
	return &months
}

func activeDebts(debts []models.UserDebt) []models.UserDebt {
	active := make([]models.UserDebt, 0, len(debts))
	for _, d := range debts {
		if d.CurrentBalanceCents > 0 && d.PaidOffAt == nil {
			active = append(active, d)
		}
	}
	return active
}

func sortByAPR(debts []models.UserDebt) []models.UserDebt {
	sorted := make([]models.UserDebt, len(debts))
	copy(sorted, debts)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].InterestRate != sorted[j].InterestRate {
			return sorted[i].InterestRate > sorted[j].InterestRate
		}
		return sorted[i].CurrentBalanceCents < sorted[j].CurrentBalanceCents
	})

	return sorted
}
