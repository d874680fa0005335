package debt

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/rprx-coach/backend/internal/models"
)

func testDebt(name string, debtType models.DebtType, balanceCents int64, rate float64, minPaymentCents int64) models.UserDebt {
	return models.UserDebt{
		ID:                   uuid.New(),
		Name:                 name,
		Type:                 debtType,
		OriginalBalanceCents: balanceCents,
		CurrentBalanceCents:  balanceCents,
		InterestRate:         rate,
		MinPaymentCents:      minPaymentCents,
	}
}

func surplus(cents int64) *int64 { return &cents }

// TestRecommendAttackHighAPR проверяет выбор долга с высокой ставкой при профиците.
func TestRecommendAttackHighAPR(t *testing.T) {
	card := testDebt("Credit Card", models.DebtTypeCreditCard, 350000, 22.0, 15000)
	student := testDebt("Student Loan", models.DebtTypeStudentLoan, 1200000, 5.5, 20000)

	recommendation, ranked := Recommend([]models.UserDebt{student, card}, surplus(30000))
	if recommendation == nil {
		t.Fatal("expected a recommendation")
	}
	if recommendation.Mode != models.ModeAttack {
		t.Fatalf("expected attack mode, got %s", recommendation.Mode)
	}
	if recommendation.FocusDebtID != card.ID {
		t.Fatalf("expected credit card focus, got %s", recommendation.FocusDebtID)
	}
	if recommendation.EstimatedPayoffMonths == nil || *recommendation.EstimatedPayoffMonths != 8 {
		t.Fatalf("expected payoff in 8 months, got %v", recommendation.EstimatedPayoffMonths)
	}
	if len(ranked) != 2 || ranked[0].Debt.ID != card.ID {
		t.Fatalf("expected credit card ranked first, got %+v", ranked)
	}
}

// TestRecommendStabilize проверяет режим stabilize без профицита.
func TestRecommendStabilize(t *testing.T) {
	card := testDebt("Credit Card", models.DebtTypeCreditCard, 350000, 22.0, 15000)
	auto := testDebt("Auto Loan", models.DebtTypeAutoLoan, 800000, 7.0, 25000)

	recommendation, ranked := Recommend([]models.UserDebt{auto, card}, nil)
	if recommendation == nil {
		t.Fatal("expected a recommendation")
	}
	if recommendation.Mode != models.ModeStabilize {
		t.Fatalf("expected stabilize mode, got %s", recommendation.Mode)
	}
	if recommendation.FocusDebtID != card.ID {
		t.Fatalf("expected highest-APR focus, got %s", recommendation.FocusDebtID)
	}
	if !strings.HasPrefix(recommendation.Reason, "Watch this debt") {
		t.Fatalf("unexpected reason: %s", recommendation.Reason)
	}
	if recommendation.EstimatedPayoffMonths != nil {
		t.Fatalf("stabilize must not estimate payoff, got %v", *recommendation.EstimatedPayoffMonths)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected both debts ranked, got %d", len(ranked))
	}
}

// TestRecommendQuickWin проверяет ветку быстрой победы без высоких ставок.
func TestRecommendQuickWin(t *testing.T) {
	small := testDebt("Medical Bill", models.DebtTypeMedical, 30000, 0.0, 5000)
	auto := testDebt("Auto Loan", models.DebtTypeAutoLoan, 900000, 7.0, 25000)

	recommendation, _ := Recommend([]models.UserDebt{auto, small}, surplus(5000))
	if recommendation == nil {
		t.Fatal("expected a recommendation")
	}
	if recommendation.FocusDebtID != small.ID {
		t.Fatalf("expected quick win focus, got %s", recommendation.FocusDebtID)
	}
	if recommendation.EstimatedPayoffMonths == nil || *recommendation.EstimatedPayoffMonths != 3 {
		t.Fatalf("expected 3 months, got %v", recommendation.EstimatedPayoffMonths)
	}
	if recommendation.FreedPaymentCents == nil || *recommendation.FreedPaymentCents != 5000 {
		t.Fatalf("expected freed payment 5000, got %v", recommendation.FreedPaymentCents)
	}
}

// TestRecommendMortgageDeprioritized проверяет, что ипотека не становится
// фокусом и замыкает ранжированный список.
func TestRecommendMortgageDeprioritized(t *testing.T) {
	mortgage := testDebt("Mortgage", models.DebtTypeMortgage, 25000000, 19.0, 180000)
	student := testDebt("Student Loan", models.DebtTypeStudentLoan, 1500000, 6.0, 20000)

	recommendation, ranked := Recommend([]models.UserDebt{mortgage, student}, surplus(40000))
	if recommendation == nil {
		t.Fatal("expected a recommendation")
	}
	if recommendation.FocusDebtID == mortgage.ID {
		t.Fatal("mortgage must not be the focus debt")
	}
	if ranked[len(ranked)-1].Debt.ID != mortgage.ID {
		t.Fatal("mortgage must be ranked last")
	}
}

// TestRecommendSkipsPaidOff проверяет фильтрацию погашенных долгов.
func TestRecommendSkipsPaidOff(t *testing.T) {
	paidAt := time.Now()
	paid := testDebt("Old Card", models.DebtTypeCreditCard, 0, 24.0, 10000)
	paid.PaidOffAt = &paidAt

	recommendation, ranked := Recommend([]models.UserDebt{paid}, surplus(10000))
	if recommendation != nil || ranked != nil {
		t.Fatalf("expected nil recommendation for paid-off debts, got %+v", recommendation)
	}
}

// TestPayoffMonths проверяет целочисленное округление вверх.
func TestPayoffMonths(t *testing.T) {
	if months, ok := PayoffMonths(100000, 30000); !ok || months != 4 {
		t.Fatalf("expected 4 months, got %d (ok=%v)", months, ok)
	}
	if months, ok := PayoffMonths(90000, 30000); !ok || months != 3 {
		t.Fatalf("expected 3 months, got %d (ok=%v)", months, ok)
	}
	if _, ok := PayoffMonths(100000, 0); ok {
		t.Fatal("expected unreachable payoff for zero payment")
	}
}

// TestOverrideWarning проверяет предупреждение при уходе с высокой ставки.
func TestOverrideWarning(t *testing.T) {
	card := testDebt("Credit Card", models.DebtTypeCreditCard, 350000, 22.0, 15000)
	auto := testDebt("Auto Loan", models.DebtTypeAutoLoan, 800000, 7.0, 25000)
	debts := []models.UserDebt{card, auto}

	warning := OverrideWarning(debts, auto, surplus(20000))
	if warning == "" {
		t.Fatal("expected a warning for overriding a high-APR focus")
	}
	if !strings.Contains(warning, "22.0%") {
		t.Fatalf("warning must mention the recommended APR: %s", warning)
	}

	if got := OverrideWarning(debts, card, surplus(20000)); got != "" {
		t.Fatalf("expected no warning when choosing the recommended debt, got %s", got)
	}
}
