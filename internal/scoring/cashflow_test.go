package scoring

import (
	"testing"

	"example.com/rprx-coach/backend/internal/models"
)

// TestClassifyCashFlowSurplus проверяет классификацию с запасом дохода.
func TestClassifyCashFlowSurplus(t *testing.T) {
	result := ClassifyCashFlow(MonthlyFlow{
		IncomeCents:       400000,
		DebtPaymentsCents: 50000,
		HousingCents:      150000,
		InsuranceCents:    20000,
		LivingCents:       80000,
	})

	if result.Status != models.CashFlowSurplus {
		t.Fatalf("expected surplus, got %s", result.Status)
	}
	if result.SurplusCents != 100000 {
		t.Fatalf("expected surplus 100000, got %d", result.SurplusCents)
	}
	if result.TotalExpensesCents != 300000 {
		t.Fatalf("expected expenses 300000, got %d", result.TotalExpensesCents)
	}
}

// TestClassifyCashFlowTight проверяет пограничную зону между 1.0 и 1.2.
func TestClassifyCashFlowTight(t *testing.T) {
	result := ClassifyCashFlow(MonthlyFlow{
		IncomeCents: 330000,
		LivingCents: 300000,
	})

	if result.Status != models.CashFlowTight {
		t.Fatalf("expected tight, got %s", result.Status)
	}

	// Отношение ровно 1.2 остается tight: surplus требует строго больше.
	exact := ClassifyCashFlow(MonthlyFlow{IncomeCents: 360000, LivingCents: 300000})
	if exact.Status != models.CashFlowTight {
		t.Fatalf("expected tight at exact 1.2 ratio, got %s", exact.Status)
	}
}

// TestClassifyCashFlowDeficit проверяет определение дефицита.
func TestClassifyCashFlowDeficit(t *testing.T) {
	result := ClassifyCashFlow(MonthlyFlow{
		IncomeCents:       250000,
		DebtPaymentsCents: 100000,
		HousingCents:      120000,
		LivingCents:       80000,
	})

	if result.Status != models.CashFlowDeficit {
		t.Fatalf("expected deficit, got %s", result.Status)
	}
	if result.SurplusCents != -50000 {
		t.Fatalf("expected surplus -50000, got %d", result.SurplusCents)
	}
}

// TestClassifyCashFlowZeroExpenses проверяет, что нулевые расходы дают tight.
func TestClassifyCashFlowZeroExpenses(t *testing.T) {
	result := ClassifyCashFlow(MonthlyFlow{IncomeCents: 100000})

	if result.Status != models.CashFlowTight {
		t.Fatalf("expected tight for zero expenses, got %s", result.Status)
	}
}
