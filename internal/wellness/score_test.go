package wellness

import (
	"testing"

	"example.com/rprx-coach/backend/internal/models"
)

func strongProfile() models.Profile {
	filing := "married_joint"
	worry := models.WorryRarely
	confidence := models.ConfidenceFull
	control := models.ControlFull

	return models.Profile{
		MonthlyIncomeCents:       900000,
		MonthlyDebtPaymentsCents: 50000,
		MonthlyHousingCents:      200000,
		MonthlyInsuranceCents:    30000,
		MonthlyLivingCents:       150000,
		EmergencyFundCents:       3000000,

		RetirementBalanceCents:       50000000,
		MonthlyContributionCents:     100000,
		DesiredRetirementIncomeCents: 400000,
		YearsToRetirement:            25,
		EmployerMatch:                models.MatchCaptureFull,

		HasHealthInsurance:     true,
		HasLifeInsurance:       true,
		HasDisabilityInsurance: true,
		HasLongTermCare:        true,
		Dependents:             2,

		FilingStatus:          &filing,
		TaxAdvantagedAccounts: []string{"401k", "roth_ira", "hsa"},

		MoneyWorry:          &worry,
		EmergencyConfidence: &confidence,
		SenseOfControl:      &control,
	}
}

// TestCalculateMaxedProfile проверяет, что сильный профиль достигает 100 и thriving.
func TestCalculateMaxedProfile(t *testing.T) {
	result := Calculate(Inputs{
		Profile:                     strongProfile(),
		CompletedInterestStrategies: 5,
		CompletedTaxStrategies:      3,
		TaxDeepDiveCompleted:        true,
		FirstTaxDeepDiveAnswer:      "reviewed_this_year",
	})

	if result.River != MaxRiver {
		t.Fatalf("expected river %d, got %d", MaxRiver, result.River)
	}
	if result.Lake != MaxLake {
		t.Fatalf("expected lake %d, got %d", MaxLake, result.Lake)
	}
	if result.Rainbow != MaxRainbow {
		t.Fatalf("expected rainbow %d, got %d", MaxRainbow, result.Rainbow)
	}
	if result.Tax != MaxTax {
		t.Fatalf("expected tax %d, got %d", MaxTax, result.Tax)
	}
	if result.Stress != MaxStress {
		t.Fatalf("expected stress %d, got %d", MaxStress, result.Stress)
	}
	if result.Total != 100 {
		t.Fatalf("expected total 100, got %d", result.Total)
	}
	if result.Grade != models.GradeThriving {
		t.Fatalf("expected thriving, got %s", result.Grade)
	}
}

// TestCalculateEmptyProfile проверяет нижнюю границу и грейд at_risk.
func TestCalculateEmptyProfile(t *testing.T) {
	result := Calculate(Inputs{})

	// Непройденные самооценки дают по 2 балла за каждую из трех.
	if result.Stress != 6 {
		t.Fatalf("expected stress 6 for unanswered self-ratings, got %d", result.Stress)
	}
	if result.River != 2 {
		t.Fatalf("expected river 2 for zero expenses baseline, got %d", result.River)
	}
	if result.Grade != models.GradeAtRisk {
		t.Fatalf("expected at_risk, got %s", result.Grade)
	}
}

// TestGradeFor проверяет пороги грейдов.
func TestGradeFor(t *testing.T) {
	cases := []struct {
		total int
		want  models.Grade
	}{
		{100, models.GradeThriving},
		{85, models.GradeThriving},
		{84, models.GradeRecovering},
		{70, models.GradeRecovering},
		{69, models.GradeProgressing},
		{55, models.GradeProgressing},
		{54, models.GradeAwakening},
		{40, models.GradeAwakening},
		{39, models.GradeAtRisk},
		{0, models.GradeAtRisk},
	}

	for _, tc := range cases {
		if got := GradeFor(tc.total); got != tc.want {
			t.Fatalf("total %d: expected %s, got %s", tc.total, tc.want, got)
		}
	}
}

// TestRainbowScoreNoDependents проверяет снижение веса life и disability без иждивенцев.
func TestRainbowScoreNoDependents(t *testing.T) {
	profile := models.Profile{
		HasHealthInsurance:     true,
		HasLifeInsurance:       true,
		HasDisabilityInsurance: true,
		Dependents:             0,
	}

	// health 6 + life, сниженный до 3, + disability 4.
	if got := rainbowScore(profile); got != 13 {
		t.Fatalf("expected 13, got %d", got)
	}
}

// TestTaxScoreDeepDive проверяет бонус заполненного статуса с deep dive.
func TestTaxScoreDeepDive(t *testing.T) {
	filing := "single"
	in := Inputs{
		Profile: models.Profile{
			FilingStatus:          &filing,
			TaxAdvantagedAccounts: []string{"401k"},
		},
		TaxDeepDiveCompleted:   true,
		FirstTaxDeepDiveAnswer: "never_reviewed",
	}

	// filing+deep dive 3, один счет 2, never_reviewed 0.
	if got := taxScore(in); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

// TestBuildInsightsFallback проверяет единственный инсайт про сильнейший столп.
func TestBuildInsightsFallback(t *testing.T) {
	result := models.RPRxScoreResult{River: 12, Lake: 11, Rainbow: 9, Tax: 7, Stress: 8}

	insights := buildInsights(result)
	if len(insights) != 1 {
		t.Fatalf("expected a single fallback insight, got %d", len(insights))
	}
}

// TestBuildInsightsLimit проверяет ограничение в три инсайта.
func TestBuildInsightsLimit(t *testing.T) {
	result := models.RPRxScoreResult{River: 25, Lake: 25, Rainbow: 20, Tax: 15, Stress: 15}

	insights := buildInsights(result)
	if len(insights) != maxInsights {
		t.Fatalf("expected %d insights, got %d", maxInsights, len(insights))
	}
}
