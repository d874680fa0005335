package ai

type DebtSummary struct {
	Name               string  `json:"name"`
	Type               string  `json:"type"`
	BalanceCents       int64   `json:"balance_cents"`
	InterestRate       float64 `json:"interest_rate"`
	MinimumPaymentCents int64  `json:"minimum_payment_cents,omitempty"`
}

type ProfileSnapshot struct {
	MonthlyIncomeCents    int64    `json:"monthly_income_cents"`
	MonthlyExpensesCents  int64    `json:"monthly_expenses_cents"`
	EmergencyFundCents    int64    `json:"emergency_fund_cents"`
	Dependents            int      `json:"dependents"`
	FilingStatus          string   `json:"filing_status,omitempty"`
	TaxAdvantagedAccounts []string `json:"tax_advantaged_accounts,omitempty"`
	HasHealthInsurance    bool     `json:"has_health_insurance"`
	HasLifeInsurance      bool     `json:"has_life_insurance"`
	HasDisabilityInsurance bool    `json:"has_disability_insurance"`
}

type GenerateStrategiesInput struct {
	Horseman      string          `json:"horseman"`
	HorsemanScore int             `json:"horseman_score"`
	Profile       ProfileSnapshot `json:"profile"`
	Debts         []DebtSummary   `json:"debts,omitempty"`
}

type StrategiesResponse struct {
	Strategies []StrategySuggestion `json:"strategies"`
}

type StrategySuggestion struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	EstimatedImpact string `json:"estimated_impact"`
}
