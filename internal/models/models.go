package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Horseman string

type QuestionType string

type CashFlowStatus string

type DebtType string

type RecommendationMode string

type Grade string

type StrategyStatus string

type TriggerType string

type ActivityType string

type WorryFrequency string

type ConfidenceLevel string

type ControlLevel string

type MatchCapture string

const (
	HorsemanInterest  Horseman = "interest"
	HorsemanTaxes     Horseman = "taxes"
	HorsemanInsurance Horseman = "insurance"
	HorsemanEducation Horseman = "education"

	QuestionTypeSlider       QuestionType = "slider"
	QuestionTypeSingleChoice QuestionType = "single_choice"
	QuestionTypeYesNo        QuestionType = "yes_no"
	QuestionTypeRangeSelect  QuestionType = "range_select"

	// CategoryCashFlow вопросы не участвуют в скоринге всадников.
	CategoryCashFlow = "cash_flow"

	CashFlowSurplus CashFlowStatus = "surplus"
	CashFlowTight   CashFlowStatus = "tight"
	CashFlowDeficit CashFlowStatus = "deficit"

	DebtTypeCreditCard   DebtType = "credit_card"
	DebtTypeStudentLoan  DebtType = "student_loan"
	DebtTypeAutoLoan     DebtType = "auto_loan"
	DebtTypePersonalLoan DebtType = "personal_loan"
	DebtTypeMedical      DebtType = "medical"
	DebtTypeMortgage     DebtType = "mortgage"
	DebtTypeOther        DebtType = "other"

	ModeAttack    RecommendationMode = "attack"
	ModeStabilize RecommendationMode = "stabilize"

	GradeThriving    Grade = "thriving"
	GradeRecovering  Grade = "recovering"
	GradeProgressing Grade = "progressing"
	GradeAwakening   Grade = "awakening"
	GradeAtRisk      Grade = "at_risk"

	StrategyStatusSuggested StrategyStatus = "suggested"
	StrategyStatusActive    StrategyStatus = "active"
	StrategyStatusCompleted StrategyStatus = "completed"

	TriggerStreakReached     TriggerType = "streak_reached"
	TriggerAssessmentDone    TriggerType = "assessment_complete"
	TriggerDeepDiveDone      TriggerType = "deep_dive_complete"
	TriggerStrategyActivated TriggerType = "strategy_activated"
	TriggerStrategyCompleted TriggerType = "strategy_completed"
	TriggerTierReached       TriggerType = "tier_reached"
	TriggerProfileComplete   TriggerType = "profile_complete"
	TriggerSavingsMilestone  TriggerType = "savings_milestone"

	ActivityAssessmentComplete ActivityType = "assessment_complete"
	ActivityDeepDiveComplete   ActivityType = "deep_dive_complete"
	ActivityStrategyActivated  ActivityType = "strategy_activated"
	ActivityStrategyCompleted  ActivityType = "strategy_completed"
	ActivityDebtPayment        ActivityType = "debt_payment"
	ActivityDailyCheckin       ActivityType = "daily_checkin"
	ActivityProfileUpdated     ActivityType = "profile_updated"
	ActivityBadgeEarned        ActivityType = "badge_earned"

	WorryConstantly WorryFrequency = "constantly"
	WorryOften      WorryFrequency = "often"
	WorrySometimes  WorryFrequency = "sometimes"
	WorryRarely     WorryFrequency = "rarely"

	ConfidenceNone     ConfidenceLevel = "not_confident"
	ConfidenceSomewhat ConfidenceLevel = "somewhat_confident"
	ConfidenceMostly   ConfidenceLevel = "confident"
	ConfidenceFull     ConfidenceLevel = "very_confident"

	ControlNone   ControlLevel = "no_control"
	ControlSome   ControlLevel = "some_control"
	ControlMostly ControlLevel = "mostly_in_control"
	ControlFull   ControlLevel = "fully_in_control"

	MatchCaptureNone    MatchCapture = "none"
	MatchCapturePartial MatchCapture = "partial"
	MatchCaptureMost    MatchCapture = "most"
	MatchCaptureFull    MatchCapture = "full"
)

// HorsemenOrder задает фиксированный порядок всадников для tie-break.
func HorsemenOrder() [4]Horseman {
	return [4]Horseman{HorsemanInterest, HorsemanTaxes, HorsemanInsurance, HorsemanEducation}
}

type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Score    int    `json:"score"`
	Midpoint *int64 `json:"midpoint,omitempty"`
}

type Question struct {
	ID              uuid.UUID            `json:"id"`
	Text            string               `json:"question_text"`
	Type            QuestionType         `json:"question_type"`
	OrderIndex      int                  `json:"order_index"`
	Options         []Option             `json:"options"`
	HorsemanWeights map[Horseman]float64 `json:"horseman_weights"`
	Category        string               `json:"category"`
}

type DeepDiveQuestion struct {
	ID         uuid.UUID    `json:"id"`
	Horseman   Horseman     `json:"horseman"`
	Text       string       `json:"question_text"`
	Type       QuestionType `json:"question_type"`
	OrderIndex int          `json:"order_index"`
	Options    []Option     `json:"options"`
}

// Response живет только в рамках одной попытки прохождения оценки.
type Response struct {
	QuestionID uuid.UUID `json:"question_id"`
	Value      string    `json:"value"`
}

type HorsemanScores struct {
	Interest  int `json:"interest"`
	Taxes     int `json:"taxes"`
	Insurance int `json:"insurance"`
	Education int `json:"education"`
}

// Score возвращает балл по имени всадника.
func (s HorsemanScores) Score(h Horseman) int {
	switch h {
	case HorsemanInterest:
		return s.Interest
	case HorsemanTaxes:
		return s.Taxes
	case HorsemanInsurance:
		return s.Insurance
	case HorsemanEducation:
		return s.Education
	}
	return 0
}

type CashFlowResult struct {
	Status             CashFlowStatus `json:"status"`
	SurplusCents       int64          `json:"surplus_cents"`
	TotalExpensesCents int64          `json:"total_expenses_cents"`
}

type UserDebt struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	Type                 DebtType   `json:"debt_type"`
	Name                 string     `json:"name"`
	OriginalBalanceCents int64      `json:"original_balance_cents"`
	CurrentBalanceCents  int64      `json:"current_balance_cents"`
	InterestRate         float64    `json:"interest_rate"`
	MinPaymentCents      int64      `json:"min_payment_cents"`
	PaidOffAt            *time.Time `json:"paid_off_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type DebtRecommendation struct {
	FocusDebtID           uuid.UUID          `json:"focus_debt_id"`
	Mode                  RecommendationMode `json:"mode"`
	Reason                string             `json:"reason"`
	EstimatedPayoffMonths *int               `json:"estimated_payoff_months,omitempty"`
	FreedPaymentCents     *int64             `json:"freed_payment_cents,omitempty"`
}

type RankedDebt struct {
	Debt         UserDebt `json:"debt"`
	Rank         int      `json:"rank"`
	Reason       string   `json:"reason"`
	PayoffMonths *int     `json:"payoff_months,omitempty"`
}

type Profile struct {
	UserID uuid.UUID `json:"user_id"`

	MonthlyIncomeCents       int64 `json:"monthly_income_cents"`
	MonthlyDebtPaymentsCents int64 `json:"monthly_debt_payments_cents"`
	MonthlyHousingCents      int64 `json:"monthly_housing_cents"`
	MonthlyInsuranceCents    int64 `json:"monthly_insurance_cents"`
	MonthlyLivingCents       int64 `json:"monthly_living_cents"`
	EmergencyFundCents       int64 `json:"emergency_fund_cents"`

	RetirementBalanceCents       int64        `json:"retirement_balance_cents"`
	MonthlyContributionCents     int64        `json:"monthly_contribution_cents"`
	DesiredRetirementIncomeCents int64        `json:"desired_retirement_income_cents"`
	YearsToRetirement            int          `json:"years_to_retirement"`
	EmployerMatch                MatchCapture `json:"employer_match"`

	HasHealthInsurance     bool `json:"has_health_insurance"`
	HasLifeInsurance       bool `json:"has_life_insurance"`
	HasDisabilityInsurance bool `json:"has_disability_insurance"`
	HasLongTermCare        bool `json:"has_long_term_care"`
	Dependents             int  `json:"dependents"`

	FilingStatus          *string  `json:"filing_status,omitempty"`
	TaxAdvantagedAccounts []string `json:"tax_advantaged_accounts"`

	MoneyWorry          *WorryFrequency  `json:"money_worry,omitempty"`
	EmergencyConfidence *ConfidenceLevel `json:"emergency_confidence,omitempty"`
	SenseOfControl      *ControlLevel    `json:"sense_of_control,omitempty"`

	CurrentStreak     int        `json:"current_streak"`
	LongestStreak     int        `json:"longest_streak"`
	LastActiveDate    *time.Time `json:"last_active_date,omitempty"`
	TotalPointsEarned int        `json:"total_points_earned"`

	RPRxTotal   int        `json:"rprx_total"`
	RPRxRiver   int        `json:"rprx_river"`
	RPRxLake    int        `json:"rprx_lake"`
	RPRxRainbow int        `json:"rprx_rainbow"`
	RPRxTax     int        `json:"rprx_tax"`
	RPRxStress  int        `json:"rprx_stress"`
	Tier        Grade      `json:"tier"`
	ScoredAt    *time.Time `json:"scored_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BadgeDefinition struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	TriggerType  TriggerType     `json:"trigger_type"`
	TriggerValue json.RawMessage `json:"trigger_value"`
	Points       int             `json:"points"`
	IsActive     bool            `json:"is_active"`
}

type UserBadge struct {
	UserID   uuid.UUID `json:"user_id"`
	BadgeID  uuid.UUID `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

type AwardedBadge struct {
	Badge    BadgeDefinition `json:"badge"`
	EarnedAt time.Time       `json:"earned_at"`
}

// ActivityLogEntry только добавляется, записи не изменяются и не удаляются.
type ActivityLogEntry struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         ActivityType    `json:"activity_type"`
	PointsEarned int             `json:"points_earned"`
	Context      json.RawMessage `json:"context,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type RPRxScoreResult struct {
	River    int      `json:"river"`
	Lake     int      `json:"lake"`
	Rainbow  int      `json:"rainbow"`
	Tax      int      `json:"tax"`
	Stress   int      `json:"stress"`
	Total    int      `json:"total"`
	Grade    Grade    `json:"grade"`
	Insights []string `json:"insights"`
}

type StreakState struct {
	Current  int  `json:"current"`
	Longest  int  `json:"longest"`
	IsActive bool `json:"is_active"`
}

type Strategy struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	Horseman        Horseman       `json:"horseman"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Status          StrategyStatus `json:"status"`
	EstimatedImpact string         `json:"estimated_impact"`
	ActivatedAt     *time.Time     `json:"activated_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

type Assessment struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	Scores          HorsemanScores `json:"scores"`
	PrimaryHorseman Horseman       `json:"primary_horseman"`
	CashFlowStatus  CashFlowStatus `json:"cash_flow_status"`
	CreatedAt       time.Time      `json:"created_at"`
}

type DeepDiveAnswer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Horseman   Horseman  `json:"horseman"`
	Value      string    `json:"value"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
