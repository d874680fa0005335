package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/rprx-coach/backend/internal/auth"
	"example.com/rprx-coach/backend/internal/gamification"
	"example.com/rprx-coach/backend/internal/models"
	"example.com/rprx-coach/backend/internal/notifications"
	"example.com/rprx-coach/backend/internal/repository"
	"example.com/rprx-coach/backend/internal/scoring"
)

type ProfileHandler struct {
	Profiles *repository.ProfileRepository
	Rewards  *gamification.Engine
	Notifier *notifications.Hub
}

// NewProfileHandler создает обработчик профиля.
func NewProfileHandler(profiles *repository.ProfileRepository, rewards *gamification.Engine, notifier *notifications.Hub) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Rewards: rewards, Notifier: notifier}
}

type ProfileRequest struct {
	MonthlyIncomeCents       int64 `json:"monthly_income_cents" validate:"gte=0"`
	MonthlyDebtPaymentsCents int64 `json:"monthly_debt_payments_cents" validate:"gte=0"`
	MonthlyHousingCents      int64 `json:"monthly_housing_cents" validate:"gte=0"`
	MonthlyInsuranceCents    int64 `json:"monthly_insurance_cents" validate:"gte=0"`
	MonthlyLivingCents       int64 `json:"monthly_living_cents" validate:"gte=0"`
	EmergencyFundCents       int64 `json:"emergency_fund_cents" validate:"gte=0"`

	RetirementBalanceCents       int64  `json:"retirement_balance_cents" validate:"gte=0"`
	MonthlyContributionCents     int64  `json:"monthly_contribution_cents" validate:"gte=0"`
	DesiredRetirementIncomeCents int64  `json:"desired_retirement_income_cents" validate:"gte=0"`
	YearsToRetirement            int    `json:"years_to_retirement" validate:"gte=0,lte=80"`
	EmployerMatch                string `json:"employer_match" validate:"omitempty,oneof=none partial most full"`

	HasHealthInsurance     bool `json:"has_health_insurance"`
	HasLifeInsurance       bool `json:"has_life_insurance"`
	HasDisabilityInsurance bool `json:"has_disability_insurance"`
	HasLongTermCare        bool `json:"has_long_term_care"`
	Dependents             int  `json:"dependents" validate:"gte=0,lte=20"`

	FilingStatus          *string  `json:"filing_status" validate:"omitempty,oneof=single married_joint married_separate head_of_household"`
	TaxAdvantagedAccounts []string `json:"tax_advantaged_accounts" validate:"dive,max=40"`

	MoneyWorry          *string `json:"money_worry" validate:"omitempty,oneof=constantly often sometimes rarely"`
	EmergencyConfidence *string `json:"emergency_confidence" validate:"omitempty,oneof=not_confident somewhat_confident confident very_confident"`
	SenseOfControl      *string `json:"sense_of_control" validate:"omitempty,oneof=no_control some_control mostly_in_control fully_in_control"`
}

type ProfileResponse struct {
	Profile      models.Profile        `json:"profile"`
	Completeness int                   `json:"completeness"`
	CashFlow     models.CashFlowResult `json:"cash_flow"`
}

// Get возвращает профиль вместе с полнотой заполнения и денежным потоком.
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.Profiles.Get(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "profile not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ProfileResponse{
		Profile:      profile,
		Completeness: gamification.ProfileCompleteness(profile),
		CashFlow:     scoring.ClassifyCashFlow(scoring.FlowFromProfile(profile)),
	})
}

// Update перезаписывает редактируемые поля профиля и проводит событие
// активности.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	update := repository.ProfileUpdate{
		MonthlyIncomeCents:       req.MonthlyIncomeCents,
		MonthlyDebtPaymentsCents: req.MonthlyDebtPaymentsCents,
		MonthlyHousingCents:      req.MonthlyHousingCents,
		MonthlyInsuranceCents:    req.MonthlyInsuranceCents,
		MonthlyLivingCents:       req.MonthlyLivingCents,
		EmergencyFundCents:       req.EmergencyFundCents,

		RetirementBalanceCents:       req.RetirementBalanceCents,
		MonthlyContributionCents:     req.MonthlyContributionCents,
		DesiredRetirementIncomeCents: req.DesiredRetirementIncomeCents,
		YearsToRetirement:            req.YearsToRetirement,
		EmployerMatch:                models.MatchCapture(req.EmployerMatch),

		HasHealthInsurance:     req.HasHealthInsurance,
		HasLifeInsurance:       req.HasLifeInsurance,
		HasDisabilityInsurance: req.HasDisabilityInsurance,
		HasLongTermCare:        req.HasLongTermCare,
		Dependents:             req.Dependents,

		FilingStatus:          req.FilingStatus,
		TaxAdvantagedAccounts: req.TaxAdvantagedAccounts,
	}
	if update.EmployerMatch == "" {
		update.EmployerMatch = models.MatchCaptureNone
	}
	if req.MoneyWorry != nil {
		worry := models.WorryFrequency(*req.MoneyWorry)
		update.MoneyWorry = &worry
	}
	if req.EmergencyConfidence != nil {
		confidence := models.ConfidenceLevel(*req.EmergencyConfidence)
		update.EmergencyConfidence = &confidence
	}
	if req.SenseOfControl != nil {
		control := models.ControlLevel(*req.SenseOfControl)
		update.SenseOfControl = &control
	}

	ctx := c.Request().Context()

	profile, err := h.Profiles.Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "profile not found")
		}
		return serverError(c)
	}

	completeness := gamification.ProfileCompleteness(profile)
	profileContext, _ := json.Marshal(map[string]int{"completeness": completeness})

	result, err := h.Rewards.LogActivity(ctx, userID, models.ActivityProfileUpdated, profileContext)
	if err != nil {
		return serverError(c)
	}

	publishRewards(h.Notifier, userID, result)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"profile":        profile,
		"completeness":   completeness,
		"cash_flow":      scoring.ClassifyCashFlow(scoring.FlowFromProfile(profile)),
		"awarded_badges": result.Awarded,
		"score":          result.Score,
	})
}
