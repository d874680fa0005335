package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/rprx-coach/backend/internal/ai"
	"example.com/rprx-coach/backend/internal/auth"
	"example.com/rprx-coach/backend/internal/gamification"
	"example.com/rprx-coach/backend/internal/models"
	"example.com/rprx-coach/backend/internal/notifications"
	"example.com/rprx-coach/backend/internal/repository"
	"example.com/rprx-coach/backend/internal/scoring"
)

type StrategyHandler struct {
	Strategies  *repository.StrategyRepository
	Assessments *repository.AssessmentRepository
	Profiles    *repository.ProfileRepository
	Debts       *repository.DebtRepository
	AI          *ai.Service
	Rewards     *gamification.Engine
	Notifier    *notifications.Hub
}

// NewStrategyHandler создает обработчик стратегий.
func NewStrategyHandler(strategies *repository.StrategyRepository, assessments *repository.AssessmentRepository, profiles *repository.ProfileRepository, debts *repository.DebtRepository, aiService *ai.Service, rewards *gamification.Engine, notifier *notifications.Hub) *StrategyHandler {
	return &StrategyHandler{
		Strategies:  strategies,
		Assessments: assessments,
		Profiles:    profiles,
		Debts:       debts,
		AI:          aiService,
		Rewards:     rewards,
		Notifier:    notifier,
	}
}

type GenerateStrategiesRequest struct {
	Horseman string `json:"horseman" validate:"required,oneof=interest taxes insurance education"`
}

// List возвращает стратегии пользователя.
func (h *StrategyHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	strategies, err := h.Strategies.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Strategy{"strategies": strategies})
}

// Generate запрашивает у AI стратегии для всадника и сохраняет их
// со статусом suggested.
func (h *StrategyHandler) Generate(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req GenerateStrategiesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	horseman := models.Horseman(req.Horseman)

	latest, err := h.Assessments.GetLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return badRequest(c, "complete an assessment first")
		}
		return serverError(c)
	}

	profile, err := h.Profiles.Get(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	debts, err := h.Debts.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	input := ai.GenerateStrategiesInput{
		Horseman:      req.Horseman,
		HorsemanScore: latest.Scores.Score(horseman),
		Profile:       profileSnapshot(profile),
		Debts:         debtSummaries(debts),
	}

	response, _, _, err := h.AI.GenerateStrategies(ctx, input)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "strategy generation failed"})
	}

	strategies := make([]models.Strategy, 0, len(response.Strategies))
	for _, suggestion := range response.Strategies {
		strategies = append(strategies, models.Strategy{
			Horseman:        horseman,
			Title:           suggestion.Title,
			Description:     suggestion.Description,
			EstimatedImpact: suggestion.EstimatedImpact,
		})
	}

	created, err := h.Strategies.CreateBatch(ctx, userID, strategies)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, map[string][]models.Strategy{"strategies": created})
}

// Activate переводит стратегию из suggested в active и проводит событие
// активности.
func (h *StrategyHandler) Activate(c echo.Context) error {
	return h.changeStatus(c, models.ActivityStrategyActivated)
}

// Complete переводит стратегию из active в completed и проводит событие
// активности.
func (h *StrategyHandler) Complete(c echo.Context) error {
	return h.changeStatus(c, models.ActivityStrategyCompleted)
}

func (h *StrategyHandler) changeStatus(c echo.Context, activityType models.ActivityType) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	strategyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid strategy id")
	}

	ctx := c.Request().Context()

	var strategy models.Strategy
	if activityType == models.ActivityStrategyActivated {
		strategy, err = h.Strategies.Activate(ctx, userID, strategyID)
	} else {
		strategy, err = h.Strategies.Complete(ctx, userID, strategyID)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "strategy not found")
		case errors.Is(err, repository.ErrInvalid):
			return conflict(c, "strategy is not in a state that allows this change")
		}
		return serverError(c)
	}

	strategyContext, _ := json.Marshal(map[string]string{
		"strategy_id":      strategy.ID.String(),
		"horseman":         string(strategy.Horseman),
		"estimated_impact": strategy.EstimatedImpact,
	})

	result, err := h.Rewards.LogActivity(ctx, userID, activityType, strategyContext)
	if err != nil {
		return serverError(c)
	}

	publishRewards(h.Notifier, userID, result)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"strategy":       strategy,
		"awarded_badges": result.Awarded,
		"score":          result.Score,
	})
}

func profileSnapshot(profile models.Profile) ai.ProfileSnapshot {
	cashFlow := scoring.ClassifyCashFlow(scoring.FlowFromProfile(profile))

	return ai.ProfileSnapshot{
		MonthlyIncomeCents:     profile.MonthlyIncomeCents,
		MonthlyExpensesCents:   cashFlow.TotalExpensesCents,
		EmergencyFundCents:     profile.EmergencyFundCents,
		Dependents:             profile.Dependents,
		FilingStatus:           stringValue(profile.FilingStatus),
		TaxAdvantagedAccounts:  profile.TaxAdvantagedAccounts,
		HasHealthInsurance:     profile.HasHealthInsurance,
		HasLifeInsurance:       profile.HasLifeInsurance,
		HasDisabilityInsurance: profile.HasDisabilityInsurance,
	}
}

func debtSummaries(debts []models.UserDebt) []ai.DebtSummary {
	summaries := make([]ai.DebtSummary, 0, len(debts))
	for _, d := range debts {
		if d.PaidOffAt != nil {
			continue
		}
		summaries = append(summaries, ai.DebtSummary{
			Name:                d.Name,
			Type:                string(d.Type),
			BalanceCents:        d.CurrentBalanceCents,
			InterestRate:        d.InterestRate,
			MinimumPaymentCents: d.MinPaymentCents,
		})
	}
	return summaries
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
