package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/rprx-coach/backend/internal/auth"
	"example.com/rprx-coach/backend/internal/debt"
	"example.com/rprx-coach/backend/internal/gamification"
	"example.com/rprx-coach/backend/internal/models"
	"example.com/rprx-coach/backend/internal/notifications"
	"example.com/rprx-coach/backend/internal/repository"
	"example.com/rprx-coach/backend/internal/scoring"
)

type DebtHandler struct {
	Debts    *repository.DebtRepository
	Profiles *repository.ProfileRepository
	Rewards  *gamification.Engine
	Notifier *notifications.Hub
}

// NewDebtHandler создает обработчик долгов пользователя.
func NewDebtHandler(debts *repository.DebtRepository, profiles *repository.ProfileRepository, rewards *gamification.Engine, notifier *notifications.Hub) *DebtHandler {
	return &DebtHandler{Debts: debts, Profiles: profiles, Rewards: rewards, Notifier: notifier}
}

type DebtRequest struct {
	Name                 string  `json:"name" validate:"required,max=100"`
	Type                 string  `json:"debt_type" validate:"required,oneof=credit_card student_loan auto_loan mortgage personal_loan medical other"`
	OriginalBalanceCents int64   `json:"original_balance_cents" validate:"gt=0"`
	CurrentBalanceCents  *int64  `json:"current_balance_cents" validate:"omitempty,gte=0"`
	InterestRate         float64 `json:"interest_rate" validate:"gte=0,lte=100"`
	MinPaymentCents      int64   `json:"min_payment_cents" validate:"gte=0"`
}

type PaymentRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"gt=0"`
}

type FocusRequest struct {
	DebtID uuid.UUID `json:"debt_id" validate:"required"`
}

type RecommendationResponse struct {
	Recommendation *models.DebtRecommendation `json:"recommendation"`
	Ranked         []models.RankedDebt        `json:"ranked"`
	FocusOverride  *uuid.UUID                 `json:"focus_override,omitempty"`
	Warning        string                     `json:"warning,omitempty"`
}

// List возвращает долги пользователя.
func (h *DebtHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debts, err := h.Debts.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.UserDebt{"debts": debts})
}

// Create добавляет долг.
func (h *DebtHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req DebtRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	current := req.OriginalBalanceCents
	if req.CurrentBalanceCents != nil {
		current = *req.CurrentBalanceCents
	}

	created, err := h.Debts.Create(c.Request().Context(), models.UserDebt{
		UserID:               userID,
		Name:                 strings.TrimSpace(req.Name),
		Type:                 models.DebtType(req.Type),
		OriginalBalanceCents: req.OriginalBalanceCents,
		CurrentBalanceCents:  current,
		InterestRate:         req.InterestRate,
		MinPaymentCents:      req.MinPaymentCents,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "debt balances are inconsistent")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, created)
}

// Update исправляет реквизиты долга.
func (h *DebtHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debtID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid debt id")
	}

	var req DebtRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	current := req.OriginalBalanceCents
	if req.CurrentBalanceCents != nil {
		current = *req.CurrentBalanceCents
	}

	updated, err := h.Debts.Update(c.Request().Context(), userID, debtID, strings.TrimSpace(req.Name), models.DebtType(req.Type), req.OriginalBalanceCents, current, req.InterestRate, req.MinPaymentCents)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "debt not found")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "debt balances are inconsistent")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет долг.
func (h *DebtHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debtID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid debt id")
	}

	if err := h.Debts.Delete(c.Request().Context(), userID, debtID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "debt not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// LogPayment фиксирует платеж по долгу и проводит событие активности.
func (h *DebtHandler) LogPayment(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debtID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid debt id")
	}

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	updated, err := h.Debts.LogPayment(ctx, userID, debtID, req.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "debt not found")
		case errors.Is(err, repository.ErrPaidOff):
			return conflict(c, "debt is already paid off")
		}
		return serverError(c)
	}

	paymentContext, _ := json.Marshal(map[string]interface{}{
		"debt_id":      debtID.String(),
		"amount_cents": req.AmountCents,
	})

	result, err := h.Rewards.LogActivity(ctx, userID, models.ActivityDebtPayment, paymentContext)
	if err != nil {
		return serverError(c)
	}

	publishRewards(h.Notifier, userID, result)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"debt":           updated,
		"awarded_badges": result.Awarded,
		"score":          result.Score,
	})
}

// Recommendation возвращает рекомендацию по долгам с ранжированным списком.
// Ручной выбор фокуса сохраняется, но сопровождается предупреждением, если
// расходится с рассчитанным.
func (h *DebtHandler) Recommendation(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()

	debts, err := h.Debts.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	surplus := h.surplusFor(ctx, userID)
	recommendation, ranked := debt.Recommend(debts, surplus)

	response := RecommendationResponse{Recommendation: recommendation, Ranked: ranked}

	focusID, err := h.Debts.GetFocus(ctx, userID)
	if err != nil {
		return serverError(c)
	}
	if focusID != nil && recommendation != nil && *focusID != recommendation.FocusDebtID {
		for _, d := range debts {
			if d.ID == *focusID {
				response.FocusOverride = focusID
				response.Warning = debt.OverrideWarning(debts, d, surplus)
				break
			}
		}
	}

	return c.JSON(http.StatusOK, response)
}

// SetFocus переопределяет рекомендованный фокус вручную.
func (h *DebtHandler) SetFocus(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req FocusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	if err := h.Debts.SetFocus(ctx, userID, req.DebtID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "debt not found")
		}
		return serverError(c)
	}

	warning := ""
	debts, err := h.Debts.ListByUser(ctx, userID)
	if err == nil {
		surplus := h.surplusFor(ctx, userID)
		if recommendation, _ := debt.Recommend(debts, surplus); recommendation != nil && recommendation.FocusDebtID != req.DebtID {
			for _, d := range debts {
				if d.ID == req.DebtID {
					warning = debt.OverrideWarning(debts, d, surplus)
					break
				}
			}
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "focus set", "warning": warning})
}

// ClearFocus снимает ручной выбор фокуса.
func (h *DebtHandler) ClearFocus(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.Debts.ClearFocus(c.Request().Context(), userID); err != nil {
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// surplusFor считает месячный излишек из профиля; nil, если профиль
// не заполнен.
func (h *DebtHandler) surplusFor(ctx context.Context, userID uuid.UUID) *int64 {
	profile, err := h.Profiles.Get(ctx, userID)
	if err != nil || profile.MonthlyIncomeCents == 0 {
		return nil
	}

	flow := scoring.FlowFromProfile(profile)
	surplus := scoring.ClassifyCashFlow(flow).SurplusCents
	return &surplus
}
