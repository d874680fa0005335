package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/rprx-coach/backend/internal/auth"
	"example.com/rprx-coach/backend/internal/gamification"
	"example.com/rprx-coach/backend/internal/models"
	"example.com/rprx-coach/backend/internal/notifications"
	"example.com/rprx-coach/backend/internal/repository"
)

type GamificationHandler struct {
	Engine     *gamification.Engine
	Badges     *repository.BadgeRepository
	Activities *repository.ActivityRepository
	Notifier   *notifications.Hub
}

// NewGamificationHandler создает обработчик бейджей, активности и streak.
func NewGamificationHandler(engine *gamification.Engine, badges *repository.BadgeRepository, activities *repository.ActivityRepository, notifier *notifications.Hub) *GamificationHandler {
	return &GamificationHandler{Engine: engine, Badges: badges, Activities: activities, Notifier: notifier}
}

// ListBadges возвращает заработанные бейджи пользователя.
func (h *GamificationHandler) ListBadges(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	badges, err := h.Badges.ListEarned(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.AwardedBadge{"badges": badges})
}

// ListActivity возвращает страницу журнала активности.
func (h *GamificationHandler) ListActivity(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit := parseIntParam(c.QueryParam("limit"), 0)
	offset := parseIntParam(c.QueryParam("offset"), 0)

	entries, err := h.Activities.ListByUser(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.ActivityLogEntry{"activity": entries})
}

// Checkin фиксирует дневной заход и возвращает состояние streak.
func (h *GamificationHandler) Checkin(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	streak, awarded, err := h.Engine.Checkin(c.Request().Context(), userID, time.Now().UTC())
	if err != nil {
		return serverError(c)
	}

	publishStreakUpdate(h.Notifier, userID, streak)
	publishBadgesAwarded(h.Notifier, userID, awarded)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"streak":         streak,
		"awarded_badges": awarded,
	})
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
