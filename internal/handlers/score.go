package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/rprx-coach/backend/internal/auth"
	"example.com/rprx-coach/backend/internal/notifications"
	"example.com/rprx-coach/backend/internal/repository"
	"example.com/rprx-coach/backend/internal/wellness"
)

type ScoreHandler struct {
	Wellness *wellness.Service
	Notifier *notifications.Hub
}

// NewScoreHandler создает обработчик RPRx-балла.
func NewScoreHandler(service *wellness.Service, notifier *notifications.Hub) *ScoreHandler {
	return &ScoreHandler{Wellness: service, Notifier: notifier}
}

// Get пересчитывает и возвращает текущий RPRx-балл пользователя.
func (h *ScoreHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	result, err := h.Wellness.Recompute(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "profile not found")
		}
		return serverError(c)
	}

	publishScoreUpdate(h.Notifier, userID, result)

	return c.JSON(http.StatusOK, result)
}
