package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/rprx-coach/backend/internal/auth"
	"example.com/rprx-coach/backend/internal/gamification"
	"example.com/rprx-coach/backend/internal/models"
	"example.com/rprx-coach/backend/internal/notifications"
)

type NotificationHandler struct {
	Hub *notifications.Hub
}

// NewNotificationHandler создает SSE-обработчик уведомлений.
func NewNotificationHandler(hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// Stream открывает SSE-поток событий для пользователя.
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	ch, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: "connected", Data: map[string]string{"user_id": userID.String()}})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

func publishScoreUpdate(hub *notifications.Hub, userID uuid.UUID, score models.RPRxScoreResult) {
	if hub == nil {
		return
	}

	hub.Publish(userID, notifications.Event{
		Type: "score_updated",
		Data: map[string]interface{}{
			"total": score.Total,
			"grade": string(score.Grade),
		},
	})
}

func publishBadgesAwarded(hub *notifications.Hub, userID uuid.UUID, awarded []models.AwardedBadge) {
	if hub == nil {
		return
	}

	for _, badge := range awarded {
		hub.Publish(userID, notifications.Event{
			Type: "badge_awarded",
			Data: map[string]interface{}{
				"badge_id": badge.Badge.ID.String(),
				"name":     badge.Badge.Name,
				"points":   badge.Badge.Points,
			},
		})
	}
}

func publishStreakUpdate(hub *notifications.Hub, userID uuid.UUID, streak models.StreakState) {
	if hub == nil {
		return
	}

	hub.Publish(userID, notifications.Event{
		Type: "streak_updated",
		Data: map[string]interface{}{
			"current": streak.Current,
			"longest": streak.Longest,
		},
	})
}

func publishRewards(hub *notifications.Hub, userID uuid.UUID, result gamification.ActivityResult) {
	publishBadgesAwarded(hub, userID, result.Awarded)
	publishScoreUpdate(hub, userID, result.Score)
}
