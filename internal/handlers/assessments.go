package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/rprx-coach/backend/internal/assessment"
	"example.com/rprx-coach/backend/internal/auth"
	"example.com/rprx-coach/backend/internal/models"
	"example.com/rprx-coach/backend/internal/notifications"
	"example.com/rprx-coach/backend/internal/repository"
)

type AssessmentHandler struct {
	Service     *assessment.Service
	Questions   *repository.QuestionRepository
	Assessments *repository.AssessmentRepository
	Notifier    *notifications.Hub
}

// NewAssessmentHandler создает обработчик прохождения оценки.
func NewAssessmentHandler(service *assessment.Service, questions *repository.QuestionRepository, assessments *repository.AssessmentRepository, notifier *notifications.Hub) *AssessmentHandler {
	return &AssessmentHandler{Service: service, Questions: questions, Assessments: assessments, Notifier: notifier}
}

type AnswerPayload struct {
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	Value      string    `json:"value" validate:"required"`
}

type AssessmentSubmitRequest struct {
	Responses       []AnswerPayload `json:"responses" validate:"required,min=1,dive"`
	DeepDiveAnswers []AnswerPayload `json:"deep_dive_answers" validate:"dive"`
}

type AssessmentSubmitResponse struct {
	Assessment models.Assessment      `json:"assessment"`
	CashFlow   models.CashFlowResult  `json:"cash_flow"`
	Awarded    []models.AwardedBadge  `json:"awarded_badges"`
	Score      models.RPRxScoreResult `json:"score"`
}

// ListQuestions возвращает core-вопросы в порядке прохождения.
func (h *AssessmentHandler) ListQuestions(c echo.Context) error {
	if _, ok := auth.UserIDFromContext(c); !ok {
		return unauthorized(c)
	}

	questions, err := h.Questions.ListCore(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Question{"questions": questions})
}

// ListDeepDiveQuestions возвращает deep-dive вопросы для всадника.
func (h *AssessmentHandler) ListDeepDiveQuestions(c echo.Context) error {
	if _, ok := auth.UserIDFromContext(c); !ok {
		return unauthorized(c)
	}

	horseman := models.Horseman(c.Param("horseman"))
	if !isHorseman(horseman) {
		return badRequest(c, "unknown horseman")
	}

	questions, err := h.Questions.ListByHorseman(c.Request().Context(), horseman)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.DeepDiveQuestion{"questions": questions})
}

// Submit проводит полный цикл оценки: core-ответы, переход с подсчетом
// баллов, deep dive и сохранение с начислением наград.
func (h *AssessmentHandler) Submit(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AssessmentSubmitRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	flow, err := h.Service.StartFlow(ctx)
	if err != nil {
		return serverError(c)
	}

	for _, answer := range req.Responses {
		if err := flow.Answer(answer.QuestionID, answer.Value); err != nil {
			return badRequest(c, "answer does not match any question")
		}
	}

	for !flow.AtLastStep() {
		if err := flow.Next(); err != nil {
			return badRequest(c, "all questions must be answered")
		}
	}

	if err := flow.TransitionToDeepDive(ctx, h.Service.DeepDives()); err != nil {
		if errors.Is(err, assessment.ErrUnanswered) {
			return badRequest(c, "all questions must be answered")
		}
		return serverError(c)
	}

	if flow.CanStartDeepDive() {
		if err := flow.StartDeepDive(); err != nil {
			return serverError(c)
		}

		for _, answer := range req.DeepDiveAnswers {
			if err := flow.Answer(answer.QuestionID, answer.Value); err != nil {
				return badRequest(c, "answer does not match any deep dive question")
			}
		}

		for !flow.AtLastStep() {
			if err := flow.Next(); err != nil {
				return badRequest(c, "all deep dive questions must be answered")
			}
		}
	}

	result, err := h.Service.Submit(ctx, userID, flow)
	if err != nil {
		if errors.Is(err, assessment.ErrInvalidPhase) || errors.Is(err, assessment.ErrUnanswered) {
			return badRequest(c, "assessment is not complete")
		}
		return serverError(c)
	}

	publishBadgesAwarded(h.Notifier, userID, result.Awarded)
	publishScoreUpdate(h.Notifier, userID, result.Score)

	return c.JSON(http.StatusCreated, AssessmentSubmitResponse{
		Assessment: result.Assessment,
		CashFlow:   result.CashFlow,
		Awarded:    result.Awarded,
		Score:      result.Score,
	})
}

// Latest возвращает последнюю завершенную оценку пользователя.
func (h *AssessmentHandler) Latest(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	latest, err := h.Assessments.GetLatest(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "assessment not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, latest)
}

func isHorseman(h models.Horseman) bool {
	for _, known := range models.HorsemenOrder() {
		if h == known {
			return true
		}
	}
	return false
}
