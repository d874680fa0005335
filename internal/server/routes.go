package server

import (
	"github.com/labstack/echo/v4"

	"example.com/rprx-coach/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	assessmentHandler *handlers.AssessmentHandler,
	debtHandler *handlers.DebtHandler,
	profileHandler *handlers.ProfileHandler,
	scoreHandler *handlers.ScoreHandler,
	gamificationHandler *handlers.GamificationHandler,
	strategyHandler *handlers.StrategyHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	aiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	assessments := api.Group("/assessments", authMiddleware)
	assessments.GET("/questions", assessmentHandler.ListQuestions)
	assessments.GET("/deep-dive/:horseman", assessmentHandler.ListDeepDiveQuestions)
	assessments.POST("", assessmentHandler.Submit)
	assessments.GET("/latest", assessmentHandler.Latest)

	debts := api.Group("/debts", authMiddleware)
	debts.GET("", debtHandler.List)
	debts.POST("", debtHandler.Create)
	debts.GET("/recommendation", debtHandler.Recommendation)
	debts.PUT("/focus", debtHandler.SetFocus)
	debts.DELETE("/focus", debtHandler.ClearFocus)
	debts.PUT("/:id", debtHandler.Update)
	debts.DELETE("/:id", debtHandler.Delete)
	debts.POST("/:id/payments", debtHandler.LogPayment)

	profile := api.Group("/profile", authMiddleware)
	profile.GET("", profileHandler.Get)
	profile.PUT("", profileHandler.Update)

	score := api.Group("/score", authMiddleware)
	score.GET("", scoreHandler.Get)

	gamification := api.Group("/gamification", authMiddleware)
	gamification.GET("/badges", gamificationHandler.ListBadges)
	gamification.GET("/activity", gamificationHandler.ListActivity)
	gamification.POST("/checkin", gamificationHandler.Checkin)

	strategies := api.Group("/strategies", authMiddleware)
	strategies.GET("", strategyHandler.List)
	strategies.POST("/generate", strategyHandler.Generate, aiRateLimiter)
	strategies.PATCH("/:id/activate", strategyHandler.Activate)
	strategies.PATCH("/:id/complete", strategyHandler.Complete)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)
}
