package agent

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/login", handler.Login)
		v1.POST("/logout", handler.Logout)
		v1.POST("/theme", handler.SetTheme)

		v1.GET("/schedule", handler.Schedule)
		v1.GET("/lessons/finished", handler.FinishedLessons)
		v1.GET("/subjects", handler.Subjects)
		v1.GET("/subjects/:id/lessons", handler.SubjectLessons)
		v1.POST("/feedback", handler.SubmitFeedback)
		v1.GET("/profile", handler.Profile)
		v1.GET("/statistics", handler.Statistics)
		v1.POST("/lessons/:id/start", handler.StartLesson)
		v1.POST("/lessons/:id/cancel", handler.CancelLesson)
	}
}
