package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
)

const serviceName = "assignment-service"

type HandlerManager struct {
	userHandler       *UserHandler
	draftHandler      *DraftHandler
	bulkImportHandler *BulkImportHandler
	assignmentHandler *AssignmentHandler
	quizHandler       *QuizHandler
	analyticsHandler  *AnalyticsHandler
	authMiddleware    *CasdoorAuthMiddleware
	serviceManager    services.ServiceManager
	metrics           *Metrics
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokenParser TokenParser,
	logger utils.Logger,
	metrics *Metrics,
) *HandlerManager {
	return &HandlerManager{
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		draftHandler:      NewDraftHandler(serviceManager.Draft(), logger),
		bulkImportHandler: NewBulkImportHandler(serviceManager.BulkImport(), logger),
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), serviceManager.Roster(), logger),
		quizHandler:       NewQuizHandler(serviceManager.Quiz(), logger),
		analyticsHandler:  NewAnalyticsHandler(serviceManager.Analytics(), serviceManager.Export(), logger),
		authMiddleware:    NewCasdoorAuthMiddleware(tokenParser, serviceManager.User(), logger),
		serviceManager:    serviceManager,
		metrics:           metrics,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.health)
	if hm.metrics != nil {
		router.GET("/metrics", hm.metrics.Handler())
	}

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())

	// Reachable while waiting for approval
	v1.GET("/me", hm.userHandler.GetMe)

	api := v1.Group("")
	api.Use(hm.authMiddleware.RequireVerifiedMiddleware())

	staff := hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor)
	adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	admin := api.Group("/admin")
	{
		admin.GET("/users", adminOnly, hm.userHandler.ListUsers)
		admin.POST("/users/:id/approve", adminOnly, hm.userHandler.ApproveUser)
		admin.POST("/users/:id/reject", adminOnly, hm.userHandler.RejectUser)
		admin.POST("/users/:id/revoke", adminOnly, hm.userHandler.RevokeUser)
		admin.DELETE("/users/:id", adminOnly, hm.userHandler.DeleteUser)

		// Instructors fill the instructor select box too
		admin.GET("/instructors", staff, hm.userHandler.ListInstructors)
	}

	drafts := api.Group("/drafts/me")
	drafts.Use(staff)
	{
		drafts.GET("", hm.draftHandler.GetDraft)
		drafts.PUT("", hm.draftHandler.UpdateDraft)
		drafts.DELETE("", hm.draftHandler.ResetDraft)
		drafts.POST("/questions", hm.draftHandler.AddQuestion)
		drafts.PUT("/questions/:index", hm.draftHandler.UpdateQuestion)
		drafts.DELETE("/questions/:index", hm.draftHandler.RemoveQuestion)
		drafts.PUT("/questions/:index/options/:option", hm.draftHandler.UpdateOption)
		drafts.POST("/submit", hm.draftHandler.SubmitDraft)
	}

	bulk := api.Group("/bulk-import")
	bulk.Use(staff)
	{
		bulk.POST("/parse", hm.bulkImportHandler.Parse)
		bulk.GET("/me", hm.bulkImportHandler.GetSession)
		bulk.PUT("/me/draft", hm.bulkImportHandler.SetDraft)
		bulk.POST("/me/preview", hm.bulkImportHandler.Preview)
		bulk.POST("/me/toggle", hm.bulkImportHandler.ToggleVisibility)
		bulk.POST("/me/confirm", hm.bulkImportHandler.Confirm)
	}

	assignments := api.Group("/assignments")
	{
		assignments.GET("", hm.assignmentHandler.ListAssignments)
		assignments.POST("/attachments", staff, hm.assignmentHandler.UploadAttachment)
		assignments.GET("/:id", staff, hm.assignmentHandler.GetAssignment)
		assignments.DELETE("/:id", staff, hm.assignmentHandler.DeleteAssignment)
		assignments.GET("/:id/students", staff, hm.assignmentHandler.ListStudents)
		assignments.POST("/:id/students/:student_id/toggle", staff, hm.assignmentHandler.ToggleStudent)
	}

	quizzes := api.Group("/quizzes")
	quizzes.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
	{
		quizzes.GET("/:id", hm.quizHandler.GetQuiz)
		quizzes.POST("/:id/submit", hm.quizHandler.SubmitQuiz)
	}

	analytics := api.Group("/analytics")
	{
		analytics.GET("/overview", adminOnly, hm.analyticsHandler.GetOverview)
		analytics.GET("/assignments/:id", staff, hm.analyticsHandler.GetAssignmentStats)
		analytics.GET("/grades", adminOnly, hm.analyticsHandler.GetGrades)
		analytics.GET("/grades/export", adminOnly, hm.analyticsHandler.ExportGrades)
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
