package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
	exportService    services.ExportService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, exportService services.ExportService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

// ===== ANALYTICS ENDPOINTS =====

// GetOverview returns the overall statistics
// @Summary Overall statistics
// @Tags analytics
// @Produce json
// @Success 200 {object} services.OverviewStats
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.Overview(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetAssignmentStats returns the statistics of one assignment
// @Summary Assignment statistics
// @Tags analytics
// @Produce json
// @Param id path uint true "Assignment ID"
// @Success 200 {object} services.AssignmentStats
// @Router /analytics/assignments/{id} [get]
func (h *AnalyticsHandler) GetAssignmentStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.AssignmentStats(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetGrades returns the grades table
// @Summary Grades
// @Tags analytics
// @Produce json
// @Success 200 {array} services.GradeRow
// @Router /analytics/grades [get]
func (h *AnalyticsHandler) GetGrades(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	rows, err := h.analyticsService.Grades(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ExportGrades downloads the grades table as a spreadsheet
// @Summary Export grades
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /analytics/grades/export [get]
func (h *AnalyticsHandler) ExportGrades(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting grades")

	data, err := h.exportService.ExportGrades(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("grades-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
