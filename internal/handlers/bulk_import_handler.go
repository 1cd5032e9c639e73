package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
)

type BulkImportHandler struct {
	BaseHandler
	bulkImportService services.BulkImportService
}

func NewBulkImportHandler(bulkImportService services.BulkImportService, logger utils.Logger) *BulkImportHandler {
	return &BulkImportHandler{
		BaseHandler:       NewBaseHandler(logger),
		bulkImportService: bulkImportService,
	}
}

// Parse parses pasted text without touching the caller's session
// @Summary Parse bulk text
// @Tags bulk-import
// @Accept json
// @Produce json
// @Param body body services.BulkTextRequest true "Pasted questions"
// @Success 200 {object} services.ParseResponse
// @Failure 422 {object} ErrorResponse "Invalid answer number or no questions"
// @Router /bulk-import/parse [post]
func (h *BulkImportHandler) Parse(c *gin.Context) {
	var req services.BulkTextRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.bulkImportService.Parse(c.Request.Context(), req.Text)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSession returns the caller's bulk import session
// @Summary Get bulk import session
// @Tags bulk-import
// @Produce json
// @Success 200 {object} services.BulkImportResponse
// @Router /bulk-import/me [get]
func (h *BulkImportHandler) GetSession(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.bulkImportService.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SetDraft replaces the pasted text
// @Summary Set bulk text
// @Tags bulk-import
// @Accept json
// @Produce json
// @Param body body services.BulkTextRequest true "Pasted questions"
// @Success 200 {object} services.BulkImportResponse
// @Router /bulk-import/me/draft [put]
func (h *BulkImportHandler) SetDraft(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req services.BulkTextRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.bulkImportService.SetDraft(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Preview parses the pasted text and stages the result
// @Summary Preview bulk import
// @Description A parse failure answers 422 with the saved session, whose error_message explains the problem
// @Tags bulk-import
// @Produce json
// @Success 200 {object} services.BulkImportResponse
// @Failure 422 {object} ErrorResponse{details=services.BulkImportResponse}
// @Router /bulk-import/me/preview [post]
func (h *BulkImportHandler) Preview(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.bulkImportService.Preview(c.Request.Context(), userID)
	if err != nil {
		if resp != nil {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Message: resp.ErrorMessage,
				Details: resp,
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ToggleVisibility shows or hides the staged questions
// @Summary Toggle preview visibility
// @Tags bulk-import
// @Produce json
// @Success 200 {object} services.BulkImportResponse
// @Failure 409 {object} ErrorResponse "Nothing staged"
// @Router /bulk-import/me/toggle [post]
func (h *BulkImportHandler) ToggleVisibility(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.bulkImportService.ToggleVisibility(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Confirm appends the staged questions to the caller's assignment draft
// @Summary Confirm bulk import
// @Tags bulk-import
// @Produce json
// @Success 200 {object} services.BulkImportResponse
// @Failure 409 {object} ErrorResponse "Nothing staged"
// @Router /bulk-import/me/confirm [post]
func (h *BulkImportHandler) Confirm(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Confirming bulk import")

	resp, err := h.bulkImportService.Confirm(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
