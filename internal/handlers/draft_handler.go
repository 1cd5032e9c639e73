package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
)

// DraftHandler edits the caller's assignment draft. Every route works on
// "me"; drafts are never shared.
type DraftHandler struct {
	BaseHandler
	draftService services.DraftService
}

func NewDraftHandler(draftService services.DraftService, logger utils.Logger) *DraftHandler {
	return &DraftHandler{
		BaseHandler:  NewBaseHandler(logger),
		draftService: draftService,
	}
}

// GetDraft returns the caller's draft, starting a new one when none exists
// @Summary Get assignment draft
// @Tags drafts
// @Produce json
// @Success 200 {object} models.AssignmentDraft
// @Router /drafts/me [get]
func (h *DraftHandler) GetDraft(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	draft, err := h.draftService.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// UpdateDraft patches the draft header
// @Summary Update draft metadata
// @Tags drafts
// @Accept json
// @Produce json
// @Param draft body services.DraftMetadataRequest true "Fields to change"
// @Success 200 {object} models.AssignmentDraft
// @Failure 400 {object} ErrorResponse
// @Router /drafts/me [put]
func (h *DraftHandler) UpdateDraft(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req services.DraftMetadataRequest
	if !h.bindJSON(c, &req) {
		return
	}

	draft, err := h.draftService.UpdateMetadata(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// ResetDraft discards the draft
// @Summary Reset draft
// @Tags drafts
// @Produce json
// @Success 200 {object} models.AssignmentDraft
// @Router /drafts/me [delete]
func (h *DraftHandler) ResetDraft(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	draft, err := h.draftService.Reset(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// AddQuestion appends a blank question
// @Summary Add question
// @Tags drafts
// @Produce json
// @Success 201 {object} models.AssignmentDraft
// @Router /drafts/me/questions [post]
func (h *DraftHandler) AddQuestion(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	draft, err := h.draftService.AddQuestion(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, draft)
}

// UpdateQuestion patches one question
// @Summary Update question
// @Tags drafts
// @Accept json
// @Produce json
// @Param index path int true "Question position, from 0"
// @Param question body services.QuestionUpdateRequest true "Fields to change"
// @Success 200 {object} models.AssignmentDraft
// @Failure 400 {object} ErrorResponse
// @Router /drafts/me/questions/{index} [put]
func (h *DraftHandler) UpdateQuestion(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	index, ok := h.parseIndexParam(c, "index")
	if !ok {
		return
	}
	var req services.QuestionUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	draft, err := h.draftService.UpdateQuestion(c.Request.Context(), userID, index, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// RemoveQuestion deletes one question. The last question cannot be removed.
// @Summary Remove question
// @Tags drafts
// @Produce json
// @Param index path int true "Question position, from 0"
// @Success 200 {object} models.AssignmentDraft
// @Failure 422 {object} ErrorResponse
// @Router /drafts/me/questions/{index} [delete]
func (h *DraftHandler) RemoveQuestion(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	index, ok := h.parseIndexParam(c, "index")
	if !ok {
		return
	}

	draft, err := h.draftService.RemoveQuestion(c.Request.Context(), userID, index)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// UpdateOption sets the text of one option
// @Summary Update option
// @Tags drafts
// @Accept json
// @Produce json
// @Param index path int true "Question position, from 0"
// @Param option path int true "Option position, from 0"
// @Param option body services.OptionUpdateRequest true "Option text"
// @Success 200 {object} models.AssignmentDraft
// @Router /drafts/me/questions/{index}/options/{option} [put]
func (h *DraftHandler) UpdateOption(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	index, ok := h.parseIndexParam(c, "index")
	if !ok {
		return
	}
	option, ok := h.parseIndexParam(c, "option")
	if !ok {
		return
	}
	var req services.OptionUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	draft, err := h.draftService.UpdateOption(c.Request.Context(), userID, index, option, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// SubmitDraft stores the draft as an assignment
// @Summary Create assignment from draft
// @Tags drafts
// @Produce json
// @Success 201 {object} services.AssignmentResponse
// @Failure 400 {object} ErrorResponse "First validation problem of the form"
// @Router /drafts/me/submit [post]
func (h *DraftHandler) SubmitDraft(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting assignment draft")

	assignment, err := h.draftService.Submit(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}
