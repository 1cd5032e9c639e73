package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	rosterService     services.RosterService
}

func NewAssignmentHandler(
	assignmentService services.AssignmentService,
	rosterService services.RosterService,
	logger utils.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		rosterService:     rosterService,
	}
}

// ListAssignments lists the assignments visible to the caller
// @Summary List assignments
// @Description Administrators see all, instructors their own, students the assigned ones
// @Tags assignments
// @Produce json
// @Success 200 {array} services.AssignmentSummary
// @Router /assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	assignments, err := h.assignmentService.List(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// GetAssignment returns an assignment with its questions
// @Summary Get assignment
// @Tags assignments
// @Produce json
// @Param id path uint true "Assignment ID"
// @Success 200 {object} services.AssignmentResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting assignment", "assignment_id", id)

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment deletes an assignment with its questions and results
// @Summary Delete assignment
// @Tags assignments
// @Param id path uint true "Assignment ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Assignment deleted",
		Data:    gin.H{"id": id},
	})
}

// UploadAttachment stores a file for an assignment draft. Put the returned
// URL into the draft's file_url.
// @Summary Upload attachment
// @Tags assignments
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF, Word, PowerPoint or image, up to 10MB"
// @Success 201 {object} services.AttachmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "No file storage configured"
// @Router /assignments/attachments [post]
func (h *AssignmentHandler) UploadAttachment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "File is required",
			Details: err.Error(),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded file")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read file",
		})
		return
	}
	defer file.Close()

	resp, err := h.assignmentService.UploadAttachment(c.Request.Context(), &services.AttachmentUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ===== ROSTER =====

// ListStudents lists verified students with whether they are assigned
// @Summary Assignment roster
// @Tags assignments
// @Produce json
// @Param id path uint true "Assignment ID"
// @Success 200 {array} services.RosterEntry
// @Router /assignments/{id}/students [get]
func (h *AssignmentHandler) ListStudents(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	entries, err := h.rosterService.ListStudents(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// ToggleStudent assigns or unassigns a student
// @Summary Toggle student assignment
// @Tags assignments
// @Produce json
// @Param id path uint true "Assignment ID"
// @Param student_id path string true "Student ID"
// @Success 200 {object} services.RosterEntry
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id}/students/{student_id}/toggle [post]
func (h *AssignmentHandler) ToggleStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	studentID := c.Param("student_id")

	h.LogRequest(c, "Toggling student", "assignment_id", id, "student_id", studentID)

	entry, err := h.rosterService.Toggle(c.Request.Context(), id, studentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
