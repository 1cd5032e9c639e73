package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// GetQuiz returns an assigned quiz without its answers
// @Summary Get quiz
// @Description Includes the result once the quiz was submitted
// @Tags quizzes
// @Produce json
// @Param id path uint true "Assignment ID"
// @Success 200 {object} services.QuizResponse
// @Failure 403 {object} ErrorResponse "Not assigned"
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.Get(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// SubmitQuiz scores the answers
// @Summary Submit quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path uint true "Assignment ID"
// @Param answers body services.QuizSubmitRequest true "One option index per question"
// @Success 201 {object} services.QuizResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already submitted"
// @Router /quizzes/{id}/submit [post]
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req services.QuizSubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting quiz", "assignment_id", id)

	result, err := h.quizService.Submit(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
