package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// GetMe returns the caller's profile. Unverified users may call it to learn
// that they are waiting for approval.
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} services.UserSummary
// @Failure 401 {object} ErrorResponse
// @Router /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	c.JSON(http.StatusOK, services.UserSummary{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.RoleLabel(),
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
	})
}

// ListUsers returns pending users, students and instructors
// @Summary User overview
// @Description Pending approvals and verified students and instructors
// @Tags admin
// @Produce json
// @Success 200 {object} services.UserOverviewResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing users")

	overview, err := h.userService.Overview(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// ApproveUser marks a pending user as verified
// @Summary Approve user
// @Tags admin
// @Param id path string true "User ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id}/approve [post]
func (h *UserHandler) ApproveUser(c *gin.Context) {
	h.changeUser(c, "approved", h.userService.Approve)
}

// RejectUser deletes a pending user
// @Summary Reject user
// @Tags admin
// @Param id path string true "User ID"
// @Success 200 {object} SuccessResponse
// @Failure 422 {object} ErrorResponse "User is already verified"
// @Router /admin/users/{id}/reject [post]
func (h *UserHandler) RejectUser(c *gin.Context) {
	h.changeUser(c, "rejected", h.userService.Reject)
}

// RevokeUser returns a verified user to pending
// @Summary Revoke approval
// @Tags admin
// @Param id path string true "User ID"
// @Success 200 {object} SuccessResponse
// @Router /admin/users/{id}/revoke [post]
func (h *UserHandler) RevokeUser(c *gin.Context) {
	h.changeUser(c, "revoked", h.userService.Revoke)
}

// DeleteUser removes a user with their role
// @Summary Delete user
// @Tags admin
// @Param id path string true "User ID"
// @Success 200 {object} SuccessResponse
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	h.changeUser(c, "deleted", h.userService.Delete)
}

// ListInstructors returns the instructors an assignment can be given to
// @Summary Instructor choices
// @Tags admin
// @Produce json
// @Success 200 {array} services.InstructorChoice
// @Router /admin/instructors [get]
func (h *UserHandler) ListInstructors(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	choices, err := h.userService.ListInstructorChoices(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, choices)
}

func (h *UserHandler) changeUser(c *gin.Context, outcome string, action func(ctx context.Context, targetID, actorID string) error) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	h.LogRequest(c, "Changing user", "target_id", targetID, "outcome", outcome)

	if err := action(c.Request.Context(), targetID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "User " + outcome,
		Data:    gin.H{"id": targetID},
	})
}
