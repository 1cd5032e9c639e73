package services

import (
	"errors"
	"fmt"
)

// ===== SENTINEL ERRORS =====

var (
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrBadRequest              = errors.New("bad request")
	ErrConflict                = errors.New("resource conflict")

	ErrUserNotFound        = errors.New("user not found")
	ErrUserNotVerified     = errors.New("user account is waiting for approval")
	ErrCannotModifySelf    = errors.New("administrators cannot change their own account")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrAssignmentNoAccess  = errors.New("assignment is not assigned to this student")
	ErrAlreadySubmitted    = errors.New("assignment already submitted")
	ErrAssignmentHasNoQuiz = errors.New("assignment has no questions")
	ErrStudentNotFound     = errors.New("student not found")
	ErrStorageUnavailable  = errors.New("file storage is not configured")
	ErrSessionUnavailable  = errors.New("session storage is not available")
)

// ===== TYPED ERRORS =====

// PermissionError reports an action the user is not allowed to perform.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrInsufficientPermissions
}

// BusinessRuleError reports a request that is well formed but not allowed in
// the current state.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}
