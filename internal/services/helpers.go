package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

// loadActor fetches the calling user.
func loadActor(ctx context.Context, repo repositories.Repository, userID string) (*models.User, error) {
	user, err := repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Verified {
		return nil, ErrUserNotVerified
	}
	return user, nil
}

// requireRole returns a PermissionError unless actor has one of roles.
// Administrators pass every check.
func requireRole(actor *models.User, resource, action string, roles ...models.UserRole) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return NewPermissionError(actor.ID, 0, resource, action, "insufficient role permissions")
}

// canManageAssignment reports whether actor may edit, delete or inspect the
// results of assignment.
func canManageAssignment(actor *models.User, assignment *models.Assignment) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.Role == models.RoleInstructor && assignment.InstructorID == actor.ID
}

func loadAssignment(ctx context.Context, repo repositories.Repository, id uint) (*models.Assignment, error) {
	assignment, err := repo.Assignment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

func toUserSummary(u *models.User) *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.RoleLabel(),
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
	}
}

// roundHalfUp rounds to the nearest integer with halves rounded up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// sessionError maps cache failures of session-backed services.
func sessionError(err error) error {
	if errors.Is(err, cache.ErrCacheNotAvailable) {
		return ErrSessionUnavailable
	}
	return err
}

func boolPtr(b bool) *bool {
	return &b
}
