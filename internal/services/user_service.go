package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

type userService struct {
	repo      repositories.Repository
	directory repositories.UserDirectory
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewUserService(repo repositories.Repository, directory repositories.UserDirectory, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger) UserService {
	return &userService{
		repo:      repo,
		directory: directory,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
	}
}

// ===== PROVISIONING =====

func (s *userService) EnsureProfile(ctx context.Context, identity *models.User) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, identity.ID)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile := s.describe(ctx, identity)
	// Directory administrators bootstrap the approval flow.
	profile.Verified = profile.Role == models.RoleAdmin
	role := profile.Role
	profile.Role = ""

	if err := s.repo.User().Create(ctx, profile, role); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			// A concurrent first request created it.
			return s.repo.User().GetByID(ctx, identity.ID)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("Provisioned user profile", "user_id", profile.ID, "role", role, "verified", profile.Verified)
	if !profile.Verified {
		cache.InvalidateAllStats(ctx, s.cache)
	}
	return profile, nil
}

// describe prefers the directory entry and falls back to the token claims.
func (s *userService) describe(ctx context.Context, identity *models.User) *models.User {
	profile := *identity
	if s.directory != nil {
		found, err := s.directory.Lookup(ctx, identity.ID)
		if err != nil {
			s.logger.Warn("Directory lookup failed, using token claims", "user_id", identity.ID, "error", err)
		} else {
			profile = *found
		}
	}
	if profile.FullName == "" {
		profile.FullName = profile.Email
	}
	if !profile.Role.Valid() {
		profile.Role = models.RoleStudent
	}
	profile.ID = identity.ID
	return &profile
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ===== ADMINISTRATION =====

func (s *userService) Overview(ctx context.Context, actorID string) (*UserOverviewResponse, error) {
	if _, err := s.requireAdmin(ctx, actorID, "list"); err != nil {
		return nil, err
	}

	users, err := s.repo.User().List(ctx, repositories.UserFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	resp := &UserOverviewResponse{
		Pending:     []*UserSummary{},
		Students:    []*UserSummary{},
		Instructors: []*UserSummary{},
	}
	for _, u := range users {
		switch {
		case !u.Verified:
			resp.Pending = append(resp.Pending, toUserSummary(u))
		case u.Role == models.RoleStudent:
			resp.Students = append(resp.Students, toUserSummary(u))
		case u.Role == models.RoleInstructor:
			resp.Instructors = append(resp.Instructors, toUserSummary(u))
		}
	}

	return resp, nil
}

func (s *userService) Approve(ctx context.Context, targetID, actorID string) error {
	return s.setVerified(ctx, targetID, actorID, true, "approve", events.EventUserApproved)
}

func (s *userService) Revoke(ctx context.Context, targetID, actorID string) error {
	return s.setVerified(ctx, targetID, actorID, false, "revoke", events.EventUserRevoked)
}

// Reject removes a pending sign-up.
func (s *userService) Reject(ctx context.Context, targetID, actorID string) error {
	return s.remove(ctx, targetID, actorID, "reject", events.EventUserRejected, true)
}

func (s *userService) Delete(ctx context.Context, targetID, actorID string) error {
	return s.remove(ctx, targetID, actorID, "delete", events.EventUserDeleted, false)
}

func (s *userService) ListInstructorChoices(ctx context.Context, actorID string) ([]*InstructorChoice, error) {
	actor, err := loadActor(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "instructor", "list", models.RoleInstructor); err != nil {
		return nil, err
	}

	users, err := s.repo.User().List(ctx, repositories.UserFilters{
		Verified: boolPtr(true),
		Roles:    []models.UserRole{models.RoleInstructor, models.RoleAdmin},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list instructors: %w", err)
	}

	choices := make([]*InstructorChoice, len(users))
	for i, u := range users {
		choices[i] = &InstructorChoice{ID: u.ID, FullName: u.FullName}
	}
	return choices, nil
}

// ===== HELPERS =====

func (s *userService) requireAdmin(ctx context.Context, actorID, action string) (*models.User, error) {
	actor, err := loadActor(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actorID, 0, "user", action, "administrator role required")
	}
	return actor, nil
}

func (s *userService) checkTarget(ctx context.Context, targetID, actorID, action string) error {
	if _, err := s.requireAdmin(ctx, actorID, action); err != nil {
		return err
	}
	if targetID == actorID {
		return ErrCannotModifySelf
	}
	return nil
}

func (s *userService) setVerified(ctx context.Context, targetID, actorID string, verified bool, action, eventType string) error {
	if err := s.checkTarget(ctx, targetID, actorID, action); err != nil {
		return err
	}

	if err := s.repo.User().SetVerified(ctx, targetID, verified); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to %s user: %w", action, err)
	}

	s.logger.Info("User verification changed", "target_id", targetID, "actor_id", actorID, "verified", verified)
	cache.InvalidateAllStats(ctx, s.cache)
	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(eventType, actorID, events.UserStatusData{TargetUserID: targetID}))
	return nil
}

func (s *userService) remove(ctx context.Context, targetID, actorID, action, eventType string, pendingOnly bool) error {
	if err := s.checkTarget(ctx, targetID, actorID, action); err != nil {
		return err
	}

	if pendingOnly {
		target, err := s.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target.Verified {
			return NewBusinessRuleError("pending_only", "only pending sign-ups can be rejected", map[string]interface{}{
				"user_id": targetID,
			})
		}
	}

	if err := s.repo.User().Delete(ctx, targetID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to %s user: %w", action, err)
	}

	s.logger.Info("User removed", "target_id", targetID, "actor_id", actorID, "action", action)
	cache.InvalidateAllStats(ctx, s.cache)
	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(eventType, actorID, events.UserStatusData{TargetUserID: targetID}))
	return nil
}
