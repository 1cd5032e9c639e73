package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/storage"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

type assignmentService struct {
	repo      repositories.Repository
	files     storage.FileStore
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssignmentService(repo repositories.Repository, files storage.FileStore, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AssignmentService {
	return &assignmentService{
		repo:      repo,
		files:     files,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// List returns every assignment to administrators, their own to instructors
// and the assigned ones to students.
func (s *assignmentService) List(ctx context.Context, userID string) ([]*AssignmentSummary, error) {
	actor, err := loadActor(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	var filters repositories.AssignmentFilters
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleInstructor:
		filters.InstructorID = &actor.ID
	case models.RoleStudent:
		ids, err := s.repo.Roster().ListAssignmentIDs(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list assigned assignments: %w", err)
		}
		if ids == nil {
			ids = []uint{}
		}
		filters.IDs = ids
	default:
		return nil, NewPermissionError(actor.ID, 0, "assignment", "list", "no role assigned")
	}

	assignments, err := s.repo.Assignment().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	summaries := make([]*AssignmentSummary, len(assignments))
	for i, a := range assignments {
		summaries[i] = toAssignmentSummary(a, actor)
	}
	return summaries, nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint, userID string) (*AssignmentResponse, error) {
	actor, err := loadActor(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	assignment, err := loadAssignment(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !canManageAssignment(actor, assignment) {
		return nil, NewPermissionError(userID, id, "assignment", "read", "not owner or insufficient permissions")
	}

	return toAssignmentResponse(assignment, actor), nil
}

// Delete removes the assignment with its questions, roster and submissions.
func (s *assignmentService) Delete(ctx context.Context, id uint, userID string) error {
	actor, err := loadActor(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	assignment, err := loadAssignment(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if !canManageAssignment(actor, assignment) {
		return NewPermissionError(userID, id, "assignment", "delete", "not owner or insufficient permissions")
	}

	if err := s.repo.Assignment().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	s.logger.Info("Assignment deleted", "assignment_id", id, "user_id", userID)
	cache.InvalidateAllStats(ctx, s.cache)
	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(events.EventAssignmentDeleted, userID, events.AssignmentDeletedData{AssignmentID: id}))
	return nil
}

// UploadAttachment stores a file under a random name and returns its URL.
func (s *assignmentService) UploadAttachment(ctx context.Context, upload *AttachmentUpload, userID string) (*AttachmentResponse, error) {
	actor, err := loadActor(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "attachment", "upload", models.RoleInstructor); err != nil {
		return nil, err
	}
	if s.files == nil {
		return nil, ErrStorageUnavailable
	}

	meta := &validator.AttachmentMeta{
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Size:        upload.Size,
	}
	if errs := s.validator.GetBusinessValidator().ValidateAttachment(meta); len(errs) > 0 {
		return nil, errs
	}

	objectName := uuid.NewString() + strings.ToLower(filepath.Ext(upload.FileName))
	url, err := s.files.Upload(ctx, objectName, upload.Reader, upload.Size, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	s.logger.Info("Attachment uploaded", "object", objectName, "size", upload.Size, "user_id", userID)
	return &AttachmentResponse{ObjectName: objectName, URL: url}, nil
}

// ===== CONVERSION =====

func toAssignmentSummary(a *models.Assignment, actor *models.User) *AssignmentSummary {
	return &AssignmentSummary{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		InstructorID:   a.InstructorID,
		InstructorName: a.InstructorName(),
		DueDate:        a.DueDate,
		FileURL:        a.FileURL,
		QuestionsCount: a.QuestionsCount,
		CreatedAt:      a.CreatedAt,
		CanManage:      canManageAssignment(actor, a),
	}
}

func toAssignmentResponse(a *models.Assignment, actor *models.User) *AssignmentResponse {
	questions := a.Questions
	if questions == nil {
		questions = []models.Question{}
	}
	return &AssignmentResponse{
		AssignmentSummary: *toAssignmentSummary(a, actor),
		Questions:         questions,
	}
}
