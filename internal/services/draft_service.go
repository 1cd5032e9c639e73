package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/assignment-service/internal/bulkimport"
	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

type draftService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	ttl       time.Duration
}

func NewDraftService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, ttl time.Duration) DraftService {
	if ttl <= 0 {
		ttl = cache.DraftCacheConfig.TTL
	}
	return &draftService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		ttl:       ttl,
	}
}

// ===== READ =====

func (s *draftService) Get(ctx context.Context, userID string) (*models.AssignmentDraft, error) {
	actor, err := s.authorize(ctx, userID, "read")
	if err != nil {
		return nil, err
	}
	return s.load(ctx, actor)
}

func (s *draftService) load(ctx context.Context, actor *models.User) (*models.AssignmentDraft, error) {
	var draft models.AssignmentDraft
	err := s.cache.Draft.Get(ctx, actor.ID, &draft)
	switch {
	case err == nil:
		return &draft, nil
	case errors.Is(err, cache.ErrCacheNotFound):
		return newDraftFor(actor), nil
	default:
		return nil, sessionError(fmt.Errorf("failed to load draft: %w", err))
	}
}

// ===== EDITING =====

func (s *draftService) UpdateMetadata(ctx context.Context, userID string, req *DraftMetadataRequest) (*models.AssignmentDraft, error) {
	actor, err := s.authorize(ctx, userID, "edit")
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.InstructorID != nil && *req.InstructorID != "" {
		if err := s.checkInstructor(ctx, actor, *req.InstructorID); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, actor, func(d *models.AssignmentDraft) error {
		if req.InstructorID != nil {
			d.InstructorID = *req.InstructorID
		}
		if req.Title != nil {
			d.Title = *req.Title
		}
		if req.Description != nil {
			d.Description = *req.Description
		}
		if req.DueDate != nil {
			due := req.DueDate.UTC()
			d.DueDate = &due
		}
		if req.ClearDueDate {
			d.DueDate = nil
		}
		if req.FileURL != nil {
			d.FileURL = *req.FileURL
		}
		return nil
	})
}

func (s *draftService) AddQuestion(ctx context.Context, userID string) (*models.AssignmentDraft, error) {
	return s.edit(ctx, userID, func(d *models.AssignmentDraft) error {
		d.AddQuestion()
		return nil
	})
}

func (s *draftService) RemoveQuestion(ctx context.Context, userID string, index int) (*models.AssignmentDraft, error) {
	return s.edit(ctx, userID, func(d *models.AssignmentDraft) error {
		return d.RemoveQuestion(index)
	})
}

func (s *draftService) UpdateQuestion(ctx context.Context, userID string, index int, req *QuestionUpdateRequest) (*models.AssignmentDraft, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.edit(ctx, userID, func(d *models.AssignmentDraft) error {
		return d.UpdateQuestion(index, models.QuestionPatch{
			Text:          req.Text,
			CorrectAnswer: req.CorrectAnswer,
			Explanation:   req.Explanation,
		})
	})
}

func (s *draftService) UpdateOption(ctx context.Context, userID string, index, option int, req *OptionUpdateRequest) (*models.AssignmentDraft, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.edit(ctx, userID, func(d *models.AssignmentDraft) error {
		return d.UpdateOption(index, option, req.Value)
	})
}

func (s *draftService) AppendParsed(ctx context.Context, userID string, questions []bulkimport.ParsedQuestion) (*models.AssignmentDraft, error) {
	return s.edit(ctx, userID, func(d *models.AssignmentDraft) error {
		d.AppendParsed(questions)
		return nil
	})
}

func (s *draftService) Reset(ctx context.Context, userID string) (*models.AssignmentDraft, error) {
	actor, err := s.authorize(ctx, userID, "reset")
	if err != nil {
		return nil, err
	}
	return s.reset(ctx, actor)
}

func (s *draftService) reset(ctx context.Context, actor *models.User) (*models.AssignmentDraft, error) {
	return s.mutate(ctx, actor, func(d *models.AssignmentDraft) error {
		*d = *newDraftFor(actor)
		return nil
	})
}

// ===== SUBMIT =====

func (s *draftService) Submit(ctx context.Context, userID string) (*AssignmentResponse, error) {
	actor, err := s.authorize(ctx, userID, "submit")
	if err != nil {
		return nil, err
	}

	draft, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateAssignmentDraft(draft); len(errs) > 0 {
		return nil, errs
	}
	if err := s.checkInstructor(ctx, actor, draft.InstructorID); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		Title:        strings.TrimSpace(draft.Title),
		Description:  optionalText(draft.Description),
		InstructorID: draft.InstructorID,
		DueDate:      draft.DueDate,
		FileURL:      optionalText(draft.FileURL),
	}

	questions := make([]*models.Question, len(draft.Questions))
	for i, form := range draft.Questions {
		options := make([]string, len(form.Options))
		for j, o := range form.Options {
			options[j] = strings.TrimSpace(o)
		}
		questions[i] = &models.Question{
			Text:          strings.TrimSpace(form.Text),
			Options:       datatypes.JSONSlice[string](options),
			CorrectAnswer: form.CorrectAnswer,
			Explanation:   optionalText(form.Explanation),
			OrderNumber:   i,
		}
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Assignment().Create(ctx, assignment); err != nil {
			return err
		}
		for _, q := range questions {
			q.AssignmentID = assignment.ID
		}
		return tx.Question().CreateBatch(ctx, questions)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info("Assignment created", "assignment_id", assignment.ID, "instructor_id", assignment.InstructorID, "questions", len(questions))

	if _, err := s.reset(ctx, actor); err != nil {
		s.logger.Error("Failed to reset draft after submit", "user_id", actor.ID, "error", err)
	}
	cache.InvalidateAllStats(ctx, s.cache)
	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(events.EventAssignmentCreated, actor.ID, events.AssignmentCreatedData{
		AssignmentID:   assignment.ID,
		InstructorID:   assignment.InstructorID,
		Title:          assignment.Title,
		QuestionsCount: len(questions),
	}))

	created, err := loadAssignment(ctx, s.repo, assignment.ID)
	if err != nil {
		return nil, err
	}
	return toAssignmentResponse(created, actor), nil
}

// ===== HELPERS =====

func (s *draftService) authorize(ctx context.Context, userID, action string) (*models.User, error) {
	actor, err := loadActor(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "draft", action, models.RoleInstructor); err != nil {
		return nil, err
	}
	return actor, nil
}

func (s *draftService) edit(ctx context.Context, userID string, fn func(d *models.AssignmentDraft) error) (*models.AssignmentDraft, error) {
	actor, err := s.authorize(ctx, userID, "edit")
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, fn)
}

func (s *draftService) mutate(ctx context.Context, actor *models.User, fn func(d *models.AssignmentDraft) error) (*models.AssignmentDraft, error) {
	var draft models.AssignmentDraft
	err := s.cache.Draft.Mutate(ctx, actor.ID, &draft, s.ttl, func(found bool) error {
		if !found {
			draft = *newDraftFor(actor)
		}
		if err := fn(&draft); err != nil {
			return err
		}
		draft.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, sessionError(err)
	}
	return &draft, nil
}

// checkInstructor makes sure the selected instructor can own an assignment.
// Instructors may only select themselves.
func (s *draftService) checkInstructor(ctx context.Context, actor *models.User, instructorID string) error {
	if actor.Role != models.RoleAdmin && instructorID != actor.ID {
		return NewPermissionError(actor.ID, 0, "draft", "assign_instructor", "instructors can only create their own assignments")
	}

	instructor, err := s.repo.User().GetByID(ctx, instructorID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to load instructor: %w", err)
	}
	if err != nil || !instructor.Verified || (instructor.Role != models.RoleInstructor && instructor.Role != models.RoleAdmin) {
		return validator.ValidationErrors{{
			Field:   "instructor_id",
			Message: "selected instructor is not available",
			Value:   instructorID,
			Rule:    "instructor",
		}}
	}
	return nil
}

func newDraftFor(actor *models.User) *models.AssignmentDraft {
	draft := models.NewAssignmentDraft(actor.ID)
	if actor.Role == models.RoleInstructor {
		draft.InstructorID = actor.ID
	}
	return draft
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
