package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/assignment-service/internal/bulkimport"
	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

type bulkImportService struct {
	repo      repositories.Repository
	drafts    DraftService
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewBulkImportService(repo repositories.Repository, drafts DraftService, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) BulkImportService {
	return &bulkImportService{
		repo:      repo,
		drafts:    drafts,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// Parse runs the parser without touching any session.
func (s *bulkImportService) Parse(ctx context.Context, text string) (*ParseResponse, error) {
	if err := s.validator.Validate(&BulkTextRequest{Text: text}); err != nil {
		return nil, err
	}
	questions, err := bulkimport.ParseQuestions(text)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, bulkimport.ErrEmptyResult
	}
	return &ParseResponse{Questions: questions, Count: len(questions)}, nil
}

func (s *bulkImportService) Get(ctx context.Context, userID string) (*BulkImportResponse, error) {
	if _, err := s.authorize(ctx, userID, "read"); err != nil {
		return nil, err
	}

	session := bulkimport.NewSession()
	err := s.cache.BulkImport.Get(ctx, userID, session)
	if err != nil && !errors.Is(err, cache.ErrCacheNotFound) {
		return nil, sessionError(fmt.Errorf("failed to load bulk import session: %w", err))
	}
	return newBulkImportResponse(session, 0), nil
}

func (s *bulkImportService) SetDraft(ctx context.Context, userID string, req *BulkTextRequest) (*BulkImportResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	session, err := s.mutate(ctx, userID, "edit", func(session *bulkimport.Session) error {
		session.SetDraft(req.Text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newBulkImportResponse(session, 0), nil
}

// Preview stores the session even when parsing fails, so the error message
// survives a reload.
func (s *bulkImportService) Preview(ctx context.Context, userID string) (*BulkImportResponse, error) {
	var previewErr error
	session, err := s.mutate(ctx, userID, "preview", func(session *bulkimport.Session) error {
		previewErr = session.Preview()
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := newBulkImportResponse(session, 0)
	if previewErr != nil {
		s.logger.Debug("Bulk import preview rejected", "user_id", userID, "error", previewErr)
		return resp, previewErr
	}
	return resp, nil
}

func (s *bulkImportService) ToggleVisibility(ctx context.Context, userID string) (*BulkImportResponse, error) {
	session, err := s.mutate(ctx, userID, "toggle", func(session *bulkimport.Session) error {
		return session.ToggleVisibility()
	})
	if err != nil {
		return nil, err
	}
	return newBulkImportResponse(session, 0), nil
}

// Confirm hands the staged batch to the caller's assignment draft. The session
// is cleared before the draft is written and restored if that write fails, so
// a batch is added at most once.
func (s *bulkImportService) Confirm(ctx context.Context, userID string) (*BulkImportResponse, error) {
	var (
		staged   bulkimport.Session
		batch    []bulkimport.ParsedQuestion
		imported int
	)
	session, err := s.mutate(ctx, userID, "confirm", func(session *bulkimport.Session) error {
		staged = *session
		n, err := session.Confirm(func(questions []bulkimport.ParsedQuestion) error {
			batch = questions
			return nil
		})
		if err != nil {
			return err
		}
		imported = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	draft, err := s.drafts.AppendParsed(ctx, userID, batch)
	if err != nil {
		s.restore(ctx, userID, &staged)
		return nil, fmt.Errorf("failed to add parsed questions: %w", err)
	}

	s.logger.Info("Bulk questions added to draft", "user_id", userID, "count", imported, "draft_total", len(draft.Questions))
	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(events.EventQuestionsBulkImported, userID, events.QuestionsBulkImportedData{
		Count:      imported,
		DraftTotal: len(draft.Questions),
	}))

	return newBulkImportResponse(session, imported), nil
}

// restore puts a staged session back after a failed confirm. A session edited
// in the meantime is left alone.
func (s *bulkImportService) restore(ctx context.Context, userID string, staged *bulkimport.Session) {
	var current bulkimport.Session
	err := s.cache.BulkImport.Mutate(ctx, userID, &current, cache.BulkImportCacheConfig.TTL, func(found bool) error {
		if current.DraftText != "" || current.CanConfirm() {
			return errSessionEdited
		}
		current = *staged
		return nil
	})
	if err != nil && !errors.Is(err, errSessionEdited) {
		s.logger.Error("Failed to restore bulk import session", "user_id", userID, "error", err)
	}
}

var errSessionEdited = errors.New("bulk import session edited since confirm")

// ===== HELPERS =====

func (s *bulkImportService) authorize(ctx context.Context, userID, action string) (*models.User, error) {
	actor, err := loadActor(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "bulk_import", action, models.RoleInstructor); err != nil {
		return nil, err
	}
	return actor, nil
}

func (s *bulkImportService) mutate(ctx context.Context, userID, action string, fn func(session *bulkimport.Session) error) (*bulkimport.Session, error) {
	if _, err := s.authorize(ctx, userID, action); err != nil {
		return nil, err
	}

	var session bulkimport.Session
	err := s.cache.BulkImport.Mutate(ctx, userID, &session, cache.BulkImportCacheConfig.TTL, func(found bool) error {
		if !found {
			session = *bulkimport.NewSession()
		}
		if session.ParsedQuestions == nil {
			session.ParsedQuestions = []bulkimport.ParsedQuestion{}
		}
		return fn(&session)
	})
	if err != nil {
		return nil, sessionError(err)
	}
	return &session, nil
}

func newBulkImportResponse(session *bulkimport.Session, imported int) *BulkImportResponse {
	if session.ParsedQuestions == nil {
		session.ParsedQuestions = []bulkimport.ParsedQuestion{}
	}
	return &BulkImportResponse{
		Session:    session,
		CanConfirm: session.CanConfirm(),
		Imported:   imported,
	}
}
