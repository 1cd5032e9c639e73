package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

type quizService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// Get returns the quiz without correct answers. Once submitted the result is
// included.
func (s *quizService) Get(ctx context.Context, assignmentID uint, studentID string) (*QuizResponse, error) {
	assignment, err := s.loadForStudent(ctx, assignmentID, studentID, "read")
	if err != nil {
		return nil, err
	}

	resp := &QuizResponse{
		AssignmentID: assignment.ID,
		Title:        assignment.Title,
		Description:  assignment.Description,
		DueDate:      assignment.DueDate,
		FileURL:      assignment.FileURL,
		Questions:    make([]QuizQuestion, len(assignment.Questions)),
	}
	for i, q := range assignment.Questions {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		resp.Questions[i] = QuizQuestion{ID: q.ID, Text: q.Text, Options: options}
	}

	previous, err := s.previousSubmission(ctx, assignmentID, studentID)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		resp.Submitted = true
		resp.Result = buildQuizResult(previous, assignment.Questions)
	}
	return resp, nil
}

// Submit scores the answers and stores the submission. A student submits each
// assignment once.
func (s *quizService) Submit(ctx context.Context, assignmentID uint, studentID string, req *QuizSubmitRequest) (*QuizResult, error) {
	assignment, err := s.loadForStudent(ctx, assignmentID, studentID, "submit")
	if err != nil {
		return nil, err
	}
	if len(assignment.Questions) == 0 {
		return nil, ErrAssignmentHasNoQuiz
	}

	if errs := s.validator.GetBusinessValidator().ValidateQuizAnswers(req, assignment.Questions); len(errs) > 0 {
		return nil, errs
	}

	previous, err := s.previousSubmission(ctx, assignmentID, studentID)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		return nil, ErrAlreadySubmitted
	}

	score := 0
	for i, q := range assignment.Questions {
		if q.IsCorrect(req.Answers[i]) {
			score++
		}
	}

	answers := make([]int, len(req.Answers))
	copy(answers, req.Answers)
	submission := &models.Submission{
		AssignmentID:   assignmentID,
		StudentID:      studentID,
		Score:          &score,
		TotalQuestions: len(assignment.Questions),
		Answers:        answers,
		SubmittedAt:    time.Now().UTC(),
	}
	if err := s.repo.Submission().Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	result := buildQuizResult(submission, assignment.Questions)
	s.logger.Info("Quiz submitted", "assignment_id", assignmentID, "student_id", studentID, "score", score, "total", submission.TotalQuestions)

	cache.InvalidateAssignmentStats(ctx, s.cache, assignmentID)
	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(events.EventSubmissionCompleted, studentID, events.SubmissionCompletedData{
		SubmissionID:   submission.ID,
		AssignmentID:   assignmentID,
		StudentID:      studentID,
		Score:          score,
		TotalQuestions: submission.TotalQuestions,
		Percentage:     result.Percentage,
	}))

	return result, nil
}

func (s *quizService) loadForStudent(ctx context.Context, assignmentID uint, studentID, action string) (*models.Assignment, error) {
	actor, err := loadActor(ctx, s.repo, studentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleStudent {
		return nil, NewPermissionError(studentID, assignmentID, "quiz", action, "only students take quizzes")
	}

	assigned, err := s.repo.Roster().IsAssigned(ctx, assignmentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check roster: %w", err)
	}
	if !assigned {
		return nil, ErrAssignmentNoAccess
	}

	return loadAssignment(ctx, s.repo, assignmentID)
}

func (s *quizService) previousSubmission(ctx context.Context, assignmentID uint, studentID string) (*models.Submission, error) {
	submissions, err := s.repo.Submission().List(ctx, repositories.SubmissionFilters{
		AssignmentID: &assignmentID,
		StudentID:    &studentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}
	if len(submissions) == 0 {
		return nil, nil
	}
	return submissions[0], nil
}

func buildQuizResult(sub *models.Submission, questions []models.Question) *QuizResult {
	result := &QuizResult{
		SubmissionID:   sub.ID,
		TotalQuestions: sub.TotalQuestions,
		SubmittedAt:    sub.SubmittedAt,
	}
	if sub.Score != nil {
		result.Score = *sub.Score
	}
	if p := sub.Percentage(); p != nil {
		result.Percentage = *p
	}

	if len(sub.Answers) != len(questions) {
		return result
	}
	result.Questions = make([]QuestionResult, len(questions))
	for i, q := range questions {
		result.Questions[i] = QuestionResult{
			QuestionID:    q.ID,
			Answer:        sub.Answers[i],
			CorrectAnswer: q.CorrectAnswer,
			Correct:       q.IsCorrect(sub.Answers[i]),
			Explanation:   q.Explanation,
		}
	}
	return result
}
