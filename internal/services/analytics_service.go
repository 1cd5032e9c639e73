package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

const (
	PendingScoreLabel   = "pending"
	NoPercentageLabel   = "N/A"
	percentageLabelForm = "%d%%"
)

// gradeBands are checked in order; the first band whose floor is reached wins.
var gradeBands = []struct {
	Grade string
	Floor int
}{
	{"A", 90},
	{"B", 80},
	{"C", 70},
	{"D", 60},
	{"F", 0},
}

type analyticsService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
	ttl    time.Duration
}

func NewAnalyticsService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, ttl time.Duration) AnalyticsService {
	if ttl <= 0 {
		ttl = cache.StatsCacheConfig.TTL
	}
	return &analyticsService{
		repo:   repo,
		cache:  cacheManager,
		logger: logger,
		ttl:    ttl,
	}
}

// ===== OVERVIEW =====

func (s *analyticsService) Overview(ctx context.Context, userID string) (*OverviewStats, error) {
	if err := s.requireAdmin(ctx, userID, "overview"); err != nil {
		return nil, err
	}

	var stats OverviewStats
	err := s.cache.Stats.CacheOrExecute(ctx, cache.OverviewStatsKey, &stats, s.ttl, func() (interface{}, error) {
		return s.computeOverview(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get overview stats: %w", err)
	}
	return &stats, nil
}

func (s *analyticsService) computeOverview(ctx context.Context) (*OverviewStats, error) {
	submissions, err := s.repo.Submission().List(ctx, repositories.SubmissionFilters{})
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment().List(ctx, repositories.AssignmentFilters{})
	if err != nil {
		return nil, err
	}
	students, err := s.verifiedStudentCount(ctx)
	if err != nil {
		return nil, err
	}

	var completed, totalScore, totalPossible int
	for _, sub := range submissions {
		if !sub.Graded() {
			continue
		}
		completed++
		totalScore += *sub.Score
		totalPossible += sub.TotalQuestions
	}

	stats := &OverviewStats{
		TotalSubmissions:     len(submissions),
		CompletedSubmissions: completed,
		TotalAssignments:     len(assignments),
		TotalStudents:        students,
	}
	if totalPossible > 0 {
		stats.AverageScore = models.RoundPercent(totalScore, totalPossible)
	}
	if len(submissions) > 0 {
		stats.CompletionRate = models.RoundPercent(completed, len(submissions))
	}
	return stats, nil
}

// ===== PER ASSIGNMENT =====

func (s *analyticsService) AssignmentStats(ctx context.Context, assignmentID uint, userID string) (*AssignmentStats, error) {
	actor, err := loadActor(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	assignment, err := loadAssignment(ctx, s.repo, assignmentID)
	if err != nil {
		return nil, err
	}
	if !canManageAssignment(actor, assignment) {
		return nil, NewPermissionError(userID, assignmentID, "assignment", "view_stats", "not owner or insufficient permissions")
	}

	var stats AssignmentStats
	err = s.cache.Stats.CacheOrExecute(ctx, cache.AssignmentStatsKey(assignmentID), &stats, s.ttl, func() (interface{}, error) {
		return s.computeAssignmentStats(ctx, assignment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment stats: %w", err)
	}
	return &stats, nil
}

func (s *analyticsService) computeAssignmentStats(ctx context.Context, assignment *models.Assignment) (*AssignmentStats, error) {
	submissions, err := s.repo.Submission().List(ctx, repositories.SubmissionFilters{AssignmentID: &assignment.ID})
	if err != nil {
		return nil, err
	}
	students, err := s.verifiedStudentCount(ctx)
	if err != nil {
		return nil, err
	}

	var scores []int
	for _, sub := range submissions {
		if !sub.Graded() {
			continue
		}
		if p := sub.Percentage(); p != nil {
			scores = append(scores, *p)
		} else {
			scores = append(scores, 0)
		}
	}

	stats := &AssignmentStats{
		AssignmentID:         assignment.ID,
		Title:                assignment.Title,
		InstructorName:       assignment.InstructorName(),
		TotalSubmissions:     len(submissions),
		CompletedSubmissions: len(scores),
		GradeDistribution:    gradeDistribution(scores),
	}
	if len(scores) > 0 {
		sum := 0
		for _, sc := range scores {
			sum += sc
		}
		stats.AverageScore = roundHalfUp(float64(sum) / float64(len(scores)))
	}
	if students > 0 {
		stats.CompletionRate = models.RoundPercent(len(submissions), students)
	}
	return stats, nil
}

func gradeDistribution(scores []int) []GradeBucket {
	buckets := make([]GradeBucket, len(gradeBands))
	for i, band := range gradeBands {
		buckets[i].Grade = band.Grade
	}
	for _, sc := range scores {
		for i, band := range gradeBands {
			if sc >= band.Floor || i == len(gradeBands)-1 {
				buckets[i].Count++
				break
			}
		}
	}
	if len(scores) > 0 {
		for i := range buckets {
			buckets[i].Share = models.RoundPercent(buckets[i].Count, len(scores))
		}
	}
	return buckets
}

// ===== GRADES =====

func (s *analyticsService) Grades(ctx context.Context, userID string) ([]*GradeRow, error) {
	if err := s.requireAdmin(ctx, userID, "grades"); err != nil {
		return nil, err
	}

	var rows []*GradeRow
	err := s.cache.Stats.CacheOrExecute(ctx, cache.GradesStatsKey, &rows, s.ttl, func() (interface{}, error) {
		return s.computeGrades(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get grades: %w", err)
	}
	if rows == nil {
		rows = []*GradeRow{}
	}
	return rows, nil
}

func (s *analyticsService) computeGrades(ctx context.Context) ([]*GradeRow, error) {
	submissions, err := s.repo.Submission().List(ctx, repositories.SubmissionFilters{})
	if err != nil {
		return nil, err
	}

	rows := make([]*GradeRow, len(submissions))
	for i, sub := range submissions {
		row := &GradeRow{
			SubmissionID:    sub.ID,
			StudentName:     sub.Student.FullName,
			AssignmentTitle: sub.Assignment.Title,
			Score:           sub.Score,
			TotalQuestions:  sub.TotalQuestions,
			ScoreLabel:      PendingScoreLabel,
			Percentage:      sub.Percentage(),
			PercentageLabel: NoPercentageLabel,
			SubmittedAt:     sub.SubmittedAt,
		}
		if sub.Score != nil {
			row.ScoreLabel = fmt.Sprintf("%d/%d", *sub.Score, sub.TotalQuestions)
		}
		if row.Percentage != nil {
			row.PercentageLabel = fmt.Sprintf(percentageLabelForm, *row.Percentage)
		}
		rows[i] = row
	}
	return rows, nil
}

// ===== HELPERS =====

func (s *analyticsService) requireAdmin(ctx context.Context, userID, action string) error {
	actor, err := loadActor(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin {
		return NewPermissionError(userID, 0, "analytics", action, "administrator role required")
	}
	return nil
}

func (s *analyticsService) verifiedStudentCount(ctx context.Context) (int, error) {
	students, err := s.repo.User().List(ctx, repositories.UserFilters{
		Verified: boolPtr(true),
		Roles:    []models.UserRole{models.RoleStudent},
	})
	if err != nil {
		return 0, err
	}
	return len(students), nil
}
