package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

type rosterService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewRosterService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) RosterService {
	return &rosterService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ListStudents returns every verified student with whether they are assigned.
func (s *rosterService) ListStudents(ctx context.Context, assignmentID uint, userID string) ([]*RosterEntry, error) {
	if _, err := s.authorize(ctx, assignmentID, userID, "list_students"); err != nil {
		return nil, err
	}

	students, err := s.repo.User().List(ctx, repositories.UserFilters{
		Verified: boolPtr(true),
		Roles:    []models.UserRole{models.RoleStudent},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	assignedIDs, err := s.repo.Roster().ListStudentIDs(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	assigned := make(map[string]bool, len(assignedIDs))
	for _, id := range assignedIDs {
		assigned[id] = true
	}

	entries := make([]*RosterEntry, len(students))
	for i, st := range students {
		entries[i] = &RosterEntry{
			StudentID: st.ID,
			FullName:  st.FullName,
			Email:     st.Email,
			Assigned:  assigned[st.ID],
		}
	}
	return entries, nil
}

// Toggle assigns the student if they are not assigned yet and unassigns them
// otherwise.
func (s *rosterService) Toggle(ctx context.Context, assignmentID uint, studentID, userID string) (*RosterEntry, error) {
	if _, err := s.authorize(ctx, assignmentID, userID, "toggle_student"); err != nil {
		return nil, err
	}

	student, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if !student.Verified || student.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}

	var assigned bool
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		current, err := tx.Roster().IsAssigned(ctx, assignmentID, studentID)
		if err != nil {
			return err
		}
		if current {
			return tx.Roster().Unassign(ctx, assignmentID, studentID)
		}
		assigned = true
		return tx.Roster().Assign(ctx, assignmentID, studentID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle assignment: %w", err)
	}

	s.logger.Info("Roster changed", "assignment_id", assignmentID, "student_id", studentID, "assigned", assigned)
	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(events.EventRosterChanged, userID, events.RosterChangedData{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Assigned:     assigned,
	}))

	return &RosterEntry{
		StudentID: student.ID,
		FullName:  student.FullName,
		Email:     student.Email,
		Assigned:  assigned,
	}, nil
}

func (s *rosterService) authorize(ctx context.Context, assignmentID uint, userID, action string) (*models.Assignment, error) {
	actor, err := loadActor(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	assignment, err := loadAssignment(ctx, s.repo, assignmentID)
	if err != nil {
		return nil, err
	}
	if !canManageAssignment(actor, assignment) {
		return nil, NewPermissionError(userID, assignmentID, "assignment", action, "not owner or insufficient permissions")
	}
	return assignment, nil
}
