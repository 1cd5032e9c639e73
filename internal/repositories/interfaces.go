package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/assignment-service/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// IsNotFoundError reports whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Verified *bool             `json:"verified"`
	Roles    []models.UserRole `json:"roles"`
}

type AssignmentFilters struct {
	InstructorID *string `json:"instructor_id"`
	IDs          []uint  `json:"ids"` // nil means any, empty matches nothing
}

type SubmissionFilters struct {
	AssignmentID *uint   `json:"assignment_id"`
	StudentID    *string `json:"student_id"`
}

// ===== REPOSITORIES =====

// UserRepository owns profiles and their role bindings. Returned users carry
// their role (empty when none is bound).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User, role models.UserRole) error
	List(ctx context.Context, filters UserFilters) ([]*models.User, error)
	SetVerified(ctx context.Context, id string, verified bool) error
	// Delete removes the role binding and then the profile.
	Delete(ctx context.Context, id string) error
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	// GetByID loads the instructor and the ordered questions.
	GetByID(ctx context.Context, id uint) (*models.Assignment, error)
	// List returns newest first with instructor and QuestionsCount filled in.
	List(ctx context.Context, filters AssignmentFilters) ([]*models.Assignment, error)
	Delete(ctx context.Context, id uint) error
}

type QuestionRepository interface {
	CreateBatch(ctx context.Context, questions []*models.Question) error
	// GetByAssignment returns questions ordered by order_number.
	GetByAssignment(ctx context.Context, assignmentID uint) ([]*models.Question, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	// List returns newest first with student and assignment loaded.
	List(ctx context.Context, filters SubmissionFilters) ([]*models.Submission, error)
}

// RosterRepository stores which students may take which assignment.
type RosterRepository interface {
	IsAssigned(ctx context.Context, assignmentID uint, studentID string) (bool, error)
	Assign(ctx context.Context, assignmentID uint, studentID string) error
	Unassign(ctx context.Context, assignmentID uint, studentID string) error
	ListStudentIDs(ctx context.Context, assignmentID uint) ([]string, error)
	ListAssignmentIDs(ctx context.Context, studentID string) ([]uint, error)
}

// ===== IDENTITY DIRECTORY =====

// UserDirectory looks identities up in the external identity provider.
// Returned users carry the provider's display name, email and mapped role;
// they are never verified.
type UserDirectory interface {
	Lookup(ctx context.Context, id string) (*models.User, error)
}
