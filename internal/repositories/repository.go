package repositories

import "context"

// Repository groups every repository the service uses.
type Repository interface {
	User() UserRepository
	Assignment() AssignmentRepository
	Question() QuestionRepository
	Submission() SubmissionRepository
	Roster() RosterRepository

	// WithTransaction runs fn against a repository bound to one transaction.
	// Returning an error from fn rolls the transaction back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
