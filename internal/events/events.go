package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "assignment-service"
	EventVersion = "1.0"
)

// Event types double as topic names.
const (
	EventAssignmentCreated     = "assignment.created"
	EventAssignmentDeleted     = "assignment.deleted"
	EventQuestionsBulkImported = "questions.bulk_imported"
	EventSubmissionCompleted   = "submission.completed"
	EventUserApproved          = "user.approved"
	EventUserRejected          = "user.rejected"
	EventUserRevoked           = "user.revoked"
	EventUserDeleted           = "user.deleted"
	EventRosterChanged         = "roster.changed"
)

// Event is the envelope published for every domain change.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	UserID    string      `json:"user_id,omitempty"`
	Data      interface{} `json:"data"`
}

// NewEvent fills in the envelope fields.
func NewEvent(eventType, userID string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Data:      data,
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// Payloads

type AssignmentCreatedData struct {
	AssignmentID   uint   `json:"assignment_id"`
	InstructorID   string `json:"instructor_id"`
	Title          string `json:"title"`
	QuestionsCount int    `json:"questions_count"`
}

type AssignmentDeletedData struct {
	AssignmentID uint `json:"assignment_id"`
}

type QuestionsBulkImportedData struct {
	Count      int `json:"count"`
	DraftTotal int `json:"draft_total"`
}

type SubmissionCompletedData struct {
	SubmissionID   uint   `json:"submission_id"`
	AssignmentID   uint   `json:"assignment_id"`
	StudentID      string `json:"student_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	Percentage     int    `json:"percentage"`
}

type UserStatusData struct {
	TargetUserID string `json:"target_user_id"`
}

type RosterChangedData struct {
	AssignmentID uint   `json:"assignment_id"`
	StudentID    string `json:"student_id"`
	Assigned     bool   `json:"assigned"`
}
