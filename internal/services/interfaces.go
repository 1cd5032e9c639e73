package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/bulkimport"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

type DraftMetadataRequest = validator.DraftMetadataRequest
type QuestionUpdateRequest = validator.QuestionUpdateRequest
type OptionUpdateRequest = validator.OptionUpdateRequest
type BulkTextRequest = validator.BulkTextRequest
type QuizSubmitRequest = validator.QuizSubmitRequest

// UserSummary is one row of the user management tables.
type UserSummary struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

type UserOverviewResponse struct {
	Pending     []*UserSummary `json:"pending"`
	Students    []*UserSummary `json:"students"`
	Instructors []*UserSummary `json:"instructors"`
}

// InstructorChoice is an entry of the instructor select box.
type InstructorChoice struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

type AssignmentSummary struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	InstructorID   string     `json:"instructor_id"`
	InstructorName string     `json:"instructor_name"`
	DueDate        *time.Time `json:"due_date"`
	FileURL        *string    `json:"file_url"`
	QuestionsCount int        `json:"questions_count"`
	CreatedAt      time.Time  `json:"created_at"`
	CanManage      bool       `json:"can_manage"`
}

type AssignmentResponse struct {
	AssignmentSummary
	Questions []models.Question `json:"questions"`
}

// AttachmentUpload is a file received from a multipart form.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type AttachmentResponse struct {
	ObjectName string `json:"object_name"`
	URL        string `json:"url"`
}

// BulkImportResponse is the bulk-import session plus the outcome of the last
// action.
type BulkImportResponse struct {
	*bulkimport.Session
	CanConfirm bool `json:"can_confirm"`
	Imported   int  `json:"imported,omitempty"`
}

type ParseResponse struct {
	Questions []bulkimport.ParsedQuestion `json:"questions"`
	Count     int                         `json:"count"`
}

type RosterEntry struct {
	StudentID string `json:"student_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Assigned  bool   `json:"assigned"`
}

// QuizQuestion is a question as shown to a student, without its answer.
type QuizQuestion struct {
	ID      uint     `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type QuizResponse struct {
	AssignmentID uint           `json:"assignment_id"`
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	DueDate      *time.Time     `json:"due_date"`
	FileURL      *string        `json:"file_url"`
	Questions    []QuizQuestion `json:"questions"`
	Submitted    bool           `json:"submitted"`
	Result       *QuizResult    `json:"result,omitempty"`
}

type QuestionResult struct {
	QuestionID    uint    `json:"question_id"`
	Answer        int     `json:"answer"`
	CorrectAnswer int     `json:"correct_answer"`
	Correct       bool    `json:"correct"`
	Explanation   *string `json:"explanation,omitempty"`
}

type QuizResult struct {
	SubmissionID   uint             `json:"submission_id"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	Percentage     int              `json:"percentage"`
	SubmittedAt    time.Time        `json:"submitted_at"`
	Questions      []QuestionResult `json:"questions,omitempty"`
}

type OverviewStats struct {
	AverageScore         int `json:"average_score"`
	TotalSubmissions     int `json:"total_submissions"`
	CompletedSubmissions int `json:"completed_submissions"`
	CompletionRate       int `json:"completion_rate"`
	TotalAssignments     int `json:"total_assignments"`
	TotalStudents        int `json:"total_students"`
}

type GradeBucket struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
	Share int    `json:"share"`
}

type AssignmentStats struct {
	AssignmentID         uint          `json:"assignment_id"`
	Title                string        `json:"title"`
	InstructorName       string        `json:"instructor_name"`
	TotalSubmissions     int           `json:"total_submissions"`
	CompletedSubmissions int           `json:"completed_submissions"`
	CompletionRate       int           `json:"completion_rate"`
	AverageScore         int           `json:"average_score"`
	GradeDistribution    []GradeBucket `json:"grade_distribution"`
}

// GradeRow is one line of the grades table.
type GradeRow struct {
	SubmissionID    uint      `json:"submission_id"`
	StudentName     string    `json:"student_name"`
	AssignmentTitle string    `json:"assignment_title"`
	Score           *int      `json:"score"`
	TotalQuestions  int       `json:"total_questions"`
	ScoreLabel      string    `json:"score_label"`
	Percentage      *int      `json:"percentage"`
	PercentageLabel string    `json:"percentage_label"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// ===== SERVICE INTERFACES =====

type UserService interface {
	// EnsureProfile returns the local profile, creating an unverified one on
	// first sign-in. identity is what the token says about the user.
	EnsureProfile(ctx context.Context, identity *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	Overview(ctx context.Context, actorID string) (*UserOverviewResponse, error)
	Approve(ctx context.Context, targetID, actorID string) error
	Reject(ctx context.Context, targetID, actorID string) error
	Revoke(ctx context.Context, targetID, actorID string) error
	Delete(ctx context.Context, targetID, actorID string) error

	ListInstructorChoices(ctx context.Context, actorID string) ([]*InstructorChoice, error)
}

// DraftService edits the caller's own assignment draft.
type DraftService interface {
	Get(ctx context.Context, userID string) (*models.AssignmentDraft, error)
	UpdateMetadata(ctx context.Context, userID string, req *DraftMetadataRequest) (*models.AssignmentDraft, error)
	AddQuestion(ctx context.Context, userID string) (*models.AssignmentDraft, error)
	RemoveQuestion(ctx context.Context, userID string, index int) (*models.AssignmentDraft, error)
	UpdateQuestion(ctx context.Context, userID string, index int, req *QuestionUpdateRequest) (*models.AssignmentDraft, error)
	UpdateOption(ctx context.Context, userID string, index, option int, req *OptionUpdateRequest) (*models.AssignmentDraft, error)
	AppendParsed(ctx context.Context, userID string, questions []bulkimport.ParsedQuestion) (*models.AssignmentDraft, error)
	Reset(ctx context.Context, userID string) (*models.AssignmentDraft, error)

	// Submit validates the draft, stores it as an assignment and resets it.
	Submit(ctx context.Context, userID string) (*AssignmentResponse, error)
}

type BulkImportService interface {
	Parse(ctx context.Context, text string) (*ParseResponse, error)

	Get(ctx context.Context, userID string) (*BulkImportResponse, error)
	SetDraft(ctx context.Context, userID string, req *BulkTextRequest) (*BulkImportResponse, error)
	// Preview returns the saved session together with the parse error, if any.
	Preview(ctx context.Context, userID string) (*BulkImportResponse, error)
	ToggleVisibility(ctx context.Context, userID string) (*BulkImportResponse, error)
	// Confirm appends the staged questions to the caller's assignment draft.
	Confirm(ctx context.Context, userID string) (*BulkImportResponse, error)
}

type AssignmentService interface {
	List(ctx context.Context, userID string) ([]*AssignmentSummary, error)
	GetByID(ctx context.Context, id uint, userID string) (*AssignmentResponse, error)
	Delete(ctx context.Context, id uint, userID string) error
	UploadAttachment(ctx context.Context, upload *AttachmentUpload, userID string) (*AttachmentResponse, error)
}

type RosterService interface {
	ListStudents(ctx context.Context, assignmentID uint, userID string) ([]*RosterEntry, error)
	Toggle(ctx context.Context, assignmentID uint, studentID, userID string) (*RosterEntry, error)
}

type QuizService interface {
	Get(ctx context.Context, assignmentID uint, studentID string) (*QuizResponse, error)
	Submit(ctx context.Context, assignmentID uint, studentID string, req *QuizSubmitRequest) (*QuizResult, error)
}

type AnalyticsService interface {
	Overview(ctx context.Context, userID string) (*OverviewStats, error)
	AssignmentStats(ctx context.Context, assignmentID uint, userID string) (*AssignmentStats, error)
	Grades(ctx context.Context, userID string) ([]*GradeRow, error)
}

type ExportService interface {
	// ExportGrades renders the grades table as an XLSX workbook.
	ExportGrades(ctx context.Context, userID string) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	User() UserService
	Draft() DraftService
	BulkImport() BulkImportService
	Assignment() AssignmentService
	Roster() RosterService
	Quiz() QuizService
	Analytics() AnalyticsService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
