package validator

import (
	"time"
)

// DraftMetadataRequest updates the header fields of an assignment draft.
// Nil fields are left unchanged.
type DraftMetadataRequest struct {
	InstructorID *string    `json:"instructor_id" validate:"omitempty,max=255"`
	Title        *string    `json:"title" validate:"omitempty,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=5000"`
	DueDate      *time.Time `json:"due_date" validate:"omitempty,future_date"`
	ClearDueDate bool       `json:"clear_due_date"`
	FileURL      *string    `json:"file_url" validate:"omitempty,max=500"`
}

// QuestionUpdateRequest patches one question form of a draft.
type QuestionUpdateRequest struct {
	Text          *string `json:"text" validate:"omitempty,max=2000"`
	CorrectAnswer *int    `json:"correct_answer" validate:"omitempty,answer_index"`
	Explanation   *string `json:"explanation" validate:"omitempty,max=2000"`
}

type OptionUpdateRequest struct {
	Value string `json:"value" validate:"max=1000"`
}

// BulkTextRequest carries pasted bulk question text. The text has no length
// limit.
type BulkTextRequest struct {
	Text string `json:"text"`
}

type QuizSubmitRequest struct {
	Answers []int `json:"answers" validate:"required,dive,min=0"`
}

// AttachmentMeta describes an uploaded file before it is stored.
type AttachmentMeta struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required"`
	Size        int64  `json:"size" validate:"min=1"`
}
