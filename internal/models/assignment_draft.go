package models

import (
	"errors"
	"strings"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/bulkimport"
)

var (
	ErrQuestionIndexOutOfRange = errors.New("question index out of range")
	ErrOptionIndexOutOfRange   = errors.New("option index out of range")
	ErrLastQuestion            = errors.New("an assignment needs at least one question")
	ErrCorrectAnswerOutOfRange = errors.New("correct answer must reference one of the options")
)

// QuestionForm is a question being edited before the assignment exists.
type QuestionForm struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// NewQuestionForm returns a blank form with five empty options.
func NewQuestionForm() QuestionForm {
	return QuestionForm{Options: make([]string, QuestionOptionCount)}
}

// IsBlank reports whether nothing has been typed into the form yet.
func (f QuestionForm) IsBlank() bool {
	if strings.TrimSpace(f.Text) != "" || strings.TrimSpace(f.Explanation) != "" || f.CorrectAnswer != 0 {
		return false
	}
	for _, o := range f.Options {
		if strings.TrimSpace(o) != "" {
			return false
		}
	}
	return true
}

// QuestionPatch carries the fields to change on one form. Nil fields are kept.
type QuestionPatch struct {
	Text          *string `json:"text"`
	CorrectAnswer *int    `json:"correct_answer"`
	Explanation   *string `json:"explanation"`
}

// AssignmentDraft is the in-progress "create assignment" form. It always holds
// at least one question.
type AssignmentDraft struct {
	OwnerID      string         `json:"owner_id"`
	InstructorID string         `json:"instructor_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	DueDate      *time.Time     `json:"due_date"`
	FileURL      string         `json:"file_url"`
	Questions    []QuestionForm `json:"questions"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewAssignmentDraft returns an empty draft with one blank question.
func NewAssignmentDraft(ownerID string) *AssignmentDraft {
	return &AssignmentDraft{
		OwnerID:   ownerID,
		Questions: []QuestionForm{NewQuestionForm()},
	}
}

// AddQuestion appends a blank question and returns its index.
func (d *AssignmentDraft) AddQuestion() int {
	d.Questions = append(d.Questions, NewQuestionForm())
	return len(d.Questions) - 1
}

// RemoveQuestion drops the question at i unless it is the only one left.
func (d *AssignmentDraft) RemoveQuestion(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if len(d.Questions) <= 1 {
		return ErrLastQuestion
	}
	d.Questions = append(d.Questions[:i], d.Questions[i+1:]...)
	return nil
}

func (d *AssignmentDraft) UpdateQuestion(i int, patch QuestionPatch) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	q := &d.Questions[i]
	if patch.Text != nil {
		q.Text = *patch.Text
	}
	if patch.CorrectAnswer != nil {
		if *patch.CorrectAnswer < 0 || *patch.CorrectAnswer >= len(q.Options) {
			return ErrCorrectAnswerOutOfRange
		}
		q.CorrectAnswer = *patch.CorrectAnswer
	}
	if patch.Explanation != nil {
		q.Explanation = *patch.Explanation
	}
	return nil
}

func (d *AssignmentDraft) UpdateOption(i, j int, value string) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if j < 0 || j >= len(d.Questions[i].Options) {
		return ErrOptionIndexOutOfRange
	}
	d.Questions[i].Options[j] = value
	return nil
}

// AppendParsed adds bulk-imported questions in order. A lone untouched blank
// form is replaced instead of being kept ahead of them.
func (d *AssignmentDraft) AppendParsed(parsed []bulkimport.ParsedQuestion) {
	if len(parsed) == 0 {
		return
	}
	if len(d.Questions) == 1 && d.Questions[0].IsBlank() {
		d.Questions = d.Questions[:0]
	}
	for _, p := range parsed {
		options := make([]string, len(p.Options))
		copy(options, p.Options)
		d.Questions = append(d.Questions, QuestionForm{
			Text:          p.Text,
			Options:       options,
			CorrectAnswer: p.CorrectAnswer,
			Explanation:   p.Explanation,
		})
	}
}

// Reset clears the draft back to a single blank question.
func (d *AssignmentDraft) Reset() {
	*d = *NewAssignmentDraft(d.OwnerID)
}

func (d *AssignmentDraft) checkIndex(i int) error {
	if i < 0 || i >= len(d.Questions) {
		return ErrQuestionIndexOutOfRange
	}
	return nil
}
