package validator

import (
	"strings"
	"testing"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"gorm.io/datatypes"
)

func completeDraft() *models.AssignmentDraft {
	d := models.NewAssignmentDraft("admin-1")
	d.InstructorID = "instructor-1"
	d.Title = "Midterm"
	d.Questions[0] = models.QuestionForm{
		Text:          "Capital of France?",
		Options:       []string{"Berlin", "Paris", "Rome", "Madrid", "Lisbon"},
		CorrectAnswer: 1,
	}
	return d
}

func TestBusinessValidator_ValidateAssignmentDraft(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name       string
		mutate     func(d *models.AssignmentDraft)
		wantFirst  string
		wantFields int
	}{
		{
			name:   "complete draft",
			mutate: func(d *models.AssignmentDraft) {},
		},
		{
			name:       "missing instructor comes first",
			mutate:     func(d *models.AssignmentDraft) { d.InstructorID = ""; d.Title = "  " },
			wantFirst:  "instructor_id",
			wantFields: 2,
		},
		{
			name:       "blank title",
			mutate:     func(d *models.AssignmentDraft) { d.Title = " \t " },
			wantFirst:  "title",
			wantFields: 1,
		},
		{
			name:       "title too long",
			mutate:     func(d *models.AssignmentDraft) { d.Title = strings.Repeat("a", 201) },
			wantFirst:  "title",
			wantFields: 1,
		},
		{
			name:       "blank question text",
			mutate:     func(d *models.AssignmentDraft) { d.Questions[0].Text = "" },
			wantFirst:  "questions[0].text",
			wantFields: 1,
		},
		{
			name: "blank option in second question",
			mutate: func(d *models.AssignmentDraft) {
				d.AddQuestion()
				d.Questions[1].Text = "Second"
				d.Questions[1].Options = []string{"a", "b", "c", "", "e"}
			},
			wantFirst:  "questions[1].options[3]",
			wantFields: 1,
		},
		{
			name: "parsed placeholders are accepted",
			mutate: func(d *models.AssignmentDraft) {
				d.Questions[0].Options = []string{"1", "2", "3", "4", "5"}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := completeDraft()
			tt.mutate(d)

			errs := bv.ValidateAssignmentDraft(d)
			if tt.wantFirst == "" {
				if len(errs) != 0 {
					t.Fatalf("unexpected errors: %v", errs)
				}
				return
			}
			if len(errs) != tt.wantFields {
				t.Errorf("got %d errors (%v), want %d", len(errs), errs, tt.wantFields)
			}
			first, ok := errs.First()
			if !ok || first.Field != tt.wantFirst {
				t.Errorf("first error field = %q, want %q", first.Field, tt.wantFirst)
			}
		})
	}
}

func TestBusinessValidator_ValidateAttachment(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name     string
		meta     AttachmentMeta
		wantRule string
	}{
		{name: "pdf", meta: AttachmentMeta{FileName: "a.pdf", ContentType: "application/pdf", Size: 1024}},
		{name: "png with params", meta: AttachmentMeta{FileName: "a.png", ContentType: "image/png; charset=binary", Size: 10}},
		{name: "exactly 10MB", meta: AttachmentMeta{FileName: "a.gif", ContentType: "image/gif", Size: MaxAttachmentSize}},
		{name: "too large", meta: AttachmentMeta{FileName: "a.pdf", ContentType: "application/pdf", Size: MaxAttachmentSize + 1}, wantRule: "max_size"},
		{name: "zip rejected", meta: AttachmentMeta{FileName: "a.zip", ContentType: "application/zip", Size: 10}, wantRule: "mime_type"},
		{name: "empty file", meta: AttachmentMeta{FileName: "a.pdf", ContentType: "application/pdf", Size: 0}, wantRule: "min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateAttachment(&tt.meta)
			if tt.wantRule == "" {
				if len(errs) > 0 {
					t.Fatalf("unexpected errors: %v", errs)
				}
				return
			}
			if len(errs) == 0 || errs[0].Rule != tt.wantRule {
				t.Errorf("errors = %v, want rule %q", errs, tt.wantRule)
			}
		})
	}
}

func TestBusinessValidator_ValidateQuizAnswers(t *testing.T) {
	bv := NewBusinessValidator()
	questions := []models.Question{
		{Options: datatypes.NewJSONSlice([]string{"a", "b", "c", "d", "e"})},
		{Options: datatypes.NewJSONSlice([]string{"a", "b", "c", "d", "e"})},
	}

	if errs := bv.ValidateQuizAnswers(&QuizSubmitRequest{Answers: []int{0, 4}}, questions); len(errs) > 0 {
		t.Errorf("valid answers rejected: %v", errs)
	}
	if errs := bv.ValidateQuizAnswers(&QuizSubmitRequest{Answers: []int{0}}, questions); len(errs) == 0 || errs[0].Rule != "answer_count" {
		t.Errorf("short answers: %v", errs)
	}
	if errs := bv.ValidateQuizAnswers(&QuizSubmitRequest{Answers: []int{0, 5}}, questions); len(errs) == 0 || errs[0].Field != "answers[1]" {
		t.Errorf("out of range answer: %v", errs)
	}
	if errs := bv.ValidateQuizAnswers(&QuizSubmitRequest{Answers: []int{-1, 0}}, questions); len(errs) == 0 {
		t.Error("negative answer accepted")
	}
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	bad := -1
	err := v.Validate(&QuestionUpdateRequest{CorrectAnswer: &bad})
	errs, ok := err.(ValidationErrors)
	if !ok || len(errs) != 1 {
		t.Fatalf("Validate() = %v, want one ValidationError", err)
	}
	if errs[0].Field != "correct_answer" {
		t.Errorf("field = %q", errs[0].Field)
	}
	if errs[0].Rule != "answer_index" {
		t.Errorf("rule = %q", errs[0].Rule)
	}

	ok4 := 4
	if err := v.Validate(&QuestionUpdateRequest{CorrectAnswer: &ok4}); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
