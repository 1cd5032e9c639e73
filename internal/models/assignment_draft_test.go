package models

import (
	"errors"
	"testing"

	"github.com/SAP-F-2025/assignment-service/internal/bulkimport"
)

func TestAssignmentDraft_Questions(t *testing.T) {
	d := NewAssignmentDraft("admin-1")
	if len(d.Questions) != 1 || len(d.Questions[0].Options) != QuestionOptionCount {
		t.Fatalf("new draft = %+v", d.Questions)
	}

	if err := d.RemoveQuestion(0); !errors.Is(err, ErrLastQuestion) {
		t.Errorf("RemoveQuestion() on last question error = %v", err)
	}

	idx := d.AddQuestion()
	if idx != 1 {
		t.Errorf("AddQuestion() = %d, want 1", idx)
	}

	text := "Second"
	answer := 4
	if err := d.UpdateQuestion(1, QuestionPatch{Text: &text, CorrectAnswer: &answer}); err != nil {
		t.Fatalf("UpdateQuestion() error = %v", err)
	}
	if err := d.UpdateOption(1, 2, "three"); err != nil {
		t.Fatalf("UpdateOption() error = %v", err)
	}
	if d.Questions[1].Text != "Second" || d.Questions[1].CorrectAnswer != 4 || d.Questions[1].Options[2] != "three" {
		t.Errorf("question 1 = %+v", d.Questions[1])
	}

	bad := 5
	if err := d.UpdateQuestion(1, QuestionPatch{CorrectAnswer: &bad}); !errors.Is(err, ErrCorrectAnswerOutOfRange) {
		t.Errorf("UpdateQuestion() out of range error = %v", err)
	}
	if err := d.UpdateOption(1, 5, "x"); !errors.Is(err, ErrOptionIndexOutOfRange) {
		t.Errorf("UpdateOption() error = %v", err)
	}
	if err := d.UpdateOption(7, 0, "x"); !errors.Is(err, ErrQuestionIndexOutOfRange) {
		t.Errorf("UpdateOption() error = %v", err)
	}

	if err := d.RemoveQuestion(0); err != nil {
		t.Fatalf("RemoveQuestion() error = %v", err)
	}
	if len(d.Questions) != 1 || d.Questions[0].Text != "Second" {
		t.Errorf("after remove = %+v", d.Questions)
	}
}

func TestAssignmentDraft_AppendParsed(t *testing.T) {
	parsed := []bulkimport.ParsedQuestion{
		{Text: "A", Options: bulkimport.DefaultOptions(), CorrectAnswer: 1},
		{Text: "B", Options: bulkimport.DefaultOptions(), CorrectAnswer: 3},
	}

	tests := []struct {
		name      string
		prepare   func(d *AssignmentDraft)
		wantTexts []string
	}{
		{
			name:      "replaces untouched blank form",
			prepare:   func(d *AssignmentDraft) {},
			wantTexts: []string{"A", "B"},
		},
		{
			name: "keeps edited form",
			prepare: func(d *AssignmentDraft) {
				text := "Manual"
				_ = d.UpdateQuestion(0, QuestionPatch{Text: &text})
			},
			wantTexts: []string{"Manual", "A", "B"},
		},
		{
			name:      "keeps multiple forms",
			prepare:   func(d *AssignmentDraft) { d.AddQuestion() },
			wantTexts: []string{"", "", "A", "B"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewAssignmentDraft("admin-1")
			tt.prepare(d)
			d.AppendParsed(parsed)

			if len(d.Questions) != len(tt.wantTexts) {
				t.Fatalf("got %d questions, want %d", len(d.Questions), len(tt.wantTexts))
			}
			for i, want := range tt.wantTexts {
				if d.Questions[i].Text != want {
					t.Errorf("question %d text = %q, want %q", i, d.Questions[i].Text, want)
				}
			}
		})
	}

	d := NewAssignmentDraft("admin-1")
	d.AppendParsed(parsed)
	d.Questions[0].Options[0] = "edited"
	if parsed[0].Options[0] != "1" {
		t.Error("AppendParsed shares option slices with its input")
	}
}

func TestAssignmentDraft_Reset(t *testing.T) {
	d := NewAssignmentDraft("admin-1")
	d.Title = "Midterm"
	d.AddQuestion()
	d.Reset()

	if d.OwnerID != "admin-1" || d.Title != "" || len(d.Questions) != 1 {
		t.Errorf("after reset = %+v", d)
	}
}

func TestRoundPercent(t *testing.T) {
	tests := []struct {
		part, whole, want int
	}{
		{0, 0, 0},
		{1, 2, 50},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := RoundPercent(tt.part, tt.whole); got != tt.want {
			t.Errorf("RoundPercent(%d, %d) = %d, want %d", tt.part, tt.whole, got, tt.want)
		}
	}
}
