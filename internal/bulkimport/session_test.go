package bulkimport

import (
	"errors"
	"reflect"
	"testing"
)

func TestSession_PreviewAndConfirm(t *testing.T) {
	s := NewSession()
	s.SetDraft("What is the capital of France?\n2\n\n2 + 2 = ?\n4")

	if err := s.Preview(); err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if !s.IsPreviewing || s.Hidden {
		t.Errorf("after preview: IsPreviewing=%v Hidden=%v", s.IsPreviewing, s.Hidden)
	}
	if !s.CanConfirm() {
		t.Fatal("CanConfirm() = false after a successful preview")
	}

	var calls int
	var received []ParsedQuestion
	n, err := s.Confirm(func(qs []ParsedQuestion) error {
		calls++
		received = qs
		return nil
	})
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if calls != 1 || n != 2 {
		t.Errorf("sink called %d times with %d questions, want once with 2", calls, n)
	}
	if received[0].CorrectAnswer != 1 || received[1].CorrectAnswer != 3 {
		t.Errorf("received answers %d, %d", received[0].CorrectAnswer, received[1].CorrectAnswer)
	}
	if s.DraftText != "" || len(s.ParsedQuestions) != 0 || s.IsPreviewing {
		t.Errorf("session not reset after confirm: %+v", s)
	}
}

func TestSession_PreviewInvalidKeepsStaged(t *testing.T) {
	s := NewSession()
	s.SetDraft("Q1\n1")
	if err := s.Preview(); err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	staged := append([]ParsedQuestion(nil), s.ParsedQuestions...)

	s.SetDraft("Q1\n1\n\nQ2\n9")
	err := s.Preview()
	if !errors.Is(err, ErrInvalidAnswerNumber) {
		t.Fatalf("Preview() error = %v, want ErrInvalidAnswerNumber", err)
	}
	if s.ErrorMessage != `Invalid answer number "9" for question "Q2". Must be 1-5.` {
		t.Errorf("ErrorMessage = %q", s.ErrorMessage)
	}
	if s.IsPreviewing {
		t.Error("IsPreviewing should be false after a failed preview")
	}
	if !reflect.DeepEqual(s.ParsedQuestions, staged) {
		t.Errorf("staged questions changed: %v", s.ParsedQuestions)
	}
}

func TestSession_PreviewEmpty(t *testing.T) {
	s := NewSession()
	s.SetDraft("just one line")

	if err := s.Preview(); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("Preview() error = %v, want ErrEmptyResult", err)
	}
	if s.ErrorMessage != EmptyResultMessage {
		t.Errorf("ErrorMessage = %q", s.ErrorMessage)
	}
	if s.IsPreviewing || s.CanConfirm() {
		t.Error("empty preview must not stage anything")
	}
}

func TestSession_PreviewClearsPreviousError(t *testing.T) {
	s := NewSession()
	s.SetDraft("Q\nnope")
	_ = s.Preview()
	if s.ErrorMessage == "" {
		t.Fatal("expected an error message")
	}

	s.SetDraft("Q\n2")
	if err := s.Preview(); err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if s.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want empty", s.ErrorMessage)
	}
}

func TestSession_SetDraftKeepsStaged(t *testing.T) {
	s := NewSession()
	s.SetDraft("Q\n2")
	_ = s.Preview()

	s.SetDraft("something else entirely")
	if len(s.ParsedQuestions) != 1 || !s.IsPreviewing {
		t.Errorf("SetDraft touched staged state: %+v", s)
	}
}

func TestSession_ConfirmSinkFailure(t *testing.T) {
	s := NewSession()
	s.SetDraft("Q\n2")
	_ = s.Preview()
	before := *s

	sinkErr := errors.New("draft store unavailable")
	_, err := s.Confirm(func([]ParsedQuestion) error { return sinkErr })
	if !errors.Is(err, sinkErr) {
		t.Fatalf("Confirm() error = %v, want wrapped sink error", err)
	}
	if !reflect.DeepEqual(*s, before) {
		t.Errorf("session changed after failed sink: %+v", s)
	}
}

func TestSession_NothingStaged(t *testing.T) {
	s := NewSession()

	if s.CanConfirm() {
		t.Error("CanConfirm() = true on an idle session")
	}
	called := false
	if _, err := s.Confirm(func([]ParsedQuestion) error { called = true; return nil }); !errors.Is(err, ErrNothingStaged) {
		t.Errorf("Confirm() error = %v, want ErrNothingStaged", err)
	}
	if called {
		t.Error("sink called with nothing staged")
	}
	if err := s.ToggleVisibility(); !errors.Is(err, ErrNothingStaged) {
		t.Errorf("ToggleVisibility() error = %v, want ErrNothingStaged", err)
	}
}

func TestSession_ToggleVisibility(t *testing.T) {
	s := NewSession()
	s.SetDraft("Q\n1")
	_ = s.Preview()

	if err := s.ToggleVisibility(); err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}
	if !s.Hidden {
		t.Error("Hidden = false after first toggle")
	}
	_ = s.ToggleVisibility()
	if s.Hidden {
		t.Error("Hidden = true after second toggle")
	}
	if len(s.ParsedQuestions) != 1 {
		t.Error("toggling must not change staged questions")
	}
}
