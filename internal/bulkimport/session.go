package bulkimport

import "fmt"

// Sink receives a confirmed batch of questions. It is called at most once per
// confirmation with the full, ordered batch.
type Sink func(questions []ParsedQuestion) error

// Session holds the state of one bulk paste: the raw text being edited, the
// questions staged by the last successful preview and the last error message.
// The zero value is an empty, idle session.
type Session struct {
	DraftText       string           `json:"draft_text"`
	IsPreviewing    bool             `json:"is_previewing"`
	Hidden          bool             `json:"hidden"`
	ParsedQuestions []ParsedQuestion `json:"parsed_questions"`
	ErrorMessage    string           `json:"error_message,omitempty"`
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{ParsedQuestions: []ParsedQuestion{}}
}

// SetDraft replaces the draft text. Staged questions are left as they are.
func (s *Session) SetDraft(text string) {
	s.DraftText = text
}

// Preview parses the draft text. On success the result replaces the staged
// questions and becomes visible. On failure the error message is recorded,
// previewing stops and the previously staged questions are kept.
func (s *Session) Preview() error {
	s.ErrorMessage = ""

	questions, err := ParseQuestions(s.DraftText)
	if err != nil {
		s.ErrorMessage = err.Error()
		s.IsPreviewing = false
		return err
	}

	if len(questions) == 0 {
		s.ErrorMessage = EmptyResultMessage
		s.IsPreviewing = false
		return ErrEmptyResult
	}

	s.ParsedQuestions = questions
	s.IsPreviewing = true
	s.Hidden = false
	return nil
}

// ToggleVisibility shows or hides the staged list.
func (s *Session) ToggleVisibility() error {
	if len(s.ParsedQuestions) == 0 {
		return ErrNothingStaged
	}
	s.Hidden = !s.Hidden
	return nil
}

// CanConfirm reports whether there is anything to hand to a sink.
func (s *Session) CanConfirm() bool {
	return len(s.ParsedQuestions) > 0
}

// Confirm hands the staged questions to sink and clears the session. If sink
// fails the session is left untouched so the user can retry.
func (s *Session) Confirm(sink Sink) (int, error) {
	if !s.CanConfirm() {
		return 0, ErrNothingStaged
	}

	batch := make([]ParsedQuestion, len(s.ParsedQuestions))
	copy(batch, s.ParsedQuestions)

	if err := sink(batch); err != nil {
		return 0, fmt.Errorf("failed to add parsed questions: %w", err)
	}

	s.DraftText = ""
	s.ParsedQuestions = []ParsedQuestion{}
	s.IsPreviewing = false
	s.Hidden = false
	s.ErrorMessage = ""
	return len(batch), nil
}
