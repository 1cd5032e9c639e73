package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

func setupQuiz(t *testing.T) (*testEnv, *models.Assignment) {
	t.Helper()
	env := newTestEnv(t)
	env.addUser(t, "inst", models.RoleInstructor, true)
	env.addUser(t, "stud", models.RoleStudent, true)
	env.addUser(t, "other", models.RoleStudent, true)
	assignment := env.addAssignment(t, "inst", "Quiz", 0, 1, 2)
	if err := env.repo.Roster().Assign(context.Background(), assignment.ID, "stud"); err != nil {
		t.Fatal(err)
	}
	return env, assignment
}

func TestQuizAccess(t *testing.T) {
	env, assignment := setupQuiz(t)
	ctx := context.Background()

	if _, err := env.services.Quiz().Get(ctx, assignment.ID, "other"); !errors.Is(err, ErrAssignmentNoAccess) {
		t.Errorf("expected ErrAssignmentNoAccess, got %v", err)
	}
	var permErr *PermissionError
	if _, err := env.services.Quiz().Get(ctx, assignment.ID, "inst"); !errors.As(err, &permErr) {
		t.Errorf("expected PermissionError for instructor, got %v", err)
	}

	quiz, err := env.services.Quiz().Get(ctx, assignment.ID, "stud")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(quiz.Questions) != 3 || quiz.Submitted || quiz.Result != nil {
		t.Errorf("unexpected quiz %+v", quiz)
	}
}

func TestQuizSubmit(t *testing.T) {
	env, assignment := setupQuiz(t)
	ctx := context.Background()

	var verrs validator.ValidationErrors
	if _, err := env.services.Quiz().Submit(ctx, assignment.ID, "stud", &QuizSubmitRequest{Answers: []int{0, 1}}); !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors for missing answer, got %v", err)
	}
	if verrs[0].Rule != "answer_count" {
		t.Errorf("unexpected rule %q", verrs[0].Rule)
	}

	result, err := env.services.Quiz().Submit(ctx, assignment.ID, "stud", &QuizSubmitRequest{Answers: []int{0, 1, 4}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Score != 2 || result.TotalQuestions != 3 || result.Percentage != 67 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(result.Questions) != 3 || result.Questions[2].Correct || result.Questions[2].CorrectAnswer != 2 {
		t.Errorf("unexpected per-question result %+v", result.Questions)
	}

	if _, err := env.services.Quiz().Submit(ctx, assignment.ID, "stud", &QuizSubmitRequest{Answers: []int{0, 1, 2}}); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("expected ErrAlreadySubmitted, got %v", err)
	}

	quiz, _ := env.services.Quiz().Get(ctx, assignment.ID, "stud")
	if !quiz.Submitted || quiz.Result == nil || quiz.Result.Score != 2 {
		t.Errorf("expected stored result, got %+v", quiz)
	}

	completed := env.publisher.EventsOfType(events.EventSubmissionCompleted)
	if len(completed) != 1 {
		t.Fatalf("expected 1 submission event, got %d", len(completed))
	}
	if data := completed[0].Data.(events.SubmissionCompletedData); data.Score != 2 || data.Percentage != 67 {
		t.Errorf("unexpected event data %+v", data)
	}
}

func TestQuizSubmitEmptyAssignment(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "inst", models.RoleInstructor, true)
	env.addUser(t, "stud", models.RoleStudent, true)
	assignment := env.addAssignment(t, "inst", "Empty")
	env.repo.Roster().Assign(context.Background(), assignment.ID, "stud")

	_, err := env.services.Quiz().Submit(context.Background(), assignment.ID, "stud", &QuizSubmitRequest{Answers: []int{}})
	if !errors.Is(err, ErrAssignmentHasNoQuiz) {
		t.Errorf("expected ErrAssignmentHasNoQuiz, got %v", err)
	}
}
