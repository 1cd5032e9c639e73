package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

func TestWithTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := New()
	boom := errors.New("boom")

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Assignment().Create(ctx, &models.Assignment{Title: "A", InstructorID: "i"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	list, _ := repo.Assignment().List(ctx, repositories.AssignmentFilters{})
	if len(list) != 0 {
		t.Errorf("expected rollback, found %d assignments", len(list))
	}
}

func TestUserRoleJoinAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := New()

	if err := repo.User().Create(ctx, &models.User{ID: "u1", FullName: "Kim", Email: "k@x"}, models.RoleInstructor); err != nil {
		t.Fatal(err)
	}
	if err := repo.User().Create(ctx, &models.User{ID: "u2", FullName: "Lee", Email: "l@x"}, ""); err != nil {
		t.Fatal(err)
	}

	u1, err := repo.User().GetByID(ctx, "u1")
	if err != nil || u1.Role != models.RoleInstructor {
		t.Fatalf("unexpected user %+v, err %v", u1, err)
	}

	list, _ := repo.User().List(ctx, repositories.UserFilters{Roles: []models.UserRole{models.RoleInstructor}})
	if len(list) != 1 || list[0].ID != "u1" {
		t.Errorf("role filter returned %+v", list)
	}

	if err := repo.User().Delete(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.User().GetByID(ctx, "u1"); !repositories.IsNotFoundError(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAssignmentQuestionsOrdered(t *testing.T) {
	ctx := context.Background()
	repo := New()
	as := &models.Assignment{Title: "Quiz", InstructorID: "i"}
	_ = repo.Assignment().Create(ctx, as)
	_ = repo.Question().CreateBatch(ctx, []*models.Question{
		{AssignmentID: as.ID, Text: "second", OrderNumber: 1},
		{AssignmentID: as.ID, Text: "first", OrderNumber: 0},
	})

	got, err := repo.Assignment().GetByID(ctx, as.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.QuestionsCount != 2 || got.Questions[0].Text != "first" {
		t.Errorf("unexpected questions %+v", got.Questions)
	}
}
