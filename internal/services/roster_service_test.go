package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
)

func TestRosterToggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "inst", models.RoleInstructor, true)
	env.addUser(t, "s1", models.RoleStudent, true)
	env.addUser(t, "s2", models.RoleStudent, true)
	env.addUser(t, "pending", models.RoleStudent, false)
	a := env.addAssignment(t, "inst", "Quiz", 0)

	entry, err := env.services.Roster().Toggle(ctx, a.ID, "s1", "inst")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !entry.Assigned {
		t.Error("first toggle should assign")
	}

	entries, err := env.services.Roster().ListStudents(ctx, a.ID, "inst")
	if err != nil {
		t.Fatalf("ListStudents() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 verified students, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Assigned != (e.StudentID == "s1") {
			t.Errorf("student %s assigned = %v", e.StudentID, e.Assigned)
		}
	}

	entry, err = env.services.Roster().Toggle(ctx, a.ID, "s1", "inst")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if entry.Assigned {
		t.Error("second toggle should unassign")
	}
	if ok, _ := env.repo.Roster().IsAssigned(ctx, a.ID, "s1"); ok {
		t.Error("student still assigned")
	}

	published := env.publisher.EventsOfType(events.EventRosterChanged)
	if len(published) != 2 {
		t.Fatalf("expected 2 roster events, got %d", len(published))
	}
	if data := published[1].Data.(events.RosterChangedData); data.Assigned {
		t.Error("last event should report unassigned")
	}
}

func TestRosterToggleErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "inst", models.RoleInstructor, true)
	env.addUser(t, "other", models.RoleInstructor, true)
	env.addUser(t, "s1", models.RoleStudent, true)
	env.addUser(t, "pending", models.RoleStudent, false)
	a := env.addAssignment(t, "inst", "Quiz", 0)

	tests := []struct {
		name      string
		assignID  uint
		studentID string
		userID    string
		want      error
	}{
		{"unverified student", a.ID, "pending", "inst", ErrStudentNotFound},
		{"instructor target", a.ID, "other", "inst", ErrStudentNotFound},
		{"unknown student", a.ID, "ghost", "inst", ErrStudentNotFound},
		{"not owner", a.ID, "s1", "other", ErrInsufficientPermissions},
		{"unknown assignment", a.ID + 100, "s1", "inst", ErrAssignmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.services.Roster().Toggle(ctx, tt.assignID, tt.studentID, tt.userID)
			if !errors.Is(err, tt.want) {
				t.Errorf("Toggle() error = %v, want %v", err, tt.want)
			}
		})
	}
}
