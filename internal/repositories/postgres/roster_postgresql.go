package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

type RosterPostgreSQL struct {
	db *gorm.DB
}

func NewRosterPostgreSQL(db *gorm.DB) repositories.RosterRepository {
	return &RosterPostgreSQL{db: db}
}

func (r *RosterPostgreSQL) IsAssigned(ctx context.Context, assignmentID uint, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StudentAssignment{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, "failed to check roster")
	}
	return count > 0, nil
}

// Assign is idempotent.
func (r *RosterPostgreSQL) Assign(ctx context.Context, assignmentID uint, studentID string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.StudentAssignment{AssignmentID: assignmentID, StudentID: studentID}).Error
	if err != nil {
		return translateError(err, "failed to assign student %s to assignment %d", studentID, assignmentID)
	}
	return nil
}

func (r *RosterPostgreSQL) Unassign(ctx context.Context, assignmentID uint, studentID string) error {
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Delete(&models.StudentAssignment{}).Error
	if err != nil {
		return translateError(err, "failed to unassign student %s from assignment %d", studentID, assignmentID)
	}
	return nil
}

func (r *RosterPostgreSQL) ListStudentIDs(ctx context.Context, assignmentID uint) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.StudentAssignment{}).
		Where("assignment_id = ?", assignmentID).
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, translateError(err, "failed to list roster of assignment %d", assignmentID)
	}
	return ids, nil
}

func (r *RosterPostgreSQL) ListAssignmentIDs(ctx context.Context, studentID string) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&models.StudentAssignment{}).
		Where("student_id = ?", studentID).
		Pluck("assignment_id", &ids).Error
	if err != nil {
		return nil, translateError(err, "failed to list assignments of student %s", studentID)
	}
	return ids, nil
}
