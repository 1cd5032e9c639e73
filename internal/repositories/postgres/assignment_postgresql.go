package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (a *AssignmentPostgreSQL) Create(ctx context.Context, assignment *models.Assignment) error {
	if err := a.db.WithContext(ctx).Omit("Instructor", "Questions", "Submissions").Create(assignment).Error; err != nil {
		return translateError(err, "failed to create assignment")
	}
	return nil
}

func (a *AssignmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := a.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_number ASC, id ASC")
		}).
		First(&assignment, id).Error
	if err != nil {
		return nil, translateError(err, "failed to get assignment %d", id)
	}
	assignment.QuestionsCount = len(assignment.Questions)
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) List(ctx context.Context, filters repositories.AssignmentFilters) ([]*models.Assignment, error) {
	query := a.db.WithContext(ctx).Model(&models.Assignment{}).Preload("Instructor")
	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}
	if filters.IDs != nil {
		query = query.Where("id IN ?", filters.IDs)
	}

	var assignments []*models.Assignment
	if err := query.Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, translateError(err, "failed to list assignments")
	}
	if len(assignments) == 0 {
		return assignments, nil
	}

	ids := make([]uint, len(assignments))
	for i, as := range assignments {
		ids[i] = as.ID
	}

	var counts []struct {
		AssignmentID uint
		Count        int
	}
	err := a.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("assignment_id, COUNT(*) AS count").
		Where("assignment_id IN ?", ids).
		Group("assignment_id").
		Scan(&counts).Error
	if err != nil {
		return nil, translateError(err, "failed to count questions")
	}

	byID := make(map[uint]int, len(counts))
	for _, c := range counts {
		byID[c.AssignmentID] = c.Count
	}
	for _, as := range assignments {
		as.QuestionsCount = byID[as.ID]
	}

	return assignments, nil
}

// Delete removes the assignment with its questions, roster and submissions.
func (a *AssignmentPostgreSQL) Delete(ctx context.Context, id uint) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.Question{}, &models.StudentAssignment{}, &models.Submission{}} {
			if err := tx.Where("assignment_id = ?", id).Delete(dependent).Error; err != nil {
				return translateError(err, "failed to delete dependents of assignment %d", id)
			}
		}
		result := tx.Delete(&models.Assignment{}, id)
		return checkAffected(result, "failed to delete assignment %d", id)
	})
}
