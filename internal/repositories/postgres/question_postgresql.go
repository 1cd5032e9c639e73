package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	if err := q.db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return translateError(err, "failed to create questions")
	}
	return nil
}

func (q *QuestionPostgreSQL) GetByAssignment(ctx context.Context, assignmentID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := q.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("order_number ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, translateError(err, "failed to get questions of assignment %d", assignmentID)
	}
	return questions, nil
}
