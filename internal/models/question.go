package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionOptionCount is the number of choices every question has.
const QuestionOptionCount = 5

type Question struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	AssignmentID  uint                        `json:"assignment_id" gorm:"not null;index"`
	Text          string                      `json:"text" gorm:"type:text;not null"`
	Options       datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb;not null"`
	CorrectAnswer int                         `json:"correct_answer" gorm:"not null"`
	Explanation   *string                     `json:"explanation" gorm:"type:text"`
	OrderNumber   int                         `json:"order_number" gorm:"not null;default:0;index"`

	CreatedAt time.Time `json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}

// IsCorrect reports whether answer is the index of the correct option.
func (q Question) IsCorrect(answer int) bool {
	return answer == q.CorrectAnswer
}
