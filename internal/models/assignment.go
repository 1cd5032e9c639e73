package models

import (
	"time"

	"gorm.io/gorm"
)

type Assignment struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title" gorm:"not null;size:200;index"`
	Description  *string    `json:"description" gorm:"type:text"`
	InstructorID string     `json:"instructor_id" gorm:"not null;index;size:255"`
	DueDate      *time.Time `json:"due_date"`
	FileURL      *string    `json:"file_url" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Instructor  User         `json:"instructor" gorm:"foreignKey:InstructorID"`
	Questions   []Question   `json:"questions,omitempty" gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE"`
	Submissions []Submission `json:"-" gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// InstructorName falls back to a dash when the instructor is not loaded.
func (a Assignment) InstructorName() string {
	if a.Instructor.FullName == "" {
		return "-"
	}
	return a.Instructor.FullName
}
