package models

import "time"

// StudentAssignment grants one student access to one assignment.
type StudentAssignment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AssignmentID uint      `json:"assignment_id" gorm:"not null;uniqueIndex:idx_student_assignment"`
	StudentID    string    `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_student_assignment"`
	CreatedAt    time.Time `json:"created_at"`
}

func (StudentAssignment) TableName() string {
	return "student_assignments"
}
