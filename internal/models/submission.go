package models

import (
	"math"
	"time"
)

type Submission struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	AssignmentID   uint      `json:"assignment_id" gorm:"not null;index"`
	StudentID      string    `json:"student_id" gorm:"not null;index;size:255"`
	Score          *int      `json:"score"`
	TotalQuestions int       `json:"total_questions" gorm:"not null"`
	Answers        []int     `json:"answers,omitempty" gorm:"serializer:json;type:jsonb"`
	SubmittedAt    time.Time `json:"submitted_at" gorm:"not null;index"`

	// Relations
	Student    User       `json:"student" gorm:"foreignKey:StudentID"`
	Assignment Assignment `json:"assignment" gorm:"foreignKey:AssignmentID"`
}

func (Submission) TableName() string {
	return "submissions"
}

// Graded reports whether a score has been recorded.
func (s Submission) Graded() bool {
	return s.Score != nil
}

// Percentage returns round(score/total*100), or nil when the submission is not
// graded or has no questions.
func (s Submission) Percentage() *int {
	if s.Score == nil || s.TotalQuestions == 0 {
		return nil
	}
	p := RoundPercent(*s.Score, s.TotalQuestions)
	return &p
}

// RoundPercent returns part/whole as a whole percentage, halves rounded up.
func RoundPercent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Floor(float64(part)*100/float64(whole) + 0.5))
}
