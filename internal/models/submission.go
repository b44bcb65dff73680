package models

import "time"

// Submission is a pseudocode answer a user sent for a problem.
type Submission struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"not null;index:idx_submissions_user_problem" json:"user_id"`
	ProblemID    uint         `gorm:"not null;index:idx_submissions_user_problem" json:"problem_id"`
	SolutionText string       `gorm:"type:text;not null" json:"solution_text"`
	CreatedAt    time.Time    `json:"created_at"`
	Evaluations  []Evaluation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
