package models

import (
	"time"

	"gorm.io/datatypes"
)

// Problem difficulties as stored in the catalogue.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Problem is a catalogue entry users practise on.
type Problem struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Title       string            `gorm:"size:255;not null" json:"title"`
	Slug        string            `gorm:"size:255;uniqueIndex" json:"slug"`
	Difficulty  string            `gorm:"size:16;not null;index" json:"difficulty"`
	Description string            `gorm:"type:text" json:"description"`
	Solution    datatypes.JSONMap `json:"solution"`
	CreatedAt   time.Time         `json:"created_at"`
}

// UserProblemStatus records whether a user solved or starred a problem.
type UserProblemStatus struct {
	UserID      uint      `gorm:"primaryKey" json:"user_id"`
	ProblemID   uint      `gorm:"primaryKey" json:"problem_id"`
	IsSolved    bool      `gorm:"not null;default:false" json:"is_solved"`
	IsFavorited bool      `gorm:"not null;default:false" json:"is_favorited"`
	UpdatedAt   time.Time `json:"updated_at"`
}
