package models

import "time"

// LeetcodeProfile caches a user's LeetCode solved counts.
type LeetcodeProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	TotalSolved  int       `gorm:"not null;default:0" json:"total_solved"`
	EasySolved   int       `gorm:"not null;default:0" json:"easy_solved"`
	MediumSolved int       `gorm:"not null;default:0" json:"medium_solved"`
	HardSolved   int       `gorm:"not null;default:0" json:"hard_solved"`
	LastUpdated  time.Time `json:"last_updated"`
	User         User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
