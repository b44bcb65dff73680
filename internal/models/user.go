package models

import "time"

// User is the local account linked to an identity provider subject.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ExternalUID string    `gorm:"size:128;uniqueIndex;not null" json:"external_uid"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username    *string   `gorm:"size:32;uniqueIndex" json:"username"`
	ProfileURL  *string   `gorm:"size:512" json:"profile_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayUsername returns the username or an empty string when none is set.
func (u User) DisplayUsername() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}
