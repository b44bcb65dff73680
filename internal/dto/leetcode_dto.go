package dto

import "github.com/noah-isme/leetnote-go-api/internal/models"

// LeetcodeUsernameRequest is the payload of the LeetCode username endpoints.
type LeetcodeUsernameRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
}

// LeetcodeStatsResponse carries a user's LeetCode solved counts.
type LeetcodeStatsResponse struct {
	Username     string `json:"username"`
	TotalSolved  int    `json:"totalSolved"`
	EasySolved   int    `json:"easySolved"`
	MediumSolved int    `json:"mediumSolved"`
	HardSolved   int    `json:"hardSolved"`
}

// NewLeetcodeStatsResponse builds a response DTO from a stored profile.
func NewLeetcodeStatsResponse(profile models.LeetcodeProfile) LeetcodeStatsResponse {
	return LeetcodeStatsResponse{
		Username:     profile.Username,
		TotalSolved:  profile.TotalSolved,
		EasySolved:   profile.EasySolved,
		MediumSolved: profile.MediumSolved,
		HardSolved:   profile.HardSolved,
	}
}
