package dto

import "github.com/noah-isme/leetnote-go-api/internal/models"

// UsernameRequest is the payload of PUT /api/users/username.
type UsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

// ProfilePictureRequest is the payload of PUT /api/users/profile-picture.
type ProfilePictureRequest struct {
	ProfileURL string `json:"profileUrl" validate:"required,url,max=512"`
}

// UserProfileResponse describes the caller's profile.
type UserProfileResponse struct {
	UserID     uint   `json:"userId"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	ProfileURL string `json:"profileUrl"`
}

// NewUserProfileResponse builds a response DTO from a model.
func NewUserProfileResponse(user models.User) UserProfileResponse {
	response := UserProfileResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.DisplayUsername(),
	}
	if user.ProfileURL != nil {
		response.ProfileURL = *user.ProfileURL
	}
	return response
}
