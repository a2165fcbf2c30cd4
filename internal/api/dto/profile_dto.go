package dto

import "github.com/google/uuid"

type CreateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// ProfileData is the public shape of a profile.
type ProfileData struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}
