package dto

import "github.com/google/uuid"

// GenerateMessage asks the insight worker to run the pipeline for one record.
type GenerateMessage struct {
	UserId  uuid.UUID `json:"userId"`
	VideoId string    `json:"videoId"`
}

type SubmitVideoRequest struct {
	Url string `json:"url" binding:"required"`
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SessionResponse struct {
	Token     string `json:"token"`
	UserId    string `json:"userId"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expiresAt"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
