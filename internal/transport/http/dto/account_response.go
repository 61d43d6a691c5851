package dto

import "time"

type MessageResponse struct {
	Message string `json:"message"`
}

type SignupResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type MeView struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	DisplayName       string    `json:"displayName"`
	VerificationState string    `json:"verificationState"`
	IssuedAt          time.Time `json:"issuedAt"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

type MeResponse struct {
	Message string `json:"message"`
	Data    MeView `json:"data"`
}
