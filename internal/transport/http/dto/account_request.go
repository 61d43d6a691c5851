package dto

import (
	"strings"

	"github.com/baechuer/wastewise/services/identity-service/internal/pkg/validate"
)

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FullNames string `json:"fullNames" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
}

// Validate returns a validation_failed error listing every broken rule.
func (r *SignupRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FullNames = strings.TrimSpace(r.FullNames)
	return validate.Struct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validate.Struct(r)
}
