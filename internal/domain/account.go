package domain

import (
	"strings"
	"time"
)

// MinPasswordLength is the shortest raw password accepted at signup.
const MinPasswordLength = 8

type VerificationState string

const (
	Unverified VerificationState = "unverified"
	Verified   VerificationState = "verified"
)

func (s VerificationState) Valid() bool {
	return s == Unverified || s == Verified
}

// Account is one registered identity.
// PendingVerificationToken is non-empty only while the account is Unverified.
type Account struct {
	ID                       string
	Email                    string
	DisplayName              string
	PasswordHash             string `json:"-"`
	VerificationState        VerificationState
	PendingVerificationToken string `json:"-"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (a Account) IsVerified() bool {
	return a.VerificationState == Verified
}

// NormalizeEmail is the identity key used for uniqueness and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
