package domain

import "time"

// SessionTTL is the fixed validity window of a session claim.
const SessionTTL = time.Hour

// SessionClaim is the signed, stateless identity carried by the client.
// It is never persisted.
type SessionClaim struct {
	SubjectID   string
	Email       string
	DisplayName string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// NewSessionClaim derives a claim for a verified account.
// IssuedAt is truncated to whole seconds so it survives a JWT round trip unchanged.
func NewSessionClaim(a Account, now time.Time) SessionClaim {
	issued := now.UTC().Truncate(time.Second)
	return SessionClaim{
		SubjectID:   a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		IssuedAt:    issued,
		ExpiresAt:   issued.Add(SessionTTL),
	}
}

// ValidAt reports whether the claim is usable at now (now < ExpiresAt).
func (c SessionClaim) ValidAt(now time.Time) bool {
	return c.SubjectID != "" && now.Before(c.ExpiresAt)
}
