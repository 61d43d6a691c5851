package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("unexpected normalized email %q", got)
	}
}

func TestVerificationState_Valid(t *testing.T) {
	if !Unverified.Valid() || !Verified.Valid() {
		t.Fatalf("expected known states to be valid")
	}
	if VerificationState("pending").Valid() {
		t.Fatalf("unexpected valid state")
	}
}

func TestAccount_JSONNeverCarriesSecrets(t *testing.T) {
	a := Account{
		ID:                       "u1",
		Email:                    "a@b.com",
		PasswordHash:             "$2a$12$secret",
		VerificationState:        Unverified,
		PendingVerificationToken: "tok",
	}

	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "secret") || strings.Contains(string(b), "tok") {
		t.Fatalf("secrets leaked: %s", b)
	}
}

func TestNewSessionClaim_OneHourWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 987654321, time.UTC)
	a := Account{ID: "u1", Email: "a@b.com", DisplayName: "Alice", VerificationState: Verified}

	c := NewSessionClaim(a, now)

	if c.SubjectID != "u1" || c.Email != "a@b.com" || c.DisplayName != "Alice" {
		t.Fatalf("unexpected claim: %+v", c)
	}
	if c.IssuedAt.Nanosecond() != 0 {
		t.Fatalf("expected issued_at truncated to seconds, got %v", c.IssuedAt)
	}
	if c.ExpiresAt.Sub(c.IssuedAt) != time.Hour {
		t.Fatalf("expected 1h window, got %v", c.ExpiresAt.Sub(c.IssuedAt))
	}
}

func TestSessionClaim_ValidAt(t *testing.T) {
	now := time.Now()
	c := NewSessionClaim(Account{ID: "u1"}, now)

	if !c.ValidAt(c.IssuedAt) {
		t.Fatalf("expected valid at issuance")
	}
	if c.ValidAt(c.ExpiresAt) {
		t.Fatalf("expected invalid exactly at expiry")
	}
	if (SessionClaim{ExpiresAt: now.Add(time.Hour)}).ValidAt(now) {
		t.Fatalf("expected claim without subject to be invalid")
	}
}
