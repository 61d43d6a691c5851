package identity

import (
	"context"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

/*
AccountStore
------------
Persistence port for accounts.
Uniqueness of the normalized email and single-use token consumption are
enforced by the store itself, atomically.
*/
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)

	// Create returns domain.ErrEmailAlreadyExists when the email is taken,
	// including when a concurrent Create won the race.
	Create(ctx context.Context, a domain.Account) (domain.Account, error)

	// ConsumeVerificationToken flips the matching unverified account to
	// verified and clears its token in one step. Unknown or already consumed
	// tokens return domain.ErrInvalidToken.
	ConsumeVerificationToken(ctx context.Context, token string) (domain.Account, error)
}

/*
PasswordHasher
--------------
Slow adaptive hash. Implementations may block while waiting for capacity
and must honour ctx while doing so.
*/
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) error // nil if match
}

// TokenIssuer produces unguessable, URL-safe verification tokens.
type TokenIssuer interface {
	Issue() (string, error)
}

/*
SessionSigner
-------------
Signs and verifies stateless session claims.
Verify returns an unauthorized domain error for anything it rejects.
*/
type SessionSigner interface {
	Sign(c domain.SessionClaim) (string, error)
	Verify(token string) (domain.SessionClaim, error)
}

/*
NoticeDispatcher
----------------
Hands verification notices to the outbound notification pipeline.
Dispatch must not block the caller; delivery failures never reach it.
*/
type NoticeDispatcher interface {
	Dispatch(n VerificationNotice)
}

// VerificationNotice is what the outbound email needs to reach the user.
type VerificationNotice struct {
	AccountID   string `json:"account_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}
