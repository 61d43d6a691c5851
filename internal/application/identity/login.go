package identity

import (
	"context"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

// Login authenticates a verified account and signs a one-hour session.
// IMPORTANT: unknown email, wrong password and unverified account must be
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return LoginResult{}, domain.ErrInvalidCredentials()
		}
		return LoginResult{}, storeErr(err)
	}

	if err := s.hasher.Compare(ctx, a.PasswordHash, password); err != nil {
		// a cancelled wait for hashing capacity is not a credential failure
		if ctx.Err() != nil {
			return LoginResult{}, domain.ErrInternal(ctx.Err())
		}
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if !a.IsVerified() {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	claim := domain.NewSessionClaim(a, s.now())
	token, err := s.sessions.Sign(claim)
	if err != nil {
		return LoginResult{}, domain.ErrTokenSignFailed(err)
	}

	return LoginResult{Claim: claim, Token: token}, nil
}
