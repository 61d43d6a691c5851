package identity

import (
	"context"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

// Authenticate verifies a presented session token. Stateless: no store lookup.
func (s *Service) Authenticate(token string) (domain.SessionClaim, error) {
	if token == "" {
		return domain.SessionClaim{}, domain.ErrTokenMissing()
	}

	c, err := s.sessions.Verify(token)
	if err != nil {
		if de, ok := asDomain(err); ok && de.Kind == domain.KindUnauthorized {
			return domain.SessionClaim{}, de
		}
		return domain.SessionClaim{}, domain.ErrTokenInvalid()
	}
	if c.SubjectID == "" {
		return domain.SessionClaim{}, domain.ErrTokenInvalid()
	}
	if !c.ValidAt(s.now()) {
		return domain.SessionClaim{}, domain.ErrTokenExpired()
	}
	return c, nil
}

// GetAccount loads the account behind an authenticated session.
// A session whose account no longer exists is treated as invalid.
func (s *Service) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.Account{}, domain.ErrTokenInvalid()
		}
		return domain.Account{}, storeErr(err)
	}
	return a, nil
}
