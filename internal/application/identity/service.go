package identity

import (
	"errors"
	"time"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

type Service struct {
	accounts AccountStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	sessions SessionSigner
	notices  NoticeDispatcher

	// e.g. https://app.example/verify/ ; the token is appended as-is
	verifyBaseURL string

	now func() time.Time
}

type Config struct {
	VerifyBaseURL string
}

func NewService(
	accounts AccountStore,
	hasher PasswordHasher,
	tokens TokenIssuer,
	sessions SessionSigner,
	notices NoticeDispatcher,
	cfg Config,
) *Service {
	return &Service{
		accounts:      accounts,
		hasher:        hasher,
		tokens:        tokens,
		sessions:      sessions,
		notices:       notices,
		verifyBaseURL: cfg.VerifyBaseURL,
		now:           time.Now,
	}
}

// WithClock overrides the time source used for session claims.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

type RegisterResult struct {
	AccountID string
}

type LoginResult struct {
	Claim domain.SessionClaim
	Token string
}

// storeErr keeps domain errors from the store and hides everything else
// behind store_unavailable.
func storeErr(err error) error {
	if de, ok := asDomain(err); ok {
		return de
	}
	return domain.ErrStoreUnavailable(err)
}

func asDomain(err error) (*domain.Error, bool) {
	var de *domain.Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func isNotFound(err error) bool {
	return domain.Is(err, domain.ErrAccountNotFound().Code)
}
