package identity

import (
	"context"
	"strings"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

// VerifyEmail consumes a verification token and returns the verified account id.
// Unknown, blank and already used tokens all fail the same way.
func (s *Service) VerifyEmail(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrInvalidToken()
	}

	a, err := s.accounts.ConsumeVerificationToken(ctx, token)
	if err != nil {
		return "", storeErr(err)
	}
	return a.ID, nil
}
