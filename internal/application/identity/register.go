package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
	"github.com/baechuer/wastewise/services/identity-service/internal/pkg/validate"
)

// Register creates an unverified account and queues its verification email.
// Transport validates first; the checks here only guard direct callers.
func (s *Service) Register(ctx context.Context, email, displayName, password string) (RegisterResult, error) {
	email = domain.NormalizeEmail(email)
	displayName = strings.TrimSpace(displayName)

	var violations []domain.FieldViolation
	if !validate.Email(email) {
		violations = append(violations, domain.FieldViolation{Field: "email", Message: "email must be a valid email address"})
	}
	if displayName == "" {
		violations = append(violations, domain.FieldViolation{Field: "fullNames", Message: "fullNames is a required field"})
	}
	if len(password) < domain.MinPasswordLength {
		violations = append(violations, domain.FieldViolation{Field: "password", Message: "password must be at least 8 characters in length"})
	}
	if len(violations) > 0 {
		return RegisterResult{}, domain.ErrValidation(violations)
	}

	// cheap pre-check; Create below is still the authority under races
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return RegisterResult{}, domain.ErrEmailAlreadyExists()
	} else if !isNotFound(err) {
		return RegisterResult{}, storeErr(err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		if de, ok := asDomain(err); ok {
			return RegisterResult{}, de
		}
		return RegisterResult{}, domain.ErrHashFailed(err)
	}

	token, err := s.tokens.Issue()
	if err != nil {
		return RegisterResult{}, domain.ErrRandomFailed(err)
	}

	created, err := s.accounts.Create(ctx, domain.Account{
		ID:                       uuid.NewString(),
		Email:                    email,
		DisplayName:              displayName,
		PasswordHash:             hash,
		VerificationState:        domain.Unverified,
		PendingVerificationToken: token,
	})
	if err != nil {
		return RegisterResult{}, storeErr(err)
	}

	s.notices.Dispatch(VerificationNotice{
		AccountID:   created.ID,
		Email:       created.Email,
		DisplayName: created.DisplayName,
		URL:         s.verifyBaseURL + token,
	})

	return RegisterResult{AccountID: created.ID}, nil
}
