package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

// JWTSessionSigner signs session claims as HS256 JWTs.
type JWTSessionSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTSessionSigner(secret, issuer string) *JWTSessionSigner {
	return &JWTSessionSigner{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

func (s *JWTSessionSigner) WithClock(now func() time.Time) *JWTSessionSigner {
	if now != nil {
		s.now = now
	}
	return s
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func (s *JWTSessionSigner) Sign(c domain.SessionClaim) (string, error) {
	claims := sessionClaims{
		Email: c.Email,
		Name:  c.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   c.SubjectID,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTSessionSigner) Verify(token string) (domain.SessionClaim, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		// prevent alg confusion ("none", RS256 with the secret as key, ...)
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.SessionClaim{}, domain.ErrTokenExpired()
		}
		return domain.SessionClaim{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return domain.SessionClaim{}, domain.ErrTokenInvalid()
	}

	return domain.SessionClaim{
		SubjectID:   claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		IssuedAt:    claims.IssuedAt.Time.UTC(),
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}, nil
}
