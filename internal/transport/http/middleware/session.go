package middleware

import (
	"context"
	"net/http"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
	"github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/security"
)

type SessionAuthenticator interface {
	Authenticate(token string) (domain.SessionClaim, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

type ctxKey string

const ctxClaim ctxKey = "session_claim"

// RequireSession reads the session cookie and verifies it. On any failure it
// writes the error and returns; next only runs with a verified claim in context.
func RequireSession(authn SessionAuthenticator, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claim, err := authenticate(authn, r)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxClaim, claim)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(authn SessionAuthenticator, r *http.Request) (domain.SessionClaim, error) {
	raw, err := security.ReadSessionCookie(r)
	if err != nil {
		return domain.SessionClaim{}, err
	}
	claim, err := authn.Authenticate(raw)
	if err != nil {
		return domain.SessionClaim{}, err
	}
	if claim.SubjectID == "" {
		return domain.SessionClaim{}, domain.ErrTokenInvalid()
	}
	return claim, nil
}

func ClaimFromContext(ctx context.Context) (domain.SessionClaim, bool) {
	c, ok := ctx.Value(ctxClaim).(domain.SessionClaim)
	return c, ok && c.SubjectID != ""
}
