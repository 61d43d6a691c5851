package security

import (
	"net/http"
	"time"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

// CookieName is used for set, read and clear alike.
const CookieName = "token"

type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
}

func (c CookieConfig) sameSite() http.SameSite {
	if c.SameSite == 0 {
		return http.SameSiteLaxMode
	}
	return c.SameSite
}

func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.sameSite(),
		MaxAge:   int(ttl.Seconds()),
	})
}

func ClearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.sameSite(),
		MaxAge:   -1,
	})
}

// ReadSessionCookie returns token_missing when the cookie is absent or empty.
func ReadSessionCookie(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", domain.ErrTokenMissing()
	}
	return c.Value, nil
}
