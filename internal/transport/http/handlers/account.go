package http_handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/wastewise/services/identity-service/internal/application/identity"
	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
	"github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/security"
	"github.com/baechuer/wastewise/services/identity-service/internal/logger"
	"github.com/baechuer/wastewise/services/identity-service/internal/transport/http/dto"
	"github.com/baechuer/wastewise/services/identity-service/internal/transport/http/middleware"
	"github.com/baechuer/wastewise/services/identity-service/internal/transport/http/response"
)

type AccountHandler struct {
	svc     *identity.Service
	cookies security.CookieConfig
}

func NewAccountHandler(svc *identity.Service, cookies security.CookieConfig) *AccountHandler {
	return &AccountHandler{svc: svc, cookies: cookies}
}

// Signup handles POST /signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		middleware.SignupsTotal.WithLabelValues("invalid").Inc()
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		middleware.SignupsTotal.WithLabelValues("invalid").Inc()
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req.Email, req.FullNames, req.Password)
	if err != nil {
		middleware.SignupsTotal.WithLabelValues(signupStatus(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.SignupsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("account_id", res.AccountID).
		Msg("account_registered")

	response.WriteJSON(w, http.StatusCreated, dto.SignupResponse{
		Message: "account created, check your email to verify it",
		ID:      res.AccountID,
	})
}

// Login handles POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		response.WriteError(w, r, domain.ErrInvalidCredentials())
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues(loginStatus(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("account_id", res.Claim.SubjectID).
		Msg("account_logged_in")

	security.SetSessionCookie(w, res.Token, res.Claim.ExpiresAt.Sub(res.Claim.IssuedAt), h.cookies)
	response.Message(w, http.StatusOK, "logged in")
}

// VerifyEmail handles GET /verify/{token}
func (h *AccountHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("account_id", id).
		Msg("email_verified")

	response.Message(w, http.StatusOK, "email verified")
}

// Logout handles GET /logout. There is no server-side session to revoke.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	security.ClearSessionCookie(w, h.cookies)
	response.Message(w, http.StatusOK, "logged out")
}

// Me handles GET /me behind RequireSession.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	claim, ok := middleware.ClaimFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	a, err := h.svc.GetAccount(r.Context(), claim.SubjectID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.MeResponse{
		Message: "ok",
		Data: dto.MeView{
			ID:                a.ID,
			Email:             a.Email,
			DisplayName:       a.DisplayName,
			VerificationState: string(a.VerificationState),
			IssuedAt:          claim.IssuedAt,
			ExpiresAt:         claim.ExpiresAt,
		},
	})
}

func signupStatus(err error) string {
	switch domain.KindOf(err) {
	case domain.KindConflict:
		return "conflict"
	case domain.KindValidation:
		return "invalid"
	default:
		return "error"
	}
}

func loginStatus(err error) string {
	if domain.KindOf(err) == domain.KindInvalidCredentials {
		return "invalid_credentials"
	}
	return "error"
}
