package http_handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
	"github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/security"
	"github.com/baechuer/wastewise/services/identity-service/internal/transport/http/dto"
	"github.com/baechuer/wastewise/services/identity-service/internal/transport/http/response"
)

func postJSON(t *testing.T, path string, v any) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, mustJSONBody(t, v))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// -------------------------
// Signup
// -------------------------

func TestSignup_Created(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.handler.Signup(rr, postJSON(t, "/signup", map[string]string{
		"email": "A@B.com", "fullNames": "Alice", "password": "password1",
	}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var body dto.SignupResponse
	mustReadJSON(t, rr.Body, &body)
	if body.ID == "" || body.Message == "" {
		t.Fatalf("unexpected body %+v", body)
	}

	a, err := env.store.GetByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("account not stored: %v", err)
	}
	if a.ID != body.ID || a.VerificationState != domain.Unverified {
		t.Fatalf("unexpected stored account %+v", a)
	}
}

func TestSignup_ValidationListsFields(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.handler.Signup(rr, postJSON(t, "/signup", map[string]string{
		"email": "nope", "password": "short",
	}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var body response.ErrorBody
	mustReadJSON(t, rr.Body, &body)
	if body.Code != "validation_failed" || len(body.Errors) != 3 {
		t.Fatalf("unexpected body %+v", body)
	}
	if len(env.notices.notices) != 0 {
		t.Fatalf("no notice expected on validation failure")
	}
}

func TestSignup_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.handler.Signup(rr, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSignup_Duplicate409(t *testing.T) {
	env := newTestEnv(t)
	payload := map[string]string{"email": "a@b.com", "fullNames": "Alice", "password": "password1"}

	env.handler.Signup(httptest.NewRecorder(), postJSON(t, "/signup", payload))

	rr := httptest.NewRecorder()
	env.handler.Signup(rr, postJSON(t, "/signup", payload))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

// -------------------------
// Verify
// -------------------------

func TestVerifyEmail_OnceThenInvalid(t *testing.T) {
	env := newTestEnv(t)
	env.handler.Signup(httptest.NewRecorder(), postJSON(t, "/signup", map[string]string{
		"email": "a@b.com", "fullNames": "Alice", "password": "password1",
	}))
	tok := env.notices.lastToken(t)

	rr := httptest.NewRecorder()
	env.handler.VerifyEmail(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/verify/"+tok, nil), "token", tok))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	env.handler.VerifyEmail(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/verify/"+tok, nil), "token", tok))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on reuse, got %d", rr.Code)
	}
	var body response.ErrorBody
	mustReadJSON(t, rr.Body, &body)
	if body.Message != "invalid credentials" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

// -------------------------
// Login
// -------------------------

func TestLogin_SetsHttpOnlyCookie(t *testing.T) {
	env := newTestEnv(t)
	a := seedVerified(t, env, "a@b.com", "password1")

	rr := httptest.NewRecorder()
	env.handler.Login(rr, postJSON(t, "/login", map[string]string{"email": "a@b.com", "password": "password1"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	c := readCookie(rr.Result(), security.CookieName)
	if c == nil || c.Value == "" {
		t.Fatalf("expected session cookie")
	}
	if !c.HttpOnly || !c.Secure || c.Path != "/" || c.MaxAge != 3600 {
		t.Fatalf("unexpected cookie attributes %+v", c)
	}

	claim, err := env.signer.Verify(c.Value)
	if err != nil {
		t.Fatalf("cookie does not verify: %v", err)
	}
	if claim.SubjectID != a.ID || claim.Email != "a@b.com" {
		t.Fatalf("unexpected claim %+v", claim)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	seedVerified(t, env, "a@b.com", "password1")
	if _, err := env.svc.Register(context.Background(), "new@b.com", "Bob", "password1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	var bodies []string
	for _, creds := range []map[string]string{
		{"email": "a@b.com", "password": "wrong"},
		{"email": "new@b.com", "password": "password1"},
		{"email": "ghost@b.com", "password": "password1"},
		{"email": "", "password": ""},
	} {
		rr := httptest.NewRecorder()
		env.handler.Login(rr, postJSON(t, "/login", creds))

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%v: expected 400, got %d", creds, rr.Code)
		}
		if readCookie(rr.Result(), security.CookieName) != nil {
			t.Fatalf("%v: cookie must not be set", creds)
		}
		var body response.ErrorBody
		mustReadJSON(t, rr.Body, &body)
		bodies = append(bodies, body.Code+"|"+body.Message)
	}
	for _, b := range bodies {
		if b != "invalid_credentials|invalid credentials" {
			t.Fatalf("expected identical failures, got %v", bodies)
		}
	}
}

// -------------------------
// Logout / Me
// -------------------------

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.handler.Logout(rr, httptest.NewRequest(http.MethodGet, "/logout", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	c := readCookie(rr.Result(), security.CookieName)
	if c == nil || c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("expected expired cookie, got %+v", c)
	}
}

func TestMe_ReturnsAccountView(t *testing.T) {
	env := newTestEnv(t)
	a := seedVerified(t, env, "a@b.com", "password1")

	login := httptest.NewRecorder()
	env.handler.Login(login, postJSON(t, "/login", map[string]string{"email": "a@b.com", "password": "password1"}))
	c := readCookie(login.Result(), security.CookieName)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(c)
	rr := httptest.NewRecorder()
	withClaim(t, env, env.handler.Me).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var body dto.MeResponse
	mustReadJSON(t, rr.Body, &body)
	if body.Data.ID != a.ID || body.Data.VerificationState != "verified" || body.Data.DisplayName != "Alice" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Data.ExpiresAt.Sub(body.Data.IssuedAt).Hours() != 1 {
		t.Fatalf("expected one hour session, got %v", body.Data.ExpiresAt.Sub(body.Data.IssuedAt))
	}
}

func TestMe_WithoutClaim(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.handler.Me(rr, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
