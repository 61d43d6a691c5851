package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/wastewise/services/identity-service/internal/application/identity"
	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
	"github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/memory"
	"github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/security"
	"github.com/baechuer/wastewise/services/identity-service/internal/transport/http/middleware"
)

const testVerifyBase = "https://app.example/verify/"

type recordingDispatcher struct {
	mu      sync.Mutex
	notices []identity.VerificationNotice
}

func (d *recordingDispatcher) Dispatch(n identity.VerificationNotice) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notices = append(d.notices, n)
}

func (d *recordingDispatcher) lastToken(t *testing.T) string {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.notices) == 0 {
		t.Fatalf("no verification notice dispatched")
	}
	return strings.TrimPrefix(d.notices[len(d.notices)-1].URL, testVerifyBase)
}

type testEnv struct {
	handler *AccountHandler
	svc     *identity.Service
	store   *memory.AccountRepo
	notices *recordingDispatcher
	signer  *security.JWTSessionSigner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewAccountRepo()
	notices := &recordingDispatcher{}
	signer := security.NewJWTSessionSigner("test-secret-test-secret-test-secret", "identity-service")

	svc := identity.NewService(
		store,
		security.NewBcryptHasher(4, 2),
		security.NewOpaqueTokenIssuer(),
		signer,
		notices,
		identity.Config{VerifyBaseURL: testVerifyBase},
	)

	return &testEnv{
		handler: NewAccountHandler(svc, security.CookieConfig{Secure: true, SameSite: http.SameSiteLaxMode}),
		svc:     svc,
		store:   store,
		notices: notices,
		signer:  signer,
	}
}

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadJSON decodes JSON from r into out.
func mustReadJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode json failed; body=%s err=%v", string(raw), err)
	}
}

// readCookie finds cookie by name from response headers.
func readCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// withURLParam injects chi URL param (e.g. /verify/{token}) into request context.
func withURLParam(req *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

// withClaim runs the request through RequireSession so Me sees a real claim.
func withClaim(t *testing.T, env *testEnv, next http.HandlerFunc) http.Handler {
	t.Helper()
	return middleware.RequireSession(env.svc, func(w http.ResponseWriter, _ *http.Request, err error) {
		t.Fatalf("session rejected: %v", err)
	})(next)
}

func seedVerified(t *testing.T, env *testEnv, email, password string) domain.Account {
	t.Helper()
	ctx := context.Background()

	if _, err := env.svc.Register(ctx, email, "Alice", password); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := env.svc.VerifyEmail(ctx, env.notices.lastToken(t)); err != nil {
		t.Fatalf("verify: %v", err)
	}
	a, err := env.store.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return a
}
