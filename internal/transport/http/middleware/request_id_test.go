package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	reqctx "github.com/baechuer/wastewise/services/identity-service/internal/pkg/context"
)

func captureRequestID(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = reqctx.GetRequestID(r.Context())
	})
}

func TestRequestID_KeepsIncomingHeader(t *testing.T) {
	var got string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	rr := httptest.NewRecorder()

	RequestID(captureRequestID(&got)).ServeHTTP(rr, req)

	if got != "abc-123" {
		t.Fatalf("expected incoming id in context, got %q", got)
	}
	if rr.Header().Get(HeaderXRequestID) != "abc-123" {
		t.Fatalf("expected id echoed in response header")
	}
}

func TestRequestID_GeneratesWhenMissingOrOversized(t *testing.T) {
	for _, incoming := range []string{"", strings.Repeat("x", maxRequestIDLen+1)} {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header.Set(HeaderXRequestID, incoming)
		}
		rr := httptest.NewRecorder()

		RequestID(captureRequestID(&got)).ServeHTTP(rr, req)

		if got == "" || got == incoming {
			t.Fatalf("expected generated id, got %q", got)
		}
		if rr.Header().Get(HeaderXRequestID) != got {
			t.Fatalf("response header and context disagree")
		}
	}
}
