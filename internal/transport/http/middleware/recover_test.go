package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baechuer/wastewise/services/identity-service/internal/logger"
)

func TestRecover_WritesErrorOnPanic(t *testing.T) {
	logger.InitWithWriter(&discard{})

	var got error
	writeErr := func(w http.ResponseWriter, _ *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusInternalServerError)
	}
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	rr := httptest.NewRecorder()
	Recover(writeErr)(boom).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if got == nil {
		t.Fatalf("expected writeErr to be called")
	}
}

func TestRecover_RepanicsAbortHandler(t *testing.T) {
	abort := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })
	h := Recover(func(http.ResponseWriter, *http.Request, error) {
		t.Fatalf("writeErr must not be called for ErrAbortHandler")
	})(abort)

	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok || !errors.Is(err, http.ErrAbortHandler) {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
