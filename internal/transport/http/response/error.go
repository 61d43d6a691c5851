package response

import (
	"errors"
	"net/http"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
	"github.com/baechuer/wastewise/services/identity-service/internal/logger"
	reqctx "github.com/baechuer/wastewise/services/identity-service/internal/pkg/context"
)

type ErrorBody struct {
	Message   string                  `json:"message"`
	Code      string                  `json:"code"`
	Meta      map[string]string       `json:"meta,omitempty"`
	Errors    []domain.FieldViolation `json:"errors,omitempty"`
	RequestID string                  `json:"request_id,omitempty"`
}

// WriteError converts a domain error into a consistent JSON HTTP error response.
// Non-domain errors are treated as internal errors (500) without leaking details.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := ErrorBody{
		Message: "internal error",
		Code:    "internal_error",
	}

	var de *domain.Error
	if errors.As(err, &de) {
		status = statusFromKind(de.Kind)
		body.Code = de.Code
		body.Message = de.Message
		body.Meta = de.Meta
		body.Errors = de.Violations
	}
	body.RequestID = reqctx.GetRequestID(r.Context())

	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error().Err(err).
			Str("code", body.Code).
			Str("path", r.URL.Path).
			Msg("request_failed")
	}

	WriteJSON(w, status, body)
}

// statusFromKind maps domain error kinds to HTTP status codes.
func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation, domain.KindInvalidCredentials:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
