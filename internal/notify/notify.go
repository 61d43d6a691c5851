// Package notify delivers verification notices off the request path.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/baechuer/wastewise/services/identity-service/internal/application/identity"
)

// Notifier is one delivery transport (broker, SMTP, log).
type Notifier interface {
	NotifyVerification(ctx context.Context, n identity.VerificationNotice) error
}

type IdempotencyStore interface {
	// Seen returns true if key already marked as sent.
	Seen(ctx context.Context, key string) (bool, error)

	// MarkSent marks key as sent with TTL (idempotent).
	MarkSent(ctx context.Context, key string, ttl time.Duration) error
}

// transports only need to expose Permanent() bool on their error types
type permanentMarker interface{ Permanent() bool }

func isPermanent(err error) bool {
	var pm permanentMarker
	return errors.As(err, &pm) && pm.Permanent()
}
