package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/wastewise/services/identity-service/internal/application/identity"
)

// LogSender is the development notifier: it logs the link instead of sending it.
type LogSender struct {
	lg zerolog.Logger
}

func NewLogSender(lg zerolog.Logger) *LogSender {
	return &LogSender{lg: lg.With().Str("component", "log_sender").Logger()}
}

func (s *LogSender) NotifyVerification(ctx context.Context, n identity.VerificationNotice) error {
	s.lg.Info().
		Str("account_id", n.AccountID).
		Str("to", n.Email).
		Str("url", n.URL).
		Msg("FAKE send verify email")
	return nil
}
