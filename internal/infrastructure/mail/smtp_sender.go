package mail

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/baechuer/wastewise/services/identity-service/internal/application/identity"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool
}

// SMTPSender emails verification links directly.
type SMTPSender struct {
	cfg SMTPConfig
	lg  zerolog.Logger
}

func NewSMTPSender(cfg SMTPConfig, lg zerolog.Logger) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{
		cfg: cfg,
		lg:  lg.With().Str("component", "smtp_sender").Logger(),
	}
}

func (s *SMTPSender) NotifyVerification(ctx context.Context, n identity.VerificationNotice) error {
	m, err := s.buildVerificationMsg(n)
	if err != nil {
		return err
	}
	return s.send(ctx, m, n.Email)
}

func (s *SMTPSender) buildVerificationMsg(n identity.VerificationNotice) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, PermanentError{msg: "invalid from address: " + err.Error()}
	}
	if err := m.To(n.Email); err != nil {
		return nil, PermanentError{msg: "invalid to address: " + err.Error()}
	}
	m.Subject("Verify your email")

	greeting := "Hi"
	if n.DisplayName != "" {
		greeting = "Hi " + n.DisplayName
	}
	text := fmt.Sprintf("%s,\n\nVerify your email by opening this link:\n\n%s\n", greeting, n.URL)

	// text fallback + HTML alternative
	m.SetBodyString(gomail.TypeTextPlain, text)
	m.AddAlternativeString(gomail.TypeTextHTML, renderBasicHTML(
		"Verify your email",
		greeting+", tap the button below to verify your email address.",
		"Verify email",
		n.URL,
	))
	return m, nil
}

func (s *SMTPSender) send(ctx context.Context, m *gomail.Msg, to string) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	tlsPolicy := gomail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = gomail.TLSOpportunistic
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(tlsPolicy),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	c, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return PermanentError{msg: "smtp client init failed: " + err.Error()}
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		s.lg.Error().Err(err).Str("host", s.cfg.Host).Msg("smtp send failed")
		return classifySMTPError(err)
	}

	s.lg.Info().Str("host", s.cfg.Host).Str("to_domain", domainOf(to)).Msg("smtp send ok")
	return nil
}

func classifySMTPError(err error) error {
	msg := err.Error()
	if containsAny(msg, "535", "5.7.8", "550", "553", "authentication", "Username and Password not accepted") {
		return PermanentError{msg: "smtp rejected: " + msg}
	}
	return TemporaryError{msg: "smtp transient failure: " + msg}
}

func renderBasicHTML(title, intro, buttonText, link string) string {
	escLink := html.EscapeString(link)

	return `<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif; line-height:1.4;">
    <h2>` + html.EscapeString(title) + `</h2>
    <p>` + html.EscapeString(intro) + `</p>
    <p>
      <a href="` + escLink + `" style="display:inline-block; padding:10px 14px; text-decoration:none; border-radius:6px; background:#2e7d32; color:#fff;">
        ` + html.EscapeString(buttonText) + `
      </a>
    </p>
    <p style="color:#555; font-size:12px;">
      If the button doesn't work, open this link:<br/>
      <a href="` + escLink + `">` + escLink + `</a>
    </p>
  </body>
</html>`
}

func containsAny(s string, subs ...string) bool {
	for _, x := range subs {
		if x != "" && strings.Contains(s, x) {
			return true
		}
	}
	return false
}

// domainOf keeps full addresses out of the logs.
func domainOf(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return email[i+1:]
	}
	return ""
}
