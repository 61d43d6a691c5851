package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	NotifyTransportLog    = "log"
	NotifyTransportRabbit = "rabbitmq"
	NotifyTransportSMTP   = "smtp"
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Session
	SessionSecret  string
	SessionIssuer  string
	CookieSecure   bool
	CookieSameSite http.SameSite

	// Password hashing
	BcryptCost      int
	HashConcurrency int

	// Verification link; the token is appended verbatim.
	VerifyBaseURL string

	// Infrastructure
	DBAddr         string
	DBMaxOpenConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitURL      string
	RabbitExchange string

	// Notification dispatch
	NotifyTransport      string
	NotifyWorkers        int
	NotifyQueueSize      int
	NotifyMaxRetries     int
	NotifyRetryBase      time.Duration
	NotifyIdempotencyTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPInsecure bool
	SMTPTimeout  time.Duration
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var err error
	cfg := &Config{
		Env:            getEnv("ENV", "dev"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		SessionIssuer:  getEnv("SESSION_ISSUER", "identity-service"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "identity.events"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:       os.Getenv("SMTP_FROM"),
	}

	// required values
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("missing required env var: SESSION_SECRET")
	}
	if !cfg.IsDev() && len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes outside dev")
	}

	cfg.VerifyBaseURL = os.Getenv("VERIFY_BASE_URL")
	if cfg.VerifyBaseURL == "" {
		return nil, fmt.Errorf("missing required env var: VERIFY_BASE_URL")
	}
	if !strings.HasPrefix(cfg.VerifyBaseURL, "http://") && !strings.HasPrefix(cfg.VerifyBaseURL, "https://") {
		return nil, fmt.Errorf("VERIFY_BASE_URL must be an http(s) URL")
	}

	// dev may run on the in-memory store
	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" && !cfg.IsDev() {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}
	if cfg.DBAddr != "" && !strings.HasPrefix(cfg.DBAddr, "postgres://") && !strings.HasPrefix(cfg.DBAddr, "postgresql://") {
		return nil, fmt.Errorf("DB_ADDR must be a postgres URL")
	}
	if cfg.DBMaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 20); err != nil {
		return nil, err
	}

	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}
	if cfg.HashConcurrency, err = getInt("HASH_CONCURRENCY", runtime.NumCPU()); err != nil {
		return nil, err
	}
	if cfg.HashConcurrency < 1 {
		return nil, fmt.Errorf("HASH_CONCURRENCY must be positive")
	}

	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", !cfg.IsDev()); err != nil {
		return nil, err
	}
	if cfg.CookieSameSite, err = parseSameSite(getEnv("COOKIE_SAMESITE", "lax")); err != nil {
		return nil, err
	}
	if cfg.CookieSameSite == http.SameSiteNoneMode && !cfg.CookieSecure {
		return nil, fmt.Errorf("COOKIE_SAMESITE=none requires COOKIE_SECURE=true")
	}

	if err := cfg.loadNotify(); err != nil {
		return nil, err
	}

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadNotify() error {
	var err error

	c.NotifyTransport = strings.ToLower(getEnv("NOTIFY_TRANSPORT", NotifyTransportLog))
	switch c.NotifyTransport {
	case NotifyTransportLog:
	case NotifyTransportRabbit:
		if c.RabbitURL == "" {
			return fmt.Errorf("NOTIFY_TRANSPORT=rabbitmq requires RABBIT_URL")
		}
	case NotifyTransportSMTP:
		if c.SMTPHost == "" || c.SMTPFrom == "" {
			return fmt.Errorf("NOTIFY_TRANSPORT=smtp requires SMTP_HOST and SMTP_FROM")
		}
	default:
		return fmt.Errorf("invalid NOTIFY_TRANSPORT %q", c.NotifyTransport)
	}

	if c.NotifyWorkers, err = getInt("NOTIFY_WORKERS", 4); err != nil {
		return err
	}
	if c.NotifyQueueSize, err = getInt("NOTIFY_QUEUE_SIZE", 256); err != nil {
		return err
	}
	if c.NotifyWorkers < 1 || c.NotifyQueueSize < 1 {
		return fmt.Errorf("NOTIFY_WORKERS and NOTIFY_QUEUE_SIZE must be positive")
	}
	if c.NotifyMaxRetries, err = getInt("NOTIFY_MAX_RETRIES", 3); err != nil {
		return err
	}
	if c.NotifyRetryBase, err = getDuration("NOTIFY_RETRY_BASE", 500*time.Millisecond); err != nil {
		return err
	}
	if c.NotifyIdempotencyTTL, err = getDuration("NOTIFY_IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return err
	}

	if c.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return err
	}
	if c.SMTPInsecure, err = getBool("SMTP_INSECURE", false); err != nil {
		return err
	}
	if c.SMTPTimeout, err = getDuration("SMTP_TIMEOUT", 10*time.Second); err != nil {
		return err
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}

func parseSameSite(v string) (http.SameSite, error) {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("invalid COOKIE_SAMESITE %q", v)
	}
}
