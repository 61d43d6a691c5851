package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/wastewise/services/identity-service/internal/application/identity"
	"github.com/baechuer/wastewise/services/identity-service/internal/config"
	"github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/mail"
	"github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/redis"
	"github.com/baechuer/wastewise/services/identity-service/internal/infrastructure/security"
	"github.com/baechuer/wastewise/services/identity-service/internal/logger"
	"github.com/baechuer/wastewise/services/identity-service/internal/notify"
	http_handlers "github.com/baechuer/wastewise/services/identity-service/internal/transport/http/handlers"
	"github.com/baechuer/wastewise/services/identity-service/internal/transport/http/middleware"
	"github.com/baechuer/wastewise/services/identity-service/internal/transport/http/response"
	"github.com/baechuer/wastewise/services/identity-service/internal/transport/http/router"
)

const dispatcherDrainTimeout = 10 * time.Second

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(ctx context.Context, dsn string, maxOpen int) (*sql.DB, error)

	NewRedis func(addr, password string, db int) *redis.Client

	// NewNotifier returns the delivery transport and its cleanup.
	NewNotifier func(cfg *config.Config, lg zerolog.Logger) (notify.Notifier, func(), error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type accountStore interface {
	identity.AccountStore
	http_handlers.Pinger
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()

	// 1) account store
	store, closeStore, err := openStore(deps, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanupFns = append(cleanupFns, closeStore)

	// 2) redis (best-effort, only used for notification idempotency)
	var idem notify.IdempotencyStore
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Ping(context.Background()); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; notification idempotency disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			idem = redis.NewIdempotencyStore(c, logger.Component("idempotency"))
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 3) notifier + dispatcher
	notifier, closeNotifier, err := deps.NewNotifier(cfg, logger.Logger)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	cleanupFns = append(cleanupFns, closeNotifier)

	dispatcher := notify.NewDispatcher(notifier, idem, notify.Config{
		Workers:        cfg.NotifyWorkers,
		QueueSize:      cfg.NotifyQueueSize,
		MaxRetries:     cfg.NotifyMaxRetries,
		RetryBase:      cfg.NotifyRetryBase,
		IdempotencyTTL: cfg.NotifyIdempotencyTTL,
	}, logger.Logger)
	// runs first on cleanup so queued notices drain before transports close
	cleanupFns = append(cleanupFns, func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatcherDrainTimeout)
		defer cancel()
		if err := dispatcher.Close(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("notification dispatcher did not drain")
		}
	})

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.SessionIssuer).Msg("initializing session signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost, cfg.HashConcurrency)
	signer := security.NewJWTSessionSigner(cfg.SessionSecret, cfg.SessionIssuer)

	// 5) service
	svc := identity.NewService(
		store,
		hasher,
		security.NewOpaqueTokenIssuer(),
		signer,
		dispatcher,
		identity.Config{VerifyBaseURL: cfg.VerifyBaseURL},
	)

	// 6) handlers + middleware
	cookies := security.CookieConfig{Secure: cfg.CookieSecure, SameSite: cfg.CookieSameSite}

	accountH := http_handlers.NewAccountHandler(svc, cookies)
	healthH := http_handlers.NewHealthHandler(store)

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:    healthH,
		Account:   accountH,
		SessionMW: middleware.RequireSession(svc, response.WriteError),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

// openStore uses Postgres when DB_ADDR is set and the in-memory store otherwise (dev only).
func openStore(deps Deps, cfg *config.Config) (accountStore, func(), error) {
	if cfg.DBAddr == "" {
		if !cfg.IsDev() {
			return nil, nil, fmt.Errorf("bootstrap: DB_ADDR is required outside dev")
		}
		logger.Logger.Warn().Msg("DB_ADDR not set; using in-memory account store")
		return memory.NewAccountRepo(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := deps.NewDB(ctx, cfg.DBAddr, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Logger.Info().Msg("database ready")

	return postgres.NewAccountRepo(db), func() { _ = db.Close() }, nil
}

// newNotifier picks the delivery transport named by NOTIFY_TRANSPORT.
func newNotifier(cfg *config.Config, lg zerolog.Logger) (notify.Notifier, func(), error) {
	switch cfg.NotifyTransport {
	case config.NotifyTransportRabbit:
		pub, err := rabbitmq_pub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange, lg)
		if err != nil {
			if cfg.IsDev() {
				lg.Warn().Err(err).Msg("rabbitmq unavailable; logging verification links instead")
				return mail.NewLogSender(lg), func() {}, nil
			}
			return nil, nil, err
		}
		return pub, func() { _ = pub.Close() }, nil

	case config.NotifyTransportSMTP:
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.SMTPTimeout,
			Insecure: cfg.SMTPInsecure,
		}, lg), func() {}, nil

	default:
		return mail.NewLogSender(lg), func() {}, nil
	}
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig:  config.Load,
		NewDB:       config.NewDB,
		NewRedis:    redis.New,
		NewNotifier: newNotifier,
		NewRouter:   router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
