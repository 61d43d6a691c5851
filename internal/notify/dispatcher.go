package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/baechuer/wastewise/services/identity-service/internal/application/identity"
)

const (
	maxBackoff     = 30 * time.Second
	attemptTimeout = 15 * time.Second
)

type Config struct {
	Workers        int
	QueueSize      int
	MaxRetries     int
	RetryBase      time.Duration
	IdempotencyTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 500 * time.Millisecond
	}
	if c.IdempotencyTTL <= 0 {
		c.IdempotencyTTL = 24 * time.Hour
	}
	return c
}

// Dispatcher is a bounded queue drained by a fixed pool of workers.
// It implements identity.NoticeDispatcher.
type Dispatcher struct {
	notifier Notifier
	idem     IdempotencyStore // nil => disabled
	cfg      Config
	lg       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan identity.VerificationNotice
	wg     sync.WaitGroup

	// cancelled when Close gives up waiting, aborting in-flight retries
	ctx    context.Context
	cancel context.CancelFunc
}

func NewDispatcher(n Notifier, idem IdempotencyStore, cfg Config, lg zerolog.Logger) *Dispatcher {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		notifier: n,
		idem:     idem,
		cfg:      cfg,
		lg:       lg.With().Str("component", "notify_dispatcher").Logger(),
		queue:    make(chan identity.VerificationNotice, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Dispatch never blocks: when the queue is full the notice is dropped.
func (d *Dispatcher) Dispatch(n identity.VerificationNotice) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		noticesTotal.WithLabelValues(outcomeDropped).Inc()
		d.lg.Warn().Str("account_id", n.AccountID).Msg("dispatcher closed, notice dropped")
		return
	}

	select {
	case d.queue <- n:
		noticeQueueDepth.Inc()
	default:
		noticesTotal.WithLabelValues(outcomeDropped).Inc()
		d.lg.Error().Str("account_id", n.AccountID).Int("queue_size", d.cfg.QueueSize).Msg("notice queue full, notice dropped")
	}
}

// Close stops intake and waits for queued notices to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for n := range d.queue {
		noticeQueueDepth.Dec()
		d.deliver(d.ctx, n)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n identity.VerificationNotice) {
	lg := d.lg.With().Str("account_id", n.AccountID).Logger()
	key := idempotencyKey(n)

	if d.idem != nil {
		seen, err := d.idem.Seen(ctx, key)
		if err != nil {
			// prefer a possible duplicate over a lost email
			lg.Warn().Err(err).Msg("idempotency check failed, sending anyway")
		} else if seen {
			noticesTotal.WithLabelValues(outcomeDuplicate).Inc()
			lg.Info().Msg("idempotent skip (already sent)")
			return
		}
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(d.cfg.MaxRetries),
		retry.WithCappedDuration(maxBackoff, retry.NewExponential(d.cfg.RetryBase)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			noticeRetriesTotal.Inc()
		}

		actx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()

		err := d.notifier.NotifyVerification(actx, n)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		lg.Warn().Err(err).Int("attempt", attempt).Msg("notice delivery failed, will retry")
		return retry.RetryableError(err)
	})
	if err != nil {
		noticesTotal.WithLabelValues(outcomeFailed).Inc()
		lg.Error().Err(err).Int("attempts", attempt).Bool("permanent", isPermanent(err)).Msg("notice delivery failed")
		return
	}

	noticesTotal.WithLabelValues(outcomeSent).Inc()
	lg.Info().Int("attempts", attempt).Msg("verification notice sent")

	if d.idem != nil {
		if err := d.idem.MarkSent(ctx, key, d.cfg.IdempotencyTTL); err != nil {
			lg.Warn().Err(err).Msg("idempotency mark failed (send already succeeded)")
		}
	}
}

// idempotencyKey hashes the link so the raw token never lands in the cache.
func idempotencyKey(n identity.VerificationNotice) string {
	sum := sha256.Sum256([]byte(n.AccountID + "|" + n.URL))
	return "notify:verify:" + hex.EncodeToString(sum[:16])
}
