package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

// AccountRepo is a process-local identity.AccountStore for dev and tests.
// One mutex guards all three indexes, so uniqueness checks and token
// consumption are atomic.
type AccountRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.Account
	byEmail map[string]string // email -> accountID
	byToken map[string]string // pending token -> accountID

	now func() time.Time
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		byID:    make(map[string]domain.Account),
		byEmail: make(map[string]string),
		byToken: make(map[string]string),
		now:     time.Now,
	}
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return r.byID[id], nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (r *AccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	a.Email = domain.NormalizeEmail(a.Email)
	if a.ID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}
	if a.Email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[a.Email]; exists {
		return domain.Account{}, domain.ErrEmailAlreadyExists()
	}
	if _, exists := r.byID[a.ID]; exists {
		return domain.Account{}, domain.ErrInternal(nil)
	}
	if a.PendingVerificationToken != "" {
		if _, exists := r.byToken[a.PendingVerificationToken]; exists {
			return domain.Account{}, domain.ErrInternal(nil)
		}
		r.byToken[a.PendingVerificationToken] = a.ID
	}

	now := r.now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	r.byID[a.ID] = a
	r.byEmail[a.Email] = a.ID
	return a, nil
}

func (r *AccountRepo) ConsumeVerificationToken(ctx context.Context, token string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byToken[token]
	if !ok {
		return domain.Account{}, domain.ErrInvalidToken()
	}
	a := r.byID[id]
	if a.VerificationState != domain.Unverified {
		return domain.Account{}, domain.ErrInvalidToken()
	}

	delete(r.byToken, token)
	a.VerificationState = domain.Verified
	a.PendingVerificationToken = ""
	a.UpdatedAt = r.now().UTC()
	r.byID[id] = a
	return a, nil
}

// Ping lets readiness checks treat the memory store like a database.
func (r *AccountRepo) Ping(ctx context.Context) error { return nil }
