package security

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

// BcryptHasher hashes on the caller's goroutine but admits at most
// `concurrency` hashes at once so a signup burst cannot starve the process.
type BcryptHasher struct {
	cost int
	gate *semaphore.Weighted
}

func NewBcryptHasher(cost, concurrency int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &BcryptHasher{cost: cost, gate: semaphore.NewWeighted(int64(concurrency))}
}

func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.gate.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.gate.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.ErrWeakPassword("password must be at most 72 bytes")
		}
		return "", domain.ErrHashFailed(err)
	}
	return string(b), nil
}

// Compare is constant-time with respect to the password contents.
func (h *BcryptHasher) Compare(ctx context.Context, hash, password string) error {
	if err := h.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.gate.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
