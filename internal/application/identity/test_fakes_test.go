package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeAccountStore struct {
	mu sync.Mutex

	byID    map[string]domain.Account
	byEmail map[string]string
	byToken map[string]string

	// injected errors (if set, method returns error)
	getByEmailErr error
	getByIDErr    error
	createErr     error
	consumeErr    error

	createCalls int
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		byID:    map[string]domain.Account{},
		byEmail: map[string]string{},
		byToken: map[string]string{},
	}
}

func (f *fakeAccountStore) put(a domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[a.ID] = a
	f.byEmail[a.Email] = a.ID
	if a.PendingVerificationToken != "" {
		f.byToken[a.PendingVerificationToken] = a.ID
	}
}

func (f *fakeAccountStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeAccountStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.Account{}, f.getByEmailErr
	}
	id, ok := f.byEmail[email]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return f.byID[id], nil
}

func (f *fakeAccountStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.Account{}, f.getByIDErr
	}
	a, ok := f.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (f *fakeAccountStore) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.createErr != nil {
		return domain.Account{}, f.createErr
	}
	if _, taken := f.byEmail[a.Email]; taken {
		return domain.Account{}, domain.ErrEmailAlreadyExists()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	f.byID[a.ID] = a
	f.byEmail[a.Email] = a.ID
	f.byToken[a.PendingVerificationToken] = a.ID
	return a, nil
}

func (f *fakeAccountStore) ConsumeVerificationToken(ctx context.Context, token string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.consumeErr != nil {
		return domain.Account{}, f.consumeErr
	}
	id, ok := f.byToken[token]
	if !ok {
		return domain.Account{}, domain.ErrInvalidToken()
	}
	delete(f.byToken, token)
	a := f.byID[id]
	a.VerificationState = domain.Verified
	a.PendingVerificationToken = ""
	f.byID[id] = a
	return a, nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error

	mu           sync.Mutex
	compareCalls int
}

func newFakeHasher() *fakeHasher {
	return &fakeHasher{
		hashFn: func(pw string) (string, error) { return "hash:" + pw, nil },
		compareFn: func(hash, pw string) error {
			if hash != "hash:"+pw {
				return errors.New("mismatch")
			}
			return nil
		},
	}
}

func (h *fakeHasher) Hash(ctx context.Context, password string) (string, error) {
	return h.hashFn(password)
}

func (h *fakeHasher) Compare(ctx context.Context, hash, password string) error {
	h.mu.Lock()
	h.compareCalls++
	h.mu.Unlock()
	return h.compareFn(hash, password)
}

type fakeTokens struct {
	mu  sync.Mutex
	n   int
	err error
}

func (f *fakeTokens) Issue() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.n++
	return fmt.Sprintf("tok-%d", f.n), nil
}

// fakeSigner keeps issued claims in memory keyed by an opaque token.
type fakeSigner struct {
	mu      sync.Mutex
	claims  map[string]domain.SessionClaim
	signErr error
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{claims: map[string]domain.SessionClaim{}}
}

func (f *fakeSigner) Sign(c domain.SessionClaim) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signErr != nil {
		return "", f.signErr
	}
	tok := "sess-" + c.SubjectID + "-" + fmt.Sprint(len(f.claims))
	f.claims[tok] = c
	return tok, nil
}

func (f *fakeSigner) Verify(token string) (domain.SessionClaim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.HasPrefix(token, "boom") {
		return domain.SessionClaim{}, errors.New("decoder exploded")
	}
	c, ok := f.claims[token]
	if !ok {
		return domain.SessionClaim{}, domain.ErrTokenInvalid()
	}
	return c, nil
}

type fakeDispatcher struct {
	mu      sync.Mutex
	notices []VerificationNotice
}

func (f *fakeDispatcher) Dispatch(n VerificationNotice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
}

func (f *fakeDispatcher) sent() []VerificationNotice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]VerificationNotice(nil), f.notices...)
}

/*
Helpers
*/

type testDeps struct {
	store    *fakeAccountStore
	hasher   *fakeHasher
	tokens   *fakeTokens
	signer   *fakeSigner
	notices  *fakeDispatcher
	clockNow time.Time
}

func newSvcForTest(t *testing.T) (*Service, *testDeps) {
	t.Helper()

	d := &testDeps{
		store:    newFakeAccountStore(),
		hasher:   newFakeHasher(),
		tokens:   &fakeTokens{},
		signer:   newFakeSigner(),
		notices:  &fakeDispatcher{},
		clockNow: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	svc := NewService(d.store, d.hasher, d.tokens, d.signer, d.notices, Config{
		VerifyBaseURL: "https://app.example/verify/",
	}).WithClock(func() time.Time { return d.clockNow })
	return svc, d
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected error code %q, got %v", code, err)
	}
}

func verifiedAccount(id, email, pw string) domain.Account {
	return domain.Account{
		ID:                id,
		Email:             email,
		DisplayName:       "Test User",
		PasswordHash:      "hash:" + pw,
		VerificationState: domain.Verified,
	}
}
