package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

const emailUniqueConstraint = "accounts_email_key"

type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}

	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 LIMIT 1`
	return r.queryOne(ctx, q, email)
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}

	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 LIMIT 1`
	return r.queryOne(ctx, q, id)
}

func (r *AccountRepo) queryOne(ctx context.Context, q string, arg any) (domain.Account, error) {
	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, domain.ErrStoreUnavailable(err)
	}
	return toDomainAccount(ar), nil
}

// Create relies on the accounts_email_key constraint, so two concurrent
// inserts for one email cannot both succeed.
func (r *AccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	a.Email = domain.NormalizeEmail(a.Email)
	if a.ID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}
	if a.Email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}
	if a.PasswordHash == "" {
		return domain.Account{}, domain.ErrMissingField("password_hash")
	}
	if !a.VerificationState.Valid() {
		a.VerificationState = domain.Unverified
	}

	const q = `
INSERT INTO accounts (id, email, display_name, password_hash, verification_state, pending_verification_token)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + accountColumns

	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q,
		a.ID, a.Email, a.DisplayName, a.PasswordHash, string(a.VerificationState), nullIfEmpty(a.PendingVerificationToken),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if pgErr.ConstraintName == emailUniqueConstraint {
				return domain.Account{}, domain.ErrEmailAlreadyExists()
			}
			// id or token collision
			return domain.Account{}, domain.ErrInternal(err)
		}
		return domain.Account{}, domain.ErrStoreUnavailable(err)
	}
	return toDomainAccount(ar), nil
}

// ConsumeVerificationToken is a single conditional UPDATE; concurrent
// consumers race on the row lock and only one sees a returned row.
func (r *AccountRepo) ConsumeVerificationToken(ctx context.Context, token string) (domain.Account, error) {
	if token == "" {
		return domain.Account{}, domain.ErrInvalidToken()
	}

	const q = `
UPDATE accounts
SET verification_state = 'verified',
    pending_verification_token = NULL,
    updated_at = NOW()
WHERE pending_verification_token = $1
  AND verification_state = 'unverified'
RETURNING ` + accountColumns

	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrInvalidToken()
		}
		return domain.Account{}, domain.ErrStoreUnavailable(err)
	}
	return toDomainAccount(ar), nil
}

func (r *AccountRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
