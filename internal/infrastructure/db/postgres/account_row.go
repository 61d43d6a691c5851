package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/wastewise/services/identity-service/internal/domain"
)

const accountColumns = `id, email, display_name, password_hash, verification_state, pending_verification_token, created_at, updated_at`

type accountRow struct {
	ID                string
	Email             string
	DisplayName       string
	PasswordHash      string
	VerificationState string
	PendingToken      sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccountRow(row rowScanner) (accountRow, error) {
	var ar accountRow
	err := row.Scan(
		&ar.ID,
		&ar.Email,
		&ar.DisplayName,
		&ar.PasswordHash,
		&ar.VerificationState,
		&ar.PendingToken,
		&ar.CreatedAt,
		&ar.UpdatedAt,
	)
	return ar, err
}

func toDomainAccount(ar accountRow) domain.Account {
	return domain.Account{
		ID:                       ar.ID,
		Email:                    ar.Email,
		DisplayName:              ar.DisplayName,
		PasswordHash:             ar.PasswordHash,
		VerificationState:        domain.VerificationState(ar.VerificationState),
		PendingVerificationToken: ar.PendingToken.String,
		CreatedAt:                ar.CreatedAt.UTC(),
		UpdatedAt:                ar.UpdatedAt.UTC(),
	}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
