package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/realtycore/auth-service/internal/auth/domain"
	autherror "github.com/realtycore/auth-service/internal/errors"
)

const queryTimeout = 3 * time.Second

const uniqueViolation = "23505"

const accountColumns = `id, name, email, phone, password_hash, role,
	two_factor_secret, two_factor_enabled, reset_token_hash, reset_token_expiry,
	created_at, updated_at`

// DB is the subset of pgxpool.Pool the repository uses; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1
		LIMIT 1
	`, email)

	return scanAccount(row)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		LIMIT 1
	`, id)

	return scanAccount(row)
}

// GetByResetTokenHash only sees unexpired tokens; an expired row is treated
// as absent by the query itself.
func (r *Repository) GetByResetTokenHash(ctx context.Context, hash string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE reset_token_hash = $1 AND reset_token_expiry > now()
		LIMIT 1
	`, hash)

	return scanAccount(row)
}

func (r *Repository) Create(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (id, name, email, phone, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.Name, a.Email, a.Phone, a.PasswordHash, a.Role, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return autherror.ErrDuplicateIdentity
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

// Update applies the non-nil fields in a single statement and returns the
// resulting row. ClearResetToken nulls both reset columns atomically with
// whatever else changes in the same call.
func (r *Repository) Update(ctx context.Context, id string, fields domain.UpdateFields) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := []string{"updated_at = now()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, column+" = $"+strconv.Itoa(len(args)))
	}

	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.Email != nil {
		add("email", *fields.Email)
	}
	if fields.Phone != nil {
		add("phone", *fields.Phone)
	}
	if fields.PasswordHash != nil {
		add("password_hash", *fields.PasswordHash)
	}
	if fields.Role != nil {
		add("role", *fields.Role)
	}
	if fields.TwoFactorSecret != nil {
		add("two_factor_secret", *fields.TwoFactorSecret)
	}
	if fields.TwoFactorEnabled != nil {
		add("two_factor_enabled", *fields.TwoFactorEnabled)
	}
	if fields.ClearResetToken {
		set = append(set, "reset_token_hash = NULL", "reset_token_expiry = NULL")
	} else {
		if fields.ResetTokenHash != nil {
			add("reset_token_hash", *fields.ResetTokenHash)
		}
		if fields.ResetTokenExpiry != nil {
			add("reset_token_expiry", *fields.ResetTokenExpiry)
		}
	}

	query := "UPDATE accounts SET "
	for i, clause := range set {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += " WHERE id = $1 RETURNING " + accountColumns

	row := r.db.QueryRow(ctx, query, args...)

	account, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, autherror.ErrDuplicateIdentity
		}
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("update account: no row with id %s", id)
	}

	return account, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a               domain.Account
		phone           *string
		twoFactorSecret *string
		resetTokenHash  *string
	)

	err := row.Scan(&a.ID, &a.Name, &a.Email, &phone, &a.PasswordHash, &a.Role,
		&twoFactorSecret, &a.TwoFactorEnabled, &resetTokenHash, &a.ResetTokenExpiry,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if phone != nil {
		a.Phone = *phone
	}
	if twoFactorSecret != nil {
		a.TwoFactorSecret = *twoFactorSecret
	}
	if resetTokenHash != nil {
		a.ResetTokenHash = *resetTokenHash
	}

	return &a, nil
}

var _ domain.UserRepository = (*Repository)(nil)
