package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cuotas/api/internal/authz"
	"cuotas/api/internal/models"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `a.id, a.email, a.password_hash, a.name, r.name, a.active, a.created_at, a.updated_at`

func scanAccount(row rowScanner) (models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Name,
		&account.Role,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

// Create inserts the account and fills in its generated fields.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	const query = `
		INSERT INTO accounts (email, password_hash, name, role_id, active)
		SELECT $1, $2, $3, r.id, $5 FROM roles r WHERE r.name = $4
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		account.Email,
		account.PasswordHash,
		account.Name,
		account.Role,
		account.Active,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return authz.ErrUnknownRole
	case isUniqueViolation(err):
		return ErrEmailTaken
	}
	return err
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a JOIN roles r ON r.id = a.role_id
		WHERE a.id = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, authz.ErrAccountNotFound
	}
	return account, err
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a JOIN roles r ON r.id = a.role_id
		WHERE a.email = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, authz.ErrAccountNotFound
	}
	return account, err
}

// ActiveAccountByID backs credential verification. Inactive accounts are
// reported exactly like missing ones.
func (r *AccountRepository) ActiveAccountByID(ctx context.Context, id int64) (authz.AccountRecord, error) {
	const query = `
		SELECT a.id, a.email, a.name, r.name
		FROM accounts a JOIN roles r ON r.id = a.role_id
		WHERE a.id = $1 AND a.active = TRUE
	`

	var rec authz.AccountRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(&rec.ID, &rec.Email, &rec.Name, &rec.RoleName)
	if errors.Is(err, pgx.ErrNoRows) {
		return authz.AccountRecord{}, authz.ErrAccountNotFound
	}
	return rec, err
}

// List returns accounts ordered by id. An empty role lists every role.
func (r *AccountRepository) List(ctx context.Context, role authz.Role, limit, offset int) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a JOIN roles r ON r.id = a.role_id
		WHERE ($1::text = '' OR r.name = $1)
		ORDER BY a.id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, string(role), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE accounts SET active = FALSE, updated_at = NOW() WHERE id = $1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return authz.ErrAccountNotFound
	}
	return nil
}
