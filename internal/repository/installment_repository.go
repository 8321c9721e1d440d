package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cuotas/api/internal/models"
)

type InstallmentRepository struct {
	pool *pgxpool.Pool
}

func NewInstallmentRepository(pool *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{pool: pool}
}

const installmentColumns = `id, client_id, number, amount_cents, paid_cents, due_date, status, paid_at, created_at, updated_at`

func scanInstallment(row rowScanner) (models.Installment, error) {
	var i models.Installment
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.Number,
		&i.AmountCents,
		&i.PaidCents,
		&i.DueDate,
		&i.Status,
		&i.PaidAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectInstallments(rows pgx.Rows) ([]models.Installment, error) {
	defer rows.Close()
	var out []models.Installment
	for rows.Next() {
		i, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// CreatePlan bulk-inserts a client's plan. A client holds at most one plan.
func (r *InstallmentRepository) CreatePlan(ctx context.Context, clientID int64, plan []models.Installment) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Lock the client row so concurrent plan creation serializes.
		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM clients WHERE id = $1 FOR UPDATE`, clientID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrClientNotFound
		}
		if err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM installments WHERE client_id = $1)`, clientID,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrPlanExists
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"installments"},
			[]string{"client_id", "number", "amount_cents", "due_date", "status"},
			pgx.CopyFromSlice(len(plan), func(n int) ([]any, error) {
				i := plan[n]
				return []any{clientID, int32(i.Number), i.AmountCents, i.DueDate, string(i.Status)}, nil
			}),
		)
		return err
	})
}

func (r *InstallmentRepository) GetByID(ctx context.Context, id int64) (models.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1`

	i, err := scanInstallment(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Installment{}, ErrInstallmentNotFound
	}
	return i, err
}

func (r *InstallmentRepository) ListByClient(ctx context.Context, clientID int64) ([]models.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE client_id = $1 ORDER BY number`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	return collectInstallments(rows)
}

// ListOpen returns unpaid installments due on or before the given day.
func (r *InstallmentRepository) ListOpen(ctx context.Context, dueBy time.Time) ([]models.Installment, error) {
	query := `SELECT ` + installmentColumns + `
		FROM installments
		WHERE status <> 'paid' AND due_date <= $1
		ORDER BY due_date, id`

	rows, err := r.pool.Query(ctx, query, dueBy)
	if err != nil {
		return nil, err
	}
	return collectInstallments(rows)
}

func (r *InstallmentRepository) UpdateStatus(ctx context.Context, id int64, status models.InstallmentStatus) error {
	const query = `UPDATE installments SET status = $2, updated_at = NOW() WHERE id = $1`

	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInstallmentNotFound
	}
	return nil
}
