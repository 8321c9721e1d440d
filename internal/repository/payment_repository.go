package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cuotas/api/internal/models"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, installment_id, submitted_by, amount_cents, paid_at, proof_bucket, proof_key,
	proof_mime, proof_size, status, review_note, reviewed_by, reviewed_at, created_at`

func scanPayment(row rowScanner) (models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID,
		&p.InstallmentID,
		&p.SubmittedBy,
		&p.AmountCents,
		&p.PaidAt,
		&p.ProofBucket,
		&p.ProofKey,
		&p.ProofMIME,
		&p.ProofSize,
		&p.Status,
		&p.ReviewNote,
		&p.ReviewedBy,
		&p.ReviewedAt,
		&p.CreatedAt,
	)
	return p, err
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	const query = `
		INSERT INTO payments (
			installment_id, submitted_by, amount_cents, paid_at,
			proof_bucket, proof_key, proof_mime, proof_size, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		RETURNING id, status, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.InstallmentID,
		p.SubmittedBy,
		p.AmountCents,
		p.PaidAt,
		p.ProofBucket,
		p.ProofKey,
		p.ProofMIME,
		p.ProofSize,
	).Scan(&p.ID, &p.Status, &p.CreatedAt)
	if isForeignKeyViolation(err) {
		return ErrInstallmentNotFound
	}
	return err
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (models.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Payment{}, ErrPaymentNotFound
	}
	return p, err
}

func (r *PaymentRepository) ListByInstallment(ctx context.Context, installmentID int64) ([]models.Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+`
		FROM payments WHERE installment_id = $1 ORDER BY created_at, id`, installmentID)
}

// ListByClient returns payments against any installment of the client,
// newest first, regardless of who submitted them.
func (r *PaymentRepository) ListByClient(ctx context.Context, clientID int64) ([]models.Payment, error) {
	return r.list(ctx, `SELECT `+qualified("p", paymentColumns)+`
		FROM payments p JOIN installments i ON i.id = p.installment_id
		WHERE i.client_id = $1
		ORDER BY p.created_at DESC, p.id DESC`, clientID)
}

func qualified(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}

type ReviewInput struct {
	PaymentID  int64
	Approve    bool
	ReviewerID int64
	Note       string
	Now        time.Time
}

// Review settles a pending payment. Approval adds the amount to the
// installment and recomputes its status inside the same transaction. The
// returned installment reflects the state after review.
func (r *PaymentRepository) Review(ctx context.Context, in ReviewInput) (models.Payment, models.Installment, error) {
	var (
		payment     models.Payment
		installment models.Installment
	)
	status := models.PaymentStatusRejected
	if in.Approve {
		status = models.PaymentStatusApproved
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE payments
			SET status = $2, review_note = $3, reviewed_by = $4, reviewed_at = $5
			WHERE id = $1 AND status = 'pending'
			RETURNING ` + paymentColumns
		var err error
		payment, err = scanPayment(tx.QueryRow(ctx, query, in.PaymentID, status, in.Note, in.ReviewerID, in.Now))
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)`, in.PaymentID).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return ErrPaymentReviewed
			}
			return ErrPaymentNotFound
		}
		if err != nil {
			return err
		}

		lock := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1 FOR UPDATE`
		installment, err = scanInstallment(tx.QueryRow(ctx, lock, payment.InstallmentID))
		if err != nil {
			return err
		}
		if !in.Approve {
			return nil
		}

		installment.PaidCents += payment.AmountCents
		installment.Derive(in.Now)
		if installment.Status == models.InstallmentStatusPaid && installment.PaidAt == nil {
			paidAt := payment.PaidAt
			installment.PaidAt = &paidAt
		}
		err = tx.QueryRow(ctx, `
			UPDATE installments
			SET paid_cents = $2, status = $3, paid_at = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`,
			installment.ID, installment.PaidCents, installment.Status, installment.PaidAt,
		).Scan(&installment.UpdatedAt)
		return err
	})
	if err != nil {
		return models.Payment{}, models.Installment{}, err
	}
	return payment, installment, nil
}
