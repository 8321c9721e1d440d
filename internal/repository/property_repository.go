package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cuotas/api/internal/models"
)

type PropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{pool: pool}
}

const propertyColumns = `id, real_estate_id, title, address, price_cents, status, created_at, updated_at`

func scanProperty(row rowScanner) (models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.RealEstateID,
		&p.Title,
		&p.Address,
		&p.PriceCents,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	const query = `
		INSERT INTO properties (real_estate_id, title, address, price_cents, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if p.Status == "" {
		p.Status = models.PropertyStatusAvailable
	}
	err := r.pool.QueryRow(ctx, query, p.RealEstateID, p.Title, p.Address, p.PriceCents, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isForeignKeyViolation(err) {
		return ErrRealEstateNotFound
	}
	return err
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Property{}, ErrPropertyNotFound
	}
	return p, err
}

func (r *PropertyRepository) ListByRealEstate(ctx context.Context, realEstateID int64, status models.PropertyStatus) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE real_estate_id = $1 AND ($2::text = '' OR status = $2)
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, realEstateID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PropertyRepository) Update(ctx context.Context, p *models.Property) error {
	const query = `
		UPDATE properties
		SET title = $2, address = $3, price_cents = $4, status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING real_estate_id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query, p.ID, p.Title, p.Address, p.PriceCents, p.Status).
		Scan(&p.RealEstateID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPropertyNotFound
	}
	return err
}
