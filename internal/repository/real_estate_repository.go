package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cuotas/api/internal/models"
)

type RealEstateRepository struct {
	pool *pgxpool.Pool
}

func NewRealEstateRepository(pool *pgxpool.Pool) *RealEstateRepository {
	return &RealEstateRepository{pool: pool}
}

const realEstateColumns = `id, name, address, phone, email, created_at, updated_at`

func scanRealEstate(row rowScanner) (models.RealEstate, error) {
	var re models.RealEstate
	err := row.Scan(&re.ID, &re.Name, &re.Address, &re.Phone, &re.Email, &re.CreatedAt, &re.UpdatedAt)
	return re, err
}

func (r *RealEstateRepository) Create(ctx context.Context, re *models.RealEstate) error {
	const query = `
		INSERT INTO real_estates (name, address, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query, re.Name, re.Address, re.Phone, re.Email).
		Scan(&re.ID, &re.CreatedAt, &re.UpdatedAt)
}

func (r *RealEstateRepository) GetByID(ctx context.Context, id int64) (models.RealEstate, error) {
	query := `SELECT ` + realEstateColumns + ` FROM real_estates WHERE id = $1`

	re, err := scanRealEstate(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.RealEstate{}, ErrRealEstateNotFound
	}
	return re, err
}

func (r *RealEstateRepository) List(ctx context.Context, limit, offset int) ([]models.RealEstate, error) {
	query := `SELECT ` + realEstateColumns + ` FROM real_estates ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RealEstate
	for rows.Next() {
		re, err := scanRealEstate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

func (r *RealEstateRepository) Update(ctx context.Context, re *models.RealEstate) error {
	const query = `
		UPDATE real_estates
		SET name = $2, address = $3, phone = $4, email = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query, re.ID, re.Name, re.Address, re.Phone, re.Email).
		Scan(&re.CreatedAt, &re.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRealEstateNotFound
	}
	return err
}

// Delete refuses to remove a real estate that still owns properties.
func (r *RealEstateRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM real_estates WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return ErrRealEstateInUse
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRealEstateNotFound
	}
	return nil
}

// RealEstateExists backs scope resolution for real estate administrators.
func (r *RealEstateRepository) RealEstateExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM real_estates WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
