package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cuotas/api/internal/models"
)

type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// ClientFilter narrows List. Zero fields do not filter.
type ClientFilter struct {
	RealEstateID int64
	SellerID     int64
	Limit        int
	Offset       int
}

const clientSelect = `
	SELECT c.id, c.account_id, c.property_id, p.real_estate_id, c.seller_id, c.created_at, c.updated_at
	FROM clients c JOIN properties p ON p.id = c.property_id`

func scanClient(row rowScanner) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.AccountID, &c.PropertyID, &c.RealEstateID, &c.SellerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create reserves the property and links it to the client account in one
// transaction. The property must still be available.
func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const reserve = `
			UPDATE properties SET status = 'reserved', updated_at = NOW()
			WHERE id = $1 AND status = 'available'
			RETURNING real_estate_id
		`
		err := tx.QueryRow(ctx, reserve, c.PropertyID).Scan(&c.RealEstateID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPropertyUnavailable
		}
		if err != nil {
			return err
		}

		const insert = `
			INSERT INTO clients (account_id, property_id, seller_id)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`
		err = tx.QueryRow(ctx, insert, c.AccountID, c.PropertyID, c.SellerID).
			Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if isUniqueViolation(err) {
			return ErrClientExists
		}
		return err
	})
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (models.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx, clientSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Client{}, ErrClientNotFound
	}
	return c, err
}

func (r *ClientRepository) GetByAccountID(ctx context.Context, accountID int64) (models.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx, clientSelect+` WHERE c.account_id = $1`, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Client{}, ErrClientNotFound
	}
	return c, err
}

func (r *ClientRepository) List(ctx context.Context, f ClientFilter) ([]models.Client, error) {
	query := clientSelect + `
		WHERE ($1::bigint = 0 OR p.real_estate_id = $1)
		  AND ($2::bigint = 0 OR c.seller_id = $2)
		ORDER BY c.id
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, f.RealEstateID, f.SellerID, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateSeller assigns or, with a nil sellerID, clears the client's seller.
func (r *ClientRepository) UpdateSeller(ctx context.Context, clientID int64, sellerID *int64) error {
	const query = `UPDATE clients SET seller_id = $2, updated_at = NOW() WHERE id = $1`

	cmd, err := r.pool.Exec(ctx, query, clientID, sellerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

// ClientAssignedToSeller backs scope resolution for sellers.
func (r *ClientRepository) ClientAssignedToSeller(ctx context.Context, clientID, sellerID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1 AND seller_id = $2)`

	var assigned bool
	err := r.pool.QueryRow(ctx, query, clientID, sellerID).Scan(&assigned)
	return assigned, err
}
