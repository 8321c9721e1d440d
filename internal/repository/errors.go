package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrRealEstateNotFound   = errors.New("real estate not found")
	ErrRealEstateInUse      = errors.New("real estate still owns properties")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrPropertyUnavailable  = errors.New("property is not available")
	ErrClientNotFound       = errors.New("client not found")
	ErrClientExists         = errors.New("account or property already linked to a client")
	ErrInstallmentNotFound  = errors.New("installment not found")
	ErrPlanExists           = errors.New("client already has an installment plan")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentReviewed      = errors.New("payment already reviewed")
	ErrNotificationNotFound = errors.New("notification not found")
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}
