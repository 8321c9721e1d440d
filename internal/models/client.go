package models

import "time"

// Client links a client account to the property it is buying. RealEstateID
// is derived from the property. SellerID, when set, references an account
// holding the seller role.
type Client struct {
	ID           int64
	AccountID    int64
	PropertyID   int64
	RealEstateID int64
	SellerID     *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
