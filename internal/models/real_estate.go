package models

import "time"

// RealEstate is the tenant that owns properties and, through them, clients.
type RealEstate struct {
	ID        int64
	Name      string
	Address   string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "available"
	PropertyStatusReserved  PropertyStatus = "reserved"
	PropertyStatusSold      PropertyStatus = "sold"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusAvailable, PropertyStatusReserved, PropertyStatusSold:
		return true
	}
	return false
}

type Property struct {
	ID           int64
	RealEstateID int64
	Title        string
	Address      string
	PriceCents   int64
	Status       PropertyStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
