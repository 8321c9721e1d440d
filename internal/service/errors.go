package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")

	ErrClientRoleRequired        = errors.New("account must hold the client role")
	ErrSellerRoleRequired        = errors.New("seller must hold the seller role")
	ErrPropertyOutsideRealEstate = errors.New("property does not belong to the real estate")

	ErrNotOwner         = errors.New("resource belongs to another account")
	ErrInstallmentPaid  = errors.New("installment already paid")
	ErrProofRequired    = errors.New("payment proof required")
	ErrProofTooLarge    = errors.New("payment proof too large")
	ErrProofUnsupported = errors.New("payment proof type not supported")
	ErrProofMismatch    = errors.New("declared content type does not match payment proof")
)
