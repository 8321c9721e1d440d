package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// Payment is a reported payment against one installment together with its
// uploaded proof. Only approved payments count toward the installment.
type Payment struct {
	ID            int64
	InstallmentID int64
	SubmittedBy   int64
	AmountCents   int64
	PaidAt        time.Time
	ProofBucket   string
	ProofKey      string
	ProofMIME     string
	ProofSize     int64
	Status        PaymentStatus
	ReviewNote    string
	ReviewedBy    *int64
	ReviewedAt    *time.Time
	CreatedAt     time.Time
}

type Notification struct {
	ID        int64
	AccountID int64
	Kind      string
	Title     string
	Body      string
	DedupeKey string
	ReadAt    *time.Time
	CreatedAt time.Time
}

const (
	NotificationPaymentApproved    = "payment_approved"
	NotificationPaymentRejected    = "payment_rejected"
	NotificationPaymentSubmitted   = "payment_submitted"
	NotificationInstallmentDueSoon = "installment_due_soon"
	NotificationInstallmentOverdue = "installment_overdue"
)
