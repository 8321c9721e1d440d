package models

import (
	"errors"
	"time"
)

type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPartial InstallmentStatus = "partial"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
)

const MaxInstallments = 360

var ErrInvalidPlan = errors.New("invalid installment plan")

type Installment struct {
	ID          int64
	ClientID    int64
	Number      int
	AmountCents int64
	PaidCents   int64
	DueDate     time.Time
	Status      InstallmentStatus
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DeriveInstallmentStatus computes the status from the approved paid amount
// and the due date. Dates compare by calendar day in UTC; an installment
// due today is not yet overdue.
func DeriveInstallmentStatus(amountCents, paidCents int64, dueDate, today time.Time) InstallmentStatus {
	switch {
	case paidCents >= amountCents:
		return InstallmentStatusPaid
	case dateOnly(dueDate).Before(dateOnly(today)):
		return InstallmentStatusOverdue
	case paidCents > 0:
		return InstallmentStatusPartial
	default:
		return InstallmentStatusPending
	}
}

// Derive recomputes i.Status as of today and reports whether it changed.
func (i *Installment) Derive(today time.Time) bool {
	next := DeriveInstallmentStatus(i.AmountCents, i.PaidCents, i.DueDate, today)
	if next == i.Status {
		return false
	}
	i.Status = next
	return true
}

// BuildPlan splits totalCents into count monthly installments starting at
// firstDue. The division remainder is added to the last installment. When
// firstDue falls on a day a later month does not have, that month's
// installment is due on its last day.
func BuildPlan(clientID int64, count int, totalCents int64, firstDue time.Time) ([]Installment, error) {
	if count <= 0 || count > MaxInstallments {
		return nil, ErrInvalidPlan
	}
	if totalCents < int64(count) {
		return nil, ErrInvalidPlan
	}

	base := totalCents / int64(count)
	remainder := totalCents % int64(count)
	first := dateOnly(firstDue)

	plan := make([]Installment, count)
	for n := 0; n < count; n++ {
		amount := base
		if n == count-1 {
			amount += remainder
		}
		plan[n] = Installment{
			ClientID:    clientID,
			Number:      n + 1,
			AmountCents: amount,
			DueDate:     addMonthsClamped(first, n),
			Status:      InstallmentStatusPending,
		}
	}
	return plan, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}
