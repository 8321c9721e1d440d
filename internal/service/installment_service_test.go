package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuotas/api/internal/models"
	"cuotas/api/internal/repository"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreatePlan(t *testing.T) {
	installments := newFakeInstallments()
	clients := newFakeClients(models.Client{ID: 1, AccountID: 50})
	s := NewInstallmentService(installments, clients, &fakeNotifier{}, 5, zerolog.Nop())
	s.now = func() time.Time { return day(2026, 1, 15) }

	plan, err := s.CreatePlan(context.Background(), CreatePlanInput{ClientID: 1, Count: 3, TotalCents: 1000, FirstDueDay: day(2026, 1, 31)})
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, int64(333), plan[0].AmountCents)
	assert.Equal(t, int64(334), plan[2].AmountCents)
	assert.Equal(t, day(2026, 2, 28), plan[1].DueDate)

	_, err = s.CreatePlan(context.Background(), CreatePlanInput{ClientID: 1, Count: 3, TotalCents: 1000, FirstDueDay: day(2026, 1, 31)})
	assert.ErrorIs(t, err, repository.ErrPlanExists)

	_, err = s.CreatePlan(context.Background(), CreatePlanInput{ClientID: 1, Count: 0, TotalCents: 1000, FirstDueDay: day(2026, 1, 31)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.CreatePlan(context.Background(), CreatePlanInput{ClientID: 9, Count: 1, TotalCents: 1000, FirstDueDay: day(2026, 1, 31)})
	assert.ErrorIs(t, err, repository.ErrClientNotFound)
}

func TestListDerivesStatus(t *testing.T) {
	installments := newFakeInstallments(
		models.Installment{ID: 1, ClientID: 1, Number: 1, AmountCents: 100, DueDate: day(2026, 1, 1), Status: models.InstallmentStatusPending},
		models.Installment{ID: 2, ClientID: 1, Number: 2, AmountCents: 100, DueDate: day(2026, 2, 1), Status: models.InstallmentStatusPending},
	)
	clients := newFakeClients(models.Client{ID: 1, AccountID: 50})
	s := NewInstallmentService(installments, clients, &fakeNotifier{}, 5, zerolog.Nop())
	s.now = func() time.Time { return day(2026, 1, 10) }

	plan, err := s.ListForAccount(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, models.InstallmentStatusOverdue, plan[0].Status)
	assert.Equal(t, models.InstallmentStatusPending, plan[1].Status)
	assert.Empty(t, installments.updates, "reads never persist")

	_, err = s.ListForAccount(context.Background(), 51)
	assert.ErrorIs(t, err, repository.ErrClientNotFound)
}

func TestScan(t *testing.T) {
	installments := newFakeInstallments(
		models.Installment{ID: 1, ClientID: 1, Number: 1, AmountCents: 100, DueDate: day(2026, 3, 1), Status: models.InstallmentStatusPending},
		models.Installment{ID: 2, ClientID: 1, Number: 2, AmountCents: 100, PaidCents: 40, DueDate: day(2026, 3, 12), Status: models.InstallmentStatusPartial},
		models.Installment{ID: 3, ClientID: 1, Number: 3, AmountCents: 100, DueDate: day(2026, 4, 30), Status: models.InstallmentStatusPending},
		models.Installment{ID: 4, ClientID: 2, Number: 1, AmountCents: 100, DueDate: day(2026, 3, 10), Status: models.InstallmentStatusPending},
	)
	clients := newFakeClients(models.Client{ID: 1, AccountID: 50}, models.Client{ID: 2, AccountID: 60})
	notifier := &fakeNotifier{}
	s := NewInstallmentService(installments, clients, notifier, 5, zerolog.Nop())

	report, err := s.Scan(context.Background(), time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Overdue)
	assert.Equal(t, 2, report.DueSoon)
	assert.Zero(t, report.Failures)
	assert.Equal(t, models.InstallmentStatusOverdue, installments.updates[1])

	require.Len(t, notifier.sent, 3)
	byKey := map[string]int64{}
	for _, n := range notifier.sent {
		byKey[n.DedupeKey] = n.AccountID
	}
	assert.Equal(t, int64(50), byKey["installment:1:overdue"])
	assert.Equal(t, int64(50), byKey["installment:2:due_soon:2026-03-12"])
	assert.Equal(t, int64(60), byKey["installment:4:due_soon:2026-03-10"])
}

func TestScanCountsFailures(t *testing.T) {
	installments := newFakeInstallments(
		models.Installment{ID: 1, ClientID: 7, Number: 1, AmountCents: 100, DueDate: day(2026, 3, 1), Status: models.InstallmentStatusOverdue},
	)
	s := NewInstallmentService(installments, newFakeClients(), &fakeNotifier{}, 5, zerolog.Nop())

	report, err := s.Scan(context.Background(), day(2026, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures)
	assert.Zero(t, report.Updated)
}
