package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"cuotas/api/internal/models"
	"cuotas/api/internal/tasks"
)

type InstallmentStore interface {
	CreatePlan(ctx context.Context, clientID int64, plan []models.Installment) error
	GetByID(ctx context.Context, id int64) (models.Installment, error)
	ListByClient(ctx context.Context, clientID int64) ([]models.Installment, error)
	ListOpen(ctx context.Context, dueBy time.Time) ([]models.Installment, error)
	UpdateStatus(ctx context.Context, id int64, status models.InstallmentStatus) error
}

type ClientReader interface {
	GetByID(ctx context.Context, id int64) (models.Client, error)
	GetByAccountID(ctx context.Context, accountID int64) (models.Client, error)
}

type Notifier interface {
	Notify(ctx context.Context, n tasks.Notification) error
}

type InstallmentService struct {
	installments InstallmentStore
	clients      ClientReader
	notifier     Notifier
	reminderDays int
	log          zerolog.Logger
	now          func() time.Time
}

func NewInstallmentService(installments InstallmentStore, clients ClientReader, notifier Notifier, reminderDays int, log zerolog.Logger) *InstallmentService {
	return &InstallmentService{
		installments: installments,
		clients:      clients,
		notifier:     notifier,
		reminderDays: reminderDays,
		log:          log,
		now:          time.Now,
	}
}

type CreatePlanInput struct {
	ClientID    int64
	Count       int
	TotalCents  int64
	FirstDueDay time.Time
}

func (s *InstallmentService) CreatePlan(ctx context.Context, input CreatePlanInput) ([]models.Installment, error) {
	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		return nil, err
	}
	plan, err := models.BuildPlan(input.ClientID, input.Count, input.TotalCents, input.FirstDueDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	today := s.now()
	for i := range plan {
		plan[i].Derive(today)
	}
	if err := s.installments.CreatePlan(ctx, input.ClientID, plan); err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("client_id", input.ClientID).
		Int("count", input.Count).
		Int64("total_cents", input.TotalCents).
		Msg("installment plan created")
	return s.installments.ListByClient(ctx, input.ClientID)
}

// ListForClient returns the plan with statuses derived as of now, so a
// plan read between scans never shows a stale status.
func (s *InstallmentService) ListForClient(ctx context.Context, clientID int64) ([]models.Installment, error) {
	plan, err := s.installments.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	today := s.now()
	for i := range plan {
		plan[i].Derive(today)
	}
	return plan, nil
}

func (s *InstallmentService) ListForAccount(ctx context.Context, accountID int64) ([]models.Installment, error) {
	client, err := s.clients.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.ListForClient(ctx, client.ID)
}

func (s *InstallmentService) Get(ctx context.Context, id int64) (models.Installment, error) {
	inst, err := s.installments.GetByID(ctx, id)
	if err != nil {
		return models.Installment{}, err
	}
	inst.Derive(s.now())
	return inst, nil
}

// Scan recomputes the status of every open installment due within the
// reminder window, persists changes and enqueues reminders. Reminders are
// re-sent on every scan and deduplicated by the worker, so a failed enqueue
// is retried by the next scan. Per-item failures do not abort the scan.
func (s *InstallmentService) Scan(ctx context.Context, now time.Time) (tasks.ScanReport, error) {
	today := dateOf(now)
	horizon := today.AddDate(0, 0, s.reminderDays)

	open, err := s.installments.ListOpen(ctx, horizon)
	if err != nil {
		return tasks.ScanReport{}, fmt.Errorf("list open installments: %w", err)
	}

	report := tasks.ScanReport{Checked: len(open)}
	owners := make(map[int64]int64)

	for i := range open {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		inst := &open[i]
		if inst.Derive(now) {
			if err := s.installments.UpdateStatus(ctx, inst.ID, inst.Status); err != nil {
				report.Failures++
				s.log.Error().Err(err).Int64("installment_id", inst.ID).Msg("update installment status failed")
				continue
			}
			report.Updated++
		}

		var n *tasks.Notification
		switch {
		case inst.Status == models.InstallmentStatusOverdue:
			n = &tasks.Notification{
				Kind:      models.NotificationInstallmentOverdue,
				Title:     fmt.Sprintf("Installment %d is overdue", inst.Number),
				Body:      fmt.Sprintf("Installment %d was due on %s.", inst.Number, inst.DueDate.Format(time.DateOnly)),
				DedupeKey: fmt.Sprintf("installment:%d:overdue", inst.ID),
			}
			report.Overdue++
		case inst.Status != models.InstallmentStatusOverdue && !dateOf(inst.DueDate).Before(today):
			n = &tasks.Notification{
				Kind:      models.NotificationInstallmentDueSoon,
				Title:     fmt.Sprintf("Installment %d is due soon", inst.Number),
				Body:      fmt.Sprintf("Installment %d is due on %s.", inst.Number, inst.DueDate.Format(time.DateOnly)),
				DedupeKey: fmt.Sprintf("installment:%d:due_soon:%s", inst.ID, inst.DueDate.Format(time.DateOnly)),
			}
			report.DueSoon++
		}
		if n == nil {
			continue
		}

		accountID, err := s.ownerOf(ctx, owners, inst.ClientID)
		if err != nil {
			report.Failures++
			s.log.Error().Err(err).Int64("client_id", inst.ClientID).Msg("resolve installment owner failed")
			continue
		}
		n.AccountID = accountID
		if err := s.notifier.Notify(ctx, *n); err != nil {
			report.Failures++
			s.log.Error().Err(err).Int64("installment_id", inst.ID).Msg("enqueue reminder failed")
		}
	}
	return report, nil
}

func (s *InstallmentService) ownerOf(ctx context.Context, cache map[int64]int64, clientID int64) (int64, error) {
	if id, ok := cache[clientID]; ok {
		return id, nil
	}
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return 0, err
	}
	if client.AccountID == 0 {
		return 0, errors.New("client has no account")
	}
	cache[clientID] = client.AccountID
	return client.AccountID, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
