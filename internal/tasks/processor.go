package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"cuotas/api/internal/models"
)

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (bool, error)
}

type InstallmentScanner interface {
	Scan(ctx context.Context, now time.Time) (ScanReport, error)
}

type ScanReport struct {
	Checked  int
	Updated  int
	Overdue  int
	DueSoon  int
	Failures int
}

type Processor struct {
	notifications NotificationStore
	scanner       InstallmentScanner
	logger        zerolog.Logger
	now           func() time.Time
}

func NewProcessor(notifications NotificationStore, scanner InstallmentScanner, logger zerolog.Logger) *Processor {
	return &Processor{
		notifications: notifications,
		scanner:       scanner,
		logger:        logger,
		now:           time.Now,
	}
}

// Handle executes one stream entry. Malformed and unknown entries are
// logged and dropped so they do not block the group.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	taskType := str(msg.Values, "type")
	switch taskType {
	case TypeNotification:
		n, err := decodeNotification(msg.Values)
		if err != nil {
			p.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed notification")
			return nil
		}
		return p.handleNotification(ctx, n)
	case TypeInstallmentScan:
		return p.handleScan(ctx)
	default:
		p.logger.Warn().Str("type", taskType).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleNotification(ctx context.Context, n Notification) error {
	row := models.Notification{
		AccountID: n.AccountID,
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		DedupeKey: n.DedupeKey,
	}
	inserted, err := p.notifications.Create(ctx, &row)
	if err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	p.logger.Debug().
		Int64("account_id", n.AccountID).
		Str("kind", n.Kind).
		Bool("duplicate", !inserted).
		Msg("notification stored")
	return nil
}

func (p *Processor) handleScan(ctx context.Context) error {
	report, err := p.scanner.Scan(ctx, p.now())
	if err != nil {
		return fmt.Errorf("installment scan: %w", err)
	}
	p.logger.Info().
		Int("checked", report.Checked).
		Int("updated", report.Updated).
		Int("overdue", report.Overdue).
		Int("due_soon", report.DueSoon).
		Int("failures", report.Failures).
		Msg("installment scan finished")
	return nil
}
