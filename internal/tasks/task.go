// Package tasks defines the background tasks carried on the redis task
// stream and the worker-side processor that executes them.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	TypeNotification    = "notification"
	TypeInstallmentScan = "installment_scan"
)

var ErrMalformedTask = errors.New("malformed task")

// Notification asks the worker to store one notification row. DedupeKey
// makes redelivery harmless.
type Notification struct {
	AccountID int64
	Kind      string
	Title     string
	Body      string
	DedupeKey string
}

func (n Notification) values() map[string]any {
	return map[string]any{
		"type":      TypeNotification,
		"accountId": strconv.FormatInt(n.AccountID, 10),
		"kind":      n.Kind,
		"title":     n.Title,
		"body":      n.Body,
		"dedupeKey": n.DedupeKey,
	}
}

func decodeNotification(values map[string]any) (Notification, error) {
	accountID, err := strconv.ParseInt(str(values, "accountId"), 10, 64)
	if err != nil || accountID <= 0 {
		return Notification{}, fmt.Errorf("%w: accountId", ErrMalformedTask)
	}
	n := Notification{
		AccountID: accountID,
		Kind:      str(values, "kind"),
		Title:     str(values, "title"),
		Body:      str(values, "body"),
		DedupeKey: str(values, "dedupeKey"),
	}
	if n.Kind == "" || n.DedupeKey == "" {
		return Notification{}, fmt.Errorf("%w: kind and dedupeKey required", ErrMalformedTask)
	}
	return n, nil
}

// str reads a stream field. Redis returns every field as a string.
func str(values map[string]any, key string) string {
	switch v := values[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

type Publisher interface {
	Publish(ctx context.Context, values map[string]any) (string, error)
}

// Enqueuer is the producer-side API used by the api process and the
// scheduler.
type Enqueuer struct {
	pub Publisher
	now func() time.Time
}

func NewEnqueuer(pub Publisher) *Enqueuer {
	return &Enqueuer{pub: pub, now: time.Now}
}

func (e *Enqueuer) Notify(ctx context.Context, n Notification) error {
	if _, err := e.pub.Publish(ctx, n.values()); err != nil {
		return fmt.Errorf("enqueue notification %s: %w", n.DedupeKey, err)
	}
	return nil
}

func (e *Enqueuer) ScanInstallments(ctx context.Context) error {
	_, err := e.pub.Publish(ctx, map[string]any{
		"type":        TypeInstallmentScan,
		"requestedAt": e.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("enqueue installment scan: %w", err)
	}
	return nil
}
