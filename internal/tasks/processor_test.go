package tasks

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuotas/api/internal/models"
)

type fakePublisher struct {
	published []map[string]any
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, values map[string]any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, values)
	return "1-0", nil
}

type fakeStore struct {
	rows map[string]models.Notification
	err  error
}

func (f *fakeStore) Create(_ context.Context, n *models.Notification) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.rows == nil {
		f.rows = map[string]models.Notification{}
	}
	if _, ok := f.rows[n.DedupeKey]; ok {
		return false, nil
	}
	f.rows[n.DedupeKey] = *n
	return true, nil
}

type fakeScanner struct {
	calls int
	at    time.Time
	err   error
}

func (f *fakeScanner) Scan(_ context.Context, now time.Time) (ScanReport, error) {
	f.calls++
	f.at = now
	return ScanReport{Checked: 3, Updated: 1}, f.err
}

// toStream mimics what XREADGROUP hands back: every value is a string.
func toStream(values map[string]any) redis.XMessage {
	out := make(map[string]any, len(values))
	for k := range values {
		out[k] = str(values, k)
	}
	return redis.XMessage{ID: "1-0", Values: out}
}

func TestNotificationRoundTripThroughStream(t *testing.T) {
	pub := &fakePublisher{}
	enq := NewEnqueuer(pub)
	n := Notification{AccountID: 7, Kind: models.NotificationPaymentApproved, Title: "Payment approved", DedupeKey: "payment:1:approved"}
	require.NoError(t, enq.Notify(context.Background(), n))
	require.Len(t, pub.published, 1)

	store := &fakeStore{}
	p := NewProcessor(store, &fakeScanner{}, zerolog.Nop())
	msg := toStream(pub.published[0])

	require.NoError(t, p.Handle(context.Background(), msg))
	require.NoError(t, p.Handle(context.Background(), msg))

	require.Len(t, store.rows, 1)
	got := store.rows["payment:1:approved"]
	assert.Equal(t, int64(7), got.AccountID)
	assert.Equal(t, "Payment approved", got.Title)
}

func TestMalformedNotificationIsDropped(t *testing.T) {
	var buf bytes.Buffer
	store := &fakeStore{}
	p := NewProcessor(store, &fakeScanner{}, zerolog.New(&buf))

	err := p.Handle(context.Background(), redis.XMessage{ID: "2-0", Values: map[string]any{
		"type": TypeNotification, "accountId": "abc", "kind": "x", "dedupeKey": "k",
	}})
	require.NoError(t, err)
	assert.Empty(t, store.rows)
	assert.Contains(t, buf.String(), "dropping malformed notification")
}

func TestStoreFailureKeepsEntryPending(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	p := NewProcessor(store, &fakeScanner{}, zerolog.Nop())
	msg := toStream(Notification{AccountID: 1, Kind: "k", DedupeKey: "d"}.values())

	assert.Error(t, p.Handle(context.Background(), msg))
}

func TestInstallmentScanTask(t *testing.T) {
	pub := &fakePublisher{}
	enq := NewEnqueuer(pub)
	require.NoError(t, enq.ScanInstallments(context.Background()))

	scanner := &fakeScanner{}
	p := NewProcessor(&fakeStore{}, scanner, zerolog.Nop())
	fixed := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Handle(context.Background(), toStream(pub.published[0])))
	assert.Equal(t, 1, scanner.calls)
	assert.Equal(t, fixed, scanner.at)

	scanner.err = errors.New("boom")
	assert.Error(t, p.Handle(context.Background(), toStream(pub.published[0])))
}

func TestUnknownTaskIgnored(t *testing.T) {
	p := NewProcessor(&fakeStore{}, &fakeScanner{}, zerolog.Nop())
	assert.NoError(t, p.Handle(context.Background(), redis.XMessage{ID: "3-0", Values: map[string]any{"type": "ingest"}}))
}

func TestEnqueueError(t *testing.T) {
	enq := NewEnqueuer(&fakePublisher{err: errors.New("redis down")})
	assert.Error(t, enq.Notify(context.Background(), Notification{DedupeKey: "x"}))
	assert.Error(t, enq.ScanInstallments(context.Background()))
}
