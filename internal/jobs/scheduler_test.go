package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRequester struct {
	calls atomic.Int32
	err   error
}

func (c *countingRequester) ScanInstallments(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&countingRequester{}, "not a schedule", zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestStartAcceptsSecondsSpec(t *testing.T) {
	s := NewScheduler(&countingRequester{}, "0 0 6 * * *", zerolog.Nop())
	require.NoError(t, s.Start())
	s.Stop()
}

func TestEnqueueScan(t *testing.T) {
	req := &countingRequester{}
	s := NewScheduler(req, "0 0 6 * * *", zerolog.Nop())
	s.enqueueScan()
	assert.Equal(t, int32(1), req.calls.Load())

	req.err = errors.New("redis down")
	s.enqueueScan()
	assert.Equal(t, int32(2), req.calls.Load())
}
