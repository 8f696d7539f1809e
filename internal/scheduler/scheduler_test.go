package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/notion-insights/internal/pipeline"
)

type countingRunner struct {
	calls atomic.Int32
}

func (c *countingRunner) RunFull(context.Context, int) (*pipeline.Result, error) {
	c.calls.Add(1)
	return &pipeline.Result{}, nil
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := New(&countingRunner{}, "not a cron spec")
	assert.Error(t, s.Start())
}

func TestStart_RunsOnSchedule(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, "@every 100ms")
	require.NoError(t, s.Start())
	defer s.Stop()

	deadline := time.After(3 * time.Second)
	for runner.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("pipeline never ran")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestStop_WaitsForInFlightRun(t *testing.T) {
	s := New(&countingRunner{}, "@every 1h")
	require.NoError(t, s.Start())

	done := s.Stop()
	select {
	case <-done.Done():
	case <-time.After(time.Second):
		t.Fatal("stop never completed")
	}
}
