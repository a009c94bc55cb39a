package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingSweeper struct{ calls atomic.Int32 }

func (c *countingSweeper) Sweep() int {
	c.calls.Add(1)
	return 1
}

func TestSessionSweeperRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sweeper := &countingSweeper{}
	done := StartSessionSweeper(ctx, sweeper, time.Millisecond, zap.NewNop())

	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ran")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSessionSweeperDisabled(t *testing.T) {
	done := StartSessionSweeper(context.Background(), nil, time.Second, zap.NewNop())
	select {
	case <-done:
	default:
		t.Fatal("disabled sweeper should report done immediately")
	}
}
