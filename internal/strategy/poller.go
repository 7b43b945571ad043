// Package strategy holds the coordination loops that wrap the gateway:
// OCO monitoring, TWAP chunked execution and grid trading. All of them are
// single sequential control flows that suspend between gateway calls.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
)

// ErrMonitorTimeout is returned when a bounded polling loop runs out of time
// with the orders still live on the exchange.
var ErrMonitorTimeout = errors.New("monitoring timed out, orders remain live")

// Poller runs a function at a fixed tick interval until it reports done.
// Transient gateway errors are retried with jittered backoff; non-transient
// errors abort immediately. A FailureBudget > 0 turns N consecutive
// transient failures into an abort as well.
type Poller struct {
	Interval      time.Duration
	MaxElapsed    time.Duration // 0 means unbounded
	FailureBudget int           // 0 means retry transient errors forever
	Logger        *zap.Logger
}

// Run drives the loop. fn is called once per tick and reports whether the
// loop is finished. Cancellation is cooperative: a canceled context returns
// ctx.Err() without touching any order.
func (p *Poller) Run(ctx context.Context, fn func(ctx context.Context) (done bool, err error)) error {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	retry := &backoff.Backoff{
		Min:    p.Interval,
		Max:    p.Interval * 6,
		Factor: 2,
		Jitter: true,
	}
	if retry.Min <= 0 {
		retry.Min = time.Second
		retry.Max = 30 * time.Second
	}

	start := time.Now()
	failures := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.MaxElapsed > 0 && time.Since(start) > p.MaxElapsed {
			return ErrMonitorTimeout
		}

		done, err := fn(ctx)
		if err != nil {
			if !trading.IsTransient(err) {
				return err
			}
			failures++
			if p.FailureBudget > 0 && failures >= p.FailureBudget {
				return fmt.Errorf("aborting after %d consecutive poll failures: %w", failures, err)
			}
			wait := retry.Duration()
			logger.Warn("poll failed, retrying",
				zap.Int("consecutive_failures", failures),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		failures = 0
		retry.Reset()
		if done {
			return nil
		}
		if err := sleep(ctx, p.Interval); err != nil {
			return err
		}
	}
}

// sleep waits for d or until the context is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
