package runtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/huitzo/packkit/internal/domain"
	"github.com/huitzo/packkit/pkg/huitzo"
)

const (
	defaultTimeout = 30 * time.Second
	backoffBase    = 1 * time.Second
	backoffCap     = 60 * time.Second
)

// CalculateBackoff returns the delay before retry n (0-based), doubling from
// backoffBase and capped at backoffCap.
func CalculateBackoff(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}
	d := backoffBase << uint(retry)
	if d <= 0 || d > backoffCap {
		return backoffCap
	}
	return d
}

// InvokeResult carries the handler output plus execution accounting.
type InvokeResult struct {
	Output   any
	Attempts int
	Duration time.Duration
}

// Executor runs registered commands under their declared execution contract:
// per-attempt timeout, bounded retries with exponential backoff, and no
// retries for fatal or cancelled calls.
type Executor struct {
	reg   *huitzo.Registry
	hctx  *huitzo.Context
	log   *slog.Logger
	sleep func(context.Context, time.Duration) error
}

func NewExecutor(reg *huitzo.Registry, hctx *huitzo.Context, log *slog.Logger) *Executor {
	return &Executor{
		reg:   reg,
		hctx:  hctx,
		log:   log,
		sleep: sleepCtx,
	}
}

func (e *Executor) Invoke(ctx context.Context, qualified string, args json.RawMessage) (InvokeResult, error) {
	cmd, ok := e.reg.Lookup(qualified)
	if !ok {
		return InvokeResult{}, &domain.OpError{
			Op:   "invoke.lookup",
			Kind: domain.KindNotFound,
			Path: qualified,
			Err:  domain.ErrNotFound,
		}
	}

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= cmd.Retries; attempt++ {
		out, err := e.runOnce(ctx, cmd, args, timeout)
		if err == nil {
			return InvokeResult{
				Output:   out,
				Attempts: attempt + 1,
				Duration: time.Since(start),
			}, nil
		}
		lastErr = err

		if huitzo.IsFatal(err) || ctx.Err() != nil || attempt == cmd.Retries {
			break
		}

		delay := CalculateBackoff(attempt)
		if e.log != nil {
			e.log.Warn("invoke.retry",
				"command", qualified,
				"attempt", attempt+1,
				"delay", delay.String(),
				"error", err.Error())
		}
		if serr := e.sleep(ctx, delay); serr != nil {
			lastErr = serr
			break
		}
	}

	return InvokeResult{Duration: time.Since(start)}, &domain.OpError{
		Op:   "invoke.run",
		Kind: domain.KindExecution,
		Path: qualified,
		Err:  lastErr,
	}
}

func (e *Executor) runOnce(ctx context.Context, cmd *huitzo.Command, args json.RawMessage, timeout time.Duration) (any, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan struct{})
	var (
		out any
		err error
	)
	go func() {
		defer close(done)
		out, err = cmd.Handler(attemptCtx, e.hctx, args)
	}()

	select {
	case <-done:
		return out, err
	case <-attemptCtx.Done():
		// The handler goroutine is abandoned; handlers are expected to
		// honor ctx and unwind shortly after.
		return nil, attemptCtx.Err()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
