package connector

import (
	"context"
	"log/slog"
	"time"
)

// retryConnect calls connectFn until it succeeds, making at most
// 1+MaxRetries attempts with exponential backoff between them.
func retryConnect(ctx context.Context, opts RetryConfig, logger *slog.Logger, connectFn func(context.Context) (Connection, error)) (Connection, error) {
	delay := opts.BaseDelay
	if delay == 0 {
		delay = time.Second // default
	}
	backoff := opts.Backoff
	if backoff == 0 {
		backoff = 2
	}

	var err error
	for attempt := 0; ; attempt++ {
		var conn Connection
		conn, err = connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		if attempt >= opts.MaxRetries {
			return nil, err
		}

		logger.WarnContext(ctx, "connect failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * backoff)
		if opts.MaxDelay > 0 && delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}
}
