package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/account-recovery/internal/metrics"
)

// Dispatcher wraps a Sender with the asynchronous single-attempt delivery
// contract: the caller is never blocked on the transport, and a hung
// provider is cut off by the dispatch timeout instead of holding up the
// request.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  *slog.Logger
}

func NewDispatcher(sender Sender, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		logger:  logger.With("component", "email_dispatcher"),
	}
}

// Dispatch submits msg to the transport and returns a channel that receives
// exactly one result. There is no automatic retry; a failed attempt is
// reported once and the message is gone.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) <-chan error {
	result := make(chan error, 1)

	go func() {
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		start := time.Now()
		err := d.sender.Send(sendCtx, msg)
		elapsed := time.Since(start)

		outcome := "delivered"
		if err != nil {
			outcome = "failed"
			d.logger.ErrorContext(ctx, "email dispatch failed", "to", msg.To, "error", err)
		}
		metrics.EmailDispatchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

		result <- err
	}()

	return result
}
