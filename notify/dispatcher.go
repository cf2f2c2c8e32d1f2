package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Sender is a notification channel (Telegram, MQTT, files).
type Sender interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Dispatcher fans a notification out to every configured Sender. Delivery succeeds when at
// least one sender succeeds, or when there are no senders. Failures are logged, never retried.
type Dispatcher struct {
	logger  *slog.Logger
	senders []Sender
}

func NewDispatcher(logger *slog.Logger, senders ...Sender) Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return Dispatcher{
		logger:  logger,
		senders: senders,
	}
}

func (d Dispatcher) Name() string { return "dispatcher" }

func (d Dispatcher) Send(ctx context.Context, n Notification) error {
	if len(d.senders) == 0 {
		return nil
	}

	var errs []error
	delivered := false
	for _, s := range d.senders {
		if err := s.Send(ctx, n); err != nil {
			d.logger.Error("sender failed", slog.String("sender", s.Name()), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%v: %w", s.Name(), err))
			continue
		}
		delivered = true
	}
	if delivered {
		return nil
	}
	return errors.Join(errs...)
}
