package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ipastusi/dhcpreact/event"
	"github.com/ipastusi/dhcpreact/notify"
)

type Processor interface {
	Process(ctx context.Context, ev event.DhcpAck) (notify.Outcome, error)
}

type LineArchiver interface {
	Write(line string, now time.Time) error
}

// Observer is told about every processed event, after the state was saved.
type Observer func(ev event.DhcpAck, outcome notify.Outcome)

// Monitor is the per-line pipeline. It owns the only write path to the device state and
// must be driven from a single goroutine.
type Monitor struct {
	logger    *slog.Logger
	deduper   event.Deduper
	archiver  LineArchiver
	filter    event.Filter
	processor Processor
	observers []Observer
	now       func() time.Time
}

// New builds a Monitor; archiver may be nil when archiving is disabled.
func New(logger *slog.Logger, archiver LineArchiver, filter event.Filter, processor Processor, observers ...Observer) *Monitor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Monitor{
		logger:    logger,
		archiver:  archiver,
		filter:    filter,
		processor: processor,
		observers: observers,
		now:       time.Now,
	}
}

// Run handles lines until the channel is closed or ctx is done.
func (m *Monitor) Run(ctx context.Context, lines <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			m.HandleLine(ctx, line)
		}
	}
}

// HandleLine never fails; whatever goes wrong with one line is logged and the next line is
// processed normally.
func (m *Monitor) HandleLine(ctx context.Context, line string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic while handling line", slog.Any("panic", r), slog.String("line", line))
		}
	}()

	if err := m.handle(ctx, line); err != nil {
		level := slog.LevelError
		if errors.Is(err, event.ErrMalformed) {
			level = slog.LevelWarn
		}
		m.logger.Log(ctx, level, "unable to handle line", slog.Any("error", err), slog.String("line", line))
	}
}

func (m *Monitor) handle(ctx context.Context, line string) error {
	if m.deduper.IsRepeat(line) {
		m.logger.Debug("duplicate line dropped")
		return nil
	}

	// the state file keeps whole seconds
	now := m.now().Truncate(time.Second)
	if m.archiver != nil {
		if err := m.archiver.Write(line, now); err != nil {
			// archiving is best effort, the event is still processed
			m.logger.Error("unable to archive line", slog.Any("error", err))
		}
	}

	ev, found, err := event.Parse(line, now)
	if err != nil {
		return err
	} else if !found {
		return nil
	}

	if m.filter.IsExcluded(ev.Ip, ev.Mac) {
		m.logger.Debug("excluded device", slog.String("IP", ev.Ip), slog.String("MAC", ev.Mac))
		return nil
	}

	outcome, err := m.processor.Process(ctx, ev)
	if err != nil {
		err = fmt.Errorf("processing %v: %w", ev.Mac, err)
	}
	for _, observe := range m.observers {
		observe(ev, outcome)
	}
	return err
}
