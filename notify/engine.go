package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ipastusi/dhcpreact/event"
	"github.com/ipastusi/dhcpreact/history"
	"github.com/ipastusi/dhcpreact/lookup/oui"
	"github.com/ipastusi/dhcpreact/state"
)

type DeviceStore interface {
	Load() (state.Devices, error)
	Save(devices state.Devices) error
}

type NameLookup interface {
	Name(mac string) (string, bool)
}

type HistoryAppender interface {
	Append(entry history.Entry) error
}

type Options struct {
	DefaultPolicy state.Policy
	MaxPerDay     int
	Template      string
	Dnd           Dnd
}

// Outcome describes what processing one event did.
type Outcome struct {
	Mac       string
	Record    state.Record
	FirstTime bool
	IpChanged bool
	// Notify is the policy decision after the do-not-disturb window was applied.
	Notify bool
	// Notified is true when Notify was set and delivery succeeded.
	Notified bool
	Message  string
}

// Engine is not safe for concurrent use; events must be processed one at a time.
type Engine struct {
	logger  *slog.Logger
	opts    Options
	store   DeviceStore
	lookup  NameLookup
	sender  Sender
	history HistoryAppender
	now     func() time.Time
}

func NewEngine(logger *slog.Logger, opts Options, store DeviceStore, lookup NameLookup, sender Sender, history HistoryAppender) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	return &Engine{
		logger:  logger,
		opts:    opts,
		store:   store,
		lookup:  lookup,
		sender:  sender,
		history: history,
		now:     time.Now,
	}
}

// SetClock replaces the clock consulted for the do-not-disturb window and history timestamps.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Process runs one event through reconciliation, policy, dispatch, history and persistence.
// A failure to load the state is logged and the event is evaluated against an empty state
// which is then not saved, so an unreadable state file is never overwritten. The returned
// error reports a failed save; the rest of the outcome is still valid.
func (e *Engine) Process(ctx context.Context, ev event.DhcpAck) (Outcome, error) {
	devices, loadErr := e.store.Load()
	if loadErr != nil {
		e.logger.Error("unable to load device state, using empty state", slog.Any("error", loadErr))
		devices = state.NewDevices()
	} else {
		n, merged := devices.Normalize(e.opts.DefaultPolicy)
		if n > 0 {
			e.logger.Info("migrated device records", slog.Int("count", n))
		}
		if len(merged) > 0 {
			e.logger.Warn("merged duplicate device records, kept the most recent", slog.Any("MACs", merged))
		}
	}

	var prior *state.Record
	if record, ok := devices[ev.Mac]; ok {
		prior = &record
	}
	firstTime := prior == nil
	ipChanged := !firstTime && prior.Ip != ev.Ip

	lookupName, inLookup := e.lookup.Name(ev.Mac)
	record := Reconcile(prior, ev, lookupName, inLookup, e.opts.DefaultPolicy)

	facts := Facts{
		FirstTime: firstTime,
		IpChanged: ipChanged,
		InLookup:  inLookup,
		Count:     record.ReconnectCountPerDay,
		MaxPerDay: e.opts.MaxPerDay,
	}
	policyYes := ShouldNotify(record.Notify, facts)

	vendor := oui.MacToVendor(ev.Mac)
	message := Render(e.opts.Template, Message{
		Mac:       ev.Mac,
		Ip:        ev.Ip,
		Name:      record.Name,
		HostName:  record.HostName,
		Vendor:    vendor,
		Count:     record.ReconnectCountPerDay,
		FirstTime: firstTime,
		IpChanged: ipChanged,
	})

	now := e.now()
	outside := e.opts.Dnd.Outside(now)
	outcome := Outcome{
		Mac:       ev.Mac,
		FirstTime: firstTime,
		IpChanged: ipChanged,
		Notify:    policyYes && outside,
		Message:   message,
	}
	e.logger.Debug("notification decision",
		slog.String("MAC", ev.Mac),
		slog.String("policy", record.Notify.String()),
		slog.Bool("policyDecision", policyYes),
		slog.Bool("outsideDnd", outside),
	)

	if outcome.Notify {
		n := Notification{
			Type:      typeOf(firstTime, ipChanged),
			Ip:        ev.Ip,
			Mac:       ev.Mac,
			Name:      orEmpty(record.Name),
			HostName:  orEmpty(record.HostName),
			MacVendor: vendor,
			Count:     record.ReconnectCountPerDay,
			Ts:        ev.Ts.UnixMilli(),
			Message:   message,
		}
		n.EventType = n.Type.describe()
		if err := e.sender.Send(ctx, n); err != nil {
			e.logger.Error("unable to deliver notification", slog.String("MAC", ev.Mac), slog.Any("error", err))
		} else {
			outcome.Notified = true
			e.logger.Info("notified", slog.String("MAC", ev.Mac), slog.String("message", message))
		}
	}

	if err := e.history.Append(history.Entry{Ts: now, Message: message, Notified: outcome.Notified}); err != nil {
		e.logger.Error("unable to append notification history", slog.Any("error", err))
	}

	outcome.Record = Commit(record, ev)
	devices[ev.Mac] = outcome.Record
	if loadErr != nil {
		return outcome, nil
	}
	if err := e.store.Save(devices); err != nil {
		return outcome, fmt.Errorf("unable to save device state: %w", err)
	}
	return outcome, nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
