package notify

import (
	"time"

	"github.com/ipastusi/dhcpreact/event"
	"github.com/ipastusi/dhcpreact/state"
)

// Reconcile derives the updated record for ev from prior, which is nil for a device seen for
// the first time. Name and host name are always re-derived, an unknown policy is replaced by
// defaultPolicy and the reconnect count restarts at 1 on a new calendar day. Ip and
// LastConnected keep their previous values until Commit, so the policy can compare against
// the old address.
func Reconcile(prior *state.Record, ev event.DhcpAck, lookupName string, inLookup bool, defaultPolicy state.Policy) state.Record {
	var record state.Record
	if prior == nil {
		record = state.Record{
			Ip:                   ev.Ip,
			ReconnectCountPerDay: 1,
			LastConnected:        ev.Ts.Truncate(time.Second),
			Notify:               defaultPolicy,
		}
	} else {
		record = *prior
		if !record.Notify.Known() {
			record.Notify = defaultPolicy
		}
		if sameDay(record.LastConnected, ev.Ts) {
			record.ReconnectCountPerDay++
		} else {
			record.ReconnectCountPerDay = 1
		}
	}

	record.HostName = copyString(ev.HostName)
	if inLookup {
		record.Name = &lookupName
	} else {
		record.Name = copyString(ev.HostName)
	}
	return record
}

// Commit stores the event's address and time on the record. The time is truncated to the
// second precision the state file keeps.
func Commit(record state.Record, ev event.DhcpAck) state.Record {
	record.Ip = ev.Ip
	record.LastConnected = ev.Ts.Truncate(time.Second)
	return record
}

func sameDay(a time.Time, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
