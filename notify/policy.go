package notify

import "github.com/ipastusi/dhcpreact/state"

// Facts are the inputs a policy is evaluated against. Count is the reconnect count after
// this event has been applied.
type Facts struct {
	FirstTime bool
	IpChanged bool
	InLookup  bool
	Count     int
	MaxPerDay int
}

// intermittentEvery makes a device over its daily cap resurface on every 10th reconnect (11th, 21st, ...).
const intermittentEvery = 10

func ShouldNotify(policy state.Policy, facts Facts) bool {
	switch policy {
	case state.PolicyNever:
		return false
	case state.PolicyFirstTime:
		return facts.FirstTime
	case state.PolicyFirstTimeOrIpChange:
		return facts.FirstTime || facts.IpChanged
	case state.PolicyEachTime:
		return true
	case state.PolicyEachTimeMaxPerDay:
		return facts.Count <= facts.MaxPerDay
	case state.PolicyEachTimeMaxPerDayIntermittent:
		return facts.Count <= facts.MaxPerDay || facts.Count%intermittentEvery == 1
	case state.PolicyNotInLookup:
		return !facts.InLookup
	default:
		return false
	}
}
