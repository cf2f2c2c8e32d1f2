package state

import (
	"encoding/json"
	"fmt"
)

// Policy decides when a connecting device triggers a notification.
type Policy int

const (
	// PolicyUnknown stands for any stored value that is not a known policy, e.g. the legacy boolean form.
	PolicyUnknown Policy = iota
	PolicyNever
	PolicyFirstTime
	PolicyFirstTimeOrIpChange
	PolicyEachTime
	PolicyEachTimeMaxPerDay
	PolicyEachTimeMaxPerDayIntermittent
	PolicyNotInLookup
)

var policyNames = map[Policy]string{
	PolicyUnknown:                       "unknown",
	PolicyNever:                         "never",
	PolicyFirstTime:                     "first_time",
	PolicyFirstTimeOrIpChange:           "first_time_or_ip_change",
	PolicyEachTime:                      "each_time",
	PolicyEachTimeMaxPerDay:             "each_time_max_per_day",
	PolicyEachTimeMaxPerDayIntermittent: "each_time_max_per_day_intermittent",
	PolicyNotInLookup:                   "not_in_lookup",
}

func ParsePolicy(name string) (Policy, error) {
	for p, n := range policyNames {
		if n == name && p != PolicyUnknown {
			return p, nil
		}
	}
	return PolicyUnknown, fmt.Errorf("unknown notification policy: %v", name)
}

func (p Policy) Known() bool {
	return p > PolicyUnknown && p <= PolicyNotInLookup
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return policyNames[PolicyUnknown]
}

func (p Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON never fails: booleans, numbers and unknown names all decode to PolicyUnknown
// and are upgraded by Devices.Normalize.
func (p *Policy) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		*p = PolicyUnknown
		return nil
	}
	parsed, err := ParsePolicy(name)
	if err != nil {
		*p = PolicyUnknown
		return nil
	}
	*p = parsed
	return nil
}
