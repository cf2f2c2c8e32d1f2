package state

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"
)

const TimeLayout = time.DateTime

type Record struct {
	Ip   string
	Name *string
	// HostName is the name last reported by the router, nil when none was reported.
	HostName             *string
	ReconnectCountPerDay int
	LastConnected        time.Time
	Notify               Policy
}

type recordJson struct {
	Ip                   string  `json:"ip"`
	Name                 *string `json:"name"`
	HostName             *string `json:"host_name"`
	ReconnectCountPerDay int     `json:"reconnect_count_per_day"`
	LastConnected        string  `json:"last_connected"`
	Notify               Policy  `json:"notify"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJson{
		Ip:                   r.Ip,
		Name:                 r.Name,
		HostName:             r.HostName,
		ReconnectCountPerDay: r.ReconnectCountPerDay,
		LastConnected:        r.LastConnected.Format(TimeLayout),
		Notify:               r.Notify,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var rj recordJson
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}
	lastConnected, err := time.ParseInLocation(TimeLayout, rj.LastConnected, time.Local)
	if err != nil {
		return err
	}
	*r = Record{
		Ip:                   rj.Ip,
		Name:                 rj.Name,
		HostName:             rj.HostName,
		ReconnectCountPerDay: rj.ReconnectCountPerDay,
		LastConnected:        lastConnected,
		Notify:               rj.Notify,
	}
	return nil
}

// Devices maps an upper-case MAC address to its record.
type Devices map[string]Record

func NewDevices() Devices {
	return Devices{}
}

func FromJson(data []byte) (Devices, error) {
	devices := NewDevices()
	err := json.Unmarshal(data, &devices)
	return devices, err
}

func (d Devices) ToJson() ([]byte, error) {
	return json.MarshalIndent(d, "", "    ")
}

// Normalize upper-cases keys and replaces unknown policies with defaultPolicy. It returns the
// number of records it changed and the keys under which differently cased duplicates were
// merged; of those the record connected last wins.
func (d Devices) Normalize(defaultPolicy Policy) (int, []string) {
	changed := 0
	var merged []string
	normalized := make(Devices, len(d))
	for mac, record := range d {
		key := strings.ToUpper(mac)
		if key != mac {
			changed++
		}
		if !record.Notify.Known() {
			record.Notify = defaultPolicy
			if key == mac {
				changed++
			}
		}
		if existing, ok := normalized[key]; ok {
			if !slices.Contains(merged, key) {
				merged = append(merged, key)
			}
			if !record.LastConnected.After(existing.LastConnected) {
				continue
			}
		}
		normalized[key] = record
	}

	clear(d)
	maps.Copy(d, normalized)
	slices.Sort(merged)
	return changed, merged
}
