package report

import (
	"cmp"
	"net/netip"
	"slices"
	"strings"

	"github.com/ipastusi/dhcpreact/lookup/oui"
	"github.com/ipastusi/dhcpreact/state"
)

// Row is one device as shown by the report pages and the JSON API.
type Row struct {
	Mac                  string `json:"mac"`
	Ip                   string `json:"ip"`
	Name                 string `json:"name"`
	HostName             string `json:"hostName"`
	MacVendor            string `json:"macVendor"`
	ReconnectCountPerDay int    `json:"reconnectCountPerDay"`
	LastConnected        string `json:"lastConnected"`
	Notify               string `json:"notify"`
}

func RowsFrom(devices state.Devices) []Row {
	rows := make([]Row, 0, len(devices))
	for mac, record := range devices {
		rows = append(rows, Row{
			Mac:                  mac,
			Ip:                   record.Ip,
			Name:                 orEmpty(record.Name),
			HostName:             orEmpty(record.HostName),
			MacVendor:            oui.MacToVendor(mac),
			ReconnectCountPerDay: record.ReconnectCountPerDay,
			LastConnected:        record.LastConnected.Format(state.TimeLayout),
			Notify:               record.Notify.String(),
		})
	}
	return rows
}

// SortByReconnect orders by reconnect count, highest first.
func SortByReconnect(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Or(
			cmp.Compare(b.ReconnectCountPerDay, a.ReconnectCountPerDay),
			strings.Compare(a.Mac, b.Mac),
		)
	})
}

// SortByDatetime orders by last connection, most recent first, then by reconnect count.
// The layout of LastConnected sorts chronologically as a string.
func SortByDatetime(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Or(
			strings.Compare(b.LastConnected, a.LastConnected),
			cmp.Compare(b.ReconnectCountPerDay, a.ReconnectCountPerDay),
			strings.Compare(a.Mac, b.Mac),
		)
	})
}

// SortByIp orders numerically by IPv4 address; rows without a valid address go last.
func SortByIp(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		aIp, aErr := netip.ParseAddr(a.Ip)
		bIp, bErr := netip.ParseAddr(b.Ip)
		switch {
		case aErr != nil && bErr != nil:
			return cmp.Or(strings.Compare(a.Ip, b.Ip), strings.Compare(a.Mac, b.Mac))
		case aErr != nil:
			return 1
		case bErr != nil:
			return -1
		}
		return cmp.Or(aIp.Compare(bIp), strings.Compare(a.Mac, b.Mac))
	})
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
