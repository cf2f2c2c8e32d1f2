package notify

import (
	"strconv"
	"strings"
)

const (
	DefaultTemplate = "{NAME} connected, IP: {IP}, MAC: {MAC}, count today: {COUNT}"
	newMarker       = "<b>(New)</b> "
	ipChangedMarker = "<b>(IP-Changed)</b> "
	unknownName     = "Unknown"
)

type Message struct {
	Mac       string
	Ip        string
	Name      *string
	HostName  *string
	Vendor    string
	Count     int
	FirstTime bool
	IpChanged bool
}

// Render substitutes {MAC}, {IP}, {NAME}, {HOSTNAME}, {VENDOR} and {COUNT} in template and
// prefixes the new device and changed address markers.
func Render(template string, m Message) string {
	replacer := strings.NewReplacer(
		"{MAC}", m.Mac,
		"{IP}", m.Ip,
		"{NAME}", orUnknown(m.Name),
		"{HOSTNAME}", orUnknown(m.HostName),
		"{VENDOR}", m.Vendor,
		"{COUNT}", strconv.Itoa(m.Count),
	)

	var b strings.Builder
	if m.FirstTime {
		b.WriteString(newMarker)
	}
	if m.IpChanged {
		b.WriteString(ipChangedMarker)
	}
	b.WriteString(replacer.Replace(template))
	return b.String()
}

func orUnknown(s *string) string {
	if s == nil {
		return unknownName
	}
	return *s
}
