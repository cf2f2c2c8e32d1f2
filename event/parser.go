package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const marker = "DHCPACK"

var ErrMalformed = errors.New("malformed DHCPACK line")

// Parse extracts a DhcpAck from a single syslog line. The boolean result is false for lines
// that carry no DHCPACK token; those are not errors.
//
// Both the dnsmasq form "DHCPACK(br0) <ip> <mac> [host]" and the ISC dhcpd form
// "DHCPACK on <ip> to <mac> [(host)] via <iface>" are recognized. Addresses are not validated.
func Parse(line string, ts time.Time) (DhcpAck, bool, error) {
	tokens := strings.Fields(line)
	index := -1
	for i, token := range tokens {
		if strings.Contains(token, marker) {
			index = i
			break
		}
	}
	if index == -1 {
		return DhcpAck{}, false, nil
	}

	fields := tokens[index+1:]
	fields = skipWord(fields, "on")
	if len(fields) < 1 {
		return DhcpAck{}, true, fmt.Errorf("%w: no IP address after %v", ErrMalformed, tokens[index])
	}
	ip := fields[0]

	fields = skipWord(fields[1:], "to")
	if len(fields) < 1 {
		return DhcpAck{}, true, fmt.Errorf("%w: no MAC address after %v", ErrMalformed, ip)
	}
	mac := strings.ToUpper(fields[0])

	var hostName *string
	if len(fields) > 1 && fields[1] != "via" {
		name := strings.TrimSuffix(strings.TrimPrefix(fields[1], "("), ")")
		hostName = &name
	}

	return DhcpAck{
		Ip:       ip,
		Mac:      mac,
		HostName: hostName,
		Ts:       ts,
	}, true, nil
}

func skipWord(fields []string, word string) []string {
	if len(fields) > 0 && fields[0] == word {
		return fields[1:]
	}
	return fields
}
