package event_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ipastusi/dhcpreact/event"
)

func Test_Parse(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 14, 10, 30, 0, 0, time.Local)
	laptop, phone := "laptop", "phone"

	data := map[string]struct {
		line     string
		expected event.DhcpAck
		found    bool
	}{
		"dnsmasq with host name": {
			"<30>Jun 14 10:30:00 router dnsmasq-dhcp[1234]: DHCPACK(br0) 192.168.1.10 aa:bb:cc:00:11:22 phone",
			event.DhcpAck{Ip: "192.168.1.10", Mac: "AA:BB:CC:00:11:22", HostName: &phone, Ts: ts},
			true,
		},
		"dnsmasq without host name": {
			"dnsmasq-dhcp[1234]: DHCPACK(br0) 192.168.1.11 aa:bb:cc:00:11:23",
			event.DhcpAck{Ip: "192.168.1.11", Mac: "AA:BB:CC:00:11:23", Ts: ts},
			true,
		},
		"isc dhcpd form": {
			"dhcpd: DHCPACK on 192.168.1.50 to aa:bb:cc:dd:ee:ff (laptop) via eth0",
			event.DhcpAck{Ip: "192.168.1.50", Mac: "AA:BB:CC:DD:EE:FF", HostName: &laptop, Ts: ts},
			true,
		},
		"isc dhcpd form without host name": {
			"dhcpd: DHCPACK on 192.168.1.51 to aa:bb:cc:dd:ee:00 via eth0",
			event.DhcpAck{Ip: "192.168.1.51", Mac: "AA:BB:CC:DD:EE:00", Ts: ts},
			true,
		},
		"opaque values propagate": {
			"DHCPACK not-an-ip not-a-mac",
			event.DhcpAck{Ip: "not-an-ip", Mac: "NOT-A-MAC", Ts: ts},
			true,
		},
		"not an event": {
			"dnsmasq-dhcp[1234]: DHCPREQUEST(br0) 192.168.1.10 aa:bb:cc:00:11:22",
			event.DhcpAck{},
			false,
		},
		"empty line": {"", event.DhcpAck{}, false},
	}

	for name, d := range data {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ack, found, err := event.Parse(d.line, ts)
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			if found != d.found {
				t.Fatalf("unexpected found flag, expected: %v, got: %v", d.found, found)
			}
			if diff := cmp.Diff(d.expected, ack); diff != "" {
				t.Fatalf("unexpected event: %v", diff)
			}
		})
	}
}

func Test_ParseMalformed(t *testing.T) {
	t.Parallel()

	data := map[string]string{
		"nothing after marker": "dnsmasq-dhcp[1234]: DHCPACK(br0)",
		"ip only":              "dnsmasq-dhcp[1234]: DHCPACK(br0) 192.168.1.10",
		"isc ip only":          "dhcpd: DHCPACK on 192.168.1.10 to",
	}

	for name, line := range data {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, found, err := event.Parse(line, time.Now())
			if !found {
				t.Fatal("marker not detected")
			}
			if !errors.Is(err, event.ErrMalformed) {
				t.Fatal("expected ErrMalformed, got:", err)
			}
		})
	}
}
