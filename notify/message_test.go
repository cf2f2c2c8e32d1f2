package notify

import "testing"

func Test_Render(t *testing.T) {
	t.Parallel()

	laptop := "laptop"

	data := map[string]struct {
		template string
		message  Message
		expected string
	}{
		"default template": {
			DefaultTemplate,
			Message{Mac: "AA:BB:CC:DD:EE:FF", Ip: "192.168.1.50", Name: &laptop, Count: 3},
			"laptop connected, IP: 192.168.1.50, MAC: AA:BB:CC:DD:EE:FF, count today: 3",
		},
		"new device": {
			"{NAME} {IP}",
			Message{Ip: "192.168.1.50", Name: &laptop, FirstTime: true},
			"<b>(New)</b> laptop 192.168.1.50",
		},
		"ip changed": {
			"{NAME} {IP}",
			Message{Ip: "192.168.1.51", Name: &laptop, IpChanged: true},
			"<b>(IP-Changed)</b> laptop 192.168.1.51",
		},
		"missing names": {
			"{NAME}/{HOSTNAME}",
			Message{},
			"Unknown/Unknown",
		},
		"vendor and host name": {
			"{HOSTNAME} by {VENDOR}, {COUNT}x",
			Message{HostName: &laptop, Vendor: "Apple, Inc.", Count: 12},
			"laptop by Apple, Inc., 12x",
		},
		"no placeholders": {
			"device connected",
			Message{Mac: "AA:BB:CC:DD:EE:FF"},
			"device connected",
		},
	}

	for name, d := range data {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if actual := Render(d.template, d.message); actual != d.expected {
				t.Errorf("expected: %q, got: %q", d.expected, actual)
			}
		})
	}
}
