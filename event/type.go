package event

import "time"

// DhcpAck is a lease acknowledgment seen in the router's syslog stream.
type DhcpAck struct {
	Ip  string
	Mac string
	// HostName is nil when the router did not report one.
	HostName *string
	Ts       time.Time
}
