package notify

// Type classifies a dispatched notification. The numeric code is part of notification file names.
type Type int

const (
	Reconnect Type = 100
	NewDevice Type = 200
	IpChange  Type = 201
)

func (t Type) describe() string {
	switch t {
	case Reconnect:
		return "RECONNECT"
	case NewDevice:
		return "NEW_DEVICE"
	case IpChange:
		return "IP_CHANGE"
	default:
		return "UNKNOWN"
	}
}

func typeOf(firstTime bool, ipChanged bool) Type {
	if firstTime {
		return NewDevice
	} else if ipChanged {
		return IpChange
	}
	return Reconnect
}

// Notification is what Senders deliver.
type Notification struct {
	// IP and MAC addresses are stored as strings, exactly as reported by the router
	EventType string `json:"eventType"`
	Type      Type   `json:"-"`
	Ip        string `json:"ip"`
	Mac       string `json:"mac"`
	Name      string `json:"name,omitempty"`
	HostName  string `json:"hostName,omitempty"`
	MacVendor string `json:"macVendor"`
	Count     int    `json:"count"`
	Ts        int64  `json:"ts"`
	Message   string `json:"message"`
}
