package source

import (
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// PacketLine extracts the syslog message carried by a captured UDP packet.
func PacketLine(packet gopacket.Packet) (string, bool) {
	udpLayer := packet.Layer(layers.LayerTypeUDP)
	if udpLayer == nil {
		// custom BPF filter let a non UDP packet through
		return "", false
	}

	udp := udpLayer.(*layers.UDP)
	if len(udp.Payload) == 0 {
		return "", false
	}
	payload := udp.Payload
	if len(payload) > MaxDatagramSize {
		payload = payload[:MaxDatagramSize]
	}
	line := strings.ToValidUTF8(string(payload), "�")
	return strings.TrimRight(line, "\r\n\x00"), true
}

// Packets turns a packet stream into syslog lines, skipping packets that carry none.
// The returned channel is closed when packets is closed.
func Packets(packets <-chan gopacket.Packet) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for packet := range packets {
			if line, ok := PacketLine(packet); ok {
				lines <- line
			}
		}
	}()
	return lines
}
