package source

import (
	"context"
	"errors"
	"net"
	"strings"
)

// MaxDatagramSize is the largest syslog message read from a single datagram.
const MaxDatagramSize = 4096

// ListenUdp receives syslog datagrams on addr and passes each one, decoded as text, to handle.
// Datagrams are handled one at a time in the order received. It returns nil once ctx is done.
func ListenUdp(ctx context.Context, addr string, handle func(line string)) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, conn, handle)
}

// Serve reads from an already bound connection and closes it when ctx is done.
func Serve(ctx context.Context, conn net.PacketConn, handle func(line string)) error {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()
	defer conn.Close()

	buf := make([]byte, MaxDatagramSize)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		line := strings.ToValidUTF8(string(buf[:n]), "�")
		handle(strings.TrimRight(line, "\r\n\x00"))
	}
}
