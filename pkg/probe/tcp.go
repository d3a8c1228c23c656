package probe

import (
	"context"
	"net"
	"strconv"
	"time"
)

// TCPConnect attempts a single TCP handshake against addr:port and closes
// the connection immediately on success. A nil return means the port
// accepted the connection within the timeout; every failure (refused,
// timeout, unreachable, host down) is returned as *Error.
func TCPConnect(ctx context.Context, addr string, port int, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(addr, strconv.Itoa(port)))
	if err != nil {
		return newError(classify(err), addr, err)
	}
	_ = conn.Close()
	return nil
}
