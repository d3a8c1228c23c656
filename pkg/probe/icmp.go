package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	osutils "github.com/projectdiscovery/utils/os"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const echoPayload = "R-U-THERE"

var echoSeq atomic.Uint32

var (
	rawSocketOnce sync.Once
	rawSocketOK   bool
	pingBinOnce   sync.Once
	pingBinOK     bool
)

// rawSocketAvailable reports whether a privileged ICMP listener can be
// opened. Checked once; raw sockets require root/admin on most systems.
func rawSocketAvailable() bool {
	rawSocketOnce.Do(func() {
		conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
		if err == nil {
			rawSocketOK = true
			_ = conn.Close()
		}
	})
	return rawSocketOK
}

func pingBinaryAvailable() bool {
	pingBinOnce.Do(func() {
		_, err := exec.LookPath("ping")
		pingBinOK = err == nil
	})
	return pingBinOK
}

// ICMPAvailable reports whether any ICMP echo transport can be used: a raw
// socket when running privileged, otherwise the platform ping binary.
// Unavailability is not an error condition for a scan; it only means the
// ICMP fallback contributes no positives.
func ICMPAvailable() bool {
	return rawSocketAvailable() || pingBinaryAvailable()
}

// ICMPEcho sends a single echo request to addr and waits up to timeout for
// a matching reply. It uses a raw socket when available and falls back to
// invoking the platform ping binary otherwise. A nil return means the host
// answered.
func ICMPEcho(ctx context.Context, addr string, timeout time.Duration) error {
	if rawSocketAvailable() {
		return rawEcho(ctx, addr, timeout)
	}
	return pingEcho(ctx, addr, timeout)
}

// rawEcho performs the echo over a raw ICMP socket, matching the reply by
// echo ID, sequence number and peer address.
func rawEcho(ctx context.Context, addr string, timeout time.Duration) error {
	dst := net.ParseIP(addr)
	if dst == nil {
		return newError(KindResolve, addr, fmt.Errorf("invalid address: %s", addr))
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return newError(KindExec, addr, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	id := os.Getpid() & 0xffff
	seq := int(echoSeq.Add(1)) & 0xffff

	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: []byte(echoPayload),
		},
	}

	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return newError(KindExec, addr, err)
	}

	if _, err := conn.WriteTo(msgBytes, &net.IPAddr{IP: dst}); err != nil {
		return newError(classify(err), addr, err)
	}

	deadline := time.Now().Add(timeout)
	reply := make([]byte, 1500)
	for {
		select {
		case <-ctx.Done():
			return newError(KindCancelled, addr, ctx.Err())
		default:
		}

		if time.Now().After(deadline) {
			return newError(KindTimeout, addr, errors.New("no echo reply"))
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return newError(KindExec, addr, err)
		}

		n, peer, err := conn.ReadFrom(reply)
		if err != nil {
			return newError(classify(err), addr, err)
		}

		rm, err := icmp.ParseMessage(ipv4.ICMPTypeEchoReply.Protocol(), reply[:n])
		if err != nil {
			continue
		}
		if rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || echo.ID != id || echo.Seq != seq {
			continue
		}
		if peerAddr, ok := peer.(*net.IPAddr); !ok || !peerAddr.IP.Equal(dst) {
			continue
		}
		return nil
	}
}

// pingEcho shells out to the platform ping binary with a single-packet
// argument shape per OS family. The context deadline is the hard stop.
func pingEcho(ctx context.Context, addr string, timeout time.Duration) error {
	if !pingBinaryAvailable() {
		return newError(KindExec, addr, exec.ErrNotFound)
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var args []string
	if osutils.IsWindows() {
		args = []string{"-n", "1", "-w", strconv.Itoa(int(timeout.Milliseconds())), addr}
	} else {
		args = []string{"-c", "1", addr}
	}

	cmd := exec.CommandContext(cctx, "ping", args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		if cctx.Err() != nil {
			return newError(KindTimeout, addr, cctx.Err())
		}
		return newError(KindUnreachable, addr, err)
	}
	return nil
}
