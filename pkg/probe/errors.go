package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"syscall"
)

// Kind classifies why a single probe attempt did not succeed.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindRefused     Kind = "refused"
	KindUnreachable Kind = "unreachable"
	KindResolve     Kind = "resolve"
	KindExec        Kind = "exec"
	KindCancelled   Kind = "cancelled"
)

// Error is the only error type returned by probe primitives. Transport
// errors are never surfaced directly; every failure is wrapped so callers
// can match on the kind and downgrade it to "probe did not succeed".
type Error struct {
	Kind Kind
	Addr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("probe %s: %s: %v", e.Addr, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, addr string, err error) *Error {
	return &Error{Kind: kind, Addr: addr, Err: err}
}

// classify maps a raw network error onto a probe error kind.
func classify(err error) Kind {
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindRefused
	}
	if errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return KindUnreachable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindResolve
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return KindExec
	}
	return KindUnreachable
}
