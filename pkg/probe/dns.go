package probe

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/projectdiscovery/gcache"
)

// UnknownHost is the sentinel returned when a reverse lookup fails.
const UnknownHost = "Unknown"

// ptrCache memoizes PTR results, including negative ones, so repeated
// sweeps of the same range do not hammer the resolver.
var ptrCache = gcache.New[string, string](4096).
	LRU().
	Expiration(10 * time.Minute).
	Build()

// ReverseDNS resolves addr to a hostname via PTR lookup, bounded by
// timeout. Any failure or timeout yields the UnknownHost sentinel.
func ReverseDNS(ctx context.Context, addr string, timeout time.Duration) string {
	if host, err := ptrCache.Get(addr); err == nil {
		return host
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	host := UnknownHost
	names, err := net.DefaultResolver.LookupAddr(cctx, addr)
	if err == nil && len(names) > 0 {
		host = strings.TrimSuffix(names[0], ".")
	}
	_ = ptrCache.Set(addr, host)
	return host
}
