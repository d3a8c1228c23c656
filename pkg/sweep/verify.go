package sweep

import (
	"context"

	"github.com/projectdiscovery/netsweep/pkg/probe"
)

// isLive reports whether addr answers any probe. TCP connect attempts run
// first against a short list of commonly open ports, short-circuiting on
// the first success; TCP is faster than ICMP and works through some
// ICMP-filtering firewalls. Hosts with every listed port closed are caught
// by a single ICMP echo with a longer timeout.
func (s *Scanner) isLive(ctx context.Context, addr string) bool {
	for _, port := range s.opts.LivenessPorts {
		if ctx.Err() != nil {
			return false
		}
		if err := probe.TCPConnect(ctx, addr, port, s.opts.TCPTimeout); err == nil {
			return true
		}
	}
	if s.opts.DisableICMP || !probe.ICMPAvailable() {
		return false
	}
	return probe.ICMPEcho(ctx, addr, s.opts.ICMPTimeout) == nil
}
