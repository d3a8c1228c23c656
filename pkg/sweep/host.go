package sweep

import (
	"context"
	"time"

	"github.com/projectdiscovery/netsweep/pkg/probe"
)

// HostRecord is the immutable snapshot produced for one confirmed-live
// address. Records are created exactly once and never mutated afterwards.
type HostRecord struct {
	Address      string        `json:"address"`
	Hostname     string        `json:"hostname"`
	ResponseTime time.Duration `json:"response_time"`
	OpenPorts    []string      `json:"open_ports"`
	LastSeen     time.Time     `json:"last_seen"`
}

// probeHost runs the full pipeline for one address: liveness check,
// hostname resolution, port scan, latency measurement. Dead addresses
// produce nil.
//
// ResponseTime is the duration of a second liveness verification performed
// after discovery, not the latency of the fastest successful probe. The
// value is therefore an upper bound that includes any failed TCP attempts
// preceding the answering probe; callers asserting on it should treat it
// as a coarse responsiveness signal.
func (s *Scanner) probeHost(ctx context.Context, addr string) *HostRecord {
	if !s.isLive(ctx, addr) {
		return nil
	}

	hostname := probe.ReverseDNS(ctx, addr, s.opts.DNSTimeout)
	openPorts := s.scanPorts(ctx, addr)

	start := time.Now()
	s.isLive(ctx, addr)
	responseTime := time.Since(start)

	return &HostRecord{
		Address:      addr,
		Hostname:     hostname,
		ResponseTime: responseTime,
		OpenPorts:    openPorts,
		LastSeen:     time.Now(),
	}
}
