package sweep

import (
	"context"
	"fmt"

	"github.com/projectdiscovery/netsweep/pkg/probe"
)

// scanPorts checks the configured port set against addr in fixed iteration
// order and returns "port(service)" entries for ports accepting
// connections. One attempt per port, no retries; a failed connect counts
// as closed.
func (s *Scanner) scanPorts(ctx context.Context, addr string) []string {
	open := []string{}
	for _, port := range s.opts.Ports {
		if ctx.Err() != nil {
			break
		}
		if err := probe.TCPConnect(ctx, addr, port, s.opts.TCPTimeout); err == nil {
			open = append(open, fmt.Sprintf("%d(%s)", port, s.serviceName(port)))
		}
	}
	return open
}

// serviceName resolves a port to its service label, preferring the
// user-supplied overlay over the built-in map.
func (s *Scanner) serviceName(port int) string {
	if name, ok := s.opts.Services[port]; ok {
		return name
	}
	if name, ok := serviceNames[port]; ok {
		return name
	}
	return serviceUnknown
}
