package sweep

import (
	"errors"
	"fmt"
	"net"

	"github.com/projectdiscovery/mapcidr"
)

// ErrInvalidNetworkSpec is returned when the target network or prefix does
// not describe a valid IPv4 range. It is always surfaced before any probe
// is dispatched.
var ErrInvalidNetworkSpec = errors.New("invalid network specification")

// NetworkRange is a validated IPv4 network in CIDR form.
type NetworkRange struct {
	Address string
	Prefix  int
	network *net.IPNet
}

// ParseNetworkRange validates an address/prefix pair. Host bits in the
// address are masked off rather than rejected, so "192.168.1.5/24" targets
// 192.168.1.0/24.
func ParseNetworkRange(address string, prefix int) (*NetworkRange, error) {
	if prefix < 0 || prefix > 32 {
		return nil, fmt.Errorf("%w: prefix /%d out of range", ErrInvalidNetworkSpec, prefix)
	}
	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("%w: %q is not an IPv4 address", ErrInvalidNetworkSpec, address)
	}
	_, network, err := net.ParseCIDR(fmt.Sprintf("%s/%d", address, prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNetworkSpec, err)
	}
	return &NetworkRange{
		Address: network.IP.String(),
		Prefix:  prefix,
		network: network,
	}, nil
}

// CIDR returns the canonical CIDR notation of the range.
func (r *NetworkRange) CIDR() string {
	return r.network.String()
}

// Hosts returns the usable addresses of the range in ascending order.
// Network and broadcast addresses are excluded for prefixes up to /30.
// Point-to-point and host-route conventions apply to the degenerate
// prefixes: a /31 yields both addresses and a /32 yields the single one.
func (r *NetworkRange) Hosts() ([]string, error) {
	ips, err := mapcidr.IPAddresses(r.CIDR())
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", r.CIDR(), err)
	}
	if r.Prefix >= 31 {
		return ips, nil
	}

	usable := make([]string, 0, len(ips))
	for _, ipStr := range ips {
		ip := net.ParseIP(ipStr)
		if ip == nil || isNetworkOrBroadcast(ip, r.network) {
			continue
		}
		usable = append(usable, ipStr)
	}
	return usable, nil
}

// isNetworkOrBroadcast checks if an IP is the network or broadcast address
// of an IPv4 network.
func isNetworkOrBroadcast(ip net.IP, network *net.IPNet) bool {
	if ip.Equal(network.IP) {
		return true
	}
	broadcast := make(net.IP, len(network.IP))
	copy(broadcast, network.IP)
	for i := range broadcast {
		broadcast[i] |= ^network.Mask[i]
	}
	return ip.Equal(broadcast)
}

// compareAddr compares two dotted-quad addresses numerically per octet.
// Returns -1 if a < b, 0 if equal, 1 if a > b. Unparsable addresses sort
// after valid ones.
func compareAddr(a, b string) int {
	a4 := net.ParseIP(a).To4()
	b4 := net.ParseIP(b).To4()

	if a4 == nil && b4 == nil {
		return 0
	}
	if a4 == nil {
		return 1
	}
	if b4 == nil {
		return -1
	}

	for i := 0; i < len(a4); i++ {
		if a4[i] < b4[i] {
			return -1
		}
		if a4[i] > b4[i] {
			return 1
		}
	}
	return 0
}
