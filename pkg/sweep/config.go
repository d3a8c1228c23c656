package sweep

import (
	"os"
	"time"

	"github.com/projectdiscovery/gologger"
	sliceutil "github.com/projectdiscovery/utils/slice"
	"github.com/shirou/gopsutil/v3/process"
)

// Defaults for the tuning knobs. These are configuration constants, not
// architectural necessities; every one can be overridden via Options.
const (
	DefaultConcurrency = 50
	DefaultTCPTimeout  = 500 * time.Millisecond
	DefaultICMPTimeout = time.Second
	DefaultDNSTimeout  = time.Second
)

// DefaultPorts is the fixed service-port set checked on live hosts, in
// scan order.
var DefaultPorts = []int{80, 443, 22, 445, 3389}

// DefaultLivenessPorts is the TCP connect order used by the liveness
// verifier. Ordering matters for latency, not correctness: admin and
// file-sharing ports answer fastest on typical LAN hosts.
var DefaultLivenessPorts = []int{445, 80, 443}

const serviceUnknown = "Unknown"

var serviceNames = map[int]string{
	80:   "HTTP",
	443:  "HTTPS",
	22:   "SSH",
	445:  "SMB",
	3389: "RDP",
}

// Options configures a Scanner. Zero values fall back to the documented
// defaults.
type Options struct {
	// Network and Prefix describe the target range, e.g. "192.168.1.0"/24.
	Network string
	Prefix  int

	// Ports is the service-port set probed on live hosts.
	Ports []int
	// LivenessPorts is the TCP connect order used to decide liveness.
	LivenessPorts []int

	Concurrency int
	TCPTimeout  time.Duration
	ICMPTimeout time.Duration
	DNSTimeout  time.Duration

	// DisableICMP skips the ICMP fallback entirely; liveness then depends
	// on TCP alone.
	DisableICMP bool

	// Services overlays the built-in port-to-service map.
	Services map[int]string

	// OnRecord, when set, receives a sorted snapshot of the collection
	// after each discovered host. Invocations are best-effort: updates
	// arriving while a previous callback is still running are dropped.
	OnRecord func(records []*HostRecord)
}

func (o *Options) withDefaults() *Options {
	opts := *o
	if len(opts.Ports) == 0 {
		opts.Ports = DefaultPorts
	}
	opts.Ports = sliceutil.Dedupe(opts.Ports)
	if len(opts.LivenessPorts) == 0 {
		opts.LivenessPorts = DefaultLivenessPorts
	}
	opts.LivenessPorts = sliceutil.Dedupe(opts.LivenessPorts)
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	opts.Concurrency = maxPoolWidth(opts.Concurrency)
	if opts.TCPTimeout <= 0 {
		opts.TCPTimeout = DefaultTCPTimeout
	}
	if opts.ICMPTimeout <= 0 {
		opts.ICMPTimeout = DefaultICMPTimeout
	}
	if opts.DNSTimeout <= 0 {
		opts.DNSTimeout = DefaultDNSTimeout
	}
	return &opts
}

// maxPoolWidth caps the worker pool below the soft RLIMIT_NOFILE so a wide
// sweep cannot exhaust local descriptors. Platforms without rlimit
// introspection keep the requested width.
func maxPoolWidth(requested int) int {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return requested
	}
	rlimits, err := proc.RlimitUsage(false)
	if err != nil {
		return requested
	}
	for _, rl := range rlimits {
		if rl.Resource != process.RLIMIT_NOFILE {
			continue
		}
		// Leave room for stdio, the resolver and whatever else the
		// process already holds open.
		headroom := int(rl.Soft) - 64
		if headroom > 0 && requested > headroom {
			gologger.Warning().Msgf("concurrency %d exceeds descriptor headroom, using %d", requested, headroom)
			return headroom
		}
	}
	return requested
}
