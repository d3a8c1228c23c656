package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsweep/pkg/probe"
	"github.com/projectdiscovery/netsweep/pkg/sweep"
	"github.com/tidwall/gjson"
)

// Runner contains the internal logic of the program: it turns parsed
// options into engine calls and renders whatever the engine hands back.
type Runner struct {
	options *Options
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	return &Runner{options: options}, nil
}

// Run executes a single sweep when a target was given on the command line,
// or drops into the interactive prompt loop otherwise.
func (r *Runner) Run(ctx context.Context) error {
	if r.options.NoICMP {
		gologger.Info().Msgf("ICMP fallback: disabled")
	} else if probe.ICMPAvailable() {
		gologger.Info().Msgf("ICMP fallback available: yes")
	} else {
		gologger.Info().Msgf("ICMP fallback available: no (TCP probes only)")
	}

	network, prefix, ok, err := r.target()
	if err != nil {
		return err
	}
	if ok {
		_, err := r.scan(ctx, network, prefix)
		if ctx.Err() != nil {
			gologger.Info().Msgf("Scan interrupted by user")
			return nil
		}
		return err
	}

	return r.interactive(ctx)
}

// target resolves the command-line target flags. ok is false when no
// target was supplied and the interactive loop should take over.
func (r *Runner) target() (network string, prefix int, ok bool, err error) {
	if r.options.Cidr != "" {
		ip, ipNet, parseErr := net.ParseCIDR(r.options.Cidr)
		if parseErr != nil || ip.To4() == nil {
			return "", 0, false, fmt.Errorf("%w: %q", sweep.ErrInvalidNetworkSpec, r.options.Cidr)
		}
		ones, _ := ipNet.Mask.Size()
		return ipNet.IP.String(), ones, true, nil
	}
	if r.options.Network != "" {
		return r.options.Network, r.options.Prefix, true, nil
	}
	return "", 0, false, nil
}

// interactive prompts for network/prefix pairs until the user declines to
// scan again or interrupts. Empty input re-prompts without an error;
// invalid specs log a message and re-prompt.
func (r *Runner) interactive(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)
	for ctx.Err() == nil {
		network, ok := prompt(reader, "Enter network address (e.g. 192.168.1.0): ")
		if !ok {
			break
		}
		if network == "" {
			continue
		}

		prefixStr, ok := prompt(reader, "Enter prefix length (e.g. 24): ")
		if !ok {
			break
		}
		if prefixStr == "" {
			continue
		}
		prefix, err := strconv.Atoi(prefixStr)
		if err != nil {
			gologger.Error().Msgf("Invalid prefix length: %q", prefixStr)
			continue
		}

		if _, err := r.scan(ctx, network, prefix); err != nil {
			if errors.Is(err, sweep.ErrInvalidNetworkSpec) {
				gologger.Error().Msgf("%s", err)
				continue
			}
			return err
		}
		if ctx.Err() != nil {
			break
		}

		answer, ok := prompt(reader, "Scan another network? (y/n): ")
		if !ok || !strings.EqualFold(answer, "y") {
			break
		}
	}
	if ctx.Err() != nil {
		gologger.Info().Msgf("Scan interrupted by user")
	}
	return nil
}

// prompt reads one trimmed line from the user. ok is false on EOF.
func prompt(reader *bufio.Reader, label string) (string, bool) {
	gologger.Silent().Msgf("%s", label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// scan runs one sweep against the given target and renders the outcome.
func (r *Runner) scan(ctx context.Context, network string, prefix int) (*sweep.ScanResult, error) {
	opts := &sweep.Options{
		Network:     network,
		Prefix:      prefix,
		Ports:       r.ports(),
		Concurrency: r.options.Concurrency,
		TCPTimeout:  time.Duration(r.options.TCPTimeoutMs) * time.Millisecond,
		ICMPTimeout: time.Duration(r.options.ICMPTimeoutMs) * time.Millisecond,
		DisableICMP: r.options.NoICMP,
		Services:    r.serviceMap(),
	}
	if !r.options.DisableProgress && !r.options.Silent {
		opts.OnRecord = func(records []*sweep.HostRecord) {
			gologger.Info().Msgf("Scanning... found %d active hosts", len(records))
		}
	}

	scanner, err := sweep.NewScanner(opts)
	if err != nil {
		return nil, err
	}

	gologger.Info().Msgf("Scanning %s", au.Cyan(scanner.Target().CIDR()))
	result, err := scanner.Run(ctx)
	if err != nil {
		return nil, err
	}

	r.render(result)
	if r.options.Output != "" {
		if err := writeOutput(r.options.Output, result); err != nil {
			gologger.Warning().Msgf("Could not write output file: %s", err)
		}
	}
	return result, nil
}

func (r *Runner) render(result *sweep.ScanResult) {
	elapsed := result.Elapsed.Seconds()
	if len(result.Records) == 0 {
		gologger.Info().Msgf("No active hosts found (scanned %d hosts in %.2fs)", result.TotalHosts, elapsed)
		return
	}
	gologger.Silent().Msgf("%s", renderTable(result.Records))
	gologger.Info().Msgf("Found %s active hosts out of %d scanned in %.2fs",
		au.Green(strconv.Itoa(result.ActiveHosts)), result.TotalHosts, elapsed)
}

// ports parses the user-supplied port list, dropping invalid entries with
// a warning. An empty result means the engine defaults apply.
func (r *Runner) ports() []int {
	var ports []int
	for _, value := range r.options.Ports {
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || port <= 0 || port > 65535 {
			gologger.Warning().Msgf("Skipping invalid port %q", value)
			continue
		}
		ports = append(ports, port)
	}
	return ports
}

// serviceMap loads the optional port-to-service overlay from a JSON file
// of the form {"8080": "HTTP-ALT"}.
func (r *Runner) serviceMap() map[int]string {
	if r.options.ServiceMapFile == "" {
		return nil
	}
	data, err := os.ReadFile(r.options.ServiceMapFile)
	if err != nil {
		gologger.Warning().Msgf("Could not read service map: %s", err)
		return nil
	}
	return parseServiceMap(data)
}

func parseServiceMap(data []byte) map[int]string {
	services := make(map[int]string)
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		port, err := strconv.Atoi(key.String())
		if err == nil && port > 0 && port <= 65535 {
			services[port] = value.String()
		}
		return true
	})
	return services
}

func writeOutput(path string, result *sweep.ScanResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling result: %v", err)
	}
	return os.WriteFile(path, data, 0644)
}
