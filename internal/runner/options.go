package runner

import (
	"os"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/netsweep/pkg/version"
	envutil "github.com/projectdiscovery/utils/env"
)

var au *aurora.Aurora

var (
	ConcurrencyEnv   = envutil.GetEnvOrDefault("NETSWEEP_CONCURRENCY", 50)
	TCPTimeoutMsEnv  = envutil.GetEnvOrDefault("NETSWEEP_TCP_TIMEOUT_MS", 500)
	ICMPTimeoutMsEnv = envutil.GetEnvOrDefault("NETSWEEP_ICMP_TIMEOUT_MS", 1000)
)

// Options contains the configuration options for a sweep run.
type Options struct {
	Cidr    string
	Network string
	Prefix  int

	Ports          goflags.StringSlice
	ServiceMapFile string
	Concurrency    int
	TCPTimeoutMs   int
	ICMPTimeoutMs  int
	NoICMP         bool

	Output          string
	DisableProgress bool

	Verbose bool
	Silent  bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`netsweep discovers live hosts on a local IPv4 subnet and reports, per host, reachability, responsiveness, open service ports and reverse DNS name`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.Cidr, "cidr", "d", "", "target network in CIDR notation (e.g. 192.168.1.0/24)"),
		flagSet.StringVarP(&options.Network, "network", "n", "", "target network address (e.g. 192.168.1.0)"),
		flagSet.IntVarP(&options.Prefix, "prefix", "p", 24, "network prefix length (0-32)"),
	)

	flagSet.CreateGroup("probes", "Probes",
		flagSet.StringSliceVarP(&options.Ports, "ports", "tp", nil, "service ports to check on live hosts (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.StringVarP(&options.ServiceMapFile, "service-map", "sm", "", "json file mapping ports to service names"),
		flagSet.IntVarP(&options.Concurrency, "concurrency", "c", ConcurrencyEnv, "number of concurrent host probes"),
		flagSet.IntVar(&options.TCPTimeoutMs, "timeout", TCPTimeoutMsEnv, "tcp connect timeout in milliseconds"),
		flagSet.IntVarP(&options.ICMPTimeoutMs, "icmp-timeout", "it", ICMPTimeoutMsEnv, "icmp echo timeout in milliseconds"),
		flagSet.BoolVarP(&options.NoICMP, "no-icmp", "ni", false, "disable the icmp liveness fallback"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "write final results to file in json format"),
		flagSet.BoolVarP(&options.DisableProgress, "disable-progress", "dp", false, "disable interim progress output"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	// configure aurora for logging
	au = aurora.New(aurora.WithColors(true))

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		au = aurora.New(aurora.WithColors(false))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}
