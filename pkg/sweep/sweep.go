package sweep

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"
	mapsutil "github.com/projectdiscovery/utils/maps"
	syncutil "github.com/projectdiscovery/utils/sync"
	"github.com/rs/xid"
)

// Scanner coordinates sweeps of a network range. One Scanner can run
// multiple sweeps; each Run creates a fresh Session so results never leak
// between sweeps.
type Scanner struct {
	opts         *Options
	target       *NetworkRange
	progressBusy atomic.Bool
}

// NewScanner validates the target range and returns a configured scanner.
// A validation failure wraps ErrInvalidNetworkSpec and happens before any
// probe is dispatched.
func NewScanner(opts *Options) (*Scanner, error) {
	target, err := ParseNetworkRange(opts.Network, opts.Prefix)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		opts:   opts.withDefaults(),
		target: target,
	}, nil
}

// Target returns the validated range the scanner probes.
func (s *Scanner) Target() *NetworkRange {
	return s.target
}

// Session is the transient state of a single sweep: the shared result
// collection plus the worker pool draining into it. It is discarded when
// the sweep finishes.
type Session struct {
	ID      string
	Target  *NetworkRange
	Started time.Time

	results *mapsutil.SyncLockMap[string, *HostRecord]
	pool    *syncutil.AdaptiveWaitGroup
}

// snapshot returns a consistent copy of the collection, sorted ascending
// by address octets.
func (sess *Session) snapshot() []*HostRecord {
	var records []*HostRecord
	_ = sess.results.Iterate(func(_ string, record *HostRecord) error {
		records = append(records, record)
		return nil
	})
	sortRecords(records)
	return records
}

// ScanResult is the final outcome of one sweep.
type ScanResult struct {
	Records     []*HostRecord `json:"records"`
	Elapsed     time.Duration `json:"elapsed"`
	TotalHosts  int           `json:"total_hosts"`
	ActiveHosts int           `json:"active_hosts"`
}

// Run performs one sweep of the target range. Each usable address gets one
// probe task on a bounded worker pool; completed probes append to a
// synchronized collection keyed by address, so an address can never appear
// twice. Cancelling the context stops dispatch immediately and lets
// in-flight probes finish or abandon; their partial work is never
// appended. Run returns the records collected so far even when cancelled.
func (s *Scanner) Run(ctx context.Context) (*ScanResult, error) {
	hosts, err := s.target.Hosts()
	if err != nil {
		return nil, err
	}

	pool, err := syncutil.New(syncutil.WithSize(s.opts.Concurrency))
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("failed to start worker pool")
	}

	session := &Session{
		ID:      xid.New().String(),
		Target:  s.target,
		Started: time.Now(),
		results: mapsutil.NewSyncLockMap[string, *HostRecord](),
		pool:    pool,
	}
	gologger.Verbose().Msgf("session %s: sweeping %s (%d hosts, %d workers)",
		session.ID, s.target.CIDR(), len(hosts), s.opts.Concurrency)

	for _, addr := range hosts {
		if ctx.Err() != nil {
			break
		}

		addr := addr
		pool.Add()
		go func() {
			defer pool.Done()
			defer func() {
				// A failing probe must never take sibling probes with it.
				if r := recover(); r != nil {
					gologger.Verbose().Msgf("probe for %s abandoned: %v", addr, r)
				}
			}()

			record := s.probeHost(ctx, addr)
			if record == nil || ctx.Err() != nil {
				return
			}
			_ = session.results.Set(record.Address, record)
			s.notifyProgress(session)
		}()
	}
	pool.Wait()

	records := session.snapshot()
	result := &ScanResult{
		Records:     records,
		Elapsed:     time.Since(session.Started),
		TotalHosts:  len(hosts),
		ActiveHosts: len(records),
	}
	gologger.Verbose().Msgf("session %s: %d/%d hosts active in %s",
		session.ID, result.ActiveHosts, result.TotalHosts, result.Elapsed.Round(time.Millisecond))
	return result, nil
}

// notifyProgress hands a fresh snapshot to the progress callback. The
// callback runs on the calling worker's goroutine behind a drop-if-busy
// gate, so slow rendering never stalls the next probe.
func (s *Scanner) notifyProgress(session *Session) {
	if s.opts.OnRecord == nil {
		return
	}
	if !s.progressBusy.CompareAndSwap(false, true) {
		return
	}
	defer s.progressBusy.Store(false)
	s.opts.OnRecord(session.snapshot())
}

func sortRecords(records []*HostRecord) {
	sort.Slice(records, func(i, j int) bool {
		return compareAddr(records[i].Address, records[j].Address) < 0
	})
}
