// Package connectivity determines whether the device has working internet
// egress.
//
// The platform's native online signal is necessary but not sufficient: a
// device can be connected to a captive portal or a LAN without egress.
// When the native signal reports online, several well-known endpoints are
// probed in parallel and any single success is taken as proof of
// connectivity, so that one blocked or rate-limited endpoint can not cause
// a false offline verdict.
package connectivity

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultProbeTargets are independent, highly available endpoints that
// answer HEAD requests cheaply.
var DefaultProbeTargets = []string{
	"https://www.google.com/generate_204",
	"https://www.cloudflare.com/cdn-cgi/trace",
	"https://www.apple.com/library/test/success.html",
}

// DefaultProbeTimeout bounds each individual probe.
const DefaultProbeTimeout = 3 * time.Second

// Monitor tracks the online/offline state.
type Monitor struct {
	// NativeSignal is the platform's fast-path online indicator. When it
	// reports offline, no probe is attempted.
	NativeSignal func() bool

	// Targets are the endpoints probed when the native signal reports
	// online.
	Targets []string

	// ProbeTimeout bounds each individual probe request.
	ProbeTimeout time.Duration

	client *http.Client
	online atomic.Bool
}

// NewMonitor returns a Monitor with the default probe targets. The native
// signal defaults to always-online, callers on platforms with a real signal
// should set NativeSignal.
func NewMonitor() *Monitor {
	return &Monitor{
		NativeSignal: func() bool { return true },
		Targets:      DefaultProbeTargets,
		ProbeTimeout: DefaultProbeTimeout,
		client:       &http.Client{},
	}
}

// IsOnline returns the result of the most recent check.
func (m *Monitor) IsOnline() bool {
	return m.online.Load()
}

// Check determines the current connectivity state and caches it.
//
// The fast path consults the native signal: offline there is final. Online
// there triggers parallel HEAD probes against all targets; the device is
// online as soon as any probe succeeds and offline only when all probes
// fail or time out.
func (m *Monitor) Check(ctx context.Context) bool {
	online := m.check(ctx)

	if m.online.Swap(online) != online {
		log.Info().Bool("online", online).Msg("connectivity changed")
	}

	return online
}

func (m *Monitor) check(ctx context.Context) bool {
	if !m.NativeSignal() {
		return false
	}

	if len(m.Targets) == 0 {
		// Nothing to probe, trust the native signal
		return true
	}

	// The context is cancelled as soon as one probe succeeds, aborting the
	// remaining requests.
	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, probeCtx := errgroup.WithContext(probeCtx)

	var success atomic.Bool
	for _, target := range m.Targets {
		group.Go(func() error {
			if m.probe(probeCtx, target) {
				success.Store(true)
				cancel()
			}
			return nil
		})
	}

	_ = group.Wait()
	return success.Load()
}

func (m *Monitor) probe(ctx context.Context, target string) bool {
	ctx, cancel := context.WithTimeout(ctx, m.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		log.Warn().Err(err).Str("target", target).Msg("invalid probe target")
		return false
	}

	client := m.client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("target", target).Msg("probe failed")
		return false
	}
	defer resp.Body.Close()

	// Any response proves egress, captive portals are already filtered out
	// by probing multiple independent hosts.
	return resp.StatusCode < http.StatusInternalServerError
}
