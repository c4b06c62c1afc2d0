package resolution

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/quantex/oms/internal/refdata"
	"github.com/quantex/oms/pkg/config"
	"github.com/quantex/oms/pkg/httputil"
	"github.com/quantex/oms/pkg/logger"
)

// Resolver is the two-tier instruction resolver: remote service first,
// deterministic local matcher as the fallback. Remote failures are
// never surfaced to callers; a degraded confidence score is the only
// observable signal.
//
// Reachability is a resolver-wide mode, not a per-call error: once a
// remote call or probe fails, every call goes local until a later
// probe succeeds.
type Resolver struct {
	remote *RemoteClient
	local  *Local
	logger *logger.Logger

	enabled   bool
	available atomic.Bool

	probe *cron.Cron
	sched string
}

// NewResolver wires the remote client and local fallback from config.
func NewResolver(cfg config.ResolverConfig, store *refdata.Store, log *logger.Logger) *Resolver {
	httpClient := httputil.NewWithTimeout(log, cfg.Timeout).
		DisableRetry().
		WithRateLimit(cfg.RateLimit, cfg.RateBurst)

	r := &Resolver{
		remote:  NewRemoteClient(cfg.BaseURL, httpClient, log),
		local:   NewLocal(store),
		logger:  log,
		enabled: cfg.Enabled,
		sched:   cfg.ProbeSchedule,
	}
	return r
}

// Start probes the remote service once and schedules periodic
// re-probes. Safe to skip entirely; the resolver then stays local.
func (r *Resolver) Start(ctx context.Context) error {
	if !r.enabled {
		r.logger.Info("Remote resolver disabled, using local resolution only")
		return nil
	}

	r.probeOnce(ctx)

	r.probe = cron.New()
	if _, err := r.probe.AddFunc(r.sched, func() {
		r.probeOnce(context.Background())
	}); err != nil {
		return err
	}
	r.probe.Start()

	return nil
}

// Stop halts the liveness probe.
func (r *Resolver) Stop() {
	if r.probe != nil {
		r.probe.Stop()
	}
}

// Available reports whether the remote resolver is currently reachable.
func (r *Resolver) Available() bool {
	return r.enabled && r.available.Load()
}

func (r *Resolver) probeOnce(ctx context.Context) {
	err := r.remote.Ping(ctx)
	was := r.available.Swap(err == nil)

	if err != nil && was {
		r.logger.WithError(err).Warn("Remote resolver unreachable, falling back to local resolution")
	} else if err == nil && !was {
		r.logger.Info("Remote resolver reachable")
	}
}

// markUnavailable records a remote failure so subsequent calls go local
// until the next successful probe.
func (r *Resolver) markUnavailable(err error) {
	if r.available.Swap(false) {
		r.logger.WithError(err).Warn("Remote resolver call failed, switching to local resolution")
	}
}

// Resolve turns instruction text into a Result. Never fails: any remote
// problem silently degrades to the local resolver for this call.
func (r *Resolver) Resolve(ctx context.Context, text string) Result {
	if r.Available() {
		res, err := r.remote.ParseTraderText(ctx, text)
		if err == nil {
			return res
		}
		r.markUnavailable(err)
	}
	return r.local.Resolve(text)
}

// SuggestCompletion returns the best completion for the input, or "".
func (r *Resolver) SuggestCompletion(ctx context.Context, text string) string {
	if r.Available() {
		suggestions, err := r.remote.Autocomplete(ctx, text)
		if err == nil {
			return firstUsable(suggestions, text)
		}
		r.markUnavailable(err)
	}
	return r.local.SuggestCompletion(text)
}

// ParseOrder extracts structured order fields from free text.
func (r *Resolver) ParseOrder(ctx context.Context, text string) Prefill {
	if r.Available() {
		prefill, err := r.remote.ParseOrder(ctx, text)
		if err == nil {
			return prefill
		}
		r.markUnavailable(err)
	}
	return r.local.ParseOrder(text)
}

// firstUsable picks the first suggestion that actually extends the
// input; anything shorter or unrelated is dropped.
func firstUsable(suggestions []string, text string) string {
	norm := strings.ToLower(strings.TrimSpace(text))
	for _, s := range suggestions {
		if s == "" || s == text {
			continue
		}
		if strings.HasPrefix(strings.ToLower(s), norm) && len(s) > len(text) {
			return s
		}
	}
	return ""
}
