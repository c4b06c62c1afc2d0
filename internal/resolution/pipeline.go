package resolution

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/quantex/oms/pkg/logger"
)

// Service is what the pipeline needs from a resolver. Satisfied by
// *Resolver; tests substitute fakes.
type Service interface {
	Resolve(ctx context.Context, text string) Result
	SuggestCompletion(ctx context.Context, text string) string
}

// Callbacks notify the pipeline's owner. All callbacks are invoked
// without the pipeline lock held and may be nil.
type Callbacks struct {
	OnResult     func(Result) // a fresh result for the current text
	OnClear      func()       // result and suggestion must be dropped
	OnSuggestion func(string) // a completion for the current text
	OnResolving  func(bool)   // in-flight indicator changed
}

// Pipeline keeps a derived Result attached to a changing instruction
// text without flooding the resolver. Each edit restarts a quiet
// window; only the text present when the window elapses is resolved.
//
// A generation counter stands in for cancellation: every edit bumps
// it, and a completion is applied only if its captured generation is
// still current. Stale results are discarded silently.
type Pipeline struct {
	svc    Service
	logger *logger.Logger

	window time.Duration
	minLen int

	mu           sync.Mutex
	text         string
	gen          uint64
	resolving    bool
	resolveTimer *time.Timer
	suggestTimer *time.Timer

	cb Callbacks
}

// NewPipeline creates a debounced resolution pipeline.
func NewPipeline(svc Service, window time.Duration, minLen int, cb Callbacks, log *logger.Logger) *Pipeline {
	return &Pipeline{
		svc:    svc,
		logger: log,
		window: window,
		minLen: minLen,
		cb:     cb,
	}
}

// SetText records an instruction edit. Short text clears immediately;
// anything else (re)schedules a resolution after the quiet window.
func (p *Pipeline) SetText(text string) {
	p.mu.Lock()
	p.text = text
	p.gen++
	p.resolving = false
	p.stopTimersLocked()

	if len(strings.TrimSpace(text)) < p.minLen {
		p.mu.Unlock()
		p.notifyResolving(false)
		if p.cb.OnClear != nil {
			p.cb.OnClear()
		}
		return
	}

	gen := p.gen
	p.resolveTimer = time.AfterFunc(p.window, func() {
		p.runResolve(gen, text)
	})
	p.suggestTimer = time.AfterFunc(p.window, func() {
		p.runSuggest(gen, text)
	})
	p.mu.Unlock()

	p.notifyResolving(false)
}

// Cancel drops any pending or in-flight work. Used on field blur and
// when a new order replaces the draft.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	p.gen++
	p.resolving = false
	p.stopTimersLocked()
	p.mu.Unlock()

	p.notifyResolving(false)
}

// Resolving reports whether a resolution is currently in flight.
func (p *Pipeline) Resolving() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolving
}

func (p *Pipeline) stopTimersLocked() {
	if p.resolveTimer != nil {
		p.resolveTimer.Stop()
		p.resolveTimer = nil
	}
	if p.suggestTimer != nil {
		p.suggestTimer.Stop()
		p.suggestTimer = nil
	}
}

func (p *Pipeline) notifyResolving(v bool) {
	if p.cb.OnResolving != nil {
		p.cb.OnResolving(v)
	}
}

// runResolve fires when the quiet window elapses. The generation check
// runs twice: once before the call (the timer may have lost a race
// with a newer edit) and once after (the text may have changed while
// the call was in flight).
func (p *Pipeline) runResolve(gen uint64, text string) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.resolving = true
	p.mu.Unlock()
	p.notifyResolving(true)

	result := p.svc.Resolve(context.Background(), text)

	p.mu.Lock()
	if gen != p.gen {
		// A newer edit owns the state now; this result is stale.
		p.mu.Unlock()
		p.logger.WithField("text", text).Debug("Discarding stale resolution result")
		return
	}
	p.resolving = false
	p.mu.Unlock()

	p.notifyResolving(false)
	if p.cb.OnResult != nil {
		p.cb.OnResult(result)
	}
}

// runSuggest mirrors runResolve on an independent cadence. A completion
// is applied only if it still extends the current text.
func (p *Pipeline) runSuggest(gen uint64, text string) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	suggestion := p.svc.SuggestCompletion(context.Background(), text)
	if suggestion == "" {
		return
	}

	p.mu.Lock()
	current := p.text
	stale := gen != p.gen
	p.mu.Unlock()

	if stale {
		return
	}
	if suggestion == current {
		return
	}
	if !strings.HasPrefix(strings.ToLower(suggestion), strings.ToLower(current)) {
		return
	}

	if p.cb.OnSuggestion != nil {
		p.cb.OnSuggestion(suggestion)
	}
}
