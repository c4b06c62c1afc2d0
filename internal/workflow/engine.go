package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quantex/oms/internal/order"
	"github.com/quantex/oms/internal/refdata"
	"github.com/quantex/oms/internal/resolution"
	"github.com/quantex/oms/internal/summary"
	"github.com/quantex/oms/internal/validation"
	"github.com/quantex/oms/pkg/config"
	"github.com/quantex/oms/pkg/logger"
)

// Engine drives an order draft through the workflow stages, halting at
// human-in-the-loop checkpoints until the operator responds.
//
// Scheduling model: every deferred transition runs through
// time.AfterFunc guarded by a generation counter. Bumping the counter
// is the only cancellation primitive; a fired timer whose captured
// generation is no longer current does nothing. Handlers therefore
// never race: the newest event always invalidates older scheduled
// work before installing its own.
type Engine struct {
	cfg      config.WorkflowConfig
	store    *refdata.Store
	resolver Resolver
	pipeline *resolution.Pipeline
	logger   *logger.Logger

	mu            sync.Mutex
	gen           uint64
	draft         *order.Draft
	stage         Stage
	verdict       *validation.Verdict
	suggestion    *validation.Suggestion
	confirmedAlgo string
	resolving     bool
	completion    string
	ticket        *summary.Ticket
	events        []Event

	subscribers []func(Snapshot)
}

// New creates an engine with an empty draft in the entry stage.
func New(cfg config.WorkflowConfig, store *refdata.Store, resolver Resolver, log *logger.Logger) *Engine {
	e := &Engine{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		logger:   log,
		draft:    order.NewDraft(),
		stage:    StageEntry,
	}

	e.pipeline = resolution.NewPipeline(resolver, cfg.DebounceWindow, cfg.MinResolveLength, resolution.Callbacks{
		OnResult:     e.applyResolution,
		OnClear:      e.clearResolution,
		OnSuggestion: e.applyCompletion,
		OnResolving:  e.setResolving,
	}, log)

	e.logEventLocked("Session started")
	return e
}

// Subscribe registers a callback invoked with a fresh snapshot after
// every state change.
func (e *Engine) Subscribe(fn func(Snapshot)) {
	e.mu.Lock()
	e.subscribers = append(e.subscribers, fn)
	e.mu.Unlock()
}

// Snapshot returns a read-only copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Stage:         e.stage,
		Draft:         e.draft.Clone(),
		ConfirmedAlgo: e.confirmedAlgo,
		Resolving:     e.resolving,
		Completion:    e.completion,
		Ticket:        e.ticket,
		Events:        append([]Event(nil), e.events...),
	}
	if e.verdict != nil {
		v := *e.verdict
		snap.Verdict = &v
	}
	if e.suggestion != nil {
		s := *e.suggestion
		snap.Suggestion = &s
	}
	return snap
}

// notify publishes the current snapshot to all subscribers. Must be
// called without the lock held.
func (e *Engine) notify() {
	e.mu.Lock()
	snap := e.snapshotLocked()
	subs := append([]func(Snapshot){}, e.subscribers...)
	e.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (e *Engine) logEventLocked(format string, args ...interface{}) {
	e.events = append(e.events, Event{At: time.Now(), Message: fmt.Sprintf(format, args...)})
}

// editableLocked guards draft edits: once the order is in flight past
// validation the draft is frozen.
func (e *Engine) editableLocked() error {
	if e.stage == StageEntry || e.stage == StageValidation {
		return nil
	}
	return ErrOrderInFlight
}

// ---- Draft edits ------------------------------------------------------

// SetSecurity selects a security by symbol.
func (e *Engine) SetSecurity(symbol string) error {
	sec, ok := e.store.Security(symbol)
	if !ok {
		return ErrUnknownSecurity
	}

	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.draft.Security = &sec
	e.mu.Unlock()

	e.notify()
	return nil
}

// SetQuantity records the raw quantity input.
func (e *Engine) SetQuantity(quantity string) error {
	return e.editDraft(func(d *order.Draft) { d.Quantity = quantity })
}

// SetLimitPrice sets the limit price; nil makes it a market order.
func (e *Engine) SetLimitPrice(price *float64) error {
	return e.editDraft(func(d *order.Draft) { d.LimitPrice = price })
}

// SetTimeInForce sets the order lifetime policy. Leaving GTD clears the
// expiry date so a stale date cannot ride along.
func (e *Engine) SetTimeInForce(tif order.TimeInForce) error {
	if !tif.Valid() {
		return fmt.Errorf("invalid time in force %q", tif)
	}
	return e.editDraft(func(d *order.Draft) {
		d.TimeInForce = tif
		if tif != order.TIFGTD {
			d.GTDDate = nil
		}
	})
}

// SetGTDDate sets the GTD expiry date.
func (e *Engine) SetGTDDate(date *time.Time) error {
	return e.editDraft(func(d *order.Draft) { d.GTDDate = date })
}

// SetContactMethod records how the client is reached.
func (e *Engine) SetContactMethod(m order.ContactMethod) error {
	return e.editDraft(func(d *order.Draft) { d.ContactMethod = m })
}

func (e *Engine) editDraft(edit func(*order.Draft)) error {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	edit(e.draft)
	e.mu.Unlock()

	e.notify()
	return nil
}

// SetInstructions records an instruction edit and feeds the debounced
// resolution pipeline.
func (e *Engine) SetInstructions(text string) error {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.draft.Instructions = text
	e.completion = ""
	e.mu.Unlock()

	// Outside the lock: the pipeline calls back into the engine.
	e.pipeline.SetText(text)
	e.notify()
	return nil
}

// ClearInstructions empties the instruction text, dropping any attached
// resolution and pending pipeline work.
func (e *Engine) ClearInstructions() error {
	return e.SetInstructions("")
}

// CancelResolution drops pending resolution work, e.g. when the
// operator leaves the instruction field.
func (e *Engine) CancelResolution() {
	e.pipeline.Cancel()
}

// Log returns a copy of the session event log in order of occurrence.
func (e *Engine) Log() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Event(nil), e.events...)
}

// PrefillFromText seeds the draft from a natural-language order
// sentence via the resolver.
func (e *Engine) PrefillFromText(ctx context.Context, text string) error {
	prefill := e.resolver.ParseOrder(ctx, text)

	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	if prefill.Security != nil {
		sec := *prefill.Security
		e.draft.Security = &sec
	}
	if prefill.Quantity != nil {
		e.draft.Quantity = fmt.Sprintf("%d", *prefill.Quantity)
	}
	if prefill.Price != nil {
		p := *prefill.Price
		e.draft.LimitPrice = &p
	}
	if prefill.TimeInForce != "" {
		e.draft.TimeInForce = order.ParseTimeInForce(prefill.TimeInForce)
	}
	if prefill.ContactMethod != "" {
		e.draft.ContactMethod = order.ContactMethod(prefill.ContactMethod)
	}
	e.logEventLocked("Draft prefilled from order text")
	e.mu.Unlock()

	e.notify()
	return nil
}

// ---- Pipeline callbacks ----------------------------------------------

func (e *Engine) applyResolution(res resolution.Result) {
	e.mu.Lock()
	// The pipeline already discards stale results; this guards the
	// engine against a result outliving a NewOrder reset.
	if e.draft.Instructions != res.Text {
		e.mu.Unlock()
		return
	}
	e.draft.Resolution = &res
	e.mu.Unlock()

	e.notify()
}

func (e *Engine) clearResolution() {
	e.mu.Lock()
	e.draft.Resolution = nil
	e.completion = ""
	e.mu.Unlock()

	e.notify()
}

func (e *Engine) applyCompletion(s string) {
	e.mu.Lock()
	if !strings.HasPrefix(strings.ToLower(s), strings.ToLower(e.draft.Instructions)) {
		e.mu.Unlock()
		return
	}
	e.completion = s
	e.mu.Unlock()

	e.notify()
}

func (e *Engine) setResolving(v bool) {
	e.mu.Lock()
	changed := e.resolving != v
	e.resolving = v
	e.mu.Unlock()

	if changed {
		e.notify()
	}
}

// ---- Workflow progression --------------------------------------------

// SubmitForValidation validates the draft and either halts with the
// verdict or starts the auto-advance toward execution.
func (e *Engine) SubmitForValidation() error {
	e.mu.Lock()
	if e.suggestion != nil {
		e.mu.Unlock()
		return ErrSuggestionPending
	}
	if e.stage != StageEntry && e.stage != StageValidation {
		e.mu.Unlock()
		return ErrOrderInFlight
	}

	e.gen++ // invalidate any scheduled advance from a prior attempt
	e.stage = StageValidation

	verdict, suggestion := validation.Validate(e.draft, e.store)
	e.verdict = &verdict
	e.suggestion = suggestion

	switch verdict.Level {
	case validation.LevelError:
		e.logEventLocked("Validation failed: %s", verdict.Message)
	case validation.LevelWarning:
		e.logEventLocked("Validation halted: %s", verdict.Message)
	case validation.LevelSuccess:
		e.logEventLocked("Validation passed, submitting order")
		e.scheduleLocked(e.cfg.StageDelay, e.advanceToSubmission)
	}
	e.mu.Unlock()

	e.notify()
	return nil
}

// scheduleLocked arms a deferred transition bound to the current
// generation. The caller must hold the lock.
func (e *Engine) scheduleLocked(delay time.Duration, fn func(gen uint64)) {
	gen := e.gen
	time.AfterFunc(delay, func() { fn(gen) })
}

func (e *Engine) advanceToSubmission(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.stage = StageSubmission
	e.logEventLocked("Order submitted to broker")
	e.scheduleLocked(e.cfg.StageDelay, e.advanceToMarket)
	e.mu.Unlock()

	e.notify()
}

// advanceToMarket enters the market stage and decides whether the
// instruction checkpoint halts progression.
func (e *Engine) advanceToMarket(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.stage = StageMarket
	e.logEventLocked("Order reached market")

	if strings.TrimSpace(e.draft.Instructions) == "" {
		e.scheduleLocked(e.cfg.StageDelay, e.advanceToExecution)
		e.mu.Unlock()
		e.notify()
		return
	}

	if res := e.draft.Resolution; res != nil && res.HasAlgo() {
		e.suggestion = &validation.Suggestion{Kind: validation.SuggestConfirmAlgorithm, AlgoID: res.Algo}
		e.logEventLocked("Detected algorithm %s awaiting confirmation", res.Algo)
	} else {
		e.suggestion = &validation.Suggestion{Kind: validation.SuggestSelectAlgorithm}
		e.logEventLocked("Instructions present but no algorithm detected, operator must select one")
	}
	e.mu.Unlock()

	e.notify()
}

func (e *Engine) advanceToExecution(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.stage = StageExecution
	e.logEventLocked("Order executing")
	e.scheduleLocked(e.cfg.SummaryDelay, e.generateSummary)
	e.mu.Unlock()

	e.notify()
}

func (e *Engine) generateSummary(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}

	ticket, err := summary.Build(e.draft, e.confirmedAlgo, time.Now())
	if err != nil {
		// The draft was validated before execution; failing here means
		// a bug, not an operator error.
		e.logger.WithError(err).Error("Summary generation failed")
		e.mu.Unlock()
		return
	}
	e.ticket = ticket
	e.logEventLocked("Order %s executed", ticket.OrderID)
	e.mu.Unlock()

	e.logger.WithFields(map[string]interface{}{
		"order_id": ticket.OrderID,
		"symbol":   ticket.Symbol,
		"notional": ticket.Notional,
	}).Info("Order executed")

	e.notify()
}

// ---- Operator responses ----------------------------------------------

// AcceptConvertToGTD applies the proposed GTD conversion and resets the
// workflow to entry. The operator must re-trigger validation.
func (e *Engine) AcceptConvertToGTD() error {
	e.mu.Lock()
	s := e.suggestion
	if s == nil {
		e.mu.Unlock()
		return ErrNoSuggestion
	}
	if s.Kind != validation.SuggestConvertToGTD {
		e.mu.Unlock()
		return ErrWrongSuggestion
	}

	// Date portion only: the expiry is a day, not an instant.
	y, m, d := s.NextOpen.Date()
	gtd := time.Date(y, m, d, 0, 0, 0, 0, s.NextOpen.Location())

	e.draft.TimeInForce = order.TIFGTD
	e.draft.GTDDate = &gtd
	e.suggestion = nil
	e.verdict = nil
	e.stage = StageEntry
	e.gen++
	e.logEventLocked("Converted to GTD expiring %s", gtd.Format("2006-01-02"))
	e.mu.Unlock()

	e.notify()
	return nil
}

// RejectConvertToGTD abandons the conversion: the draft is untouched
// and the workflow resets to entry.
func (e *Engine) RejectConvertToGTD() error {
	e.mu.Lock()
	s := e.suggestion
	if s == nil {
		e.mu.Unlock()
		return ErrNoSuggestion
	}
	if s.Kind != validation.SuggestConvertToGTD {
		e.mu.Unlock()
		return ErrWrongSuggestion
	}

	e.suggestion = nil
	e.verdict = nil
	e.stage = StageEntry
	e.gen++
	e.logEventLocked("GTD conversion declined, order cancelled")
	e.mu.Unlock()

	e.notify()
	return nil
}

// SelectAlgorithm resolves a pending algorithm checkpoint with an
// explicit catalog pick and proceeds to execution.
func (e *Engine) SelectAlgorithm(id string) error {
	if _, ok := resolution.AlgorithmByID(id); !ok {
		return ErrUnknownAlgorithm
	}

	e.mu.Lock()
	s := e.suggestion
	if s == nil {
		e.mu.Unlock()
		return ErrNoSuggestion
	}
	if s.Kind != validation.SuggestSelectAlgorithm && s.Kind != validation.SuggestConfirmAlgorithm {
		e.mu.Unlock()
		return ErrWrongSuggestion
	}
	if e.confirmedAlgo != "" {
		e.mu.Unlock()
		return ErrAlgoConfirmed
	}

	e.confirmedAlgo = id
	e.suggestion = nil
	e.logEventLocked("Algorithm %s confirmed", id)
	e.scheduleLocked(e.cfg.AlgoConfirmDelay, e.advanceToExecution)
	e.mu.Unlock()

	e.notify()
	return nil
}

// AcceptAlgorithm accepts the detected algorithm of a pending
// ConfirmAlgorithm suggestion.
func (e *Engine) AcceptAlgorithm() error {
	e.mu.Lock()
	s := e.suggestion
	if s == nil {
		e.mu.Unlock()
		return ErrNoSuggestion
	}
	if s.Kind != validation.SuggestConfirmAlgorithm {
		e.mu.Unlock()
		return ErrWrongSuggestion
	}
	id := s.AlgoID
	e.mu.Unlock()

	return e.SelectAlgorithm(id)
}

// RejectAlgorithm declines the detected algorithm; the operator must
// pick one from the catalog instead. The stage stays at market.
func (e *Engine) RejectAlgorithm() error {
	e.mu.Lock()
	s := e.suggestion
	if s == nil {
		e.mu.Unlock()
		return ErrNoSuggestion
	}
	if s.Kind != validation.SuggestConfirmAlgorithm {
		e.mu.Unlock()
		return ErrWrongSuggestion
	}

	e.suggestion = &validation.Suggestion{Kind: validation.SuggestSelectAlgorithm}
	e.logEventLocked("Detected algorithm declined, awaiting manual selection")
	e.mu.Unlock()

	e.notify()
	return nil
}

// NewOrder replaces the draft and resets the workflow to entry. Any
// scheduled transition or pending resolution is cancelled.
func (e *Engine) NewOrder() {
	e.pipeline.Cancel()

	e.mu.Lock()
	e.gen++
	e.draft = order.NewDraft()
	e.stage = StageEntry
	e.verdict = nil
	e.suggestion = nil
	e.confirmedAlgo = ""
	e.resolving = false
	e.completion = ""
	e.ticket = nil
	e.logEventLocked("New order started")
	e.mu.Unlock()

	e.notify()
}
