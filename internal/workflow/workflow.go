// Package workflow owns the order workflow state machine. All order
// state lives here and is mutated only through Engine methods; every
// other component sees read-only snapshots.
package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/quantex/oms/internal/order"
	"github.com/quantex/oms/internal/resolution"
	"github.com/quantex/oms/internal/summary"
	"github.com/quantex/oms/internal/validation"
)

// Stage is a step of the linear order workflow.
type Stage string

const (
	StageEntry      Stage = "entry"
	StageValidation Stage = "validation"
	StageSubmission Stage = "submission"
	StageMarket     Stage = "market"
	StageExecution  Stage = "execution" // terminal
)

var stageOrder = map[Stage]int{
	StageEntry:      0,
	StageValidation: 1,
	StageSubmission: 2,
	StageMarket:     3,
	StageExecution:  4,
}

// Before reports whether s precedes other in the workflow.
func (s Stage) Before(other Stage) bool {
	return stageOrder[s] < stageOrder[other]
}

// Engine operation errors. All are recoverable; the operator corrects
// and retries.
var (
	ErrOrderInFlight     = errors.New("order is past validation and can no longer be edited")
	ErrSuggestionPending = errors.New("a suggestion is pending and must be resolved first")
	ErrNoSuggestion      = errors.New("no suggestion is pending")
	ErrWrongSuggestion   = errors.New("the pending suggestion does not support this response")
	ErrUnknownSecurity   = errors.New("unknown security symbol")
	ErrUnknownAlgorithm  = errors.New("unknown algorithm id")
	ErrAlgoConfirmed     = errors.New("an algorithm has already been confirmed for this order")
)

// Resolver is what the engine needs from the resolution subsystem.
type Resolver interface {
	resolution.Service
	ParseOrder(ctx context.Context, text string) resolution.Prefill
}

// Event is one entry of the append-only session log.
type Event struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Snapshot is a read-only view of the workflow state handed to
// subscribers and API consumers.
type Snapshot struct {
	Stage         Stage                  `json:"stage"`
	Draft         *order.Draft           `json:"draft"`
	Verdict       *validation.Verdict    `json:"verdict,omitempty"`
	Suggestion    *validation.Suggestion `json:"suggestion,omitempty"`
	ConfirmedAlgo string                 `json:"confirmed_algo,omitempty"`
	Resolving     bool                   `json:"resolving"`
	Completion    string                 `json:"completion,omitempty"`
	Ticket        *summary.Ticket        `json:"ticket,omitempty"`
	Events        []Event                `json:"events"`
}
