// Package validation evaluates an order draft against market state.
// Validate is pure: same draft and market status, same verdict.
package validation

import (
	"time"

	"github.com/quantex/oms/internal/order"
	"github.com/quantex/oms/internal/refdata"
)

// Level classifies a verdict.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Verdict is the outcome of validating a draft.
type Verdict struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// SuggestionKind discriminates the HITL suggestion variants.
type SuggestionKind string

const (
	// SuggestConvertToGTD proposes switching time-in-force to GTD
	// because the security's market is closed for a DAY order.
	SuggestConvertToGTD SuggestionKind = "convert_to_gtd"

	// SuggestSelectAlgorithm asks the operator to pick an execution
	// algorithm from the catalog; nothing was detected.
	SuggestSelectAlgorithm SuggestionKind = "select_algorithm"

	// SuggestConfirmAlgorithm proposes a single detected algorithm for
	// explicit accept or reject.
	SuggestConfirmAlgorithm SuggestionKind = "confirm_algorithm"
)

// Suggestion is a pending human-in-the-loop checkpoint. Exactly one may
// be pending at a time; accepting or rejecting it clears it.
type Suggestion struct {
	Kind     SuggestionKind `json:"kind"`
	NextOpen time.Time      `json:"next_open,omitempty"` // ConvertToGTD: proposed GTD date
	AlgoID   string         `json:"algo_id,omitempty"`   // ConfirmAlgorithm: the detected algorithm
}

// Markets is the read-only market status lookup Validate needs.
type Markets interface {
	Market(id string) refdata.MarketStatus
}

// Validate inspects a draft and returns a verdict plus, for
// business-rule halts, a suggestion. Checks run in order and the first
// failure wins.
//
// GTD-date presence and limit-price sanity are deliberately not
// checked here; the operator remains free to submit either.
func Validate(draft *order.Draft, markets Markets) (Verdict, *Suggestion) {
	if draft.Security == nil {
		return Verdict{Level: LevelError, Message: "Please select a security before validating the order"}, nil
	}

	if _, ok := draft.QuantityValue(); !ok {
		return Verdict{Level: LevelError, Message: "Quantity must be a positive whole number"}, nil
	}

	if draft.TimeInForce == order.TIFDay {
		status := markets.Market(draft.Security.Market)
		if !status.Open {
			return Verdict{
					Level:   LevelWarning,
					Message: "Market " + draft.Security.Market + " is currently closed for a DAY order",
				}, &Suggestion{
					Kind:     SuggestConvertToGTD,
					NextOpen: status.NextOpen,
				}
		}
	}

	return Verdict{Level: LevelSuccess, Message: "Order passed validation"}, nil
}
