// Package resolution turns free-text trader instructions into
// structured, executable directives. Resolution is two-tier: a remote
// service is preferred, a deterministic local matcher is the fallback.
package resolution

import "github.com/quantex/oms/internal/refdata"

// Result is a resolved trader instruction. A Result is only valid for
// the exact Text it was computed from; consumers must discard it once
// the instruction text changes.
type Result struct {
	Text        string                 `json:"text"`         // the input the result was computed from
	Structured  string                 `json:"structured"`   // human-readable normalized instruction
	Directive   string                 `json:"directive"`    // canonical machine encoding
	Description string                 `json:"description"`  // free-text strategy description
	Algo        string                 `json:"algo"`         // catalog id; empty means none detected
	Parameters  map[string]interface{} `json:"parameters"`   // algorithm-specific parameters
	Confidence  float64                `json:"confidence"`   // in [0,1]
}

// HasAlgo reports whether an algorithm was identified.
func (r Result) HasAlgo() bool {
	return r.Algo != ""
}

// Prefill holds structured order fields parsed from a natural-language
// order sentence. Any field may be absent.
type Prefill struct {
	Security      *refdata.Security `json:"security"`
	Quantity      *int              `json:"quantity"`
	Price         *float64          `json:"price"`
	TimeInForce   string            `json:"time_in_force"`
	ContactMethod string            `json:"contact_method"`
}
