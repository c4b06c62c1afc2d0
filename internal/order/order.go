// Package order defines the mutable order draft assembled during a
// session. The draft is owned by the workflow engine; nothing else
// writes to it.
package order

import (
	"strconv"
	"strings"
	"time"

	"github.com/quantex/oms/internal/refdata"
	"github.com/quantex/oms/internal/resolution"
)

// TimeInForce is the order lifetime policy.
type TimeInForce string

const (
	TIFDay TimeInForce = "DAY"
	TIFGTD TimeInForce = "GTD"
	TIFGTC TimeInForce = "GTC"
	TIFFOK TimeInForce = "FOK"
)

// Valid reports whether t is a known time-in-force value.
func (t TimeInForce) Valid() bool {
	switch t {
	case TIFDay, TIFGTD, TIFGTC, TIFFOK:
		return true
	}
	return false
}

// ParseTimeInForce normalizes a string into a TimeInForce, defaulting to DAY.
func ParseTimeInForce(s string) TimeInForce {
	tif := TimeInForce(strings.ToUpper(strings.TrimSpace(s)))
	if !tif.Valid() {
		return TIFDay
	}
	return tif
}

// ContactMethod is how the client is reached for this order.
type ContactMethod string

const (
	ContactPhone   ContactMethod = "phone"
	ContactEmail   ContactMethod = "email"
	ContactMeeting ContactMethod = "meeting"
	ContactPortal  ContactMethod = "portal"
)

// Draft is the in-progress order. Created empty at session start,
// mutated by operator edits and accepted suggestions, replaced when a
// new order begins. Never persisted past the session.
type Draft struct {
	Security      *refdata.Security  `json:"security,omitempty"`
	Quantity      string             `json:"quantity"` // raw operator input; must parse to a positive integer
	LimitPrice    *float64           `json:"limit_price,omitempty"` // nil means market order
	TimeInForce   TimeInForce        `json:"time_in_force"`
	GTDDate       *time.Time         `json:"gtd_date,omitempty"` // meaningful only when TimeInForce == GTD
	ContactMethod ContactMethod      `json:"contact_method"`
	Instructions  string             `json:"instructions"`
	Resolution    *resolution.Result `json:"resolution,omitempty"` // derived from Instructions by the pipeline
}

// NewDraft returns an empty draft with defaults.
func NewDraft() *Draft {
	return &Draft{
		TimeInForce:   TIFDay,
		ContactMethod: ContactPhone,
	}
}

// QuantityValue parses the quantity field. ok is false when the field
// does not hold a positive integer.
func (d *Draft) QuantityValue() (int, bool) {
	qty, err := strconv.Atoi(strings.TrimSpace(d.Quantity))
	if err != nil || qty <= 0 {
		return 0, false
	}
	return qty, true
}

// IsMarketOrder reports whether no limit price is set.
func (d *Draft) IsMarketOrder() bool {
	return d.LimitPrice == nil
}

// Clone returns a copy safe to hand to read-only consumers.
func (d *Draft) Clone() *Draft {
	out := *d
	if d.Security != nil {
		sec := *d.Security
		out.Security = &sec
	}
	if d.LimitPrice != nil {
		p := *d.LimitPrice
		out.LimitPrice = &p
	}
	if d.GTDDate != nil {
		t := *d.GTDDate
		out.GTDDate = &t
	}
	if d.Resolution != nil {
		r := *d.Resolution
		out.Resolution = &r
	}
	return &out
}
