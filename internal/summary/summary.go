// Package summary renders a finalized, executed order into an
// append-only human-readable record.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantex/oms/internal/order"
	"github.com/quantex/oms/internal/resolution"
)

// Instruction is the resolved-instruction section of a ticket.
type Instruction struct {
	Structured  string `json:"structured"`
	Directive   string `json:"directive"`
	Description string `json:"description"`
}

// Ticket is the final record of an executed order. It is generated
// once and never mutated or re-derived.
type Ticket struct {
	OrderID    string    `json:"order_id"`
	ExecutedAt time.Time `json:"executed_at"`

	Symbol   string  `json:"symbol"`
	Market   string  `json:"market"`
	Currency string  `json:"currency"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`

	Quantity    int                `json:"quantity"`
	LimitPrice  *float64           `json:"limit_price,omitempty"` // nil means market order
	TimeInForce order.TimeInForce  `json:"time_in_force"`
	GTDExpiry   *time.Time         `json:"gtd_expiry,omitempty"`
	Notional    string             `json:"notional"` // quantity x price, fixed to 2 decimals

	AlgoID          string       `json:"algo_id,omitempty"`
	AlgoName        string       `json:"algo_name,omitempty"`
	AlgoDescription string       `json:"algo_description,omitempty"`
	Instruction     *Instruction `json:"instruction,omitempty"`
}

// Build creates the ticket for an executed draft. confirmedAlgo is the
// workflow's confirmed algorithm id, empty when none was confirmed.
func Build(draft *order.Draft, confirmedAlgo string, executedAt time.Time) (*Ticket, error) {
	if draft.Security == nil {
		return nil, fmt.Errorf("cannot summarize an order without a security")
	}
	qty, ok := draft.QuantityValue()
	if !ok {
		return nil, fmt.Errorf("cannot summarize an order with quantity %q", draft.Quantity)
	}

	notional := decimal.NewFromFloat(draft.Security.Price).
		Mul(decimal.NewFromInt(int64(qty))).
		StringFixed(2)

	t := &Ticket{
		OrderID:     "ORD-" + strings.ToUpper(uuid.NewString()[:8]),
		ExecutedAt:  executedAt,
		Symbol:      draft.Security.Symbol,
		Market:      draft.Security.Market,
		Currency:    draft.Security.Currency,
		Name:        draft.Security.Name,
		Price:       draft.Security.Price,
		Quantity:    qty,
		TimeInForce: draft.TimeInForce,
		Notional:    notional,
	}

	if !draft.IsMarketOrder() {
		p := *draft.LimitPrice
		t.LimitPrice = &p
	}
	if draft.TimeInForce == order.TIFGTD && draft.GTDDate != nil {
		d := *draft.GTDDate
		t.GTDExpiry = &d
	}

	if confirmedAlgo != "" {
		if algo, ok := resolution.AlgorithmByID(confirmedAlgo); ok {
			t.AlgoID = algo.ID
			t.AlgoName = algo.Name
			t.AlgoDescription = algo.Description
		} else {
			t.AlgoID = confirmedAlgo
		}
	}

	if draft.Resolution != nil {
		t.Instruction = &Instruction{
			Structured:  draft.Resolution.Structured,
			Directive:   draft.Resolution.Directive,
			Description: draft.Resolution.Description,
		}
	}

	return t, nil
}

// String renders the ticket as a human-readable record.
func (t *Ticket) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order %s executed %s\n", t.OrderID, t.ExecutedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "  %s (%s) %s %s @ %.2f\n", t.Symbol, t.Name, t.Market, t.Currency, t.Price)

	if t.LimitPrice != nil {
		fmt.Fprintf(&b, "  Quantity %d limit %.2f %s\n", t.Quantity, *t.LimitPrice, t.Currency)
	} else {
		fmt.Fprintf(&b, "  Quantity %d at market\n", t.Quantity)
	}

	if t.GTDExpiry != nil {
		fmt.Fprintf(&b, "  Time in force %s expiring %s\n", t.TimeInForce, t.GTDExpiry.Format("2006-01-02"))
	} else {
		fmt.Fprintf(&b, "  Time in force %s\n", t.TimeInForce)
	}

	fmt.Fprintf(&b, "  Estimated notional %s %s\n", t.Notional, t.Currency)

	if t.AlgoID != "" {
		fmt.Fprintf(&b, "  Algorithm %s", t.AlgoName)
		if t.AlgoDescription != "" {
			fmt.Fprintf(&b, " (%s)", t.AlgoDescription)
		}
		b.WriteString("\n")
	}

	if t.Instruction != nil {
		fmt.Fprintf(&b, "  Instruction %s [%s]\n", t.Instruction.Structured, t.Instruction.Directive)
	}

	return b.String()
}
