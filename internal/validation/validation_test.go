package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantex/oms/internal/order"
	"github.com/quantex/oms/internal/refdata"
)

type staticMarkets map[string]refdata.MarketStatus

func (m staticMarkets) Market(id string) refdata.MarketStatus {
	if st, ok := m[id]; ok {
		return st
	}
	return refdata.MarketStatus{Open: true}
}

var (
	aapl = refdata.Security{Symbol: "AAPL", Market: "NASDAQ", Currency: "USD", Name: "Apple Inc.", Price: 178.50}
	nesn = refdata.Security{Symbol: "NESN", Market: "SIX", Currency: "CHF", Name: "Nestlé S.A.", Price: 87.45}
)

func TestValidateNoSecurity(t *testing.T) {
	// Any draft without a security fails first, whatever else is set.
	drafts := []*order.Draft{
		order.NewDraft(),
		{Quantity: "100", TimeInForce: order.TIFDay},
		{Quantity: "-5", TimeInForce: order.TIFGTC, Instructions: "vwap"},
	}

	for _, d := range drafts {
		verdict, suggestion := Validate(d, staticMarkets{})
		assert.Equal(t, LevelError, verdict.Level)
		assert.Nil(t, suggestion)
	}
}

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		wantErr  bool
	}{
		{"empty", "", true},
		{"zero", "0", true},
		{"negative", "-10", true},
		{"non-numeric", "abc", true},
		{"decimal", "10.5", true},
		{"positive", "100", false},
		{"whitespace padded", " 250 ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := order.NewDraft()
			draft.Security = &aapl
			draft.Quantity = tt.quantity

			verdict, _ := Validate(draft, staticMarkets{"NASDAQ": {Open: true}})
			if tt.wantErr {
				assert.Equal(t, LevelError, verdict.Level)
			} else {
				assert.Equal(t, LevelSuccess, verdict.Level)
			}
		})
	}
}

func TestValidateDayOrderClosedMarket(t *testing.T) {
	nextOpen := time.Date(2026, 8, 31, 7, 0, 0, 0, time.UTC)
	markets := staticMarkets{"SIX": {Open: false, NextOpen: nextOpen}}

	draft := order.NewDraft()
	draft.Security = &nesn
	draft.Quantity = "50"
	draft.TimeInForce = order.TIFDay

	verdict, suggestion := Validate(draft, markets)
	assert.Equal(t, LevelWarning, verdict.Level)
	require.NotNil(t, suggestion)
	assert.Equal(t, SuggestConvertToGTD, suggestion.Kind)
	assert.Equal(t, nextOpen, suggestion.NextOpen)
}

func TestValidateNonDayOrderClosedMarket(t *testing.T) {
	// Only DAY orders conflict with a closed market.
	markets := staticMarkets{"SIX": {Open: false, NextOpen: time.Now().Add(24 * time.Hour)}}

	for _, tif := range []order.TimeInForce{order.TIFGTC, order.TIFGTD, order.TIFFOK} {
		draft := order.NewDraft()
		draft.Security = &nesn
		draft.Quantity = "50"
		draft.TimeInForce = tif

		verdict, suggestion := Validate(draft, markets)
		assert.Equal(t, LevelSuccess, verdict.Level, "tif %s", tif)
		assert.Nil(t, suggestion)
	}
}

func TestValidateLenientOnGTDDateAndPrice(t *testing.T) {
	// GTD without an expiry date and an absurd limit price both pass;
	// the engine stays deliberately lenient there.
	price := -1.0
	draft := order.NewDraft()
	draft.Security = &aapl
	draft.Quantity = "100"
	draft.TimeInForce = order.TIFGTD
	draft.GTDDate = nil
	draft.LimitPrice = &price

	verdict, suggestion := Validate(draft, staticMarkets{"NASDAQ": {Open: true}})
	assert.Equal(t, LevelSuccess, verdict.Level)
	assert.Nil(t, suggestion)
}

func TestValidateCheckOrder(t *testing.T) {
	// Missing security wins over bad quantity and closed market.
	draft := order.NewDraft()
	draft.Quantity = "bogus"

	verdict, _ := Validate(draft, staticMarkets{"SIX": {Open: false}})
	assert.Contains(t, verdict.Message, "security")
}
