package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantex/oms/internal/order"
	"github.com/quantex/oms/internal/refdata"
	"github.com/quantex/oms/internal/resolution"
)

func testDraft() *order.Draft {
	store := refdata.Default()
	sec, _ := store.Security("AAPL")

	d := order.NewDraft()
	d.Security = &sec
	d.Quantity = "100"
	return d
}

func TestBuildBasicTicket(t *testing.T) {
	executedAt := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)

	ticket, err := Build(testDraft(), "", executedAt)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ticket.OrderID, "ORD-"))
	assert.Len(t, ticket.OrderID, len("ORD-")+8)
	assert.Equal(t, executedAt, ticket.ExecutedAt)
	assert.Equal(t, "AAPL", ticket.Symbol)
	assert.Equal(t, "NASDAQ", ticket.Market)
	assert.Equal(t, "USD", ticket.Currency)
	assert.Equal(t, 100, ticket.Quantity)
	assert.Equal(t, "17850.00", ticket.Notional)
	assert.Nil(t, ticket.LimitPrice)
	assert.Nil(t, ticket.GTDExpiry)
	assert.Empty(t, ticket.AlgoID)
	assert.Nil(t, ticket.Instruction)
}

func TestBuildOrderIDsAreUnique(t *testing.T) {
	d := testDraft()
	a, err := Build(d, "", time.Now())
	require.NoError(t, err)
	b, err := Build(d, "", time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, a.OrderID, b.OrderID)
}

func TestBuildGTDExpiry(t *testing.T) {
	d := testDraft()
	expiry := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	d.TimeInForce = order.TIFGTD
	d.GTDDate = &expiry

	ticket, err := Build(d, "", time.Now())
	require.NoError(t, err)
	require.NotNil(t, ticket.GTDExpiry)
	assert.Equal(t, expiry, *ticket.GTDExpiry)

	// A leftover date without GTD must not surface.
	d.TimeInForce = order.TIFDay
	ticket, err = Build(d, "", time.Now())
	require.NoError(t, err)
	assert.Nil(t, ticket.GTDExpiry)
}

func TestBuildConfirmedAlgo(t *testing.T) {
	ticket, err := Build(testDraft(), resolution.AlgoVWAP, time.Now())
	require.NoError(t, err)

	assert.Equal(t, resolution.AlgoVWAP, ticket.AlgoID)
	assert.Equal(t, "VWAP", ticket.AlgoName)
	assert.NotEmpty(t, ticket.AlgoDescription)

	// An id outside the catalog is kept verbatim without metadata.
	ticket, err = Build(testDraft(), "proprietary_x", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "proprietary_x", ticket.AlgoID)
	assert.Empty(t, ticket.AlgoName)
}

func TestBuildInstructionSection(t *testing.T) {
	d := testDraft()
	d.Instructions = "vwap market close"
	d.Resolution = &resolution.Result{
		Text:       d.Instructions,
		Structured: "VWAP Market Close [16:00] on all auctions",
		Directive:  "ALGO=VWAP;START=09:30;END=16:00;AUCTIONS=Y",
		Algo:       resolution.AlgoVWAP,
		Confidence: 0.9,
	}

	ticket, err := Build(d, resolution.AlgoVWAP, time.Now())
	require.NoError(t, err)
	require.NotNil(t, ticket.Instruction)
	assert.Equal(t, d.Resolution.Structured, ticket.Instruction.Structured)
	assert.Equal(t, d.Resolution.Directive, ticket.Instruction.Directive)
}

func TestBuildErrors(t *testing.T) {
	d := order.NewDraft()
	_, err := Build(d, "", time.Now())
	require.Error(t, err)

	d = testDraft()
	d.Quantity = "lots"
	_, err = Build(d, "", time.Now())
	require.Error(t, err)
}

func TestTicketString(t *testing.T) {
	d := testDraft()
	limit := 175.25
	d.LimitPrice = &limit

	ticket, err := Build(d, resolution.AlgoTWAP, time.Now())
	require.NoError(t, err)

	s := ticket.String()
	assert.Contains(t, s, ticket.OrderID)
	assert.Contains(t, s, "AAPL")
	assert.Contains(t, s, "limit 175.25")
	assert.Contains(t, s, "17850.00 USD")
	assert.Contains(t, s, "TWAP")
}
