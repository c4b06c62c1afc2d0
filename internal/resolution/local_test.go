package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantex/oms/internal/refdata"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	return NewLocal(refdata.Default())
}

func TestLocalResolveVWAP(t *testing.T) {
	l := newLocal(t)

	res := l.Resolve("VWAP Market Close on all auctions")
	assert.Equal(t, AlgoVWAP, res.Algo)
	assert.Equal(t, 0.90, res.Confidence)
	assert.Equal(t, "VWAP Market Close [16:00] on all auctions", res.Structured)
	assert.Equal(t, "ALGO=VWAP;START=09:30;END=16:00;AUCTIONS=Y", res.Directive)
	assert.Equal(t, true, res.Parameters["include_auctions"])
	assert.Equal(t, "VWAP Market Close on all auctions", res.Text)
}

func TestLocalResolveVWAPCustomEndTime(t *testing.T) {
	l := newLocal(t)

	res := l.Resolve("vwap until 15:30")
	assert.Equal(t, "15:30", res.Parameters["end_time"])
	assert.Equal(t, "VWAP Market Close [15:30]", res.Structured)
	assert.Equal(t, "ALGO=VWAP;START=09:30;END=15:30;AUCTIONS=N", res.Directive)
}

func TestLocalResolveKeywords(t *testing.T) {
	l := newLocal(t)

	tests := []struct {
		text       string
		wantAlgo   string
		wantConf   float64
	}{
		{"TWAP over 2 hours", AlgoTWAP, 0.88},
		{"pov 15% please", AlgoPOV, 0.86},
		{"target 20% participation", AlgoPOV, 0.86},
		{"aggressive execution", AlgoShortfall, 0.84},
		{"urgent, minimize impact", AlgoShortfall, 0.84},
		{"minimize shortfall", AlgoShortfall, 0.84},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res := l.Resolve(tt.text)
			assert.Equal(t, tt.wantAlgo, res.Algo)
			assert.Equal(t, tt.wantConf, res.Confidence)
			assert.True(t, res.HasAlgo())
		})
	}
}

func TestLocalResolveParameters(t *testing.T) {
	l := newLocal(t)

	res := l.Resolve("TWAP over 2 hours")
	assert.Equal(t, "2 hour", res.Parameters["duration"])
	assert.Equal(t, "TWAP execution over 2 hour", res.Structured)

	res = l.Resolve("pov 15%")
	assert.Equal(t, "15%", res.Parameters["participation_rate"])

	res = l.Resolve("aggressive - fill now")
	assert.Equal(t, "high", res.Parameters["urgency"])
	assert.Equal(t, "Implementation Shortfall - High urgency profile", res.Structured)

	res = l.Resolve("reduce shortfall slowly")
	assert.Equal(t, "medium", res.Parameters["urgency"])
}

func TestLocalResolveUnmatched(t *testing.T) {
	l := newLocal(t)

	res := l.Resolve("call desk before executing")
	assert.False(t, res.HasAlgo())
	assert.Equal(t, 0.5, res.Confidence)
	assert.Equal(t, "Custom execution: call desk before executing", res.Structured)
	assert.Contains(t, res.Directive, "ALGO=CUSTOM")
}

func TestLocalSuggestCompletion(t *testing.T) {
	l := newLocal(t)

	tests := []struct {
		input string
		want  string
	}{
		{"vwap", "VWAP Market Close"},
		{"VWAP Market Close 1", "VWAP Market Close 16:00"},
		{"twap", "TWAP over 2 hours"},
		{"aggr", "aggressive execution required"},
		{"client", "Client requests immediate execution"},
		{"rebal", "Rebalancing trade - no rush"},
		{"zzz no match", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, l.SuggestCompletion(tt.input))
		})
	}
}

func TestLocalSuggestCompletionNeverShrinks(t *testing.T) {
	l := newLocal(t)

	// The full phrase must not be suggested back verbatim.
	assert.Equal(t, "", l.SuggestCompletion("VWAP Market Close 16:00"))

	// A suggestion always extends the input.
	in := "vwap m"
	got := l.SuggestCompletion(in)
	require.NotEmpty(t, got)
	assert.Greater(t, len(got), len(in))
}

func TestLocalParseOrder(t *testing.T) {
	l := newLocal(t)

	p := l.ParseOrder("Buy 100 shares of AAPL at $180.50 as a GTC order, confirm by email")
	require.NotNil(t, p.Security)
	assert.Equal(t, "AAPL", p.Security.Symbol)
	require.NotNil(t, p.Quantity)
	assert.Equal(t, 100, *p.Quantity)
	require.NotNil(t, p.Price)
	assert.Equal(t, 180.50, *p.Price)
	assert.Equal(t, "GTC", p.TimeInForce)
	assert.Equal(t, "email", p.ContactMethod)
}

func TestLocalParseOrderByName(t *testing.T) {
	l := newLocal(t)

	p := l.ParseOrder("sell 50 units of Nestlé S.A. fill or kill")
	require.NotNil(t, p.Security)
	assert.Equal(t, "NESN", p.Security.Symbol)
	assert.Equal(t, "FOK", p.TimeInForce)
}

func TestLocalParseOrderDefaults(t *testing.T) {
	l := newLocal(t)

	p := l.ParseOrder("do something sensible")
	assert.Nil(t, p.Security)
	assert.Nil(t, p.Quantity)
	assert.Nil(t, p.Price)
	assert.Equal(t, "DAY", p.TimeInForce)
	assert.Equal(t, "phone", p.ContactMethod)
}

func TestCatalog(t *testing.T) {
	algos := Catalog()
	require.Len(t, algos, 4)
	assert.Equal(t, AlgoVWAP, algos[0].ID)
	assert.Equal(t, AlgoShortfall, algos[3].ID)

	a, ok := AlgorithmByID(AlgoPOV)
	require.True(t, ok)
	assert.Equal(t, "POV", a.Name)

	_, ok = AlgorithmByID("nope")
	assert.False(t, ok)
}
