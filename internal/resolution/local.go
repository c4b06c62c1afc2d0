package resolution

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/quantex/oms/internal/refdata"
)

// Local is the deterministic fallback resolver. It is a keyword matcher
// over a small fixed vocabulary; it performs no I/O and keeps no state.
type Local struct {
	store *refdata.Store
}

// NewLocal creates a local resolver backed by the given reference data
// (used only for natural-language order prefill).
func NewLocal(store *refdata.Store) *Local {
	return &Local{store: store}
}

var (
	endTimeRe  = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	durationRe = regexp.MustCompile(`(\d+)\s*(hour|hr|minute|min)`)
	percentRe  = regexp.MustCompile(`(\d+)\s*%`)
)

// Resolve maps instruction text to a structured directive. Unmatched
// text yields a custom-execution result with confidence 0.5 and no
// algorithm.
func (l *Local) Resolve(text string) Result {
	norm := strings.ToLower(strings.TrimSpace(text))

	switch {
	case strings.Contains(norm, "vwap"):
		return l.resolveVWAP(text, norm)
	case strings.Contains(norm, "twap"):
		return l.resolveTWAP(text, norm)
	case strings.Contains(norm, "pov"), strings.Contains(norm, "participation"):
		return l.resolvePOV(text, norm)
	case strings.Contains(norm, "aggressive"), strings.Contains(norm, "urgent"), strings.Contains(norm, "shortfall"):
		return l.resolveShortfall(text, norm)
	}

	return Result{
		Text:        text,
		Structured:  fmt.Sprintf("Custom execution: %s", text),
		Directive:   fmt.Sprintf("ALGO=CUSTOM;TEXT=%s", text),
		Description: "Free-form execution instruction",
		Algo:        "",
		Parameters:  map[string]interface{}{},
		Confidence:  0.5,
	}
}

func (l *Local) resolveVWAP(text, norm string) Result {
	endTime := "16:00"
	if m := endTimeRe.FindStringSubmatch(norm); m != nil {
		endTime = fmt.Sprintf("%s:%s", m[1], m[2])
	}
	auctions := strings.Contains(norm, "auction")

	structured := fmt.Sprintf("VWAP Market Close [%s]", endTime)
	auctionFlag := "N"
	if auctions {
		structured += " on all auctions"
		auctionFlag = "Y"
	}

	algo, _ := AlgorithmByID(AlgoVWAP)
	return Result{
		Text:        text,
		Structured:  structured,
		Directive:   fmt.Sprintf("ALGO=VWAP;START=09:30;END=%s;AUCTIONS=%s", endTime, auctionFlag),
		Description: algo.Description,
		Algo:        AlgoVWAP,
		Parameters: map[string]interface{}{
			"start_time":       "09:30",
			"end_time":         endTime,
			"include_auctions": auctions,
		},
		Confidence: 0.90,
	}
}

func (l *Local) resolveTWAP(text, norm string) Result {
	duration := "full day"
	if m := durationRe.FindStringSubmatch(norm); m != nil {
		duration = fmt.Sprintf("%s %s", m[1], m[2])
	}

	algo, _ := AlgorithmByID(AlgoTWAP)
	return Result{
		Text:        text,
		Structured:  fmt.Sprintf("TWAP execution over %s", duration),
		Directive:   fmt.Sprintf("ALGO=TWAP;DURATION=%s", duration),
		Description: algo.Description,
		Algo:        AlgoTWAP,
		Parameters:  map[string]interface{}{"duration": duration},
		Confidence:  0.88,
	}
}

func (l *Local) resolvePOV(text, norm string) Result {
	rate := "10%"
	if m := percentRe.FindStringSubmatch(norm); m != nil {
		rate = m[1] + "%"
	}

	algo, _ := AlgorithmByID(AlgoPOV)
	return Result{
		Text:        text,
		Structured:  fmt.Sprintf("POV %s participation rate", rate),
		Directive:   fmt.Sprintf("ALGO=POV;RATE=%s", rate),
		Description: algo.Description,
		Algo:        AlgoPOV,
		Parameters:  map[string]interface{}{"participation_rate": rate},
		Confidence:  0.86,
	}
}

func (l *Local) resolveShortfall(text, norm string) Result {
	urgency := "medium"
	if strings.Contains(norm, "aggressive") || strings.Contains(norm, "urgent") {
		urgency = "high"
	}

	algo, _ := AlgorithmByID(AlgoShortfall)
	return Result{
		Text:        text,
		Structured:  fmt.Sprintf("Implementation Shortfall - %s urgency profile", capitalize(urgency)),
		Directive:   fmt.Sprintf("ALGO=IS;URGENCY=%s", urgency),
		Description: algo.Description,
		Algo:        AlgoShortfall,
		Parameters:  map[string]interface{}{"urgency": urgency},
		Confidence:  0.84,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// completionEntry keys a prefix to the known phrases it can complete to.
type completionEntry struct {
	prefix  string
	phrases []string
}

// Iteration order is fixed so suggestions are deterministic.
var completions = []completionEntry{
	{"vwap", []string{"VWAP Market Close", "VWAP Market Close 16:00", "VWAP with auctions"}},
	{"twap", []string{"TWAP over 2 hours", "TWAP over trading day", "TWAP 1 hour execution"}},
	{"pov", []string{"POV 10% participation", "POV 15% participation rate", "POV 5% target"}},
	{"aggr", []string{"aggressive execution required", "aggressive - minimize slippage"}},
	{"urgent", []string{"urgent - minimize market impact", "urgent execution needed"}},
	{"client", []string{"Client requests immediate execution", "Client confirmed price tolerance"}},
	{"priority", []string{"Priority order - high net worth client", "Priority - institutional client"}},
	{"rebal", []string{"Part of portfolio rebalancing strategy", "Rebalancing trade - no rush"}},
}

// SuggestCompletion returns the best known phrase extending the input,
// or "" when no phrase matches. A suggestion never equals the input and
// never drops characters the operator already typed.
func (l *Local) SuggestCompletion(text string) string {
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == "" {
		return ""
	}

	for _, entry := range completions {
		if !strings.HasPrefix(norm, entry.prefix) {
			continue
		}
		for _, phrase := range entry.phrases {
			if strings.HasPrefix(strings.ToLower(phrase), norm) && len(phrase) > len(text) {
				return phrase
			}
		}
	}

	return ""
}

var (
	quantityRes = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*shares?`),
		regexp.MustCompile(`(\d+)\s*units?`),
		regexp.MustCompile(`buy\s+(\d+)`),
		regexp.MustCompile(`sell\s+(\d+)`),
		regexp.MustCompile(`(\d+)\s+of`),
	}
	priceRes = []*regexp.Regexp{
		regexp.MustCompile(`at\s+\$?(\d+\.?\d*)`),
		regexp.MustCompile(`price\s+\$?(\d+\.?\d*)`),
		regexp.MustCompile(`limit\s+\$?(\d+\.?\d*)`),
	}
)

// ParseOrder extracts structured order fields from a natural-language
// order sentence, e.g. "Buy 100 shares of AAPL as a GTC order".
func (l *Local) ParseOrder(text string) Prefill {
	norm := strings.ToLower(text)
	var p Prefill

	for _, sec := range l.store.Securities() {
		if strings.Contains(norm, strings.ToLower(sec.Symbol)) || strings.Contains(norm, strings.ToLower(sec.Name)) {
			s := sec
			p.Security = &s
			break
		}
	}

	for _, re := range quantityRes {
		if m := re.FindStringSubmatch(norm); m != nil {
			if qty, err := strconv.Atoi(m[1]); err == nil {
				p.Quantity = &qty
			}
			break
		}
	}

	for _, re := range priceRes {
		if m := re.FindStringSubmatch(norm); m != nil {
			if price, err := strconv.ParseFloat(m[1], 64); err == nil {
				p.Price = &price
			}
			break
		}
	}

	p.TimeInForce = "DAY"
	switch {
	case strings.Contains(norm, "gtc"), strings.Contains(norm, "good til cancel"):
		p.TimeInForce = "GTC"
	case strings.Contains(norm, "gtd"), strings.Contains(norm, "good til date"):
		p.TimeInForce = "GTD"
	case strings.Contains(norm, "fok"), strings.Contains(norm, "fill or kill"):
		p.TimeInForce = "FOK"
	}

	p.ContactMethod = "phone"
	switch {
	case strings.Contains(norm, "email"):
		p.ContactMethod = "email"
	case strings.Contains(norm, "meeting"), strings.Contains(norm, "in person"):
		p.ContactMethod = "meeting"
	case strings.Contains(norm, "portal"), strings.Contains(norm, "online"):
		p.ContactMethod = "portal"
	}

	return p
}
