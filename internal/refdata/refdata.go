// Package refdata holds the static security reference and market status
// inputs. Both are supplied as configuration and never mutated at runtime.
package refdata

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Security is an immutable security reference entry.
type Security struct {
	Symbol   string  `yaml:"symbol" json:"symbol"`
	Market   string  `yaml:"market" json:"market"`
	Currency string  `yaml:"currency" json:"currency"`
	Name     string  `yaml:"name" json:"name"`
	Price    float64 `yaml:"price" json:"price"`
}

// MarketStatus describes whether a market is currently open and, when
// closed, when it opens next.
type MarketStatus struct {
	Open     bool      `yaml:"open" json:"open"`
	NextOpen time.Time `yaml:"next_open" json:"next_open"`
}

// Store provides read-only access to securities and market status.
type Store struct {
	securities map[string]Security
	markets    map[string]MarketStatus
}

type fileFormat struct {
	Securities []Security              `yaml:"securities"`
	Markets    map[string]MarketStatus `yaml:"markets"`
}

// Load reads reference data from a YAML file. An empty path returns the
// built-in development dataset.
func Load(path string) (*Store, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read refdata file: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse refdata file: %w", err)
	}

	if len(f.Securities) == 0 {
		return nil, fmt.Errorf("refdata file %s contains no securities", path)
	}

	store := &Store{
		securities: make(map[string]Security, len(f.Securities)),
		markets:    f.Markets,
	}
	for _, sec := range f.Securities {
		if sec.Symbol == "" {
			return nil, fmt.Errorf("refdata file %s contains a security without a symbol", path)
		}
		store.securities[sec.Symbol] = sec
	}
	if store.markets == nil {
		store.markets = map[string]MarketStatus{}
	}

	return store, nil
}

// Default returns the built-in development dataset.
func Default() *Store {
	nextOpen := nextWeekdayOpen(time.Now())

	return &Store{
		securities: map[string]Security{
			"AAPL":  {Symbol: "AAPL", Market: "NASDAQ", Currency: "USD", Name: "Apple Inc.", Price: 178.50},
			"GOOGL": {Symbol: "GOOGL", Market: "NASDAQ", Currency: "USD", Name: "Alphabet Inc.", Price: 140.25},
			"MSFT":  {Symbol: "MSFT", Market: "NASDAQ", Currency: "USD", Name: "Microsoft Corporation", Price: 378.91},
			"TSLA":  {Symbol: "TSLA", Market: "NASDAQ", Currency: "USD", Name: "Tesla Inc.", Price: 242.84},
			"NOVN":  {Symbol: "NOVN", Market: "SIX", Currency: "CHF", Name: "Novartis AG", Price: 95.20},
			"NESN":  {Symbol: "NESN", Market: "SIX", Currency: "CHF", Name: "Nestlé S.A.", Price: 87.45},
		},
		markets: map[string]MarketStatus{
			"NASDAQ": {Open: true},
			"SIX":    {Open: false, NextOpen: nextOpen},
		},
	}
}

// nextWeekdayOpen returns 09:00 UTC on the next weekday after t.
func nextWeekdayOpen(t time.Time) time.Time {
	d := t.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, time.UTC)
}

// Security returns the reference entry for a symbol.
func (s *Store) Security(symbol string) (Security, bool) {
	sec, ok := s.securities[symbol]
	return sec, ok
}

// Securities returns all entries sorted by symbol.
func (s *Store) Securities() []Security {
	out := make([]Security, 0, len(s.securities))
	for _, sec := range s.securities {
		out = append(out, sec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Market returns the status of a market. Unknown markets report as open
// so that missing status never blocks an order on a phantom halt.
func (s *Store) Market(id string) MarketStatus {
	if st, ok := s.markets[id]; ok {
		return st
	}
	return MarketStatus{Open: true}
}
