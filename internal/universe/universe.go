// Package universe holds the ordered symbol list a selection run ranks.
package universe

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmpty is returned for a universe without symbols
	ErrEmpty = errors.New("universe is empty")
	// ErrInvalidSymbol is returned for blank or malformed tickers
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrDuplicateSymbol is returned when a ticker appears twice
	ErrDuplicateSymbol = errors.New("duplicate symbol")
)

// 티커: 대문자/숫자, 클래스 구분자 '.' 또는 '-' 허용 (BRK.B, BF-B)
var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}([.\-][A-Z0-9]{1,4})?$`)

// defaultSymbols is the large-cap US list, in canonical order.
// 순서가 곧 동점 처리 순서이므로 재정렬 금지
var defaultSymbols = []string{
	// Tech / growth
	"NVDA", "AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "PLTR",
	// Financials
	"JPM", "V", "MA", "BAC", "WFC",
	// Healthcare
	"JNJ", "LLY", "UNH", "PFE", "MRK", "ABBV", "ABT",
	// Consumer
	"COST", "WMT", "KO", "PEP", "MCD", "DIS", "NFLX", "HD", "NKE",
	// Energy / industrials
	"CVX", "UPS", "HON", "IBM", "RIVN",
	// Semis / software
	"INTC", "AMD", "CSCO", "ORCL", "CRM", "ADBE", "TXN", "AVGO", "QCOM",
	// Misc
	"DHR", "MDT", "VZ", "T", "CMCSA",
}

// DefaultSymbols returns a copy of the built-in universe
func DefaultSymbols() []string {
	out := make([]string, len(defaultSymbols))
	copy(out, defaultSymbols)
	return out
}

// Universe is an immutable, validated, ordered symbol list
type Universe struct {
	symbols []string
	index   map[string]int
}

// New normalizes (trim + upper-case) and validates symbols, keeping their order
func New(symbols []string) (*Universe, error) {
	normalized := make([]string, len(symbols))
	for i, s := range symbols {
		normalized[i] = Normalize(s)
	}

	if err := Validate(normalized); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(normalized))
	for i, s := range normalized {
		index[s] = i
	}

	return &Universe{symbols: normalized, index: index}, nil
}

// Default returns the built-in universe
func Default() *Universe {
	u, err := New(defaultSymbols)
	if err != nil {
		panic(fmt.Sprintf("default universe invalid: %v", err))
	}
	return u
}

// Normalize trims and upper-cases a ticker
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Validate rejects empty lists, malformed tickers and duplicates
func Validate(symbols []string) error {
	if len(symbols) == 0 {
		return ErrEmpty
	}

	seen := make(map[string]int, len(symbols))
	for i, s := range symbols {
		if !symbolPattern.MatchString(s) {
			return fmt.Errorf("%w: %q at position %d", ErrInvalidSymbol, s, i)
		}
		if prev, ok := seen[s]; ok {
			return fmt.Errorf("%w: %s at positions %d and %d", ErrDuplicateSymbol, s, prev, i)
		}
		seen[s] = i
	}

	return nil
}

// Symbols returns the symbols in canonical order
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.symbols))
	copy(out, u.symbols)
	return out
}

// Len returns the number of symbols
func (u *Universe) Len() int {
	return len(u.symbols)
}

// Contains reports whether symbol is part of the universe
func (u *Universe) Contains(symbol string) bool {
	_, ok := u.index[Normalize(symbol)]
	return ok
}

// Position returns the canonical position of symbol, or -1
func (u *Universe) Position(symbol string) int {
	if i, ok := u.index[Normalize(symbol)]; ok {
		return i
	}
	return -1
}
