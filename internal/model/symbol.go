package model

import "strings"

// Symbol is a ticker in canonical form.
type Symbol string

// NormalizeSymbol converts raw ticker text to its canonical form. It returns
// "" for blank input.
func NormalizeSymbol(raw string) Symbol {
	s := strings.TrimSpace(raw)
	return Symbol(strings.ReplaceAll(s, ".", "-"))
}

// NormalizeSymbols normalizes a raw ticker list, dropping blanks and repeated
// symbols while keeping first-seen order.
func NormalizeSymbols(raw []string) []Symbol {
	out := make([]Symbol, 0, len(raw))
	seen := make(map[Symbol]struct{}, len(raw))
	for _, r := range raw {
		s := NormalizeSymbol(r)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Strings converts symbols to plain strings, for use as table column names.
func Strings(symbols []Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = string(s)
	}
	return out
}
