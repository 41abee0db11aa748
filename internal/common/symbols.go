package common

import "strings"

// NormalizeSymbol canonicalizes a ticker: trimmed, uppercase. Symbols are
// case-insensitive at the API boundary and uppercase everywhere else.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
