// Package portfolio implements holdings management and the history engine
package portfolio

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/stockpulse/internal/models"
)

// HoldingsHash computes the content fingerprint of a holdings list. The
// lines are canonicalized by sorting, so element-wise identical lists hash
// identically regardless of order, and any field change to any holding
// changes the digest. Used to invalidate cached portfolio history.
func HoldingsHash(holdings []models.Holding) string {
	lines := make([]string, len(holdings))
	for i, h := range holdings {
		lines[i] = fmt.Sprintf("%s|%.6f|%.6f|%s", h.Symbol, h.Shares, h.PurchasePrice, h.PurchaseDate)
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])[:16]
}
