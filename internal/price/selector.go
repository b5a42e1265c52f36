// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package price

import (
	"fmt"
	"strings"

	"github.com/bidwise/tender-engine/pkg/types"
)

// Selector picks the single most credible bid price from a candidate list.
type Selector struct {
	cfg types.PriceConfig
}

func NewSelector(cfg types.PriceConfig) *Selector {
	def := types.DefaultPriceConfig()
	if len(cfg.TotalKeywords) == 0 {
		cfg.TotalKeywords = def.TotalKeywords
	}
	if cfg.TotalPriceThreshold <= 0 {
		cfg.TotalPriceThreshold = def.TotalPriceThreshold
	}
	return &Selector{cfg: cfg}
}

// Select deduplicates candidates by exact value (keeping the lowest page
// occurrence), prefers the largest value that passes the total-price
// window test, and otherwise falls back to the highest (confidence, value)
// candidate. Returns nil when there are no candidates.
func (s *Selector) Select(candidates []types.PriceCandidate, pages []string) *float64 {
	deduped := dedupByValue(candidates)
	if len(deduped) == 0 {
		return nil
	}

	var best *types.PriceCandidate
	for i := range deduped {
		c := &deduped[i]
		if !s.isTotalPrice(*c, pages) {
			continue
		}
		// Line-item sums are typically smaller than the grand total.
		if best == nil || c.Value > best.Value {
			best = c
		}
	}
	if best != nil {
		v := best.Value
		return &v
	}

	fallback := deduped[0]
	for _, c := range deduped[1:] {
		if c.Confidence > fallback.Confidence ||
			(c.Confidence == fallback.Confidence && c.Value > fallback.Value) {
			fallback = c
		}
	}
	v := fallback.Value
	return &v
}

// dedupByValue keeps the first occurrence of each exact value. The input
// arrives in page order, so first occurrence = lowest page index.
func dedupByValue(candidates []types.PriceCandidate) []types.PriceCandidate {
	seen := make(map[float64]bool, len(candidates))
	var out []types.PriceCandidate
	for _, c := range candidates {
		if seen[c.Value] {
			continue
		}
		seen[c.Value] = true
		out = append(out, c)
	}
	return out
}

// isTotalPrice tests a candidate against a local window of its page plus
// the next page: a total keyword together with the literal price string,
// or a value past the magnitude prior.
func (s *Selector) isTotalPrice(c types.PriceCandidate, pages []string) bool {
	if c.Value > s.cfg.TotalPriceThreshold {
		return true
	}

	window := ""
	if c.Page >= 0 && c.Page < len(pages) {
		window = pages[c.Page]
	}
	if c.Page+1 < len(pages) {
		window += "\n" + pages[c.Page+1]
	}

	hasKeyword := false
	for _, k := range s.cfg.TotalKeywords {
		if strings.Contains(window, k) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return false
	}

	for _, literal := range priceLiterals(c.Value) {
		if strings.Contains(window, literal) {
			return true
		}
	}
	return false
}

// priceLiterals renders the value the ways it appears in documents: plain,
// two-decimal, and both with thousands grouping.
func priceLiterals(v float64) []string {
	plain := plainLiteral(v)
	twoDec := fmt.Sprintf("%.2f", v)
	return []string{plain, twoDec, groupThousands(plain), groupThousands(twoDec)}
}

func plainLiteral(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// groupThousands inserts comma separators into the integer part.
func groupThousands(literal string) string {
	intPart, frac := literal, ""
	if i := strings.IndexByte(literal, '.'); i >= 0 {
		intPart, frac = literal[:i], literal[i:]
	}
	n := len(intPart)
	if n <= 3 {
		return literal
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + frac
}
