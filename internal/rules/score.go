// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Score suffixes in descending specificity: "(N分)", "N分", "满分N". The
// first numeric match wins; a row with no parseable score keeps 0.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[（(](\d+(?:\.\d+)?)\s*分[)）]`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*分`),
	regexp.MustCompile(`满分\s*(\d+(?:\.\d+)?)`),
}

// ExtractScore pulls a score suffix out of a criterion cell. Returns 0
// when no pattern matches or the match fails to parse; the caller treats
// 0 as "no explicit score".
func ExtractScore(text string) float64 {
	if text == "" {
		return 0
	}
	for _, p := range scorePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v
			}
		}
	}
	return 0
}

// PlausibleScore reports whether a parsed score looks like a real rule
// weight: in (0, 100] with at most one decimal place. Filters out line
// noise like clause numbers picked up by the score regexes.
func PlausibleScore(s float64) bool {
	if s <= 0 || s > 100 {
		return false
	}
	scaled := s * 10
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

var (
	leadingNumbering = regexp.MustCompile(`^[（(]*\d+[.\-]?\d*[）)]*\s*`)
	trailingScore    = regexp.MustCompile(`\s*[（(]*\d+(?:\.\d+)?分?[）)]*$`)
	decorationMarks  = regexp.MustCompile(`[※★▲●○◆■□△▽◇]`)
	innerWhitespace  = regexp.MustCompile(`\s+`)
)

// CleanCriteriaName strips clause numbering, trailing score suffixes, and
// the decoration marks tender documents sprinkle on mandatory items.
func CleanCriteriaName(name string) string {
	name = innerWhitespace.ReplaceAllString(strings.TrimSpace(name), " ")
	name = leadingNumbering.ReplaceAllString(name, "")
	name = trailingScore.ReplaceAllString(name, "")
	name = decorationMarks.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// SimilarCriteria reports whether two criterion names refer to the same
// rule: equal after cleaning, one containing the other, or sharing more
// than 80% of their runes. Used to drop duplicates produced by the
// line-based fallback patterns.
func SimilarCriteria(name1, name2 string) bool {
	a := CleanCriteriaName(name1)
	b := CleanCriteriaName(name2)
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	setA := map[rune]bool{}
	for _, r := range a {
		setA[r] = true
	}
	setB := map[rune]bool{}
	for _, r := range b {
		setB[r] = true
	}
	common, total := 0, 0
	for r := range setA {
		if setB[r] {
			common++
		}
	}
	union := map[rune]bool{}
	for r := range setA {
		union[r] = true
	}
	for r := range setB {
		union[r] = true
	}
	total = len(union)
	if total == 0 {
		return false
	}
	return float64(common)/float64(total) > 0.8
}

// containsAny reports whether text contains any of the keywords.
func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
