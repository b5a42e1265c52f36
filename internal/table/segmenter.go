// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table merges per-page raw tables into logical cross-page tables
// and filters them down to the evaluation-methodology tables that carry
// scoring rules.
package table

import (
	"regexp"
	"strings"

	"github.com/bidwise/tender-engine/pkg/types"
)

// unicodeSpace matches control characters and the Unicode whitespace
// variants that PDF extraction leaves inside wrapped cells.
var unicodeSpace = regexp.MustCompile(`[\x00-\x20\x7f-\xa0\x{2000}-\x{200f}\x{2028}-\x{202f}\x{205f}-\x{206f}\x{3000}\x{feff}]+`)

// NormalizeCell collapses line breaks, tabs, and Unicode whitespace to a
// single space, then strips all remaining internal whitespace. Documents
// embed meaningless line-wrap spacing that would otherwise defeat keyword
// containment checks.
func NormalizeCell(text string) string {
	for _, brk := range []string{"\r\n", "\n", "\r", "\t", "\u2029", "\u2028", "\u00a0"} {
		text = strings.ReplaceAll(text, brk, " ")
	}
	text = unicodeSpace.ReplaceAllString(text, " ")
	return strings.ReplaceAll(text, " ", "")
}

// Segmenter merges and filters raw tables according to its config.
type Segmenter struct {
	cfg types.TableConfig
}

// NewSegmenter returns a Segmenter. Zero thresholds fall back to the
// defaults (0.6 header, 0.7 density).
func NewSegmenter(cfg types.TableConfig) *Segmenter {
	def := types.DefaultTableConfig()
	if cfg.HeaderSimilarityThreshold <= 0 {
		cfg.HeaderSimilarityThreshold = def.HeaderSimilarityThreshold
	}
	if cfg.DensitySimilarityThreshold <= 0 {
		cfg.DensitySimilarityThreshold = def.DensitySimilarityThreshold
	}
	if len(cfg.RequiredHeaderLabels) == 0 {
		cfg.RequiredHeaderLabels = def.RequiredHeaderLabels
	}
	return &Segmenter{cfg: cfg}
}

// Segment merges adjacent-page raw tables into logical tables and keeps
// only those whose header contains every required label. The input must be
// ordered by page; tables on non-adjacent pages are never merged even when
// structurally identical.
func (s *Segmenter) Segment(raw []types.RawTable) []types.LogicalTable {
	merged := s.mergeCrossPage(raw)

	var kept []types.LogicalTable
	for _, t := range merged {
		if s.hasRequiredLabels(t.Headers) {
			kept = append(kept, t)
		}
	}
	return kept
}

// mergeCrossPage greedily extends each table with continuation fragments
// from the following pages.
func (s *Segmenter) mergeCrossPage(raw []types.RawTable) []types.LogicalTable {
	var out []types.LogicalTable

	i := 0
	for i < len(raw) {
		run := []types.RawTable{raw[i]}
		j := i + 1
		for j < len(raw) && s.isContinuation(run[len(run)-1], raw[j]) {
			run = append(run, raw[j])
			j++
		}
		out = append(out, mergeRun(run))
		i = j
	}
	return out
}

// isContinuation reports whether next continues prev onto the following
// page: adjacent pages, equal column counts, and either similar headers or
// similar content density.
func (s *Segmenter) isContinuation(prev, next types.RawTable) bool {
	if next.Page != prev.Page+1 {
		return false
	}
	if prev.Cols() != next.Cols() {
		return false
	}
	if headerSimilarity(prev.Header(), next.Header()) > s.cfg.HeaderSimilarityThreshold {
		return true
	}
	return densitySimilarity(prev.Rows, next.Rows) > s.cfg.DensitySimilarityThreshold
}

// headerSimilarity is the fraction of header positions where the two
// headers are equal or one contains the other after normalization. A pair
// of empty positions also counts as a match.
func headerSimilarity(h1, h2 []string) float64 {
	if len(h1) == 0 || len(h2) == 0 {
		return 0
	}
	maxLen := len(h1)
	if len(h2) > maxLen {
		maxLen = len(h2)
	}

	matches := 0
	for i := 0; i < len(h1) && i < len(h2); i++ {
		a := NormalizeCell(h1[i])
		b := NormalizeCell(h2[i])
		switch {
		case a == "" && b == "":
			matches++
		case a == "" || b == "":
		case a == b || strings.Contains(a, b) || strings.Contains(b, a):
			matches++
		}
	}
	return float64(matches) / float64(maxLen)
}

// densitySimilarity is 1 minus the normalized difference of the two
// tables' average non-empty-cell counts per row.
func densitySimilarity(rows1, rows2 [][]string) float64 {
	avg1 := avgNonEmpty(rows1)
	avg2 := avgNonEmpty(rows2)

	switch {
	case avg1 == 0 && avg2 == 0:
		return 1
	case avg1 == 0 || avg2 == 0:
		return 0
	}
	max := avg1
	if avg2 > max {
		max = avg2
	}
	diff := avg1 - avg2
	if diff < 0 {
		diff = -diff
	}
	return 1 - diff/max
}

func avgNonEmpty(rows [][]string) float64 {
	if len(rows) == 0 {
		return 0
	}
	total := 0
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				total++
			}
		}
	}
	return float64(total) / float64(len(rows))
}

// mergeRun flattens a run of continuation fragments into one logical
// table: the first fragment's header is kept, later fragments contribute
// their rows minus the repeated header.
func mergeRun(run []types.RawTable) types.LogicalTable {
	lt := types.LogicalTable{
		StartPage: run[0].Page,
		EndPage:   run[len(run)-1].Page,
		Headers:   normalizeRow(run[0].Header()),
	}
	for i, frag := range run {
		rows := frag.Rows
		if i > 0 && len(rows) > 0 {
			rows = rows[1:]
		} else if i == 0 {
			rows = frag.DataRows()
		}
		for _, row := range rows {
			lt.Rows = append(lt.Rows, normalizeRow(row))
		}
	}
	return lt
}

func normalizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = NormalizeCell(cell)
	}
	return out
}

// hasRequiredLabels reports whether every configured label appears, by
// containment, somewhere in the header.
func (s *Segmenter) hasRequiredLabels(headers []string) bool {
	for _, label := range s.cfg.RequiredHeaderLabels {
		found := false
		for _, h := range headers {
			if strings.Contains(h, label) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
