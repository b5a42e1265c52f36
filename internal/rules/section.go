// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/bidwise/tender-engine/pkg/types"
)

// Line shapes seen in evaluation-methodology prose: a numbered clause
// with a trailing score, or a bare "name (N分)" pair. The section scanner
// applies these directly to raw lines when no table survived segmentation.
var (
	clauseLine = regexp.MustCompile(`^\s*(?:[（(]?\d+[）).、]|[一二三四五六七八九十]+[、.．])\s*(.{2,40}?)\s*[（(]?(\d+(?:\.\d+)?)\s*分[）)]?`)
	pairLine   = regexp.MustCompile(`(.{2,30}?)[（(](\d+(?:\.\d+)?)\s*分[）)]`)

	benchmarkSentence = regexp.MustCompile(`[^。\n]*(?:评标基准价|基准价)[^。\n]*(?:报价|价格)[^。\n]*`)
)

// SectionScanner is the fallback-chain stage that extracts rules from raw
// document text when table segmentation found nothing usable.
type SectionScanner struct {
	cfg types.RuleConfig
}

func NewSectionScanner(cfg types.RuleConfig) *SectionScanner {
	def := types.DefaultRuleConfig()
	if len(cfg.SectionAnchors) == 0 {
		cfg.SectionAnchors = def.SectionAnchors
	}
	if len(cfg.SectionTerminators) == 0 {
		cfg.SectionTerminators = def.SectionTerminators
	}
	if cfg.MinSectionLen <= 0 {
		cfg.MinSectionLen = def.MinSectionLen
	}
	if len(cfg.PriceKeywords) == 0 {
		cfg.PriceKeywords = def.PriceKeywords
	}
	return &SectionScanner{cfg: cfg}
}

// Name identifies the stage in progress output.
func (s *SectionScanner) Name() string { return "section-scan" }

// Extract locates the evaluation-methodology section and parses scored
// clauses out of its raw lines. An empty result hands control to the next
// stage.
func (s *SectionScanner) Extract(ctx context.Context, doc Document, w io.Writer) []*types.ScoringRuleNode {
	text := strings.Join(doc.Pages, "\n")
	section := s.locateSection(text)
	if section == "" {
		return nil
	}

	flat := s.parseLines(section)
	if formula := findPriceFormula(section); formula != "" {
		attachPriceFormula(&flat, formula)
	}
	return Dedup(flat)
}

// locateSection finds the span between the first anchor phrase and the
// nearest following terminator. A span shorter than the configured minimum
// is progressively widened past each terminator until it is long enough or
// the text runs out.
func (s *SectionScanner) locateSection(text string) string {
	start := -1
	for _, anchor := range s.cfg.SectionAnchors {
		if idx := strings.Index(text, anchor); idx >= 0 && (start < 0 || idx < start) {
			start = idx
		}
	}
	if start < 0 {
		return ""
	}

	rest := text[start:]
	searchFrom := len(s.cfg.SectionAnchors[0]) // skip past the anchor itself
	if searchFrom > len(rest) {
		searchFrom = len(rest)
	}

	for {
		end := -1
		for _, term := range s.cfg.SectionTerminators {
			if idx := strings.Index(rest[searchFrom:], term); idx >= 0 {
				abs := searchFrom + idx
				if end < 0 || abs < end {
					end = abs
				}
			}
		}
		if end < 0 {
			return rest
		}
		if len([]rune(rest[:end])) >= s.cfg.MinSectionLen {
			return rest[:end]
		}
		// Too short: widen past this terminator and look for the next one.
		searchFrom = end + 1
		if searchFrom >= len(rest) {
			return rest
		}
	}
}

// parseLines runs the clause regexes over each line, producing flat parent
// records. Line-based extraction has no reliable nesting signal, so every
// clause becomes a root; Validate still reconciles the total.
func (s *SectionScanner) parseLines(section string) []*types.ScoringRuleNode {
	var flat []*types.ScoringRuleNode
	ordinal := 0

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, score := "", 0.0
		if m := clauseLine.FindStringSubmatch(line); m != nil {
			name = m[1]
			score = ExtractScore(m[2] + "分")
		} else if m := pairLine.FindStringSubmatch(line); m != nil {
			name = m[1]
			score = ExtractScore(m[2] + "分")
		} else {
			continue
		}

		if !PlausibleScore(score) {
			continue
		}
		name = CleanCriteriaName(name)
		if name == "" {
			continue
		}

		ordinal++
		flat = append(flat, &types.ScoringRuleNode{
			Numbering:       []int{ordinal},
			CriteriaName:    name,
			MaxScore:        score,
			Description:     line,
			IsPriceCriteria: containsAny(name, s.cfg.PriceKeywords),
		})
	}
	return flat
}

// findPriceFormula searches the section for a benchmark/price sentence.
func findPriceFormula(section string) string {
	if m := benchmarkSentence.FindString(section); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

// attachPriceFormula stores the formula on the extracted price rule, or
// appends a synthetic price rule when line parsing missed it entirely.
func attachPriceFormula(flat *[]*types.ScoringRuleNode, formula string) {
	for _, n := range *flat {
		if n.IsPriceCriteria {
			n.PriceFormula = formula
			return
		}
	}
	score := ExtractScore(formula)
	if !PlausibleScore(score) {
		score = 0
	}
	*flat = append(*flat, &types.ScoringRuleNode{
		Numbering:       []int{len(*flat) + 1},
		CriteriaName:    "价格分",
		MaxScore:        score,
		Description:     formula,
		IsPriceCriteria: true,
		PriceFormula:    formula,
	})
}
