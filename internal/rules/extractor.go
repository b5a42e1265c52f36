// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bidwise/tender-engine/internal/oracle"
	"github.com/bidwise/tender-engine/internal/table"
	"github.com/bidwise/tender-engine/pkg/types"
)

// ErrNoInput reports a document with no pages at all. No fallback stage
// can compensate for a total absence of input, so this is the one
// condition the chain surfaces as an error.
var ErrNoInput = errors.New("document has no pages")

// Document is the extraction input produced by the out-of-scope text and
// table collaborators: one text entry per page, plus the raw tables found
// across pages.
type Document struct {
	Pages  []string
	Tables []types.RawTable
}

// Strategy is one extraction stage in the fallback chain. Extract returns
// an empty slice when the stage found nothing usable; it never fails in a
// way that stops the chain.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, doc Document, w io.Writer) []*types.ScoringRuleNode
}

// Extractor runs the ordered fallback chain: structured table extraction,
// the section scan, oracle extraction, and the generic default set.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor wires the standard four-stage chain from configuration.
func NewExtractor(tableCfg types.TableConfig, ruleCfg types.RuleConfig, client oracle.Client) *Extractor {
	return &Extractor{
		strategies: []Strategy{
			NewTableStrategy(tableCfg, ruleCfg, client),
			NewSectionScanner(ruleCfg),
			NewOracleExtractor(ruleCfg, client),
			DefaultRules{},
		},
	}
}

// Extract runs stages in order until one yields rules, then validates the
// winner's score budget before returning it. Progress and budget warnings
// go to w.
func (e *Extractor) Extract(ctx context.Context, doc Document, w io.Writer) ([]*types.ScoringRuleNode, error) {
	if len(doc.Pages) == 0 && len(doc.Tables) == 0 {
		return nil, ErrNoInput
	}

	for _, s := range e.strategies {
		roots := s.Extract(ctx, doc, w)
		if len(roots) == 0 {
			continue
		}
		if w != nil {
			fmt.Fprintf(w, "extracted %d rule groups via %s\n", len(roots), s.Name())
		}
		Validate(roots, w)
		return roots, nil
	}
	// DefaultRules always returns a tree.
	return nil, ErrNoInput
}

// TableStrategy is the primary stage: segment raw tables into logical
// rule tables and parse their rows.
type TableStrategy struct {
	segmenter *table.Segmenter
	parser    *RowParser
}

func NewTableStrategy(tableCfg types.TableConfig, ruleCfg types.RuleConfig, client oracle.Client) *TableStrategy {
	return &TableStrategy{
		segmenter: table.NewSegmenter(tableCfg),
		parser:    NewRowParser(ruleCfg, client),
	}
}

func (t *TableStrategy) Name() string { return "tables" }

// Extract parses every surviving logical table and assembles the combined
// flat records into a tree. Parent ordinals are offset per table so that
// multi-table documents keep document order.
func (t *TableStrategy) Extract(ctx context.Context, doc Document, w io.Writer) []*types.ScoringRuleNode {
	logical := t.segmenter.Segment(doc.Tables)
	if len(logical) == 0 {
		return nil
	}

	var flat []*types.ScoringRuleNode
	offset := 0
	for _, lt := range logical {
		parsed := t.parser.ParseTable(ctx, lt, w)
		maxOrdinal := 0
		for _, n := range parsed {
			n.Numbering[0] += offset
			if n.Numbering[0] > maxOrdinal {
				maxOrdinal = n.Numbering[0]
			}
		}
		flat = append(flat, parsed...)
		offset = maxOrdinal
	}
	roots := BuildTree(flat)
	collapsePriceChildren(roots)
	return roots
}
