// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules turns tender document content into a validated scoring
// rule tree. The row parser handles well-formed evaluation tables; the
// fallback chain in extractor.go degrades through a section scan, oracle
// extraction, and a fixed default set when tables are missing or broken.
package rules

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bidwise/tender-engine/internal/oracle"
	"github.com/bidwise/tender-engine/pkg/types"
)

// Column keyword sets for locating the relevant table columns. Missing
// columns fall back to fixed positions (detail = second column).
var (
	parentColKeywords   = []string{"评价项目", "评分项目", "评审项目"}
	standardColKeywords = []string{"评价标准", "评分标准", "标准"}
	scoreColKeywords    = []string{"分值", "分数", "得分"}
)

// formulaNormalizePrompt asks the oracle to rewrite a raw price-rule row
// into one calculation-formula sentence.
const formulaNormalizePrompt = `请分析以下价格评分描述，将其归纳为一句完整的价格分计算公式，说明评标基准价的定义和得分比例规则。只返回这一句公式，不要包含其他内容。

描述: %s`

// RowParser converts logical-table rows into flat rule records with
// explicit parent/child numbering.
type RowParser struct {
	cfg    types.RuleConfig
	oracle oracle.Client
}

// NewRowParser returns a RowParser. The oracle client is consulted only
// for price-formula normalization; a nil client skips normalization and
// keeps the regex-extracted formula text.
func NewRowParser(cfg types.RuleConfig, client oracle.Client) *RowParser {
	if len(cfg.PriceKeywords) == 0 {
		cfg.PriceKeywords = types.DefaultRuleConfig().PriceKeywords
	}
	return &RowParser{cfg: cfg, oracle: client}
}

// columnLayout records which table column holds which role.
type columnLayout struct {
	parent   int
	detail   int
	standard int
	score    int // -1 when the table has no explicit score column
}

// locateColumns identifies the role of each header column by keyword,
// falling back to positional defaults for anything not found.
func locateColumns(headers []string) columnLayout {
	layout := columnLayout{parent: -1, detail: 1, standard: -1, score: -1}

	for i, h := range headers {
		switch {
		case layout.parent < 0 && containsAny(h, parentColKeywords):
			layout.parent = i
		case layout.score < 0 && containsAny(h, scoreColKeywords):
			layout.score = i
		case layout.standard < 0 && containsAny(h, standardColKeywords[:2]):
			layout.standard = i
		}
	}
	// A laxer pass for the standard column: any header mentioning 标准.
	if layout.standard < 0 {
		for i, h := range headers {
			if strings.Contains(h, "标准") {
				layout.standard = i
				break
			}
		}
	}
	if layout.parent < 0 {
		layout.parent = 0
	}
	return layout
}

// rowContext is the accumulator threaded through row iteration: the
// parent criterion that subsequent child rows attach to. Explicit state,
// never package-level.
type rowContext struct {
	parentOrdinal int // current top-level numbering counter
	childOrdinal  int // children seen under the current parent
	open          bool
}

// ParseTable turns one logical table into a flat rule list. Rows with a
// populated parent cell open a new parent group; rows with only a detail
// cell become children of the open group. Price rows produce a single
// childless node carrying the normalized formula.
func (p *RowParser) ParseTable(ctx context.Context, lt types.LogicalTable, w io.Writer) []*types.ScoringRuleNode {
	layout := locateColumns(lt.Headers)

	var flat []*types.ScoringRuleNode
	var rc rowContext

	for _, row := range lt.Rows {
		parentCell := cellAt(row, layout.parent)
		detailCell := cellAt(row, layout.detail)
		standardCell := cellAt(row, layout.standard)
		scoreCell := cellAt(row, layout.score)

		switch {
		case parentCell != "":
			rc.parentOrdinal++
			rc.childOrdinal = 0
			rc.open = true

			isPrice := containsAny(parentCell, p.cfg.PriceKeywords) ||
				containsAny(standardCell, p.cfg.PriceKeywords)

			node := &types.ScoringRuleNode{
				Numbering:       []int{rc.parentOrdinal},
				CriteriaName:    parentCell,
				MaxScore:        ExtractScore(parentCell),
				IsPriceCriteria: isPrice,
			}

			if isPrice {
				// Deferred-scoring contract: the price criterion gets a
				// formula, never a per-item subtree.
				node.Description = detailCell
				node.PriceFormula = p.normalizeFormula(ctx, row, standardCell, w)
				flat = append(flat, node)
				continue
			}

			if detailCell == "" {
				node.Description = standardCell
			}
			flat = append(flat, node)

			if detailCell != "" {
				rc.childOrdinal++
				flat = append(flat, p.childNode(rc, detailCell, standardCell, scoreCell))
			}

		case detailCell != "" && rc.open:
			rc.childOrdinal++
			flat = append(flat, p.childNode(rc, detailCell, standardCell, scoreCell))
		}
	}

	return flat
}

// childNode builds one child record under the open parent group.
func (p *RowParser) childNode(rc rowContext, detail, standard, score string) *types.ScoringRuleNode {
	max := ExtractScore(detail)
	if max == 0 && score != "" {
		max = ExtractScore(score + "分")
	}
	return &types.ScoringRuleNode{
		Numbering:       []int{rc.parentOrdinal, rc.childOrdinal},
		CriteriaName:    detail,
		MaxScore:        max,
		Description:     standard,
		IsPriceCriteria: containsAny(detail, p.cfg.PriceKeywords),
	}
}

// normalizeFormula concatenates the row's non-empty cells and asks the
// oracle to normalize them into one formula sentence. Oracle failure keeps
// the regex-extracted formula from the standard cell instead.
func (p *RowParser) normalizeFormula(ctx context.Context, row []string, standard string, w io.Writer) string {
	var parts []string
	for _, cell := range row {
		if cell != "" {
			parts = append(parts, cell)
		}
	}
	raw := strings.Join(parts, " ")

	if p.oracle != nil {
		resp, err := p.oracle.Complete(ctx, fmt.Sprintf(formulaNormalizePrompt, raw))
		if !oracle.IsFailure(resp, err) {
			return strings.TrimSpace(resp)
		}
		if w != nil {
			fmt.Fprintf(w, "warning: formula normalization unavailable, keeping extracted text\n")
		}
	}
	return ExtractFormulaText(standard)
}

// formula shapes like "投标报价得分=...", "评标基准价=...". Checked in order;
// the whole standard text (bounded) is the last resort.
var formulaPatterns = []string{
	"投标报价得分", "价格分", "评标基准价", "基准价",
}

// ExtractFormulaText pulls the calculation sentence out of an evaluation
// standard cell without oracle help.
func ExtractFormulaText(standard string) string {
	if standard == "" {
		return ""
	}
	for _, marker := range formulaPatterns {
		idx := strings.Index(standard, marker)
		if idx < 0 {
			continue
		}
		rest := standard[idx:]
		if strings.ContainsAny(rest, "=＝") {
			return rest
		}
	}
	const maxLen = 100
	if len([]rune(standard)) > maxLen {
		return string([]rune(standard)[:maxLen])
	}
	return standard
}

// collapsePriceChildren enforces the one-price-node-per-document shape:
// any children accidentally attached under the price node collapse into
// its description. Observed in source documents where the price row spans
// a merged cell. Runs after tree assembly, when children are attached.
func collapsePriceChildren(roots []*types.ScoringRuleNode) {
	for _, r := range roots {
		r.Walk(func(n *types.ScoringRuleNode) {
			if !n.IsPriceCriteria || len(n.Children) == 0 {
				return
			}
			n.Description = n.Children[0].CriteriaName
			n.Children = nil
		})
	}
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
