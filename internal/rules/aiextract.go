// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/bidwise/tender-engine/internal/oracle"
	"github.com/bidwise/tender-engine/pkg/types"
)

// extractionPrompt instructs the model to return the scoring rules as a
// JSON array. The total-must-be-100 constraint anchors the acceptance
// check below.
const extractionPrompt = `你是招标文件分析助手。请从以下招标文件节选中提取完整的评分标准，以JSON数组返回，不要包含任何其他文字。

要求:
1. 总分必须为100分
2. 保留父项/子项层级: 每个父项含 "criteria_name"、"max_score"、"children" 字段，子项含 "criteria_name"、"max_score"、"description" 字段
3. 价格评分项单独列出，设置 "is_price_criteria": true 并在 "price_formula" 中给出计算公式

招标文件节选:
%s`

// extractedRule mirrors the JSON shape the prompt requests.
type extractedRule struct {
	CriteriaName    string          `json:"criteria_name"`
	MaxScore        float64         `json:"max_score"`
	Description     string          `json:"description"`
	IsPriceCriteria bool            `json:"is_price_criteria"`
	PriceFormula    string          `json:"price_formula"`
	Children        []extractedRule `json:"children"`
}

// OracleExtractor is the fallback-chain stage that asks the completion
// oracle to extract rules when both table and section parsing came up
// empty.
type OracleExtractor struct {
	cfg    types.RuleConfig
	oracle oracle.Client
}

func NewOracleExtractor(cfg types.RuleConfig, client oracle.Client) *OracleExtractor {
	if cfg.OracleExcerptLen <= 0 {
		cfg.OracleExcerptLen = types.DefaultRuleConfig().OracleExcerptLen
	}
	return &OracleExtractor{cfg: cfg, oracle: client}
}

func (e *OracleExtractor) Name() string { return "oracle" }

// Extract sends a bounded excerpt to the oracle and parses the response as
// a rule array. The result is accepted only when the total score lands
// within 10 of 100; anything else is a stage failure.
func (e *OracleExtractor) Extract(ctx context.Context, doc Document, w io.Writer) []*types.ScoringRuleNode {
	if e.oracle == nil {
		return nil
	}

	excerpt := strings.Join(doc.Pages, "\n")
	if runes := []rune(excerpt); len(runes) > e.cfg.OracleExcerptLen {
		excerpt = string(runes[:e.cfg.OracleExcerptLen])
	}

	resp, err := e.oracle.Complete(ctx, fmt.Sprintf(extractionPrompt, excerpt))
	if oracle.IsFailure(resp, err) {
		if w != nil {
			fmt.Fprintf(w, "warning: oracle extraction unavailable: %s\n", firstLine(resp, err))
		}
		return nil
	}

	parsed, ok := parseRuleArray(resp)
	if !ok {
		if w != nil {
			fmt.Fprintf(w, "warning: oracle response is not a rule array, skipping\n")
		}
		return nil
	}

	roots := convertExtracted(parsed)
	total := types.TreeTotal(roots)
	if math.Abs(total-100) > 10 {
		if w != nil {
			fmt.Fprintf(w, "warning: oracle rules total %.1f, rejecting\n", total)
		}
		return nil
	}
	return roots
}

// parseRuleArray tolerates prose around the JSON payload by slicing from
// the first '[' to the last ']'.
func parseRuleArray(resp string) ([]extractedRule, bool) {
	start := strings.Index(resp, "[")
	end := strings.LastIndex(resp, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	var rules []extractedRule
	if err := json.Unmarshal([]byte(resp[start:end+1]), &rules); err != nil {
		return nil, false
	}
	if len(rules) == 0 {
		return nil, false
	}
	return rules, true
}

func convertExtracted(rules []extractedRule) []*types.ScoringRuleNode {
	nodes := make([]*types.ScoringRuleNode, 0, len(rules))
	for i, r := range rules {
		node := &types.ScoringRuleNode{
			Numbering:       []int{i + 1},
			CriteriaName:    strings.TrimSpace(r.CriteriaName),
			MaxScore:        r.MaxScore,
			Description:     strings.TrimSpace(r.Description),
			IsPriceCriteria: r.IsPriceCriteria,
			PriceFormula:    strings.TrimSpace(r.PriceFormula),
		}
		for j, c := range r.Children {
			node.Children = append(node.Children, &types.ScoringRuleNode{
				Numbering:    []int{i + 1, j + 1},
				CriteriaName: strings.TrimSpace(c.CriteriaName),
				MaxScore:     c.MaxScore,
				Description:  strings.TrimSpace(c.Description),
			})
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func firstLine(resp string, err error) string {
	if err != nil {
		return err.Error()
	}
	if i := strings.IndexByte(resp, '\n'); i >= 0 {
		resp = resp[:i]
	}
	return resp
}
