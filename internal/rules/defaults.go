// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"context"
	"fmt"
	"io"

	"github.com/bidwise/tender-engine/pkg/types"
)

// DefaultRules is the terminal fallback-chain stage: a generic
// technical/price split that always succeeds, so the pipeline never ends
// without usable rules.
type DefaultRules struct{}

func (DefaultRules) Name() string { return "defaults" }

func (DefaultRules) Extract(_ context.Context, _ Document, w io.Writer) []*types.ScoringRuleNode {
	if w != nil {
		fmt.Fprintf(w, "warning: no rules extracted from document, using the generic default set\n")
	}
	return defaultRuleTree()
}

// defaultRuleTree builds the generic 60/40 technical/price split. A fresh
// tree per call; stages mutate their output in place during validation.
func defaultRuleTree() []*types.ScoringRuleNode {
	return []*types.ScoringRuleNode{
		{
			Numbering:    []int{1},
			CriteriaName: "技术方案",
			MaxScore:     60,
			Children: []*types.ScoringRuleNode{
				{
					Numbering:    []int{1, 1},
					CriteriaName: "技术方案完整性",
					MaxScore:     30,
					Description:  "技术方案完整、可行，满足招标文件要求",
				},
				{
					Numbering:    []int{1, 2},
					CriteriaName: "实施方案",
					MaxScore:     30,
					Description:  "实施计划合理，人员配置与进度安排满足项目需要",
				},
			},
		},
		{
			Numbering:       []int{2},
			CriteriaName:    "价格分",
			MaxScore:        40,
			Description:     "以所有有效投标人中最低报价为评标基准价",
			IsPriceCriteria: true,
			PriceFormula:    "投标报价得分=(评标基准价/投标报价)×40，评标基准价为所有有效投标报价中的最低价",
		},
	}
}
