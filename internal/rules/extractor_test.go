// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidwise/tender-engine/pkg/types"
)

func newTestExtractor(client *mockOracle) *Extractor {
	if client == nil {
		return NewExtractor(types.DefaultTableConfig(), types.DefaultRuleConfig(), nil)
	}
	return NewExtractor(types.DefaultTableConfig(), types.DefaultRuleConfig(), client)
}

func TestExtractor_NoInputFails(t *testing.T) {
	e := newTestExtractor(nil)
	_, err := e.Extract(context.Background(), Document{}, nil)
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestExtractor_TablesWin(t *testing.T) {
	doc := Document{
		Pages: []string{"第一页"},
		Tables: []types.RawTable{
			{
				Page: 3,
				Rows: [][]string{
					{"评价项目", "评分细项", "评价标准"},
					{"技术方案（60分）", "方案完整性（30分）", "完整可行"},
					{"", "实施计划（30分）", "安排合理"},
					{"价格分（40分）", "", "投标报价得分=(评标基准价/投标报价)×40"},
				},
			},
		},
	}

	var buf bytes.Buffer
	e := newTestExtractor(nil)
	roots, err := e.Extract(context.Background(), doc, &buf)
	require.NoError(t, err)

	require.Len(t, roots, 2)
	assert.Contains(t, buf.String(), "via tables")
	assert.Equal(t, 60.0, roots[0].MaxScore)
	require.Len(t, roots[0].Children, 2)
	assert.True(t, roots[1].IsPriceCriteria)
	assert.InDelta(t, 100.0, types.TreeTotal(roots), 0.1)
}

func TestExtractor_FallsBackToSectionScan(t *testing.T) {
	doc := Document{
		Pages: []string{
			"评标办法\n一、技术方案（60分）\n方案完整。\n二、价格分（40分）\n" +
				"投标报价得分=(评标基准价/投标报价)×40，评标基准价为最低有效报价。\n" +
				longFiller() + "合同条款",
		},
		// A table that fails the required-label filter.
		Tables: []types.RawTable{
			{Page: 1, Rows: [][]string{{"序号", "名称", "数量"}, {"1", "服务器", "2"}}},
		},
	}

	var buf bytes.Buffer
	e := newTestExtractor(nil)
	roots, err := e.Extract(context.Background(), doc, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "via section-scan")
	require.NotEmpty(t, roots)
	price := types.FindPriceNode(roots)
	require.NotNil(t, price)
	assert.Contains(t, price.PriceFormula, "评标基准价")
}

func TestExtractor_OracleStage(t *testing.T) {
	mock := &mockOracle{response: `[
		{"criteria_name": "技术方案", "max_score": 60, "children": [
			{"criteria_name": "方案完整性", "max_score": 30},
			{"criteria_name": "实施计划", "max_score": 30}
		]},
		{"criteria_name": "价格分", "max_score": 40, "is_price_criteria": true,
		 "price_formula": "投标报价得分=(评标基准价/投标报价)×40"}
	]`}

	doc := Document{Pages: []string{"没有表格也没有评分章节的文档。"}}

	var buf bytes.Buffer
	e := newTestExtractor(mock)
	roots, err := e.Extract(context.Background(), doc, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "via oracle")
	require.Len(t, roots, 2)
	assert.True(t, roots[1].IsPriceCriteria)
	assert.InDelta(t, 100.0, types.TreeTotal(roots), 0.1)
}

func TestExtractor_OracleRejectedFallsToDefaults(t *testing.T) {
	// Total far from 100: the oracle stage must reject it.
	mock := &mockOracle{response: `[{"criteria_name": "技术方案", "max_score": 55}]`}

	doc := Document{Pages: []string{"没有表格也没有评分章节的文档。"}}

	var buf bytes.Buffer
	e := newTestExtractor(mock)
	roots, err := e.Extract(context.Background(), doc, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "rejecting")
	assert.Contains(t, buf.String(), "via defaults")
	require.Len(t, roots, 2)
	price := types.FindPriceNode(roots)
	require.NotNil(t, price)
	assert.Equal(t, 40.0, price.MaxScore)
	assert.InDelta(t, 100.0, types.TreeTotal(roots), 0.1)
}

func TestExtractor_OracleErrorPrefixFallsToDefaults(t *testing.T) {
	mock := &mockOracle{response: "Error: could not reach completion service"}

	doc := Document{Pages: []string{"没有表格也没有评分章节的文档。"}}

	e := newTestExtractor(mock)
	roots, err := e.Extract(context.Background(), doc, nil)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.NotNil(t, types.FindPriceNode(roots))
}

func longFiller() string {
	s := ""
	for i := 0; i < 80; i++ {
		s += "评分说明补充内容。\n"
	}
	return s
}
