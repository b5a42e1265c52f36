// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidwise/tender-engine/pkg/types"
)

func ruleHeader() []string {
	return []string{"评价项目", "评分细项", "评价标准"}
}

func rawTable(page int, header []string, dataRows ...[]string) types.RawTable {
	rows := [][]string{header}
	rows = append(rows, dataRows...)
	return types.RawTable{Page: page, Rows: rows}
}

func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"line breaks", "评价\n项目", "评价项目"},
		{"windows break and tab", "评价\r\n\t项目", "评价项目"},
		{"nbsp and ideographic space", "评价 　项目", "评价项目"},
		{"internal spaces stripped", "评 价 项 目", "评价项目"},
		{"already clean", "评价项目", "评价项目"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCell(tt.in))
		})
	}
}

func TestSegment_CrossPageMerge(t *testing.T) {
	// Identical headers on adjacent pages 5 and 6, four data rows each:
	// one logical table spanning pages 5-6 with 8 rows and page 5's header.
	raw := []types.RawTable{
		rawTable(5, ruleHeader(),
			[]string{"技术方案（60分）", "方案完整性（30分）", "完整可行"},
			[]string{"", "实施计划（30分）", "安排合理"},
			[]string{"商务（20分）", "业绩（10分）", "近三年同类业绩"},
			[]string{"", "资信（10分）", "无不良记录"},
		),
		rawTable(6, ruleHeader(),
			[]string{"售后服务（10分）", "响应时间（5分）", "2小时内响应"},
			[]string{"", "驻场支持（5分）", "提供驻场人员"},
			[]string{"价格分（40分）", "", "按评标基准价计算"},
			[]string{"", "", ""},
		),
	}

	s := NewSegmenter(types.DefaultTableConfig())
	logical := s.Segment(raw)

	require.Len(t, logical, 1)
	lt := logical[0]
	assert.Equal(t, 5, lt.StartPage)
	assert.Equal(t, 6, lt.EndPage)
	assert.Equal(t, []string{"评价项目", "评分细项", "评价标准"}, lt.Headers)
	assert.Len(t, lt.Rows, 8)
	assert.Equal(t, "售后服务（10分）", lt.Rows[4][0])
}

func TestSegment_NonAdjacentPagesNeverMerge(t *testing.T) {
	raw := []types.RawTable{
		rawTable(5, ruleHeader(), []string{"技术方案（60分）", "", "完整可行"}),
		rawTable(8, ruleHeader(), []string{"价格分（40分）", "", "按基准价计算"}),
	}

	s := NewSegmenter(types.DefaultTableConfig())
	logical := s.Segment(raw)
	assert.Len(t, logical, 2)
}

func TestSegment_ColumnCountMismatchNoMerge(t *testing.T) {
	raw := []types.RawTable{
		rawTable(5, ruleHeader(), []string{"技术方案", "完整性", "标准"}),
		rawTable(6, []string{"评价项目", "评价标准"}, []string{"价格分", "按基准价"}),
	}

	s := NewSegmenter(types.DefaultTableConfig())
	logical := s.Segment(raw)
	assert.Len(t, logical, 2)
}

func TestSegment_DensityMergeWithoutHeaderMatch(t *testing.T) {
	// Page 6's fragment has no repeated header; its first row is unrelated
	// text but the non-empty-cell density matches, so it continues page 5.
	raw := []types.RawTable{
		rawTable(5, ruleHeader(),
			[]string{"技术方案（60分）", "方案完整性（30分）", "完整可行"},
			[]string{"", "实施计划（30分）", "安排合理"},
		),
		{Page: 6, Rows: [][]string{
			{"售后服务（10分）", "响应时间（5分）", "2小时内响应"},
			{"", "驻场支持（5分）", "提供驻场人员"},
			{"价格分（40分）", "", "按评标基准价计算"},
		}},
	}

	s := NewSegmenter(types.DefaultTableConfig())
	logical := s.Segment(raw)

	require.Len(t, logical, 1)
	// The continuation's first row is treated as a repeated header and
	// dropped; the remaining rows append.
	assert.Len(t, logical[0].Rows, 4)
}

func TestSegment_FiltersTablesWithoutRequiredLabels(t *testing.T) {
	raw := []types.RawTable{
		rawTable(2, []string{"序号", "设备名称", "数量"},
			[]string{"1", "服务器", "2"},
			[]string{"2", "交换机", "4"},
		),
		rawTable(5, ruleHeader(), []string{"技术方案（60分）", "", "完整可行"}),
	}

	s := NewSegmenter(types.DefaultTableConfig())
	logical := s.Segment(raw)

	require.Len(t, logical, 1)
	assert.Equal(t, 5, logical[0].StartPage)
}

func TestSegment_WrappedHeaderStillMatchesLabels(t *testing.T) {
	raw := []types.RawTable{
		rawTable(5, []string{"评价\n项目", "评分细项", "评 价 标 准"},
			[]string{"技术方案（60分）", "", "完整可行"}),
	}

	s := NewSegmenter(types.DefaultTableConfig())
	logical := s.Segment(raw)

	require.Len(t, logical, 1)
	assert.Equal(t, "评价项目", logical[0].Headers[0])
	assert.Equal(t, "评价标准", logical[0].Headers[2])
}

func TestHeaderSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, headerSimilarity(ruleHeader(), ruleHeader()))
	assert.Equal(t, 0.0, headerSimilarity(nil, ruleHeader()))

	// Containment counts as a positional match.
	sim := headerSimilarity(
		[]string{"评价项目", "评分细项", "评价标准"},
		[]string{"项目", "评分细项", "标准"},
	)
	assert.Equal(t, 1.0, sim)
}

func TestDensitySimilarity(t *testing.T) {
	full := [][]string{{"a", "b", "c"}, {"d", "e", "f"}}
	sparse := [][]string{{"a", "", ""}, {"", "", ""}}

	assert.Equal(t, 1.0, densitySimilarity(full, full))
	assert.Less(t, densitySimilarity(full, sparse), 0.7)
	assert.Equal(t, 1.0, densitySimilarity(nil, nil))
	assert.Equal(t, 0.0, densitySimilarity(full, [][]string{{""}}))
}
