// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidwise/tender-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Path: filepath.Join(t.TempDir(), "eval.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTree() []*types.ScoringRuleNode {
	return []*types.ScoringRuleNode{
		{
			Numbering:    []int{1},
			CriteriaName: "技术方案",
			MaxScore:     60,
			Children: []*types.ScoringRuleNode{
				{Numbering: []int{1, 1}, CriteriaName: "方案完整性", MaxScore: 30, Description: "完整可行"},
				{Numbering: []int{1, 2}, CriteriaName: "实施计划", MaxScore: 30, Description: "安排合理"},
			},
		},
		{
			Numbering:       []int{2},
			CriteriaName:    "价格分",
			MaxScore:        40,
			IsPriceCriteria: true,
			PriceFormula:    "投标报价得分=(评标基准价/投标报价)×40",
		},
	}
}

func TestSaveAndLoadRules_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRules(ctx, "T1", sampleTree()))

	roots, err := s.LoadRules(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, roots, 2)

	assert.Equal(t, "技术方案", roots[0].CriteriaName)
	assert.Equal(t, 60.0, roots[0].MaxScore)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "实施计划", roots[0].Children[1].CriteriaName)

	price := roots[1]
	assert.True(t, price.IsPriceCriteria)
	assert.Equal(t, 40.0, price.MaxScore)
	assert.Contains(t, price.PriceFormula, "评标基准价")
	assert.Empty(t, price.Children)
}

func TestSaveRules_ReplacesPreviousSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRules(ctx, "T1", sampleTree()))
	require.NoError(t, s.SaveRules(ctx, "T1", sampleTree()[:1]))

	records, err := s.LoadRuleRecords(ctx, "T1")
	require.NoError(t, err)
	assert.Len(t, records, 2) // two leaf rows, no price row
}

func TestLoadRules_TenderIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRules(ctx, "T1", sampleTree()))

	roots, err := s.LoadRules(ctx, "T2")
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestInheritParents(t *testing.T) {
	name1, score1 := "子项一", 10.0
	name2, score2 := "子项二", 20.0
	records := []types.RuleRecord{
		{ParentItemName: "技术方案", ParentMaxScore: 30, ChildItemName: &name1, ChildMaxScore: &score1},
		{ChildItemName: &name2, ChildMaxScore: &score2},
	}

	changed := InheritParents(records)
	assert.Equal(t, 1, changed)
	assert.Equal(t, "技术方案", records[1].ParentItemName)
	assert.Equal(t, 30.0, records[1].ParentMaxScore)
}

func TestSweepOrphans(t *testing.T) {
	name, score := "子项", 10.0
	records := []types.RuleRecord{
		{ParentItemName: "技术方案", ParentMaxScore: 30, ChildItemName: &name, ChildMaxScore: &score},
		{ParentItemName: "残缺父项", ParentMaxScore: 20},
		{ParentItemName: "价格分", ParentMaxScore: 40, IsPriceCriteria: true},
	}

	kept, dropped := SweepOrphans(records)
	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 2)
	assert.Equal(t, "技术方案", kept[0].ParentItemName)
	assert.True(t, kept[1].IsPriceCriteria)
}

func TestCleanRules_PersistsCleanup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Seed a tree, then corrupt it with an orphan row via a direct insert.
	require.NoError(t, s.SaveRules(ctx, "T1", sampleTree()))
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scoring_rules (tender_id, parent_item_name, parent_max_score)
		 VALUES ('T1', '残缺父项', 15)`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.CleanRules(ctx, "T1", &buf))
	assert.Contains(t, buf.String(), "1 orphan rows dropped")

	roots, err := s.LoadRules(ctx, "T1")
	require.NoError(t, err)
	for _, r := range roots {
		assert.NotEqual(t, "残缺父项", r.CriteriaName)
	}
}

func TestSaveAndLoadResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	price := 2270000.0

	r := &types.BidderResult{
		Bidder:         "乙公司",
		ExtractedPrice: &price,
		PriceScore:     30.48,
		TotalScore:     82.48,
		Breakdown: []*types.ScoredItem{
			{CriteriaName: "技术方案", MaxScore: 60, Score: 52},
			{CriteriaName: "价格分", MaxScore: 40, Score: 30.48, IsPriceCriteria: true},
		},
	}
	require.NoError(t, s.SaveResult(ctx, "T1", r))

	got, err := s.LoadResult(ctx, "T1", "乙公司")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.ExtractedPrice)
	assert.Equal(t, 2270000.0, *got.ExtractedPrice)
	assert.Equal(t, 30.48, got.PriceScore)
	require.Len(t, got.Breakdown, 2)
	assert.True(t, got.Breakdown[1].IsPriceCriteria)

	missing, err := s.LoadResult(ctx, "T1", "不存在")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPriceSetAndListOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pA, pB := 1729800.0, 2270000.0
	require.NoError(t, s.SaveResult(ctx, "T1", &types.BidderResult{Bidder: "甲", ExtractedPrice: &pA, TotalScore: 90}))
	require.NoError(t, s.SaveResult(ctx, "T1", &types.BidderResult{Bidder: "乙", ExtractedPrice: &pB, TotalScore: 82}))
	require.NoError(t, s.SaveResult(ctx, "T1", &types.BidderResult{Bidder: "丙", TotalScore: 40}))

	set, err := s.PriceSet(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, set, 3)
	assert.Equal(t, 1729800.0, *set["甲"])
	assert.Nil(t, set["丙"])

	results, err := s.ListResults(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "甲", results[0].Bidder)
	assert.Equal(t, "丙", results[2].Bidder)
}

func TestExportYAML(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRules(ctx, "T1", sampleTree()))

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, s.ExportYAML(ctx, "T1", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tender_id: T1")
	assert.Contains(t, string(data), "技术方案")
	assert.Contains(t, string(data), "total: 100")
}

func TestNewStore_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	s, err := NewStore(types.StoreConfig{})
	require.NoError(t, err)
	defer s.Close()

	_, statErr := os.Stat(filepath.Join(dir, "tender-eval.db"))
	assert.NoError(t, statErr)
}
