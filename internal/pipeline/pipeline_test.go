// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidwise/tender-engine/internal/rules"
	"github.com/bidwise/tender-engine/internal/store"
	"github.com/bidwise/tender-engine/pkg/types"
)

func newTestPipeline(t *testing.T) (*Pipeline, *store.Store) {
	t.Helper()
	cfg := types.DefaultPipelineConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "eval.db")

	st, err := store.NewStore(cfg.Store)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return New(cfg, nil, st), st
}

func tenderDoc() rules.Document {
	return rules.Document{
		Pages: []string{"评标办法见下表。"},
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
}

func bidPages(amount string) []string {
	return []string{"投标一览表\n投标报价：￥" + amount}
}

func TestRun_EndToEnd(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	bids := []BidDocument{
		{Bidder: "甲", Pages: bidPages("1,729,800.00")},
		{Bidder: "乙", Pages: bidPages("2,270,000.00")},
		{Bidder: "丙", Pages: bidPages("2,876,875.00")},
	}

	var buf bytes.Buffer
	require.NoError(t, p.Run(ctx, "T1", tenderDoc(), bids, &buf))

	results, err := st.ListResults(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, results, 3)

	byBidder := map[string]*types.BidderResult{}
	for _, r := range results {
		byBidder[r.Bidder] = r
	}

	assert.Equal(t, 40.0, byBidder["甲"].PriceScore)
	assert.Equal(t, 30.48, byBidder["乙"].PriceScore)
	assert.Equal(t, 24.05, byBidder["丙"].PriceScore)

	// Non-price items are unscored here, so the total equals the price
	// score.
	assert.Equal(t, 30.48, byBidder["乙"].TotalScore)

	require.NotNil(t, byBidder["乙"].ExtractedPrice)
	assert.Equal(t, 2270000.0, *byBidder["乙"].ExtractedPrice)
}

func TestExtractPrices_NilPriceDoesNotBlockScoring(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	_, err := p.ExtractRules(ctx, "T1", tenderDoc(), nil)
	require.NoError(t, err)

	bids := []BidDocument{
		{Bidder: "甲", Pages: bidPages("1,729,800.00")},
		{Bidder: "乙", Pages: []string{"本文件不含任何报价数字。"}},
	}

	var buf bytes.Buffer
	set, err := p.ExtractPrices(ctx, "T1", bids, &buf)
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Nil(t, set["乙"])
	assert.Contains(t, buf.String(), "no price found for 乙")

	scores, err := p.ScoreTender(ctx, "T1", nil)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 40.0, scores["甲"])

	// The unpriced bidder keeps its record, excluded from the benchmark.
	result, err := st.LoadResult(ctx, "T1", "乙")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Nil(t, result.ExtractedPrice)
	assert.Equal(t, 0.0, result.PriceScore)
}

func TestScoreTender_Retrigger(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx := context.Background()

	_, err := p.ExtractRules(ctx, "T1", tenderDoc(), nil)
	require.NoError(t, err)

	bids := []BidDocument{
		{Bidder: "甲", Pages: bidPages("1,729,800.00")},
		{Bidder: "乙", Pages: bidPages("2,270,000.00")},
	}
	_, err = p.ExtractPrices(ctx, "T1", bids, nil)
	require.NoError(t, err)

	first, err := p.ScoreTender(ctx, "T1", nil)
	require.NoError(t, err)
	second, err := p.ScoreTender(ctx, "T1", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtractRules_NoInput(t *testing.T) {
	p, _ := newTestPipeline(t)
	_, err := p.ExtractRules(context.Background(), "T1", rules.Document{}, nil)
	assert.ErrorIs(t, err, rules.ErrNoInput)
}
