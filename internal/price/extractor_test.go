// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package price

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidwise/tender-engine/pkg/types"
)

func findCandidate(t *testing.T, cands []types.PriceCandidate, value float64) types.PriceCandidate {
	t.Helper()
	for _, c := range cands {
		if c.Value == value {
			return c
		}
	}
	t.Fatalf("no candidate with value %v in %v", value, cands)
	return types.PriceCandidate{}
}

func TestExtract_KeywordAnchoredWithCrosscheck(t *testing.T) {
	pages := []string{
		"投标一览表\n小写金额：￥2,270,000.00（大写：贰佰贰拾柒万元整）",
	}

	e := NewExtractor(types.DefaultPriceConfig())
	cands := e.Extract(pages)
	require.NotEmpty(t, cands)

	c := findCandidate(t, cands, 2270000)
	assert.Equal(t, types.ReasonKeyword, c.Reason)
	assert.Equal(t, 0, c.Page)
	// base 50 + summary 40 + crosscheck 30 + magnitude 2.27.
	assert.InDelta(t, 122.27, c.Confidence, 0.01)
}

func TestExtract_GenericPattern(t *testing.T) {
	pages := []string{"本项目预算 1,500,000 元，详见附件。"}

	e := NewExtractor(types.DefaultPriceConfig())
	cands := e.Extract(pages)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, types.ReasonGeneric, c.Reason)
	assert.Equal(t, 1500000.0, c.Value)
	// base 10 + magnitude 1.5, no section anchor on the page.
	assert.InDelta(t, 11.5, c.Confidence, 0.01)
}

func TestExtract_ScheduleSectionBonus(t *testing.T) {
	pages := []string{"价格文件\n投标报价：880,000元"}

	e := NewExtractor(types.DefaultPriceConfig())
	c := findCandidate(t, e.Extract(pages), 880000)
	assert.Equal(t, types.ReasonKeyword, c.Reason)
	// base 50 + schedule 20 + magnitude 0.88.
	assert.InDelta(t, 70.88, c.Confidence, 0.01)
}

func TestExtract_MismatchedNumeralNoCrosscheck(t *testing.T) {
	pages := []string{"投标报价：￥100,000.00（大写：贰拾万元整）"}

	e := NewExtractor(types.DefaultPriceConfig())
	c := findCandidate(t, e.Extract(pages), 100000)
	// base 50 + magnitude 0.1 only; the spelling says 200,000.
	assert.InDelta(t, 50.1, c.Confidence, 0.01)
}

func TestExtract_MagnitudeBonusCapped(t *testing.T) {
	pages := []string{"投标报价：￥88,000,000.00"}

	e := NewExtractor(types.DefaultPriceConfig())
	c := findCandidate(t, e.Extract(pages), 88000000)
	// base 50 + capped magnitude 5.
	assert.InDelta(t, 55.0, c.Confidence, 0.01)
}

func TestExtract_UnparseableDropped(t *testing.T) {
	e := NewExtractor(types.DefaultPriceConfig())
	assert.Empty(t, e.Extract([]string{"投标报价：待定"}))
	assert.Empty(t, e.Extract(nil))
}
