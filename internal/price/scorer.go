// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package price

import (
	"math"
	"strings"

	"github.com/bidwise/tender-engine/pkg/types"
)

// ratioMarkers detect a benchmark/bid-price ratio formula in rule text.
// Alternative benchmark definitions (averages, weighted means) are
// recognized as text but still scored with the lowest-price ratio rule;
// distinguishing them algorithmically needs new requirements.
var ratioMarkers = []string{"基准价", "最低", "比值", "比率"}

// Scorer computes the competitive price score across all bidders of a
// tender.
type Scorer struct {
	rule types.PriceScoringRule
}

func NewScorer(rule types.PriceScoringRule) *Scorer {
	return &Scorer{rule: rule}
}

// Score computes every bidder's price score from the full price set. The
// benchmark is the minimum valid price; the benchmark holder scores the
// full budget and everyone else scores benchmark/price of it, rounded to
// two decimals. Bidders without a usable price are excluded, not zeroed.
func (s *Scorer) Score(prices types.BidderPriceSet) types.PriceScoreResult {
	valid := prices.ValidPrices()
	if len(valid) == 0 {
		return types.PriceScoreResult{}
	}

	benchmark := math.Inf(1)
	for _, p := range valid {
		if p < benchmark {
			benchmark = p
		}
	}

	result := make(types.PriceScoreResult, len(valid))
	for bidder, p := range valid {
		if p == benchmark {
			result[bidder] = s.rule.MaxScore
			continue
		}
		result[bidder] = round2(benchmark / p * s.rule.MaxScore)
	}
	return result
}

// UsesRatioRule reports whether the rule's formula text names a
// benchmark/ratio calculation.
func (s *Scorer) UsesRatioRule() bool {
	for _, m := range ratioMarkers {
		if strings.Contains(s.rule.Formula, m) {
			return true
		}
	}
	return false
}

// ApplyToResult patches one bidder's evaluation record with its new price
// score: the price line item is overwritten in the breakdown and the total
// is recomputed as the sum of every other scored item plus the new price
// score.
func ApplyToResult(r *types.BidderResult, priceScore float64, priceKeywords []string) {
	r.PriceScore = priceScore
	patchPriceItem(r.Breakdown, priceScore, priceKeywords)
	r.TotalScore = round2(totalScore(r.Breakdown))
}

// patchPriceItem locates the price line item by its flag, falling back to
// a keyword match on the name, and overwrites its score.
func patchPriceItem(items []*types.ScoredItem, priceScore float64, keywords []string) bool {
	for _, item := range items {
		if item.IsPriceCriteria || matchesKeyword(item.CriteriaName, keywords) {
			item.Score = priceScore
			return true
		}
		if patchPriceItem(item.Children, priceScore, keywords) {
			// Parent aggregates refresh during the total recompute.
			item.Score = leafSum(item)
			return true
		}
	}
	return false
}

func matchesKeyword(name string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// totalScore sums leaf scores across the breakdown; parents mirror their
// children, so counting them too would double the total.
func totalScore(items []*types.ScoredItem) float64 {
	var sum float64
	for _, item := range items {
		if len(item.Children) == 0 {
			sum += item.Score
			continue
		}
		sum += totalScore(item.Children)
	}
	return sum
}

func leafSum(item *types.ScoredItem) float64 {
	return totalScore([]*types.ScoredItem{item})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
