// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates a tender evaluation end to end: rule
// extraction once per tender, price extraction per bidder in parallel,
// and the cross-bidder price scoring that can only run after every
// bidder's price is known.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bidwise/tender-engine/internal/oracle"
	"github.com/bidwise/tender-engine/internal/price"
	"github.com/bidwise/tender-engine/internal/rules"
	"github.com/bidwise/tender-engine/internal/store"
	"github.com/bidwise/tender-engine/pkg/types"
)

// BidDocument is one bidder's submitted document as page texts.
type BidDocument struct {
	Bidder string
	Pages  []string
}

// Pipeline wires the extraction stages to the evaluation store.
type Pipeline struct {
	cfg       types.PipelineConfig
	extractor *rules.Extractor
	prices    *price.Extractor
	selector  *price.Selector
	store     *store.Store
}

// New builds a pipeline from configuration. The oracle client may be nil;
// rule extraction then skips its oracle-assisted stages.
func New(cfg types.PipelineConfig, client oracle.Client, st *store.Store) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		extractor: rules.NewExtractor(cfg.Table, cfg.Rules, client),
		prices:    price.NewExtractor(cfg.Price),
		selector:  price.NewSelector(cfg.Price),
		store:     st,
	}
}

// ExtractRules runs the fallback chain over the tender document and
// persists the validated tree as the tender's rule snapshot.
func (p *Pipeline) ExtractRules(ctx context.Context, tenderID string, doc rules.Document, w io.Writer) ([]*types.ScoringRuleNode, error) {
	roots, err := p.extractor.Extract(ctx, doc, w)
	if err != nil {
		return nil, fmt.Errorf("extracting rules for %s: %w", tenderID, err)
	}
	if err := p.store.SaveRules(ctx, tenderID, roots); err != nil {
		return nil, err
	}
	// Sweep any incomplete rows the flattening produced.
	if err := p.store.CleanRules(ctx, tenderID, w); err != nil {
		return nil, err
	}
	return roots, nil
}

// ExtractPrices runs price extraction for every bidder in parallel and
// persists one result record per bidder, seeded with an unscored breakdown
// mirroring the rule tree. A bidder whose document yields no price gets a
// nil price, not an error.
func (p *Pipeline) ExtractPrices(ctx context.Context, tenderID string, bids []BidDocument, w io.Writer) (types.BidderPriceSet, error) {
	roots, err := p.store.LoadRules(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	type bidPrice struct {
		bidder string
		value  *float64
	}

	ch := make(chan bidPrice, len(bids))
	var wg sync.WaitGroup

	for _, bid := range bids {
		wg.Add(1)
		go func(bid BidDocument) {
			defer wg.Done()
			candidates := p.prices.Extract(bid.Pages)
			ch <- bidPrice{bidder: bid.Bidder, value: p.selector.Select(candidates, bid.Pages)}
		}(bid)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	set := make(types.BidderPriceSet, len(bids))
	for bp := range ch {
		set[bp.bidder] = bp.value
		if w != nil {
			if bp.value != nil {
				fmt.Fprintf(w, "extracted price for %s: %.2f\n", bp.bidder, *bp.value)
			} else {
				fmt.Fprintf(w, "warning: no price found for %s\n", bp.bidder)
			}
		}
	}

	// Persist sequentially after the join; the store is shared state.
	for bidder, value := range set {
		result := &types.BidderResult{
			Bidder:         bidder,
			ExtractedPrice: value,
			Breakdown:      breakdownSkeleton(roots),
		}
		if err := p.store.SaveResult(ctx, tenderID, result); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// ScoreTender is the post-barrier step: one atomic read of the full price
// set, score computation, then one independent write per bidder. Each
// bidder's read-patch-recompute-persist stays sequential within its own
// goroutine so a concurrent re-trigger cannot lose updates.
func (p *Pipeline) ScoreTender(ctx context.Context, tenderID string, w io.Writer) (types.PriceScoreResult, error) {
	set, err := p.store.PriceSet(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	rule, err := p.priceRule(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	scores := price.NewScorer(rule).Score(set)

	var wg sync.WaitGroup
	errCh := make(chan error, len(scores))
	for bidder, sc := range scores {
		wg.Add(1)
		go func(bidder string, sc float64) {
			defer wg.Done()
			errCh <- p.applyScore(ctx, tenderID, bidder, sc)
		}(bidder, sc)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}

	if w != nil {
		for bidder, sc := range scores {
			fmt.Fprintf(w, "price score for %s: %.2f\n", bidder, sc)
		}
	}
	return scores, nil
}

// applyScore is one bidder's sequential read-patch-recompute-persist.
func (p *Pipeline) applyScore(ctx context.Context, tenderID, bidder string, score float64) error {
	result, err := p.store.LoadResult(ctx, tenderID, bidder)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("no result record for bidder %s", bidder)
	}
	price.ApplyToResult(result, score, p.cfg.Rules.PriceKeywords)
	return p.store.SaveResult(ctx, tenderID, result)
}

// Run evaluates a tender end to end: rules, per-bidder prices, then the
// cross-bidder price scores.
func (p *Pipeline) Run(ctx context.Context, tenderID string, tender rules.Document, bids []BidDocument, w io.Writer) error {
	if _, err := p.ExtractRules(ctx, tenderID, tender, w); err != nil {
		return err
	}
	if _, err := p.ExtractPrices(ctx, tenderID, bids, w); err != nil {
		return err
	}
	_, err := p.ScoreTender(ctx, tenderID, w)
	return err
}

// priceRule reads the tender's price-scoring definition from the persisted
// tree. A tender without a price criterion scores everyone zero, which
// surfaces clearly in the output rather than failing the run.
func (p *Pipeline) priceRule(ctx context.Context, tenderID string) (types.PriceScoringRule, error) {
	roots, err := p.store.LoadRules(ctx, tenderID)
	if err != nil {
		return types.PriceScoringRule{}, err
	}
	node := types.FindPriceNode(roots)
	if node == nil {
		return types.PriceScoringRule{}, nil
	}
	return types.PriceScoringRule{MaxScore: node.MaxScore, Formula: node.PriceFormula}, nil
}

// breakdownSkeleton mirrors the rule tree as an unscored breakdown.
func breakdownSkeleton(roots []*types.ScoringRuleNode) []*types.ScoredItem {
	items := make([]*types.ScoredItem, 0, len(roots))
	for _, r := range roots {
		item := &types.ScoredItem{
			CriteriaName:    r.CriteriaName,
			MaxScore:        r.MaxScore,
			IsPriceCriteria: r.IsPriceCriteria,
		}
		item.Children = breakdownSkeleton(r.Children)
		if len(item.Children) == 0 {
			item.Children = nil
		}
		items = append(items, item)
	}
	return items
}
