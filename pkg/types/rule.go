// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ScoringRuleNode is one evaluation criterion in a tender's scoring-rule
// tree. A node with children is a grouping item whose MaxScore is derived
// from its children; a childless node is scored directly against bid
// documents. The price criterion is a distinguished childless root: its
// score cannot be computed until every bidder's price is known, so it
// carries a formula instead of a subtree.
type ScoringRuleNode struct {
	// Numbering encodes document order and nesting depth: (1), (1,1),
	// (1,2), (2). Length is the nesting level.
	Numbering []int `json:"numbering" yaml:"numbering"`

	// CriteriaName is the criterion label as it appears in the document.
	CriteriaName string `json:"criteria_name" yaml:"criteria_name"`

	// MaxScore is the criterion's score budget. For nodes with children it
	// equals the sum of the children's MaxScore within ±0.1.
	MaxScore float64 `json:"max_score" yaml:"max_score"`

	// Description is the free-text evaluation standard for this criterion.
	Description string `json:"description" yaml:"description"`

	// IsPriceCriteria marks the deferred-scoring price node.
	IsPriceCriteria bool `json:"is_price_criteria" yaml:"is_price_criteria"`

	// PriceFormula is the normalized benchmark/ratio sentence extracted
	// from the document. Populated only when IsPriceCriteria is true.
	PriceFormula string `json:"price_formula,omitempty" yaml:"price_formula,omitempty"`

	// IsVeto marks disqualification clauses that carry no score weight.
	IsVeto bool `json:"is_veto,omitempty" yaml:"is_veto,omitempty"`

	// Children holds sub-criteria in document order.
	Children []*ScoringRuleNode `json:"children" yaml:"children"`
}

// ChildrenSum returns the sum of the direct children's MaxScore.
func (n *ScoringRuleNode) ChildrenSum() float64 {
	var sum float64
	for _, c := range n.Children {
		sum += c.MaxScore
	}
	return sum
}

// Walk visits n and every descendant in document order.
func (n *ScoringRuleNode) Walk(fn func(*ScoringRuleNode)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// TreeTotal returns the sum of the root scores of a rule tree.
func TreeTotal(roots []*ScoringRuleNode) float64 {
	var total float64
	for _, r := range roots {
		total += r.MaxScore
	}
	return total
}

// FindPriceNode returns the first node in the tree marked as the price
// criterion, or nil when the tree has none.
func FindPriceNode(roots []*ScoringRuleNode) *ScoringRuleNode {
	for _, r := range roots {
		var found *ScoringRuleNode
		r.Walk(func(n *ScoringRuleNode) {
			if found == nil && n.IsPriceCriteria {
				found = n
			}
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// RuleRecord is the persisted flattened form of a rule node. Each leaf is
// stored as a parent/child pair; the price rule stores only the parent
// side plus its formula. A record with a populated parent but nil child
// fields (and not the price rule) is incomplete and is swept by the store's
// cleanup pass.
type RuleRecord struct {
	ParentItemName  string   `json:"parent_item_name" yaml:"parent_item_name"`
	ParentMaxScore  float64  `json:"parent_max_score" yaml:"parent_max_score"`
	ChildItemName   *string  `json:"child_item_name" yaml:"child_item_name"`
	ChildMaxScore   *float64 `json:"child_max_score" yaml:"child_max_score"`
	Description     string   `json:"description" yaml:"description"`
	IsVeto          bool     `json:"is_veto" yaml:"is_veto"`
	IsPriceCriteria bool     `json:"is_price_criteria" yaml:"is_price_criteria"`
	PriceFormula    string   `json:"price_formula,omitempty" yaml:"price_formula,omitempty"`
}

// PriceScoringRule is the tender's price-scoring definition: the price
// criterion's score budget and the formula text describing the benchmark
// and ratio rule. Read-only during scoring.
type PriceScoringRule struct {
	MaxScore float64 `json:"max_score" yaml:"max_score"`
	Formula  string  `json:"formula,omitempty" yaml:"formula,omitempty"`
}
