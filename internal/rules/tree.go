// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/bidwise/tender-engine/pkg/types"
)

// scoreTolerance is the accepted drift between a parent's declared score
// and the sum of its children before the parent is overwritten.
const scoreTolerance = 0.1

// BuildTree assembles flat numbered records into a forest of rule trees.
// Records are ordered by numbering (lexicographic over the components)
// and attached with an ancestor stack: a record with numbering length n
// becomes a child of the nearest preceding record with length n-1.
// Records whose parent never appeared are promoted to roots rather than
// dropped.
func BuildTree(flat []*types.ScoringRuleNode) []*types.ScoringRuleNode {
	if len(flat) == 0 {
		return nil
	}

	sorted := make([]*types.ScoringRuleNode, len(flat))
	copy(sorted, flat)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessNumbering(sorted[i].Numbering, sorted[j].Numbering)
	})

	var roots []*types.ScoringRuleNode
	var stack []*types.ScoringRuleNode

	for _, node := range sorted {
		depth := len(node.Numbering)
		// Pop until the stack top is a strict ancestor level.
		for len(stack) > 0 && len(stack[len(stack)-1].Numbering) >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return roots
}

func lessNumbering(a, b []int) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Validate reconciles scores bottom-up and normalizes the tree total.
//
// For every node with children, the children's sum is authoritative: when
// it differs from the declared score by more than the tolerance the node's
// score is overwritten and a warning is emitted. When the price criterion
// holds more than 30 points and the tree total drifts from 100, the
// non-price roots are rescaled proportionally so the total lands on 100;
// the price score itself is never touched.
func Validate(roots []*types.ScoringRuleNode, w io.Writer) {
	for _, r := range roots {
		reconcile(r, w)
	}
	normalizeTotal(roots, w)
}

// reconcile recomputes one subtree bottom-up.
func reconcile(n *types.ScoringRuleNode, w io.Writer) {
	if len(n.Children) == 0 {
		return
	}
	for _, c := range n.Children {
		reconcile(c, w)
	}
	sum := n.ChildrenSum()
	if math.Abs(sum-n.MaxScore) > scoreTolerance {
		if w != nil {
			fmt.Fprintf(w, "warning: %q declares %.1f but children sum to %.1f, using the sum\n",
				n.CriteriaName, n.MaxScore, sum)
		}
		n.MaxScore = sum
	}
}

// normalizeTotal rescales non-price roots when a dominant price criterion
// leaves the overall total off 100.
func normalizeTotal(roots []*types.ScoringRuleNode, w io.Writer) {
	price := types.FindPriceNode(roots)
	if price == nil || price.MaxScore <= 30 {
		return
	}
	total := types.TreeTotal(roots)
	if math.Abs(total-100) <= scoreTolerance {
		return
	}

	nonPrice := total - price.MaxScore
	if nonPrice <= 0 {
		return
	}
	factor := (100 - price.MaxScore) / nonPrice
	if w != nil {
		fmt.Fprintf(w, "warning: rule total %.1f with price score %.1f, rescaling other criteria by %.4f\n",
			total, price.MaxScore, factor)
	}
	for _, r := range roots {
		if r == price {
			continue
		}
		scale(r, factor)
	}
}

func scale(n *types.ScoringRuleNode, factor float64) {
	n.MaxScore = round1(n.MaxScore * factor)
	for _, c := range n.Children {
		scale(c, factor)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Dedup removes later rules whose name duplicates an earlier one at the
// same level. Duplicates appear when the section scan and the line
// patterns both match the same clause.
func Dedup(roots []*types.ScoringRuleNode) []*types.ScoringRuleNode {
	var kept []*types.ScoringRuleNode
	for _, r := range roots {
		dup := false
		for _, k := range kept {
			if SimilarCriteria(r.CriteriaName, k.CriteriaName) {
				dup = true
				break
			}
		}
		if !dup {
			r.Children = Dedup(r.Children)
			kept = append(kept, r)
		}
	}
	return kept
}
