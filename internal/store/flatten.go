// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"github.com/bidwise/tender-engine/pkg/types"
)

// FlattenTree converts a rule tree to its persisted row form: one row per
// leaf carrying both the parent and child columns, and a child-less row
// for the price rule.
func FlattenTree(roots []*types.ScoringRuleNode) []types.RuleRecord {
	var records []types.RuleRecord
	for _, root := range roots {
		if root.IsPriceCriteria {
			records = append(records, types.RuleRecord{
				ParentItemName:  root.CriteriaName,
				ParentMaxScore:  root.MaxScore,
				Description:     root.Description,
				IsPriceCriteria: true,
				PriceFormula:    root.PriceFormula,
			})
			continue
		}
		if len(root.Children) == 0 {
			// A standalone criterion doubles as its own child row so the
			// pair survives the orphan sweep.
			name, score := root.CriteriaName, root.MaxScore
			records = append(records, types.RuleRecord{
				ParentItemName: root.CriteriaName,
				ParentMaxScore: root.MaxScore,
				ChildItemName:  &name,
				ChildMaxScore:  &score,
				Description:    root.Description,
				IsVeto:         root.IsVeto,
			})
			continue
		}
		for _, child := range root.Children {
			name, score := child.CriteriaName, child.MaxScore
			records = append(records, types.RuleRecord{
				ParentItemName: root.CriteriaName,
				ParentMaxScore: root.MaxScore,
				ChildItemName:  &name,
				ChildMaxScore:  &score,
				Description:    child.Description,
				IsVeto:         child.IsVeto,
			})
		}
	}
	return records
}

// InheritParents fills forward rows whose parent columns were textually
// empty in the source table, inheriting the nearest preceding populated
// parent. Returns the number of rows changed.
func InheritParents(records []types.RuleRecord) int {
	changed := 0
	var lastName string
	var lastScore float64
	for i := range records {
		if records[i].ParentItemName != "" {
			lastName = records[i].ParentItemName
			lastScore = records[i].ParentMaxScore
			continue
		}
		if lastName == "" {
			continue
		}
		records[i].ParentItemName = lastName
		records[i].ParentMaxScore = lastScore
		changed++
	}
	return changed
}

// SweepOrphans drops incomplete parent-only rows: parent populated, child
// columns null, and not the price rule. Returns the surviving rows and the
// number dropped.
func SweepOrphans(records []types.RuleRecord) ([]types.RuleRecord, int) {
	var kept []types.RuleRecord
	dropped := 0
	for _, r := range records {
		if !r.IsPriceCriteria && r.ChildItemName == nil && r.ChildMaxScore == nil {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}

// BuildFromRecords reassembles a rule tree from persisted rows. Rows with
// the same parent name group, in order, under one parent node; a
// self-paired row (child name equals parent name) stays a standalone
// criterion.
func BuildFromRecords(records []types.RuleRecord) []*types.ScoringRuleNode {
	var roots []*types.ScoringRuleNode
	byParent := make(map[string]*types.ScoringRuleNode)

	for _, r := range records {
		if r.IsPriceCriteria {
			roots = append(roots, &types.ScoringRuleNode{
				Numbering:       []int{len(roots) + 1},
				CriteriaName:    r.ParentItemName,
				MaxScore:        r.ParentMaxScore,
				Description:     r.Description,
				IsPriceCriteria: true,
				PriceFormula:    r.PriceFormula,
			})
			continue
		}
		if r.ChildItemName == nil {
			continue
		}

		if *r.ChildItemName == r.ParentItemName {
			roots = append(roots, &types.ScoringRuleNode{
				Numbering:    []int{len(roots) + 1},
				CriteriaName: r.ParentItemName,
				MaxScore:     r.ParentMaxScore,
				Description:  r.Description,
				IsVeto:       r.IsVeto,
			})
			continue
		}

		parent, ok := byParent[r.ParentItemName]
		if !ok {
			parent = &types.ScoringRuleNode{
				Numbering:    []int{len(roots) + 1},
				CriteriaName: r.ParentItemName,
				MaxScore:     r.ParentMaxScore,
			}
			byParent[r.ParentItemName] = parent
			roots = append(roots, parent)
		}
		var childScore float64
		if r.ChildMaxScore != nil {
			childScore = *r.ChildMaxScore
		}
		numbering := append(append([]int{}, parent.Numbering...), len(parent.Children)+1)
		parent.Children = append(parent.Children, &types.ScoringRuleNode{
			Numbering:    numbering,
			CriteriaName: *r.ChildItemName,
			MaxScore:     childScore,
			Description:  r.Description,
			IsVeto:       r.IsVeto,
		})
	}
	return roots
}
