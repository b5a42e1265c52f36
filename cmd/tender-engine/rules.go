// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bidwise/tender-engine/internal/pipeline"
	"github.com/bidwise/tender-engine/internal/store"
	"github.com/bidwise/tender-engine/pkg/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Extract and persist a tender's scoring rules",
	Long: `Rules runs the extraction fallback chain over a tender document:
structured tables, a section scan over raw text, oracle-assisted
extraction, and finally a generic default rule set. The validated tree
is persisted as the tender's rule snapshot.`,
	RunE: runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	tenderID, _ := cmd.Flags().GetString("tender")
	docPath, _ := cmd.Flags().GetString("doc")
	exportPath, _ := cmd.Flags().GetString("export")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	doc, err := loadDocument(docPath)
	if err != nil {
		return err
	}

	cfg := loadConfig(cmd)
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	p := pipeline.New(cfg, oracleClient(cmd, cfg), st)
	roots, err := p.ExtractRules(context.Background(), tenderID, doc, os.Stderr)
	if err != nil {
		return err
	}

	if exportPath != "" {
		if err := st.ExportYAML(context.Background(), tenderID, exportPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported rule snapshot to %s\n", exportPath)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(roots)
	}
	printRuleTree(roots, 0)
	fmt.Printf("\ntotal: %.1f\n", types.TreeTotal(roots))
	return nil
}

func printRuleTree(nodes []*types.ScoringRuleNode, depth int) {
	for _, n := range nodes {
		marker := ""
		if n.IsPriceCriteria {
			marker = "  [price]"
		}
		fmt.Printf("%s%s  %.1f%s\n", strings.Repeat("  ", depth), n.CriteriaName, n.MaxScore, marker)
		printRuleTree(n.Children, depth+1)
	}
}

func init() {
	rulesCmd.Flags().String("tender", "", "tender identifier")
	rulesCmd.Flags().String("doc", "", "tender document file (yaml with pages/tables, or txt)")
	rulesCmd.Flags().String("export", "", "write a YAML rule snapshot to this path")
	rulesCmd.Flags().Bool("json", false, "output the rule tree as JSON")
	rulesCmd.Flags().Bool("no-oracle", false, "skip oracle-assisted extraction stages")
	rulesCmd.MarkFlagRequired("tender")
	rulesCmd.MarkFlagRequired("doc")

	rootCmd.AddCommand(rulesCmd)
}
