// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bidwise/tender-engine/internal/pipeline"
	"github.com/bidwise/tender-engine/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate a tender end to end",
	Long: `Run executes the full pipeline: rule extraction from the tender
document, parallel price extraction across every bid document, and the
cross-bidder price scoring once all prices are in. Bid documents are
given as repeated --bid name=path flags.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	tenderID, _ := cmd.Flags().GetString("tender")
	docPath, _ := cmd.Flags().GetString("doc")
	bidFlags, _ := cmd.Flags().GetStringSlice("bid")

	if len(bidFlags) == 0 {
		return fmt.Errorf("no bid documents: provide at least one --bid name=path")
	}

	tender, err := loadDocument(docPath)
	if err != nil {
		return err
	}

	var bids []pipeline.BidDocument
	for _, spec := range bidFlags {
		name, path, ok := strings.Cut(spec, "=")
		if !ok || name == "" || path == "" {
			return fmt.Errorf("invalid --bid %q: expected name=path", spec)
		}
		doc, err := loadDocument(path)
		if err != nil {
			return err
		}
		bids = append(bids, pipeline.BidDocument{Bidder: name, Pages: doc.Pages})
	}

	cfg := loadConfig(cmd)
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	p := pipeline.New(cfg, oracleClient(cmd, cfg), st)
	if err := p.Run(context.Background(), tenderID, tender, bids, os.Stderr); err != nil {
		return err
	}

	results, err := st.ListResults(context.Background(), tenderID)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Printf("%d. %s  total %.2f (price %.2f)\n", i+1, r.Bidder, r.TotalScore, r.PriceScore)
	}
	return nil
}

func init() {
	runCmd.Flags().String("tender", "", "tender identifier")
	runCmd.Flags().String("doc", "", "tender document file")
	runCmd.Flags().StringSlice("bid", nil, "bid document as name=path (repeatable)")
	runCmd.Flags().Bool("no-oracle", false, "skip oracle-assisted extraction stages")
	runCmd.MarkFlagRequired("tender")
	runCmd.MarkFlagRequired("doc")

	rootCmd.AddCommand(runCmd)
}
