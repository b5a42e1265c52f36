// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bidwise/tender-engine/internal/pipeline"
	"github.com/bidwise/tender-engine/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute cross-bidder price scores and the ranking",
	Long: `Score runs after every bidder's price extraction has completed. It
reads the full bidder price set, takes the lowest valid price as the
benchmark, scores every priced bidder against it, and updates each
bidder's persisted breakdown and total. Bidders without a price are
excluded from the benchmark, not failed.`,
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	tenderID, _ := cmd.Flags().GetString("tender")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig(cmd)
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	p := pipeline.New(cfg, nil, st)
	if _, err := p.ScoreTender(context.Background(), tenderID, os.Stderr); err != nil {
		return err
	}

	results, err := st.ListResults(context.Background(), tenderID)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Printf("%-4s  %-20s  %12s  %8s  %8s\n", "Rank", "Bidder", "Price", "PriceSc", "Total")
	for i, r := range results {
		priceStr := "-"
		if r.ExtractedPrice != nil {
			priceStr = fmt.Sprintf("%.2f", *r.ExtractedPrice)
		}
		fmt.Printf("%-4d  %-20s  %12s  %8.2f  %8.2f\n",
			i+1, r.Bidder, priceStr, r.PriceScore, r.TotalScore)
	}
	return nil
}

func init() {
	scoreCmd.Flags().String("tender", "", "tender identifier")
	scoreCmd.Flags().Bool("json", false, "output results as JSON")
	scoreCmd.MarkFlagRequired("tender")

	rootCmd.AddCommand(scoreCmd)
}
