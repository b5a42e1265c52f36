// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bidwise/tender-engine/internal/pipeline"
	"github.com/bidwise/tender-engine/internal/store"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Extract a bidder's price from its bid document",
	Long: `Price scans one bidder's document pages for price mentions, ranks
them by confidence, and persists the selected price on the bidder's
evaluation record. A document with no credible price records a null
price; the bidder is then excluded from the benchmark during scoring.`,
	RunE: runPrice,
}

func runPrice(cmd *cobra.Command, args []string) error {
	tenderID, _ := cmd.Flags().GetString("tender")
	bidder, _ := cmd.Flags().GetString("bidder")
	docPath, _ := cmd.Flags().GetString("doc")

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

	p := pipeline.New(cfg, nil, st)
	set, err := p.ExtractPrices(context.Background(), tenderID,
		[]pipeline.BidDocument{{Bidder: bidder, Pages: doc.Pages}}, os.Stderr)
	if err != nil {
		return err
	}

	if v := set[bidder]; v != nil {
		fmt.Printf("%s: %.2f\n", bidder, *v)
	} else {
		fmt.Printf("%s: no price found\n", bidder)
	}
	return nil
}

func init() {
	priceCmd.Flags().String("tender", "", "tender identifier")
	priceCmd.Flags().String("bidder", "", "bidder identifier")
	priceCmd.Flags().String("doc", "", "bid document file (yaml with pages, or txt)")
	priceCmd.MarkFlagRequired("tender")
	priceCmd.MarkFlagRequired("bidder")
	priceCmd.MarkFlagRequired("doc")

	rootCmd.AddCommand(priceCmd)
}
