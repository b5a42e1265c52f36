//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// runCLI executes the built tender-engine binary with the given arguments.
func runCLI(args ...string) error {
	bin := filepath.Join(binDir, binName)
	if _, err := os.Stat(bin); err != nil {
		if err := Build(); err != nil {
			return err
		}
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Rules extracts and persists the scoring rules for a tender document.
// Expects TENDER and DOC in the environment.
func Rules() error {
	tender, doc := os.Getenv("TENDER"), os.Getenv("DOC")
	if tender == "" || doc == "" {
		return fmt.Errorf("set TENDER and DOC, e.g. TENDER=T1 DOC=tenders/t1.yaml mage rules")
	}
	return runCLI("rules", "--tender", tender, "--doc", doc,
		"--export", filepath.Join("output", "snapshots", tender+".yaml"))
}

// Price extracts one bidder's price from its bid document. Expects
// TENDER, BIDDER, and DOC in the environment.
func Price() error {
	tender, bidder, doc := os.Getenv("TENDER"), os.Getenv("BIDDER"), os.Getenv("DOC")
	if tender == "" || bidder == "" || doc == "" {
		return fmt.Errorf("set TENDER, BIDDER, and DOC, e.g. TENDER=T1 BIDDER=alpha DOC=bids/alpha.yaml mage price")
	}
	return runCLI("price", "--tender", tender, "--bidder", bidder, "--doc", doc)
}

// Score computes cross-bidder price scores and prints the ranking.
// Expects TENDER in the environment.
func Score() error {
	tender := os.Getenv("TENDER")
	if tender == "" {
		return fmt.Errorf("set TENDER, e.g. TENDER=T1 mage score")
	}
	return runCLI("score", "--tender", tender)
}

// Test runs the full test suite.
func Test() error {
	cmd := exec.Command("go", "test", "./...")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
