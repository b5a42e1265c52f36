// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tender-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bidwise/tender-engine/internal/oracle"
	"github.com/bidwise/tender-engine/internal/secrets"
	"github.com/bidwise/tender-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretFallback fills dst from the named secret when neither the config
// file nor a flag set it.
func secretFallback(dst *string, key, viperKey string, flagSet bool) {
	if flagSet || viper.IsSet(viperKey) {
		return
	}
	if v, ok := loadedSecrets[key]; ok {
		*dst = v
	}
}

// rootCmd is the base command for the tender-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "tender-engine",
	Short: "Bid evaluation against tender scoring rules",
	Long: `tender-engine evaluates competing bid documents against a tender's
scoring rules. It extracts the tender's rule tree from document text,
extracts one trustworthy price per bid document, and computes each
competitor's relative price score under a lowest-price-wins formula.

Each pipeline stage is a subcommand: rules, price, and score. The run
subcommand evaluates a tender end to end.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tender-engine.yaml or ~/.config/tender-engine/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "evaluation database path (default: tender-eval.db)")
	rootCmd.PersistentFlags().String("oracle-host", "", "completion oracle base URL")
	rootCmd.PersistentFlags().String("oracle-model", "", "completion oracle model")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tender-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tender-engine"))
		}
	}

	viper.SetEnvPrefix("TENDER_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the pipeline configuration: defaults, overlaid by
// the config file and environment, overlaid by flags and secrets.
func loadConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()
	_ = viper.Unmarshal(&cfg)

	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}
	host, _ := cmd.Flags().GetString("oracle-host")
	if host != "" {
		cfg.Oracle.Host = host
	}
	model, _ := cmd.Flags().GetString("oracle-model")
	if model != "" {
		cfg.Oracle.Model = model
	}
	secretFallback(&cfg.Oracle.Host, "oracle_host", "oracle.host", host != "")
	secretFallback(&cfg.Oracle.Model, "oracle_model", "oracle.model", model != "")
	return cfg
}

// oracleClient builds the completion client, or nil when --no-oracle asks
// for offline extraction.
func oracleClient(cmd *cobra.Command, cfg types.PipelineConfig) oracle.Client {
	if noOracle, _ := cmd.Flags().GetBool("no-oracle"); noOracle {
		return nil
	}
	return oracle.NewOllamaClient(cfg.Oracle)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
