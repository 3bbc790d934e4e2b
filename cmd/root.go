package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "eidos",
	Short: "Korean news crawler with AI summaries",
	Long:  "Crawls configured news sites, extracts articles, enriches them with AI summaries, keywords and categories, and stores each run for browsing and export.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
