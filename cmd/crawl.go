package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/config"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/pipeline"
)

var (
	crawlSitesFile  string
	crawlSkipEnrich bool
	crawlFormat     string
	crawlOut        string
	crawlCategory   string
	crawlKeyword    string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the configured news sites and enrich the articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if crawlSitesFile != "" {
			sites, err := config.LoadSites(crawlSitesFile)
			if err != nil {
				return err
			}
			cfg.Sites = sites
		}

		env, err := initPipeline(ctx, "crawl", crawlSkipEnrich)
		if err != nil {
			return err
		}
		defer env.Close()

		errOut := cmd.ErrOrStderr()
		run, err := env.Pipeline.Run(ctx, cfg.Sites, pipeline.Options{
			SkipEnrich: crawlSkipEnrich,
			Progress: func(msg string) {
				fmt.Fprintln(errOut, msg)
			},
		})
		if err != nil {
			return eris.Wrap(err, "crawl")
		}

		articles := filterArticles(run.Result.Articles, crawlCategory, crawlKeyword)
		zap.L().Info("crawl complete",
			zap.String("run_id", run.ID),
			zap.Int("articles", len(run.Result.Articles)),
			zap.Int("shown", len(articles)),
		)

		out, err := openOutput(crawlOut)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck

		return writeArticles(out, crawlFormat, run, articles)
	},
}

func init() {
	crawlCmd.Flags().StringVar(&crawlSitesFile, "sites", "", "YAML file with a top-level sites list (overrides config)")
	crawlCmd.Flags().BoolVar(&crawlSkipEnrich, "skip-enrich", false, "skip AI enrichment and fill placeholder metadata")
	crawlCmd.Flags().StringVar(&crawlFormat, "format", formatJSON, "output format: json, csv, txt, xlsx")
	crawlCmd.Flags().StringVar(&crawlOut, "out", "", "output file (default stdout)")
	crawlCmd.Flags().StringVar(&crawlCategory, "category", "", "only output articles in this category")
	crawlCmd.Flags().StringVar(&crawlKeyword, "keyword", "", "only output articles with this keyword")
	rootCmd.AddCommand(crawlCmd)
}
