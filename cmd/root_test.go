package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/config"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/fetcher"
)

func TestRootCmd_Metadata(t *testing.T) {
	assert.Equal(t, "eidos", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotNil(t, rootCmd.PersistentPreRunE)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"crawl", "export", "runs", "serve", "sites"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRunsCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range runsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])
	assert.True(t, names["stats"])
}

func TestCrawlCmd_Flags(t *testing.T) {
	for _, name := range []string{"sites", "skip-enrich", "format", "out", "category", "keyword"} {
		assert.NotNil(t, crawlCmd.Flags().Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, formatJSON, crawlCmd.Flags().Lookup("format").DefValue)
}

func TestExportCmd_Flags(t *testing.T) {
	f := exportCmd.Flags().Lookup("run")
	require.NotNil(t, f)
	assert.Equal(t, "csv", exportCmd.Flags().Lookup("format").DefValue)
}

func TestServeCmd_Flags(t *testing.T) {
	port := serveCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "0", port.DefValue)
	assert.NotNil(t, serveCmd.Flags().Lookup("skip-enrich"))
}

func TestRunsListCmd_Flags(t *testing.T) {
	assert.Equal(t, "50", runsListCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "0", runsListCmd.Flags().Lookup("offset").DefValue)
	assert.Equal(t, "24h0m0s", runsStatsCmd.Flags().Lookup("since").DefValue)
}

func TestNewFetcher_FirecrawlFallback(t *testing.T) {
	crawl := config.CrawlConfig{UserAgent: "test", FetchTimeoutSecs: 5, RateLimit: 10, RateBurst: 10}

	assert.IsType(t, &fetcher.HTTPFetcher{}, newFetcher(crawl, config.FirecrawlConfig{}))
	assert.IsType(t, &fetcher.Chain{}, newFetcher(crawl, config.FirecrawlConfig{Key: "fc-test"}))
}
