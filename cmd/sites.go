package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/config"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

var sitesFile string

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List and validate the configured news sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		sites := cfg.Sites
		if sitesFile != "" {
			loaded, err := config.LoadSites(sitesFile)
			if err != nil {
				return err
			}
			sites = loaded
		}
		if err := config.ValidateSites(sites); err != nil {
			return err
		}
		formatSites(cmd.OutOrStdout(), sites)
		return nil
	},
}

func init() {
	sitesCmd.Flags().StringVar(&sitesFile, "sites", "", "YAML file with a top-level sites list (overrides config)")
	rootCmd.AddCommand(sitesCmd)
}

// formatSites writes a table of sites and their effective selectors.
func formatSites(out io.Writer, sites []model.SiteConfig) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "HOST\tROOT URL\tLINKS\tTITLE\tBODY")
	for _, s := range sites {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.Host(),
			s.RootURL,
			s.LinkSelector,
			strings.Join(s.TitleRules(), " | "),
			strings.Join(s.BodyRules(), " | "),
		)
	}
	_ = w.Flush()
}
