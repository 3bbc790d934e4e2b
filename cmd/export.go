package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportRunID    string
	exportFormat   string
	exportOut      string
	exportCategory string
	exportKeyword  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the articles of a completed run",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, exportRunID)
		if err != nil {
			return eris.Wrap(err, "export")
		}
		if run.Result == nil {
			return eris.Errorf("export: run %s has no result (status %s)", run.ID, run.Status)
		}

		articles := filterArticles(run.Result.Articles, exportCategory, exportKeyword)

		out, err := openOutput(exportOut)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck

		if err := writeArticles(out, exportFormat, run, articles); err != nil {
			return err
		}
		zap.L().Info("export complete",
			zap.String("run_id", run.ID),
			zap.String("format", exportFormat),
			zap.Int("articles", len(articles)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRunID, "run", "", "run ID to export (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: json, csv, txt, xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "only export articles in this category")
	exportCmd.Flags().StringVar(&exportKeyword, "keyword", "", "only export articles with this keyword")
	_ = exportCmd.MarkFlagRequired("run")
	rootCmd.AddCommand(exportCmd)
}
