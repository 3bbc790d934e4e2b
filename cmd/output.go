package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/aggregate"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/export"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

const formatJSON = "json"

// runOutput is the JSON document printed for a finished run.
type runOutput struct {
	RunID      string          `json:"run_id"`
	Status     model.RunStatus `json:"status"`
	Categories []string        `json:"categories"`
	Articles   []model.Article `json:"articles"`
}

// filterArticles applies the optional category and keyword filters.
func filterArticles(articles []model.Article, category, keyword string) []model.Article {
	out := aggregate.FilterByCategory(articles, category)
	if keyword != "" {
		out = aggregate.FilterByKeyword(out, keyword)
	}
	return out
}

// writeArticles renders articles as JSON or one of the export formats.
func writeArticles(w io.Writer, format string, run *model.Run, articles []model.Article) error {
	if format == "" || format == formatJSON {
		doc := runOutput{
			RunID:    run.ID,
			Status:   run.Status,
			Articles: articles,
		}
		if run.Result != nil {
			doc.Categories = run.Result.Categories
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.Write(w, f, articles)
}

// openOutput returns stdout for "" or "-" and a created file otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "create output %s", path)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
