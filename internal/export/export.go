// Package export writes article lists as CSV, plain text, or XLSX.
package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

// Format identifies an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "txt"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatCSV, FormatText, FormatXLSX}

// header is shared by the tabular formats.
var header = []string{"Category", "Title", "Keywords", "Summary", "URL"}

const missing = "N/A"

// ParseFormat maps a name such as "csv" or "text" to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("export: unknown format %q", name)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Write renders articles to w in the given format.
func Write(w io.Writer, format Format, articles []model.Article) error {
	switch format {
	case FormatCSV:
		return CSV(w, articles)
	case FormatText:
		return Text(w, articles)
	case FormatXLSX:
		return XLSX(w, articles)
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
}

func record(a model.Article) []string {
	return []string{
		orMissing(a.Category),
		orMissing(a.Title),
		strings.Join(a.Keywords, ", "),
		orMissing(a.Summary),
		orMissing(a.URL),
	}
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}
