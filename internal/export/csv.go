package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

// utf8BOM lets spreadsheet applications detect UTF-8 for Korean text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV writes a BOM-prefixed CSV with one row per article.
func CSV(w io.Writer, articles []model.Article) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return eris.Wrap(err, "export: write bom")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, a := range articles {
		if err := cw.Write(record(a)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", a.URL)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
