package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

// SheetName is the worksheet the XLSX export writes to.
const SheetName = "Articles"

// XLSX writes a workbook with a single sheet holding the CSV columns.
func XLSX(w io.Writer, articles []model.Article) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	addRow(sheet, header)
	for _, a := range articles {
		addRow(sheet, record(a))
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
