package dashboard

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/demography-cli/internal/labels"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeader = []string{"year", "state", "agegroup", "race", "sex", "hisp", "pop"}

// writeRowsXLSX writes rows as a single-sheet workbook.
func writeRowsXLSX(w io.Writer, rows []labels.Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("demography")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetInt(r.Year)
		row.AddCell().SetString(r.State)
		row.AddCell().SetString(r.AgeGroup)
		row.AddCell().SetString(r.Race)
		row.AddCell().SetString(r.Sex)
		row.AddCell().SetString(r.Hisp)
		row.AddCell().SetFloat(r.Pop)
	}

	return eris.Wrap(f.Write(w), "xlsx: write workbook")
}
