package loader

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// ReadXLSXFile reads a worksheet with the header in its first row. An empty
// sheet name selects the first sheet. Rows without any content are dropped,
// the way empty lines are in a CSV.
func ReadXLSXFile(path, sheetName string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "loader: open xlsx")
	}

	sheet, err := getSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	records := make([][]string, 0, len(sheet.Rows))
	dropped := 0
	for _, row := range sheet.Rows {
		var rec []string
		if row != nil {
			rec = rowToStrings(row)
		}
		if isBlank(rec) {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	if dropped > 0 {
		zap.L().Info("loader: dropped empty xlsx rows",
			zap.String("path", path),
			zap.String("sheet", sheet.Name),
			zap.Int("rows", dropped),
		)
	}

	t, err := buildTable(records)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: %s", path)
	}
	return t, nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("loader: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("loader: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = cell.String()
	}
	return cells
}
