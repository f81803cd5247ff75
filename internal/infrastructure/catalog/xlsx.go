package catalog

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet of a workbook using the same header-name
// mapping as the CSV path.
func parseXLSX(r io.Reader) ([]rawRecord, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty catalog file")
	}

	columns := headerIndex(rows[0])
	records := make([]rawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, recordFromRow(row, columns))
	}
	return records, nil
}
