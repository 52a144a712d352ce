package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the sheet name limit of the xlsx format
const maxSheetName = 31

// WriteWorkbook writes one sheet per flat table, in the given order
func WriteWorkbook(path string, tables []*FlatTable) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		sheet := sheetName(table.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		if err := f.SetSheetRow(sheet, "A1", &table.Headers); err != nil {
			return fmt.Errorf("write header of %s: %w", sheet, err)
		}
		for r, values := range table.Values {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			row := values
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("write row %d of %s: %w", r+1, sheet, err)
			}
		}
		if len(table.Headers) > 0 {
			if err := f.AutoFilter(sheet, autoFilterRange(len(table.Headers), len(table.Values)+1), nil); err != nil {
				return fmt.Errorf("filter %s: %w", sheet, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}

func autoFilterRange(cols, rows int) string {
	last, _ := excelize.CoordinatesToCellName(cols, rows)
	return "A1:" + last
}
