// Package export writes tabular data as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Table is one worksheet: a header row followed by data rows
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]any
	// Widths optionally sets column widths, indexed like Headers
	Widths []float64
}

// AddRow appends a data row
func (t *Table) AddRow(values ...any) {
	t.Rows = append(t.Rows, values)
}

// WriteWorkbook renders all tables into one workbook, one sheet per table
func WriteWorkbook(w io.Writer, tables ...*Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("export: no tables")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, table := range tables {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, table.Sheet); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", table.Sheet, err)
			}
		} else if _, err := f.NewSheet(table.Sheet); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", table.Sheet, err)
		}
		if err := writeTable(f, table, headerStyle); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, table *Table, headerStyle int) error {
	sw, err := f.NewStreamWriter(table.Sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", table.Sheet, err)
	}

	for i, width := range table.Widths {
		if width > 0 {
			if err := sw.SetColWidth(i+1, i+1, width); err != nil {
				return err
			}
		}
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	header := make([]any, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return sw.Flush()
}

// Cents converts an amount in cents to currency units, nil stays empty
func Cents(cents *int64) any {
	if cents == nil {
		return nil
	}
	return float64(*cents) / 100
}
