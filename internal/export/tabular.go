// Package export serializes report rows into files and packages them into
// the final archive bundle.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"ucrm-export/internal/report"
)

// WriteCSV writes a UTF-8, comma-delimited file with a header row and
// standard quoting.
func WriteCSV(path string, header []string, rows []report.Row) error {
	const op = "WriteCSV"

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: failed to create %s: %w", op, path, err)
	}
	defer file.Close()

	buffered := bufio.NewWriter(file)
	writer := csv.NewWriter(buffered)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("%s: failed to write header: %w", op, err)
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = report.CellString(cell)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("%s: failed to write row: %w", op, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%s: failed to flush: %w", op, err)
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("%s: failed to flush: %w", op, err)
	}
	return file.Close()
}

// WritePlusMinusCSV writes the accounting import variant: semicolon
// delimited, no header, no quoting, CRLF line endings, Windows-1251
// encoded. Characters outside the code page are replaced rather than
// failing the whole file.
func WritePlusMinusCSV(path string, rows []report.Row) error {
	const op = "WritePlusMinusCSV"

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: failed to create %s: %w", op, path, err)
	}
	defer file.Close()

	encoder := encoding.ReplaceUnsupported(charmap.Windows1251.NewEncoder())
	writer := bufio.NewWriter(transform.NewWriter(file, encoder))

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(report.CellString(cell), `"`, "")
		}
		if _, err := writer.WriteString(strings.Join(cells, ";") + "\r\n"); err != nil {
			return fmt.Errorf("%s: failed to write row: %w", op, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("%s: failed to flush: %w", op, err)
	}
	return file.Close()
}

// WriteXLSX writes a spreadsheet. A non-nil header becomes a bold,
// grey-filled first row; columns are sized to their widest cell.
func WriteXLSX(path, sheetName string, header []string, rows []report.Row) error {
	const op = "WriteXLSX"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("%s: failed to name sheet: %w", op, err)
	}

	dataRow := 1
	if header != nil {
		cells := make([]any, len(header))
		for i, h := range header {
			cells[i] = h
		}
		if err := f.SetSheetRow(sheetName, "A1", &cells); err != nil {
			return fmt.Errorf("%s: failed to write header: %w", op, err)
		}
		if err := styleHeader(f, sheetName, len(header)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		dataRow = 2
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, dataRow+i)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		values := []any(row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("%s: failed to write row %d: %w", op, dataRow+i, err)
		}
	}

	if err := autoSizeColumns(f, sheetName, header, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%s: failed to save %s: %w", op, path, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheetName string, columns int) error {
	styleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCell, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCell, styleID); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}

func autoSizeColumns(f *excelize.File, sheetName string, header []string, rows []report.Row) error {
	columns := len(header)
	for _, row := range rows {
		if len(row) > columns {
			columns = len(row)
		}
	}

	for col := 0; col < columns; col++ {
		width := 0
		if col < len(header) {
			width = len([]rune(header[col]))
		}
		for _, row := range rows {
			if col >= len(row) {
				continue
			}
			if cellWidth := len([]rune(report.CellString(row[col]))); cellWidth > width {
				width = cellWidth
			}
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, float64(width)+2); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	return nil
}
