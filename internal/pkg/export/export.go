// Package export writes tabular admin exports as CSV or XLSX.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var ErrUnsupportedFormat = errors.New("Định dạng xuất không được hỗ trợ")

// Table 导出的表格，Rows 中每行与 Headers 等长
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]interface{}
}

// ContentType returns the MIME type for format.
func ContentType(format string) (string, error) {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8", nil
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	}
	return "", ErrUnsupportedFormat
}

// Write encodes t in format to w.
func Write(w io.Writer, format string, t *Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		data, err := XLSX(t)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return ErrUnsupportedFormat
}

// WriteCSV writes t as CSV. A UTF-8 BOM is prepended so spreadsheet apps
// detect the encoding of Vietnamese names.
func WriteCSV(w io.Writer, t *Table) error {
	if _, err := w.Write([]byte("\xEF\xBB\xBF")); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = cellString(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX renders t as a single-sheet workbook.
func XLSX(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if t.Sheet != "" && t.Sheet != sheet {
		if err := f.SetSheetName(sheet, t.Sheet); err != nil {
			return nil, fmt.Errorf("failed to rename sheet: %w", err)
		}
		sheet = t.Sheet
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
