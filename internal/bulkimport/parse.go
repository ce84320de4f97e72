package bulkimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoRows is returned when the uploaded file has headers but no data.
	ErrNoRows = errors.New("the file contains no data rows")
	// ErrUnsupportedFile is returned for file types other than csv/xlsx/xls.
	ErrUnsupportedFile = errors.New("unsupported file type: upload a .csv, .xlsx or .xls file")
)

// Row is one spreadsheet row keyed by header string. Cells missing from a
// ragged row are present with an empty string.
type Row map[string]string

// Table is a parsed spreadsheet: ordered headers plus data rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// Parse reads a delegate spreadsheet. The first worksheet only; the first
// row is the header row; empty cells become empty strings.
func Parse(filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseExcel(r)
	case ".xls":
		return parseXLS(r)
	default:
		return nil, ErrUnsupportedFile
	}
}

func parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return tableFromRecords(records)
}

func parseExcel(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet: %w", err)
	}
	return tableFromRecords(records)
}

// parseXLS reads the legacy BIFF format, which excelize does not handle.
func parseXLS(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read xls: %w", err)
	}
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xls workbook: %w", err)
	}
	sheet, err := wb.GetSheet(0)
	if err != nil {
		return nil, ErrNoRows
	}

	var records [][]string
	for i := 0; i < sheet.GetNumberRows(); i++ {
		row, err := sheet.GetRow(i)
		if err != nil {
			continue
		}
		cols := row.GetCols()
		rec := make([]string, 0, len(cols))
		for _, cell := range cols {
			rec = append(rec, cell.GetString())
		}
		records = append(records, rec)
	}
	return tableFromRecords(records)
}

func tableFromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	columns := make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		columns = append(columns, strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return &Table{Columns: columns, Rows: rows}, nil
}
