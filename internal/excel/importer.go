// Package excel reads word lists from spreadsheets and writes a user's
// vocabulary back out as xlsx.
package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxRows caps how many rows a single import reads.
const MaxRows = 500

// ErrUnsupportedFormat is returned for anything that is not .xlsx or .csv.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// headerCells are first-row values treated as a column title rather than a word.
var headerCells = map[string]bool{
	"word": true, "words": true, "wort": true, "wörter": true,
	"german": true, "deutsch": true, "vocabulary": true, "vokabel": true, "vokabeln": true,
}

// ReadTokens returns the non-empty cells of column A of the first sheet
// (or the first CSV field). The file type is taken from the file name.
func ReadTokens(fileName string, r io.Reader) ([]string, error) {
	var (
		column []string
		err    error
	)

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		column, err = readXLSX(r)
	case ".csv":
		column, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileName)
	}
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(column))
	for i, cell := range column {
		cell = cleanCell(cell)
		if cell == "" {
			continue
		}
		if i == 0 && headerCells[strings.ToLower(cell)] {
			continue
		}
		tokens = append(tokens, cell)
	}
	return tokens, nil
}

func readXLSX(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	column := make([]string, 0, len(rows))
	for i, row := range rows {
		if i >= MaxRows {
			break
		}
		if len(row) == 0 {
			column = append(column, "")
			continue
		}
		column = append(column, row[0])
	}
	return column, nil
}

func readCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var column []string
	for len(column) < MaxRows {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		if len(row) == 0 {
			column = append(column, "")
			continue
		}
		column = append(column, row[0])
	}
	return column, nil
}

// cleanCell drops grammar notes in parentheses, e.g. "gehen (ging, gegangen)".
func cleanCell(cell string) string {
	cell = strings.TrimPrefix(cell, "\ufeff")
	if i := strings.Index(cell, "("); i > 0 {
		cell = cell[:i]
	}
	return strings.Join(strings.Fields(cell), " ")
}
