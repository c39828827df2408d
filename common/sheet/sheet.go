package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"github.com/xuri/excelize/v2"
	"io"
	"mime"
	"path"
	"strconv"
	"strings"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var ErrEmpty = errors.New("document is empty")

// DetectFormat picks the document format from the file extension, falling back to the content type.
// Anything unknown is treated as xlsx.
func DetectFormat(filename, contentType string) Format {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm", ".xls":
		return FormatXLSX
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "text/csv", "application/csv", "text/comma-separated-values":
			return FormatCSV
		}
	}

	return FormatXLSX
}

// Read reads the first sheet of a document. Cells holding a number are returned as float64,
// every other non-empty cell as string.
func Read(r io.Reader, f Format) ([][]any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return nil, ErrEmpty
	}

	switch f {
	case FormatCSV:
		return ReadCSV(bytes.NewReader(b))

	case FormatXLSX:
		return ReadXLSX(bytes.NewReader(b))

	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

func ReadXLSX(r io.Reader) ([][]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) < 1 {
		return nil, ErrEmpty
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return typedRows(rows), nil
}

func ReadCSV(r io.Reader) ([][]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	return typedRows(rows), nil
}

func typedRows(rows [][]string) [][]any {
	result := make([][]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = typedCell(v)
		}

		result = append(result, cells)
	}

	return result
}

// typedCell keeps text which only looks numeric (leading zeros, exponent notation) as it is.
func typedCell(v string) any {
	if v == "" {
		return nil
	}

	s := strings.TrimSpace(v)
	if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}

	return v
}
