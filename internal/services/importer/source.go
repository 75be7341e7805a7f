package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type: expected .xlsx, .csv or .tsv")
	ErrNoHeaderRow     = errors.New("file has no header row")
	ErrNoDataRows      = errors.New("file has no data rows")
	ErrUnreadableFile  = errors.New("file could not be decoded")
)

type Row struct {
	Line  int
	Cells []string
}

func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// Table is a decoded sheet: the first record is the header row, the rest
// are data rows with blank lines dropped.
type Table struct {
	Headers []string
	Rows    []Row
}

func NewTable(records [][]string) (Table, error) {
	if len(records) == 0 || blank(records[0]) {
		return Table{}, ErrNoHeaderRow
	}
	t := Table{Headers: make([]string, len(records[0]))}
	for i, h := range records[0] {
		t.Headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		t.Rows = append(t.Rows, Row{Line: i + 2, Cells: rec})
	}
	if len(t.Rows) == 0 {
		return Table{}, ErrNoDataRows
	}
	return t, nil
}

// ReadTable decodes an uploaded file by extension. Spreadsheets are read
// from their first sheet with raw cell values.
func ReadTable(filename string, r io.Reader) (Table, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		records, err = readXLSX(r)
	case ".csv", ".tsv", ".txt":
		records, err = readCSV(r)
	default:
		return Table{}, ErrUnsupportedFile
	}
	if errors.Is(err, ErrNoHeaderRow) {
		return Table{}, err
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	return NewTable(records)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoHeaderRow
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	sample, _ := br.Peek(1024)

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comma = sniffDelimiter(sample)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab on the
// first line.
func sniffDelimiter(sample []byte) rune {
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(sample, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
