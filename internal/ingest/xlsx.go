package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXSource adapts the first sheet of a workbook to a RowSource so XLSX
// uploads run through the same reconciliation and record building as CSV.
type XLSXSource struct {
	fields []string
	rows   [][]string
	next   int
}

func NewXLSXSource(b []byte) (*XLSXSource, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyInput
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return &XLSXSource{fields: header, rows: rows[1:]}, nil
}

func (s *XLSXSource) Fields() []string { return s.fields }

func (s *XLSXSource) Next() ([]string, error) {
	for s.next < len(s.rows) {
		row := s.rows[s.next]
		s.next++
		if !isBlankRow(row) {
			return row, nil
		}
	}
	return nil, io.EOF
}
