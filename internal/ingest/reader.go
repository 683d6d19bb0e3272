package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// RowSource is a finite, single-pass sequence of raw rows under a fixed field
// list. Restarting means building a new source from the original input.
type RowSource interface {
	// Fields returns the incoming column names in file order.
	Fields() []string
	// Next returns the next data row, or io.EOF when exhausted. Rows may be
	// shorter than Fields when trailing cells are empty.
	Next() ([]string, error)
}

var delimiterCandidates = []rune{',', ';', '\t', '|'}

const sniffSampleSize = 8192

// Reader parses decoded CSV text into rows, auto-detecting the delimiter.
type Reader struct {
	fields []string
	cr     *csv.Reader
}

var ErrEmptyInput = errors.New("file is empty or has no header row")

// NewReader sniffs the delimiter over the first 8KB of text and positions the
// reader past the header row.
func NewReader(text string) (*Reader, error) {
	text = strings.TrimPrefix(text, "\uFEFF")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sniffDelimiter(sample(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err != nil {
		return nil, ErrEmptyInput
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return &Reader{fields: header, cr: cr}, nil
}

func (r *Reader) Fields() []string { return r.fields }

func (r *Reader) Next() ([]string, error) {
	for {
		row, err := r.cr.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			// Tolerate ragged rows the same way a lenient dict-reader would.
			if errors.Is(err, csv.ErrFieldCount) {
				return row, nil
			}
			return nil, err
		}
		if isBlankRow(row) {
			continue
		}
		return row, nil
	}
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func sample(text string) string {
	if len(text) > sniffSampleSize {
		return text[:sniffSampleSize]
	}
	return text
}

// sniffDelimiter tries each candidate against the sample and keeps the one
// that splits every line into the same field count greater than one. If none
// qualifies it falls back to counting occurrences in the first line, and to a
// comma when all counts are zero.
func sniffDelimiter(s string) rune {
	lines := sampleLines(s, 10)
	best := rune(0)
	bestWidth := 1
	for _, cand := range delimiterCandidates {
		width, ok := consistentWidth(lines, cand)
		if ok && width > bestWidth {
			best = cand
			bestWidth = width
		}
	}
	if best != 0 {
		return best
	}
	first := ""
	if len(lines) > 0 {
		first = lines[0]
	}
	best = ','
	bestCount := 0
	for _, cand := range delimiterCandidates {
		if n := strings.Count(first, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

func consistentWidth(lines []string, delim rune) (int, bool) {
	if len(lines) == 0 {
		return 0, false
	}
	cr := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	width := -1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, false
		}
		if width == -1 {
			width = len(row)
		} else if len(row) != width {
			return 0, false
		}
	}
	return width, width > 1
}

func sampleLines(s string, max int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == max {
			break
		}
	}
	// The sample may cut the last line mid-record; drop it when we have more
	// than one so a truncated row cannot skew the consistency check.
	if len(out) > 1 && !strings.HasSuffix(s, "\n") {
		out = out[:len(out)-1]
	}
	return out
}
