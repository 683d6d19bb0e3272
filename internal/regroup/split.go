package regroup

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Metadata is the match header block at the top of a raw workbook
// (cells B3..B10 of the active sheet).
type Metadata struct {
	MatchDate string
	Torneo    string
	Local     string
	Visitante string
	Arbitro   string
	Ficha     string
	Resultado string
}

// Table is one regrouped sheet: a header row plus data rows aligned to it.
type Table struct {
	Headers []string
	Rows    [][]string
}

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeHeader folds a raw column title to trimmed, diacritic-free upper
// case with newlines collapsed to spaces.
func normalizeHeader(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

func dedupeHeaders(headers []string) []string {
	seen := map[string]int{}
	out := make([]string, len(headers))
	for i, h := range headers {
		if n := seen[h]; n > 0 {
			out[i] = fmt.Sprintf("%s_DUP%d", h, n)
		} else {
			out[i] = h
		}
		seen[h]++
	}
	return out
}

// section is one raw category block before grouping.
type section struct {
	category string
	headers  []string
	rows     [][]string
}

// ReadMetadata extracts the match header block from the active sheet.
func ReadMetadata(f *excelize.File) (Metadata, error) {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return Metadata{}, fmt.Errorf("workbook has no active sheet")
	}
	cell := func(ref string) string {
		v, _ := f.GetCellValue(sheet, ref)
		return strings.TrimSpace(v)
	}
	torneo := strings.TrimSpace(cell("B4") + " " + cell("B5"))
	return Metadata{
		MatchDate: cell("B3"),
		Torneo:    torneo,
		Local:     cell("B6"),
		Visitante: cell("B7"),
		Arbitro:   cell("B8"),
		Ficha:     cell("B9"),
		Resultado: cell("B10"),
	}, nil
}

// Split parses the active sheet of a raw workbook into one Table per unified
// group. Each section contributes its rows stamped with the side's team name
// and the match metadata; timed groups get a computed duration column.
func Split(f *excelize.File) (map[string]Table, error) {
	meta, err := ReadMetadata(f)
	if err != nil {
		return nil, err
	}
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	sections := collectSections(rows)
	grouped := map[string][]Table{}
	for _, sec := range sections {
		group, ok := GroupFor(sec.category)
		if !ok {
			continue
		}
		grouped[group] = append(grouped[group], stampSection(sec, meta))
	}

	out := map[string]Table{}
	for group, tables := range grouped {
		combined := mergeTables(tables)
		combined = dropEmptyColumns(combined)
		if timedGroups[group] {
			combined = appendDuration(combined)
		}
		if len(combined.Rows) > 0 {
			out[group] = combined
		}
	}
	return out, nil
}

func collectSections(rows [][]string) []section {
	var sections []section
	var cur *section
	for _, row := range rows {
		first := ""
		if len(row) > 0 {
			first = strings.TrimSpace(row[0])
		}
		if _, ok := GroupFor(first); ok {
			if cur != nil && len(cur.headers) > 0 && len(cur.rows) > 0 {
				sections = append(sections, *cur)
			}
			cur = &section{category: first}
			continue
		}
		if cur == nil {
			continue
		}
		if len(cur.headers) == 0 {
			if isHeaderRow(row) {
				cur.headers = dedupeHeaders(normalizeAll(row))
			}
			continue
		}
		if rowHasData(row) {
			cur.rows = append(cur.rows, padRow(row, len(cur.headers)))
		}
	}
	if cur != nil && len(cur.headers) > 0 && len(cur.rows) > 0 {
		sections = append(sections, *cur)
	}
	return sections
}

func isHeaderRow(row []string) bool {
	for _, c := range row {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "tiempo", "evento":
			return true
		}
	}
	return false
}

func normalizeAll(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = normalizeHeader(c)
	}
	return out
}

func rowHasData(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

func padRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// stampSection attaches the team and metadata columns each grouped row
// carries. OUR sections belong to the home side, OPP to the visitors.
func stampSection(sec section, meta Metadata) Table {
	equipo := ""
	if strings.Contains(sec.category, "OUR") {
		equipo = meta.Local
	} else if strings.Contains(sec.category, "OPP") {
		equipo = meta.Visitante
	}
	headers := append(append([]string{}, sec.headers...),
		"EQUIPO", "TORNEO", "FICHA", "RESULTADO", "ARBITRO")
	rows := make([][]string, 0, len(sec.rows))
	for _, r := range sec.rows {
		rows = append(rows, append(append([]string{}, r...),
			equipo, meta.Torneo, meta.Ficha, meta.Resultado, meta.Arbitro))
	}
	return Table{Headers: headers, Rows: rows}
}

// mergeTables aligns tables of one group on the sorted union of their columns.
func mergeTables(tables []Table) Table {
	colSet := map[string]bool{}
	for _, t := range tables {
		for _, h := range t.Headers {
			colSet[h] = true
		}
	}
	cols := make([]string, 0, len(colSet))
	for c := range colSet {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	merged := Table{Headers: cols}
	for _, t := range tables {
		index := map[string]int{}
		for i, h := range t.Headers {
			index[h] = i
		}
		for _, r := range t.Rows {
			aligned := make([]string, len(cols))
			for i, c := range cols {
				if j, ok := index[c]; ok && j < len(r) {
					aligned[i] = r[j]
				}
			}
			merged.Rows = append(merged.Rows, aligned)
		}
	}
	return merged
}

func dropEmptyColumns(t Table) Table {
	keep := make([]int, 0, len(t.Headers))
	for i, h := range t.Headers {
		if strings.HasPrefix(h, "COL_") {
			continue
		}
		empty := true
		for _, r := range t.Rows {
			if i < len(r) && strings.TrimSpace(r[i]) != "" {
				empty = false
				break
			}
		}
		if !empty {
			keep = append(keep, i)
		}
	}
	out := Table{Headers: make([]string, 0, len(keep))}
	for _, i := range keep {
		out.Headers = append(out.Headers, t.Headers[i])
	}
	for _, r := range t.Rows {
		row := make([]string, 0, len(keep))
		for _, i := range keep {
			if i < len(r) {
				row = append(row, r[i])
			} else {
				row = append(row, "")
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// appendDuration adds RESULTADO_TIEMPO = FIN - TIEMPO as mm:ss, clamped at
// zero, when both clock columns exist.
func appendDuration(t Table) Table {
	ti, fi := -1, -1
	for i, h := range t.Headers {
		switch h {
		case "TIEMPO":
			ti = i
		case "FIN":
			fi = i
		}
	}
	if ti < 0 || fi < 0 {
		return t
	}
	t.Headers = append(t.Headers, "RESULTADO_TIEMPO")
	for i, r := range t.Rows {
		diff := clockSeconds(r[fi]) - clockSeconds(r[ti])
		if diff < 0 {
			diff = 0
		}
		t.Rows[i] = append(r, fmt.Sprintf("%02d:%02d", diff/60, diff%60))
	}
	return t
}

// clockSeconds parses "MM:SS" or "HH:MM:SS"; anything else reads as zero.
func clockSeconds(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// WriteWorkbook writes one sheet per group into a new workbook at path.
func WriteWorkbook(path string, groups map[string]Table) error {
	f := excelize.NewFile()
	defer f.Close()
	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)
	for i, g := range names {
		sheet := SheetName(g)
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("sheet %q: %w", sheet, err)
			}
		}
		t := groups[g]
		if err := writeRow(f, sheet, 1, t.Headers); err != nil {
			return err
		}
		for r, row := range t.Rows {
			if err := writeRow(f, sheet, r+2, row); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %q: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	ref, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, ref, &cells)
}

// RegroupFile splits one raw workbook and writes the per-group result.
func RegroupFile(src, dst string) (int, error) {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return 0, fmt.Errorf("open %q: %w", src, err)
	}
	defer f.Close()
	groups, err := Split(f)
	if err != nil {
		return 0, err
	}
	if len(groups) == 0 {
		return 0, nil
	}
	if err := WriteWorkbook(dst, groups); err != nil {
		return 0, err
	}
	return len(groups), nil
}

// Consolidate merges processed workbooks into one database workbook, sheet by
// sheet, adding the source file name to every row.
func Consolidate(processed []string, dst string) error {
	merged := map[string][]Table{}
	for _, path := range processed {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return fmt.Errorf("open %q: %w", path, err)
		}
		base := filepath.Base(path)
		for _, sheet := range f.GetSheetList() {
			rows, err := f.GetRows(sheet)
			if err != nil {
				f.Close()
				return fmt.Errorf("read %q/%q: %w", path, sheet, err)
			}
			if len(rows) < 2 {
				continue
			}
			t := Table{Headers: append(padRow(rows[0], len(rows[0])), "ARCHIVO_ORIGEN")}
			width := len(rows[0])
			for _, r := range rows[1:] {
				if !rowHasData(r) {
					continue
				}
				t.Rows = append(t.Rows, append(padRow(r, width), base))
			}
			key := SheetName(sheet)
			merged[key] = append(merged[key], t)
		}
		f.Close()
	}
	out := map[string]Table{}
	for sheet, tables := range merged {
		combined := mergeTables(tables)
		if len(combined.Rows) > 0 {
			out[sheet] = combined
		}
	}
	if len(out) == 0 {
		return fmt.Errorf("nothing to consolidate")
	}
	return WriteWorkbook(dst, out)
}
