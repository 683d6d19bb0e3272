package regroup

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func rawWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	set := func(ref string, v any) {
		require.NoError(t, f.SetCellValue(sheet, ref, v))
	}
	set("B3", "2024-05-04")
	set("B4", "URBA")
	set("B5", "Top 12")
	set("B6", "LOS TILOS")
	set("B7", "SAN LUIS")
	set("B8", "J. Perez")
	set("B9", "F-12")
	set("B10", "20-12")

	rows := [][]any{
		12: {"P OUR"},
		13: {"Tiempo", "Evento", "FIN"},
		14: {"00:10", "Kick", "00:45"},
		15: {"01:00", "Ruck", "00:30"},
		16: {"P OPP"},
		17: {"Tiempo", "Evento", "FIN", "Extra"},
		18: {"02:00", "Maul", "02:30", "x"},
		19: {"TRY OUR"},
		20: {"Tiempo", "Evento"},
		21: {"03:00", "Try"},
	}
	for r, vals := range rows {
		if vals == nil {
			continue
		}
		ref, err := excelize.CoordinatesToCellName(1, r)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, ref, &vals))
	}
	return f
}

func TestReadMetadata(t *testing.T) {
	f := rawWorkbook(t)
	defer f.Close()
	meta, err := ReadMetadata(f)
	require.NoError(t, err)
	assert.Equal(t, "URBA Top 12", meta.Torneo)
	assert.Equal(t, "LOS TILOS", meta.Local)
	assert.Equal(t, "SAN LUIS", meta.Visitante)
	assert.Equal(t, "J. Perez", meta.Arbitro)
	assert.Equal(t, "F-12", meta.Ficha)
	assert.Equal(t, "20-12", meta.Resultado)
}

func TestSplit_GroupsAndStamping(t *testing.T) {
	f := rawWorkbook(t)
	defer f.Close()
	groups, err := Split(f)
	require.NoError(t, err)
	require.Contains(t, groups, "POSESION")
	require.Contains(t, groups, "TRIES")

	pos := groups["POSESION"]
	require.Len(t, pos.Rows, 3)
	col := func(name string) int {
		for i, h := range pos.Headers {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %q in %v", name, pos.Headers)
		return -1
	}
	// OUR rows carry the home side, OPP rows the visitors
	assert.Equal(t, "LOS TILOS", pos.Rows[0][col("EQUIPO")])
	assert.Equal(t, "LOS TILOS", pos.Rows[1][col("EQUIPO")])
	assert.Equal(t, "SAN LUIS", pos.Rows[2][col("EQUIPO")])
	assert.Equal(t, "URBA Top 12", pos.Rows[0][col("TORNEO")])
	assert.Equal(t, "J. Perez", pos.Rows[0][col("ARBITRO")])
	// the Extra column of the OPP section survives, blank for OUR rows
	assert.Equal(t, "", pos.Rows[0][col("EXTRA")])
	assert.Equal(t, "x", pos.Rows[2][col("EXTRA")])
	// timed group: duration clamped at zero for inverted clocks
	d := col("RESULTADO_TIEMPO")
	assert.Equal(t, "00:35", pos.Rows[0][d])
	assert.Equal(t, "00:00", pos.Rows[1][d])
	assert.Equal(t, "00:30", pos.Rows[2][d])

	tries := groups["TRIES"]
	require.Len(t, tries.Rows, 1)
	assert.NotContains(t, tries.Headers, "RESULTADO_TIEMPO")
}

func TestRegroupAndConsolidate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "raw.xlsx")
	f := rawWorkbook(t)
	require.NoError(t, f.SaveAs(src))
	f.Close()

	dst := filepath.Join(dir, "procesado_raw.xlsx")
	n, err := RegroupFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out, err := excelize.OpenFile(dst)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"POSESION", "TRIES"}, out.GetSheetList())
	out.Close()

	db := filepath.Join(dir, "bd.xlsx")
	require.NoError(t, Consolidate([]string{dst}, db))
	bd, err := excelize.OpenFile(db)
	require.NoError(t, err)
	defer bd.Close()
	rows, err := bd.GetRows("POSESION")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	srcCol := -1
	for i, h := range rows[0] {
		if h == "ARCHIVO_ORIGEN" {
			srcCol = i
		}
	}
	require.NotEqual(t, -1, srcCol)
	assert.Equal(t, "procesado_raw.xlsx", rows[1][srcCol])
}

func TestGroupForAndSheetName(t *testing.T) {
	g, ok := GroupFor("PENAL OPP")
	assert.True(t, ok)
	assert.Equal(t, "PENALES_CONCEDIDOS", g)
	_, ok = GroupFor("UNKNOWN")
	assert.False(t, ok)

	assert.Equal(t, "PENAL_FK", SheetName("PENAL/FK"))
	assert.Len(t, SheetName("A VERY LONG GROUP NAME THAT EXCEEDS THE SHEET LIMIT"), 31)
}

func TestClockSeconds(t *testing.T) {
	assert.Equal(t, 45, clockSeconds("00:45"))
	assert.Equal(t, 3723, clockSeconds("1:02:03"))
	assert.Equal(t, 0, clockSeconds(""))
	assert.Equal(t, 0, clockSeconds("abc"))
	assert.Equal(t, 0, clockSeconds("1:2:3:4"))
}
