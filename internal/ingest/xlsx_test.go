package ingest

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestXLSXSource(t *testing.T) {
	b := workbookBytes(t, [][]any{
		{" JUGADA ", "EQUIPO", "INICIO"},
		{"P OUR 1", "LOS TILOS", "10.5"},
		{"", "", ""},
		{"P OPP 2", "CASI", "20"},
	})
	src, err := NewXLSXSource(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"JUGADA", "EQUIPO", "INICIO"}, src.Fields())

	row, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"P OUR 1", "LOS TILOS", "10.5"}, row)
	row, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"P OPP 2", "CASI", "20"}, row)
	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
}

func TestXLSXSource_NotAWorkbook(t *testing.T) {
	_, err := NewXLSXSource([]byte("just,a,csv\n1,2,3\n"))
	assert.Error(t, err)
}

func TestXLSXSource_EmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	_, err := NewXLSXSource(buf.Bytes())
	assert.ErrorIs(t, err, ErrEmptyInput)
}
