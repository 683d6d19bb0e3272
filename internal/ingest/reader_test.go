package ingest

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader_SniffsDelimiter(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		wants []string
	}{
		{"comma", "A,B,C\n1,2,3\n", []string{"A", "B", "C"}},
		{"semicolon", "A;B;C\n1;2;3\n", []string{"A", "B", "C"}},
		{"tab", "A\tB\tC\n1\t2\t3\n", []string{"A", "B", "C"}},
		{"pipe", "A|B|C\n1|2|3\n", []string{"A", "B", "C"}},
		{"semicolon with commas in cells", "A;B;C\n1,5;2,5;3\n1;2;3\n", []string{"A", "B", "C"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewReader(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.wants, r.Fields())
			row, err := r.Next()
			require.NoError(t, err)
			assert.Len(t, row, 3)
		})
	}
}

func TestNewReader_SingleColumnDefaultsToComma(t *testing.T) {
	r, err := NewReader("JUGADA\nuno\ndos\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"JUGADA"}, r.Fields())
}

func TestNewReader_EmptyInput(t *testing.T) {
	_, err := NewReader("")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = NewReader("   \n\n  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestNewReader_StripsBOMAndTrimsHeader(t *testing.T) {
	r, err := NewReader("\uFEFF A , B \n1,2\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, r.Fields())
}

func TestReader_SkipsBlankRowsAndKeepsRaggedOnes(t *testing.T) {
	r, err := NewReader("A,B,C\n1,2,3\n,,\n\n4,5\n")
	require.NoError(t, err)
	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, row)
	row, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "5"}, row)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestSniffDelimiter_QuotedCells(t *testing.T) {
	text := "A,B\n\"uno, dos\",tres\n\"x\",y\n"
	assert.Equal(t, ',', sniffDelimiter(text))
}
