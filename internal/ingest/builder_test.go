package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// csvRow renders one line with a value per required field plus overrides.
func csvRow(overrides map[string]string) string {
	cells := make([]string, len(RequiredFields))
	for i, f := range RequiredFields {
		if v, ok := overrides[f]; ok {
			cells[i] = v
		} else {
			cells[i] = "-"
		}
	}
	return strings.Join(cells, ",")
}

func TestBuildPlays_FullRow(t *testing.T) {
	text := strings.Join([]string{
		strings.Join(RequiredFields, ","),
		csvRow(map[string]string{
			FieldJugada: "P OUR 1", FieldEquipo: " LOS TILOS ",
			FieldInicio: "00:01:30.250000", FieldFin: "01:35.5",
			FieldEvento: "RUCK GANADO", FieldResultado: "3",
		}),
	}, "\n") + "\n"
	r, err := NewReader(text)
	require.NoError(t, err)
	hm, err := ReconcileHeaders(r.Fields())
	require.NoError(t, err)
	plays, warnings, err := BuildPlays(r, hm)
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Empty(t, warnings)
	p := plays[0]
	assert.Equal(t, "P OUR 1", p.Jugada)
	assert.Equal(t, "LOS TILOS", p.Equipo)
	assert.Equal(t, "90.250", FormatSeconds(p.Inicio))
	assert.Equal(t, "95.500", FormatSeconds(p.Fin))
	assert.Equal(t, "RUCK GANADO", p.Evento)
	assert.Equal(t, "3", p.Resultado)
	assert.Empty(t, p.SituacionPenal)
}

func TestBuildPlays_RejectsInvertedTimes(t *testing.T) {
	text := strings.Join([]string{
		strings.Join(RequiredFields, ","),
		csvRow(map[string]string{FieldInicio: "10.000", FieldFin: "12.000"}),
		csvRow(map[string]string{FieldInicio: "50.000", FieldFin: "40.000"}),
		csvRow(map[string]string{FieldInicio: "60.000", FieldFin: "61.000"}),
	}, "\n") + "\n"
	r, err := NewReader(text)
	require.NoError(t, err)
	hm, err := ReconcileHeaders(r.Fields())
	require.NoError(t, err)
	plays, warnings, err := BuildPlays(r, hm)
	require.NoError(t, err)
	assert.Len(t, plays, 2)
	require.Len(t, warnings, 1)
	assert.Equal(t, 3, warnings[0].Row)
	assert.Contains(t, warnings[0].Reason, "40.000")
	assert.Contains(t, warnings[0].Reason, "50.000")
}

func TestBuildPlays_RejectsNegativeTimes(t *testing.T) {
	text := strings.Join([]string{
		strings.Join(RequiredFields, ","),
		csvRow(map[string]string{FieldInicio: "-5", FieldFin: "10"}),
	}, "\n") + "\n"
	r, err := NewReader(text)
	require.NoError(t, err)
	hm, err := ReconcileHeaders(r.Fields())
	require.NoError(t, err)
	plays, warnings, err := BuildPlays(r, hm)
	require.NoError(t, err)
	assert.Empty(t, plays)
	require.Len(t, warnings, 1)
	assert.Equal(t, "negative time value", warnings[0].Reason)
}

func TestBuildPlays_UnparsableTimesBecomeZero(t *testing.T) {
	text := strings.Join([]string{
		strings.Join(RequiredFields, ","),
		csvRow(map[string]string{FieldInicio: "sin dato", FieldFin: "sin dato"}),
	}, "\n") + "\n"
	r, err := NewReader(text)
	require.NoError(t, err)
	hm, err := ReconcileHeaders(r.Fields())
	require.NoError(t, err)
	plays, warnings, err := BuildPlays(r, hm)
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Empty(t, warnings)
	assert.Equal(t, "0.000", FormatSeconds(plays[0].Inicio))
	assert.Equal(t, "0.000", FormatSeconds(plays[0].Fin))
}

func TestBuildPlays_ShortRowYieldsEmptyTrailingFields(t *testing.T) {
	text := strings.Join(RequiredFields, ",") + "\nP OUR 1,REF\n"
	r, err := NewReader(text)
	require.NoError(t, err)
	hm, err := ReconcileHeaders(r.Fields())
	require.NoError(t, err)
	plays, warnings, err := BuildPlays(r, hm)
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Empty(t, warnings)
	assert.Equal(t, "P OUR 1", plays[0].Jugada)
	assert.Equal(t, "REF", plays[0].Arbitro)
	assert.Empty(t, plays[0].Equipo)
	assert.Equal(t, "0.000", FormatSeconds(plays[0].Inicio))
}
