package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachdesk/playlog/internal/models"
)

func TestBuildDistribution_Counts(t *testing.T) {
	plays := []models.Play{
		{Jugada: "POSESION", Evento: "ATAQUE", Resultado: "GANA", ZonaInicio: "22 OUR", ZonaFin: "HALF"},
		{Jugada: "POSESION", Evento: "ATAQUE"},
		{Jugada: "SALIDAS", Evento: "DEFENSA", ZonaInicio: "22 OUR"},
		{Jugada: "", Evento: "", Resultado: ""},
	}
	d := BuildDistribution(plays, nil)

	assert.Equal(t, 4, d.TotalPlays)
	require.NotEmpty(t, d.ByJugada)
	assert.Equal(t, JugadaCount{Jugada: "POSESION", Count: 2}, d.ByJugada[0])
	assert.Len(t, d.ByJugada, 2)
	assert.Equal(t, EventoCount{Evento: "ATAQUE", Count: 2}, d.ByEvento[0])
	assert.Equal(t, []StartZoneCount{{ZonaInicio: "22 OUR", Count: 2}}, d.ByZonaInicio)
	assert.Equal(t, []ZoneCount{{ZonaFin: "HALF", Count: 1}}, d.ByZonaFin)
}

func TestBuildDistribution_SetPieces(t *testing.T) {
	plays := []models.Play{
		{Equipo: "LOS TILOS", Jugada: "LINE", Resultado: "GANA"},
		{Equipo: "LOS TILOS", Jugada: "LINE", Resultado: "GANA SUCIO"},
		// a generic GANA variant counts for scrums but not line-outs
		{Equipo: "LOS TILOS", Jugada: "LINE", Resultado: "GANA LIMPIO"},
		{Equipo: "LOS TILOS", Jugada: "LINE", Resultado: "PIERDE"},
		{Equipo: "LOS TILOS", Jugada: "SCRUMS", Resultado: "GANA LIMPIO"},
		{Equipo: "LOS TILOS", Jugada: "SCRUMS", Resultado: "PIERDE"},
		{Equipo: "SAN LUIS", Jugada: "LINE", Resultado: "GANA"},
	}
	d := BuildDistribution(plays, map[string]bool{"LOS TILOS": true})

	assert.Equal(t, WonLost{Won: 2, Lost: 1, Total: 3}, d.Lineouts)
	assert.Equal(t, WonLost{Won: 1, Lost: 1, Total: 2}, d.Scrums)

	// without an analyzed team every side counts
	all := BuildDistribution(plays, nil)
	assert.Equal(t, WonLost{Won: 3, Lost: 1, Total: 4}, all.Lineouts)
}
