package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coachdesk/playlog/internal/models"
)

func lostPlay(team, zonaFin string) models.Play {
	return models.Play{Equipo: team, Jugada: "POSESION", Termina: "PELOTA_PERDIDA", ZonaFin: zonaFin}
}

func TestLostByZone_FixedOrderPlusExtras(t *testing.T) {
	plays := []models.Play{
		lostPlay("LOS TILOS", "ZONA VERDE"),
		lostPlay("LOS TILOS", "zona roja"),
		lostPlay("LOS TILOS", "Z. ROJA OUR"),
		lostPlay("LOS TILOS", "INGOAL"),
		lostPlay("LOS TILOS", ""),
		{Equipo: "LOS TILOS", Jugada: "POSESION", Termina: "PUNTOS", ZonaFin: "ZONA ROJA"},
		lostPlay("SAN LUIS", "ZONA ROJA"),
	}
	out := LostByZone(plays, "LOS TILOS")

	assert.Len(t, out, 5)
	assert.Equal(t, ZoneCount{ZonaFin: "Zona roja", Count: 2}, out[0])
	assert.Equal(t, ZoneCount{ZonaFin: "Zona naranja", Count: 0}, out[1])
	assert.Equal(t, ZoneCount{ZonaFin: "Zona amarilla", Count: 0}, out[2])
	assert.Equal(t, ZoneCount{ZonaFin: "Zona verde", Count: 1}, out[3])
	assert.Equal(t, ZoneCount{ZonaFin: "INGOAL", Count: 1}, out[4])
}

func TestZoneHeatmap(t *testing.T) {
	plays := []models.Play{
		{ZonaInicio: "22 OUR", ZonaFin: "HALF"},
		{ZonaInicio: " 22 our ", ZonaFin: "half"},
		{ZonaInicio: "HALF", ZonaFin: ""},
		{ZonaInicio: "", ZonaFin: "22 OPP"},
	}
	data := ZoneHeatmap(plays)

	assert.Equal(t, map[string]int{"22 OUR": 2, "HALF": 1}, data.ZoneStarts)
	assert.Equal(t, map[string]int{"HALF": 2, "22 OPP": 1}, data.ZoneEnds)
	assert.Equal(t, map[string]int{"22 OUR->HALF": 2}, data.Transitions)
}
