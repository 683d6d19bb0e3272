package stats

import (
	"sort"
	"strings"

	"github.com/coachdesk/playlog/internal/models"
)

type EventoCount struct {
	Evento string `json:"evento"`
	Count  int    `json:"count"`
}

type ResultadoCount struct {
	Resultado string `json:"resultado"`
	Count     int    `json:"count"`
}

type WonLost struct {
	Won   int `json:"won"`
	Lost  int `json:"lost"`
	Total int `json:"total"`
}

// Distribution summarizes how a whole play set breaks down by tag, plus the
// analyzed team's set-piece win/loss counts.
type Distribution struct {
	ByJugada     []JugadaCount    `json:"by_jugada"`
	ByEvento     []EventoCount    `json:"by_evento"`
	ByResultado  []ResultadoCount `json:"by_resultado"`
	ByZonaInicio []StartZoneCount `json:"by_zona_inicio"`
	ByZonaFin    []ZoneCount      `json:"by_zona_fin"`
	TotalPlays   int              `json:"total_plays"`
	Lineouts     WonLost          `json:"lineouts"`
	Scrums       WonLost          `json:"scrums"`
}

func sortCounts[T any](s []T, count func(T) int, label func(T) string) {
	sort.Slice(s, func(i, j int) bool {
		if count(s[i]) != count(s[j]) {
			return count(s[i]) > count(s[j])
		}
		return label(s[i]) < label(s[j])
	})
}

// BuildDistribution tallies the loaded plays. An empty teamNames set widens
// the set-piece counters to every side.
func BuildDistribution(plays []models.Play, teamNames map[string]bool) *Distribution {
	byJugada := map[string]int{}
	byEvento := map[string]int{}
	byResultado := map[string]int{}
	byZI := map[string]int{}
	byZF := map[string]int{}
	d := &Distribution{TotalPlays: len(plays)}
	for i := range plays {
		p := &plays[i]
		if strings.TrimSpace(p.Jugada) != "" {
			byJugada[p.Jugada]++
		}
		if strings.TrimSpace(p.Evento) != "" {
			byEvento[p.Evento]++
		}
		if strings.TrimSpace(p.Resultado) != "" {
			byResultado[p.Resultado]++
		}
		if strings.TrimSpace(p.ZonaInicio) != "" {
			byZI[p.ZonaInicio]++
		}
		if strings.TrimSpace(p.ZonaFin) != "" {
			byZF[p.ZonaFin]++
		}
		if len(teamNames) > 0 && !teamNames[up(p.Equipo)] {
			continue
		}
		if isLine(p.Jugada) {
			if winsClean(p.Resultado) || winsDirty(p.Resultado) {
				d.Lineouts.Won++
			}
			if loses(p.Resultado) {
				d.Lineouts.Lost++
			}
		}
		if isScrum(p.Jugada) {
			if winsAny(p.Resultado) {
				d.Scrums.Won++
			}
			if loses(p.Resultado) {
				d.Scrums.Lost++
			}
		}
	}
	d.Lineouts.Total = d.Lineouts.Won + d.Lineouts.Lost
	d.Scrums.Total = d.Scrums.Won + d.Scrums.Lost

	d.ByJugada = topCounts(byJugada, 10)
	for k, n := range byEvento {
		d.ByEvento = append(d.ByEvento, EventoCount{Evento: k, Count: n})
	}
	sortCounts(d.ByEvento, func(e EventoCount) int { return e.Count }, func(e EventoCount) string { return e.Evento })
	if len(d.ByEvento) > 10 {
		d.ByEvento = d.ByEvento[:10]
	}
	for k, n := range byResultado {
		d.ByResultado = append(d.ByResultado, ResultadoCount{Resultado: k, Count: n})
	}
	sortCounts(d.ByResultado, func(r ResultadoCount) int { return r.Count }, func(r ResultadoCount) string { return r.Resultado })
	if len(d.ByResultado) > 10 {
		d.ByResultado = d.ByResultado[:10]
	}
	for k, n := range byZI {
		d.ByZonaInicio = append(d.ByZonaInicio, StartZoneCount{ZonaInicio: k, Count: n})
	}
	sortCounts(d.ByZonaInicio, func(z StartZoneCount) int { return z.Count }, func(z StartZoneCount) string { return z.ZonaInicio })
	for k, n := range byZF {
		d.ByZonaFin = append(d.ByZonaFin, ZoneCount{ZonaFin: k, Count: n})
	}
	sortCounts(d.ByZonaFin, func(z ZoneCount) int { return z.Count }, func(z ZoneCount) string { return z.ZonaFin })
	return d
}
