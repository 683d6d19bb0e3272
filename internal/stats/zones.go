package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coachdesk/playlog/internal/models"
)

// ZoneCount is one END-zone frequency row.
type ZoneCount struct {
	ZonaFin string `json:"zona_fin"`
	Count   int    `json:"count"`
}

var lossZoneOrder = []struct{ key, label string }{
	{"ROJA", "Zona roja"},
	{"NARANJA", "Zona naranja"},
	{"AMARILLA", "Zona amarilla"},
	{"VERDE", "Zona verde"},
}

// LostByZone buckets a team's possessions lost (POSESION ending in
// PELOTA_PERDIDA) by the color in the end-zone label. The four colors come
// out in fixed pitch order; labels matching none are appended verbatim.
func LostByZone(plays []models.Play, team string) []ZoneCount {
	raw := map[string]int{}
	for i := range plays {
		p := &plays[i]
		if !sameTeam(p.Equipo, team) || up(p.Jugada) != "POSESION" || up(p.Termina) != "PELOTA_PERDIDA" {
			continue
		}
		if strings.TrimSpace(p.ZonaFin) == "" {
			continue
		}
		raw[p.ZonaFin]++
	}
	colorCounts := map[string]int{}
	extras := []ZoneCount{}
	for zone, n := range raw {
		u := up(zone)
		matched := ""
		for _, c := range lossZoneOrder {
			if strings.Contains(u, c.key) {
				matched = c.key
				break
			}
		}
		if matched != "" {
			colorCounts[matched] += n
		} else {
			extras = append(extras, ZoneCount{ZonaFin: zone, Count: n})
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i].ZonaFin < extras[j].ZonaFin })
	out := make([]ZoneCount, 0, len(lossZoneOrder)+len(extras))
	for _, c := range lossZoneOrder {
		out = append(out, ZoneCount{ZonaFin: c.label, Count: colorCounts[c.key]})
	}
	return append(out, extras...)
}

// ZoneData is the zone-transition aggregate of a play set: start and end
// marginals plus the "FROM->TO" transition counts. Labels are kept as
// uppercased raw text, no canonical pitch mapping is applied.
type ZoneData struct {
	ZoneStarts  map[string]int `json:"zone_starts"`
	ZoneEnds    map[string]int `json:"zone_ends"`
	Transitions map[string]int `json:"transitions"`
}

// ZoneHeatmap tallies where plays start and end and how they move.
func ZoneHeatmap(plays []models.Play) *ZoneData {
	data := &ZoneData{
		ZoneStarts:  map[string]int{},
		ZoneEnds:    map[string]int{},
		Transitions: map[string]int{},
	}
	for i := range plays {
		zi := up(plays[i].ZonaInicio)
		zf := up(plays[i].ZonaFin)
		if zi != "" {
			data.ZoneStarts[zi]++
		}
		if zf != "" {
			data.ZoneEnds[zf]++
		}
		if zi != "" && zf != "" {
			data.Transitions[fmt.Sprintf("%s->%s", zi, zf)]++
		}
	}
	return data
}
