package stats

import (
	"math"
	"strings"

	"github.com/coachdesk/playlog/internal/models"
)

func up(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func sameTeam(equipo, team string) bool {
	return team != "" && strings.EqualFold(strings.TrimSpace(equipo), strings.TrimSpace(team))
}

func isTry(jugada string) bool {
	u := up(jugada)
	return u == "TRIES" || strings.Contains(u, "TRY")
}

func isPenaltyConceded(jugada string) bool {
	return strings.Contains(up(jugada), "PENALES_CONCEDIDOS")
}

// CountTries counts a team's scoring plays by the JUGADA tag alone.
func CountTries(plays []models.Play, team string) int {
	n := 0
	for i := range plays {
		if sameTeam(plays[i].Equipo, team) && isTry(plays[i].Jugada) {
			n++
		}
	}
	return n
}

// CountPenaltiesConceded counts a team's PENALES_CONCEDIDOS plays.
func CountPenaltiesConceded(plays []models.Play, team string) int {
	n := 0
	for i := range plays {
		if sameTeam(plays[i].Equipo, team) && isPenaltyConceded(plays[i].Jugada) {
			n++
		}
	}
	return n
}

func teamPlays(plays []models.Play, team string) []models.Play {
	out := make([]models.Play, 0, len(plays))
	for i := range plays {
		if sameTeam(plays[i].Equipo, team) {
			out = append(out, plays[i])
		}
	}
	return out
}

// pct is count/den*100 to one decimal, zero on an empty denominator.
func pct(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return round1(float64(num) / float64(den) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
