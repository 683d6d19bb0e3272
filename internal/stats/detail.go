package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/coachdesk/playlog/internal/models"
)

type JugadaCount struct {
	Jugada string `json:"jugada"`
	Count  int    `json:"count"`
}

type StartZoneCount struct {
	ZonaInicio string `json:"zona_inicio"`
	Count      int    `json:"count"`
}

type PossessionItem struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

type RateItem struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Num   int     `json:"num"`
	Den   int     `json:"den"`
}

// PossessionSummary describes how a team's possessions ended, mixed with the
// recovered/restart/ruck counters sharing the same chart.
type PossessionSummary struct {
	Total              int              `json:"total"`
	OppTotal           int              `json:"opp_total"`
	TotalGeneral       int              `json:"total_general"`
	TotalNonLost       int              `json:"total_non_lost"`
	PelotaPerdidaCount int              `json:"pelota_perdida_count"`
	Items              []PossessionItem `json:"items"`
	Averages           []RateItem       `json:"averages"`
}

type SetPieces struct {
	LineWonClean   int       `json:"line_won_clean"`
	LineWonDirty   int       `json:"line_won_dirty"`
	LineLost       int       `json:"line_lost"`
	LineRecovered  int       `json:"line_recovered"`
	LineTotalMatch int       `json:"line_total_match"`
	LineBreakdown  Breakdown `json:"line_breakdown"`
	ScrumWonClean  int       `json:"scrum_won_clean"`
	ScrumWonDirty  int       `json:"scrum_won_dirty"`
	ScrumWonAny    int       `json:"scrum_won_any"`
	ScrumLost      int       `json:"scrum_lost"`
	ScrumRecovered int       `json:"scrum_recovered"`
	ScrumTotal     int       `json:"scrum_total_match"`
	ScrumBreakdown Breakdown `json:"scrum_breakdown"`
}

type TeamStats struct {
	Plays              int              `json:"plays"`
	Tries              int              `json:"tries"`
	TriesConverted     int              `json:"tries_converted"`
	TriesUnconverted   int              `json:"tries_unconverted"`
	Penalties          int              `json:"penalties"`
	PenalesGoalSuccess int              `json:"penales_goal_success"`
	PenalesGoalTotal   int              `json:"penales_goal_total"`
	YellowCards        int              `json:"yellow_cards"`
	RedCards           int              `json:"red_cards"`
	ByZone             []StartZoneCount `json:"by_zone"`
	LostByZone         []ZoneCount      `json:"lost_by_zone"`
	ByJugada           []JugadaCount    `json:"by_jugada"`
	BallsRecovered     int              `json:"balls_recovered"`
}

type MatchInfo struct {
	ID         int64      `json:"id"`
	HomeTeam   string     `json:"home_team"`
	AwayTeam   string     `json:"away_team"`
	MatchDate  *time.Time `json:"match_date"`
	Tournament *string    `json:"tournament"`
	Season     *string    `json:"season"`
}

// MatchDetail is the full per-match statistics block of the dashboard.
type MatchDetail struct {
	Match      MatchInfo         `json:"match"`
	TeamName   string            `json:"team_name"`
	OppName    string            `json:"opp_name"`
	IsHome     bool              `json:"is_home"`
	TotalPlays int               `json:"total_plays"`
	Result     string            `json:"result"`
	ScoreStr   string            `json:"score_str"`
	TeamScore  int               `json:"team_score"`
	OppScore   int               `json:"opp_score"`
	TeamStats  TeamStats         `json:"team_stats"`
	Possession PossessionSummary `json:"possession"`
	SetPieces  SetPieces         `json:"set_pieces"`
}

// possessionBuckets lists the recognized TERMINA endings of a possession.
// The last key carries a literal stray space seen in the real sheets.
var possessionBuckets = []struct{ key, label string }{
	{"ventaja", "Ventaja"},
	{"puntos", "Puntos"},
	{"penal/fk_ec", "Penal en Contra"},
	{"penal/fk_af", "Penal a Favor"},
	{"pelota_perdida", "Pelota perdida"},
	{"kick_touch", "Kick al touch"},
	{"kick _play", "Kick play"},
}

// BuildMatchDetail computes every per-match metric from one loaded play set.
// teamNames orients the analysis; when empty the away side reads as "ours".
func BuildMatchDetail(match *models.Match, plays []models.Play, teamNames map[string]bool) *MatchDetail {
	result := ResultFor(plays, match.HomeTeam, match.AwayTeam, teamNames)
	teamName, oppName := match.AwayTeam, match.HomeTeam
	if result.IsHome {
		teamName, oppName = match.HomeTeam, match.AwayTeam
	}
	team := teamPlays(plays, teamName)
	opp := teamPlays(plays, oppName)

	detail := &MatchDetail{
		Match:      matchInfo(match),
		TeamName:   teamName,
		OppName:    oppName,
		IsHome:     result.IsHome,
		TotalPlays: len(plays),
		Result:     result.Result,
		ScoreStr:   result.ScoreStr,
		TeamScore:  result.TeamScore,
		OppScore:   result.OppScore,
	}
	detail.TeamStats = buildTeamStats(team, opp)
	detail.Possession = buildPossession(team, opp)
	detail.SetPieces = buildSetPieces(plays, team, opp)
	return detail
}

func matchInfo(m *models.Match) MatchInfo {
	info := MatchInfo{
		ID:        m.ID,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		MatchDate: m.MatchDate,
	}
	if m.Tournament != nil {
		name, season := m.Tournament.Name, m.Tournament.Season
		info.Tournament = &name
		info.Season = &season
	}
	return info
}

func buildTeamStats(team, opp []models.Play) TeamStats {
	ts := TeamStats{Plays: len(team)}
	byZone := map[string]int{}
	byJugada := map[string]int{}
	for i := range team {
		p := &team[i]
		if isTry(p.Jugada) {
			ts.Tries++
			switch strings.TrimSpace(p.Resultado) {
			case "7":
				ts.TriesConverted++
			case "5":
				ts.TriesUnconverted++
			}
		}
		if strings.Contains(up(p.Sancion), "PENAL") || strings.Contains(up(p.Resultado), "PENAL") {
			ts.Penalties++
		}
		switch up(p.Jugada) {
		case "GOALS":
			if strings.TrimSpace(p.Resultado) == "3" {
				ts.PenalesGoalSuccess++
				ts.PenalesGoalTotal++
			}
		case "GOAL_ERRADOS":
			ts.PenalesGoalTotal++
		case "TARJETAS":
			if strings.Contains(up(p.Evento), "AMARILLA") {
				ts.YellowCards++
			}
			if strings.Contains(up(p.Evento), "ROJA") {
				ts.RedCards++
			}
		}
		if z := strings.TrimSpace(p.ZonaInicio); z != "" {
			byZone[p.ZonaInicio]++
		}
		if j := strings.TrimSpace(p.Jugada); j != "" {
			byJugada[j]++
		}
	}
	for zone, n := range byZone {
		ts.ByZone = append(ts.ByZone, StartZoneCount{ZonaInicio: zone, Count: n})
	}
	sort.Slice(ts.ByZone, func(i, j int) bool {
		if ts.ByZone[i].Count != ts.ByZone[j].Count {
			return ts.ByZone[i].Count > ts.ByZone[j].Count
		}
		return ts.ByZone[i].ZonaInicio < ts.ByZone[j].ZonaInicio
	})
	ts.ByJugada = topCounts(byJugada, 8)
	ts.LostByZone = LostByZone(team, teamOf(team))
	for i := range opp {
		if up(opp[i].Jugada) == "POSESION" && up(opp[i].Termina) == "PELOTA_PERDIDA" {
			ts.BallsRecovered++
		}
	}
	return ts
}

func teamOf(plays []models.Play) string {
	if len(plays) == 0 {
		return ""
	}
	return plays[0].Equipo
}

func topCounts(counts map[string]int, limit int) []JugadaCount {
	out := make([]JugadaCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, JugadaCount{Jugada: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Jugada < out[j].Jugada
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func buildPossession(team, opp []models.Play) PossessionSummary {
	bucketCounts := map[string]int{}
	total := 0
	for i := range team {
		p := &team[i]
		if up(p.Jugada) != "POSESION" {
			continue
		}
		rawKey := strings.ToLower(strings.TrimSpace(p.Termina))
		key := strings.ReplaceAll(rawKey, " ", "_")
		hit := ""
		for _, b := range possessionBuckets {
			if key == b.key || rawKey == b.key {
				hit = b.key
				break
			}
		}
		if hit == "" {
			continue
		}
		bucketCounts[hit]++
		total++
	}
	oppPossessions := 0
	ballsRecovered := 0
	salidasPerdidas := 0
	salidasTotalesOpp := 0
	oppRucksWon, oppRucksLost := 0, 0
	for i := range opp {
		p := &opp[i]
		switch {
		case up(p.Jugada) == "POSESION":
			oppPossessions++
			if up(p.Termina) == "PELOTA_PERDIDA" {
				ballsRecovered++
			}
		case up(p.Jugada) == "SALIDAS":
			salidasTotalesOpp++
			if t := up(p.Termina); t == "RECUPERA" || t == "RECUPERADA" {
				salidasPerdidas++
			}
		case strings.Contains(up(p.Jugada), "RUCKS_GANADOS"):
			oppRucksWon++
		case strings.Contains(up(p.Jugada), "RUCKS_PERDIDO"):
			oppRucksLost++
		}
	}
	penalesContra := 0
	penalesFavor := CountPenaltiesConceded(opp, teamOf(opp))
	salidasRecuperadas := 0
	rucksWon, rucksLost := 0, 0
	for i := range team {
		p := &team[i]
		switch {
		case isPenaltyConceded(p.Jugada):
			penalesContra++
		case up(p.Jugada) == "SALIDAS":
			if r := up(p.Resultado); r == "RECUPERADA" || r == "RECUPERA" {
				salidasRecuperadas++
			}
		case strings.Contains(up(p.Jugada), "RUCKS_GANADOS"):
			rucksWon++
		case strings.Contains(up(p.Jugada), "RUCKS_PERDIDO"):
			rucksLost++
		}
	}
	// conceded-penalty plays carry the real counts for the penal buckets
	bucketCounts["penal/fk_ec"] = penalesContra
	bucketCounts["penal/fk_af"] = penalesFavor

	lost := bucketCounts["pelota_perdida"]
	nonLost := total - lost
	if nonLost < 0 {
		nonLost = 0
	}
	totalGeneral := total + ballsRecovered + rucksWon + rucksLost +
		salidasRecuperadas + salidasPerdidas + penalesContra + penalesFavor

	type entry struct {
		key, label string
		count      int
	}
	entries := []entry{
		{"penal/fk_ec", "Penal en Contra", penalesContra},
		{"penal/fk_af", "Penal a Favor", penalesFavor},
		{"pelota_perdida", "Pelota perdida", lost},
		{"pelotas_recuperadas", "Pelotas recuperadas", ballsRecovered},
		{"salidas_recuperadas", "Salidas recuperadas", salidasRecuperadas},
		{"salidas_perdidas", "Salidas perdidas", salidasPerdidas},
		{"rucks_ganados", "Rucks ganados", rucksWon},
		{"rucks_perdidos", "Rucks perdidos", rucksLost},
	}
	items := make([]PossessionItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, PossessionItem{Key: e.key, Label: e.label, Count: e.count, Pct: pct(e.count, totalGeneral)})
	}
	return PossessionSummary{
		Total:              total,
		OppTotal:           oppPossessions,
		TotalGeneral:       totalGeneral,
		TotalNonLost:       nonLost,
		PelotaPerdidaCount: lost,
		Items:              items,
		Averages: []RateItem{
			{Label: "Pelotas perdidas", Value: pct(lost, total), Num: lost, Den: total},
			{Label: "Pelotas recuperadas", Value: pct(ballsRecovered, oppPossessions), Num: ballsRecovered, Den: oppPossessions},
			{Label: "Salidas perdidas", Value: pct(salidasPerdidas, salidasTotalesOpp), Num: salidasPerdidas, Den: salidasTotalesOpp},
			{
				Label: "Rucks ganados",
				Value: pct(rucksWon+oppRucksLost, rucksWon+rucksLost+oppRucksWon+oppRucksLost),
				Num:   rucksWon + oppRucksLost,
				Den:   rucksWon + rucksLost + oppRucksWon + oppRucksLost,
			},
		},
	}
}

func buildSetPieces(all, team, opp []models.Play) SetPieces {
	sp := SetPieces{}
	for i := range team {
		p := &team[i]
		if isLine(p.Jugada) {
			switch {
			case winsDirty(p.Resultado):
				sp.LineWonDirty++
			case winsClean(p.Resultado):
				sp.LineWonClean++
			}
			if loses(p.Resultado) {
				sp.LineLost++
			}
		}
		if isScrum(p.Jugada) {
			switch {
			case winsDirty(p.Resultado):
				sp.ScrumWonDirty++
			case winsClean(p.Resultado):
				sp.ScrumWonClean++
			}
			if loses(p.Resultado) {
				sp.ScrumLost++
			}
		}
	}
	sp.ScrumWonAny = sp.ScrumWonClean + sp.ScrumWonDirty
	for i := range opp {
		p := &opp[i]
		if isLine(p.Jugada) && loses(p.Resultado) {
			sp.LineRecovered++
		}
		if isScrum(p.Jugada) && loses(p.Resultado) {
			sp.ScrumRecovered++
		}
	}
	for i := range all {
		p := &all[i]
		if isLineExact(p.Jugada) {
			sp.LineTotalMatch++
		}
		if isScrumExact(p.Jugada) && up(p.Resultado) != "RESET" {
			sp.ScrumTotal++
		}
	}
	sp.LineBreakdown = BuildBreakdown(team, func(p models.Play) bool { return isLine(p.Jugada) })
	sp.ScrumBreakdown = BuildBreakdown(team, func(p models.Play) bool { return isScrum(p.Jugada) })
	return sp
}
