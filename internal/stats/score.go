// Package stats computes dashboard metrics from stored plays. All aggregation
// is done by pure functions over loaded play sets; Service only resolves the
// analyzed-team context and fetches the rows.
package stats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coachdesk/playlog/internal/models"
)

// MatchResult classifies one match from the analyzed team's point of view.
type MatchResult struct {
	Result    string `json:"result"`
	TeamScore int    `json:"team_score"`
	OppScore  int    `json:"opp_score"`
	IsHome    bool   `json:"is_home"`
	ScoreStr  string `json:"score_str"`
	HasScore  bool   `json:"has_score"`
}

// ParseScoreline extracts the final score from the play carrying the latest
// non-empty MARCADOR FINAL. The text is "home - away"; anything that does not
// split into exactly two integers counts as no score.
func ParseScoreline(plays []models.Play) (home, away int, ok bool) {
	best := -1
	for i := range plays {
		if strings.TrimSpace(plays[i].MarcadorFinal) == "" {
			continue
		}
		if best < 0 || plays[i].Fin.GreaterThan(plays[best].Fin) {
			best = i
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	parts := strings.Split(strings.TrimSpace(plays[best].MarcadorFinal), "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return h, a, true
}

// ResultFor orients the scoreline to the analyzed team set. Without a parsable
// score the match counts as a scoreless draw.
func ResultFor(plays []models.Play, homeTeam, awayTeam string, teamNames map[string]bool) MatchResult {
	isHome := teamNames[strings.ToUpper(strings.TrimSpace(homeTeam))]
	h, a, ok := ParseScoreline(plays)
	if !ok {
		return MatchResult{Result: "D", IsHome: isHome, ScoreStr: "-"}
	}
	team, opp := a, h
	if isHome {
		team, opp = h, a
	}
	result := "D"
	switch {
	case team > opp:
		result = "W"
	case team < opp:
		result = "L"
	}
	return MatchResult{
		Result:    result,
		TeamScore: team,
		OppScore:  opp,
		IsHome:    isHome,
		ScoreStr:  fmt.Sprintf("%d - %d", h, a),
		HasScore:  true,
	}
}
