package stats

import (
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/coachdesk/playlog/internal/models"
)

// Service resolves the analyzed-team context and loads the rows the pure
// aggregation functions work on.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Scope is the resolved analysis context of one request: which team names
// count as "ours" (empty means no restriction) plus optional season and
// tournament-name filters.
type Scope struct {
	TeamNames   map[string]bool
	Seasons     []string
	Tournaments []string
}

// ScopeFor resolves the plays a user may analyze. Staff see everything unless
// they pick a team. Coaches inherit their profile team plus every active
// season participation; a requested team narrows the set when it belongs to
// it (or when the coach has none assigned).
func (s *Service) ScopeFor(user *models.User, teamName string, seasons, tournaments []string) (Scope, error) {
	scope := Scope{TeamNames: map[string]bool{}, Seasons: seasons, Tournaments: tournaments}
	requested := up(teamName)
	if user == nil || user.IsAdmin {
		if requested != "" {
			scope.TeamNames[requested] = true
		}
		return scope, nil
	}
	var profile models.Profile
	err := s.db.Preload("Team").Where("user_id = ?", user.ID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Scope{}, err
	}
	if err == nil && profile.Team != nil {
		if name := up(profile.Team.Identifier()); name != "" {
			scope.TeamNames[name] = true
		}
	}
	var rows []models.CoachSeasonTeam
	if err := s.db.Preload("Team").Where("user_id = ? AND active = ?", user.ID, true).Find(&rows).Error; err != nil {
		return Scope{}, err
	}
	for _, row := range rows {
		if row.Team == nil {
			continue
		}
		if name := up(row.Team.Identifier()); name != "" {
			scope.TeamNames[name] = true
		}
	}
	if requested != "" && (scope.TeamNames[requested] || len(scope.TeamNames) == 0) {
		scope.TeamNames = map[string]bool{requested: true}
	}
	return scope, nil
}

// matchQuery builds the visible-match query for a scope with its tournament
// association loaded.
func (s *Service) matchQuery(scope Scope, tournamentFilter bool) *gorm.DB {
	return s.matchQueryBare(scope, tournamentFilter).
		Preload("Tournament").Preload("Tournament.Country")
}

// matchQueryBare is the same filter chain without preloads, usable for
// plucks and counts. The tournament filter is skipped when listing the
// filter options themselves.
func (s *Service) matchQueryBare(scope Scope, tournamentFilter bool) *gorm.DB {
	qs := s.db.Model(&models.Match{}).
		Joins("LEFT JOIN tournaments ON tournaments.id = matches.tournament_id")
	if len(scope.TeamNames) > 0 {
		conds := make([]string, 0, len(scope.TeamNames))
		args := make([]any, 0, 2*len(scope.TeamNames))
		for name := range scope.TeamNames {
			conds = append(conds, "(matches.home_team = ? OR matches.away_team = ?)")
			args = append(args, name, name)
		}
		qs = qs.Where(strings.Join(conds, " OR "), args...)
	}
	if len(scope.Seasons) > 0 {
		keys := make([]string, 0, len(scope.Seasons))
		for _, season := range scope.Seasons {
			if v := up(season); v != "" {
				keys = append(keys, v)
			}
		}
		if len(keys) > 0 {
			qs = qs.Where("UPPER(tournaments.season) IN ?", keys)
		}
	}
	if tournamentFilter && len(scope.Tournaments) > 0 {
		conds := make([]string, 0, len(scope.Tournaments))
		args := make([]any, 0, 2*len(scope.Tournaments))
		for _, t := range scope.Tournaments {
			v := up(t)
			if v == "" {
				continue
			}
			conds = append(conds, "(UPPER(tournaments.name) = ? OR UPPER(tournaments.short_name) = ?)")
			args = append(args, v, v)
		}
		if len(conds) > 0 {
			qs = qs.Where(strings.Join(conds, " OR "), args...)
		}
	}
	return qs
}

func (s *Service) visibleMatches(scope Scope, order string) ([]models.Match, error) {
	var list []models.Match
	qs := s.matchQuery(scope, true)
	if order != "" {
		qs = qs.Order(order)
	}
	if err := qs.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) playsFor(matchIDs []int64) ([]models.Play, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	var plays []models.Play
	if err := s.db.Where("match_id IN ?", matchIDs).Find(&plays).Error; err != nil {
		return nil, err
	}
	return plays, nil
}

func (s *Service) matchPlays(matchID int64) ([]models.Play, error) {
	var plays []models.Play
	if err := s.db.Where("match_id = ?", matchID).Find(&plays).Error; err != nil {
		return nil, err
	}
	return plays, nil
}

// Summary holds the aggregate win/points/tries record of the visible matches.
type Summary struct {
	TotalMatches     int     `json:"total_matches"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	Draws            int     `json:"draws"`
	WinRate          float64 `json:"win_rate"`
	PointsFor        int     `json:"points_for"`
	PointsAgainst    int     `json:"points_against"`
	PointDifference  int     `json:"point_difference"`
	TriesFor         int     `json:"tries_for"`
	TriesAgainst     int     `json:"tries_against"`
	TryDifference    int     `json:"try_difference"`
	AvgPointsPerGame float64 `json:"avg_points_per_match"`
	AvgTriesPerGame  float64 `json:"avg_tries_per_match"`
}

// SummaryStats aggregates result, point and try totals over every visible
// match. Try totals need an analyzed team, they stay zero without one.
func (s *Service) SummaryStats(scope Scope) (*Summary, error) {
	matches, err := s.visibleMatches(scope, "")
	if err != nil {
		return nil, err
	}
	sum := &Summary{TotalMatches: len(matches)}
	for i := range matches {
		m := &matches[i]
		plays, err := s.matchPlays(m.ID)
		if err != nil {
			return nil, err
		}
		result := ResultFor(plays, m.HomeTeam, m.AwayTeam, scope.TeamNames)
		switch result.Result {
		case "W":
			sum.Wins++
		case "L":
			sum.Losses++
		default:
			sum.Draws++
		}
		if result.HasScore {
			sum.PointsFor += result.TeamScore
			sum.PointsAgainst += result.OppScore
		}
		if len(scope.TeamNames) > 0 {
			teamName, oppName := orientTeams(m, result.IsHome)
			sum.TriesFor += CountTries(plays, teamName)
			sum.TriesAgainst += CountTries(plays, oppName)
		}
	}
	sum.PointDifference = sum.PointsFor - sum.PointsAgainst
	sum.TryDifference = sum.TriesFor - sum.TriesAgainst
	if sum.TotalMatches > 0 {
		sum.WinRate = pct(sum.Wins, sum.TotalMatches)
		sum.AvgPointsPerGame = round1(float64(sum.PointsFor) / float64(sum.TotalMatches))
		sum.AvgTriesPerGame = round1(float64(sum.TriesFor) / float64(sum.TotalMatches))
	}
	return sum, nil
}

func orientTeams(m *models.Match, isHome bool) (team, opp string) {
	if isHome {
		return m.HomeTeam, m.AwayTeam
	}
	return m.AwayTeam, m.HomeTeam
}

// RecentMatch is one row of the latest-results table.
type RecentMatch struct {
	ID         int64      `json:"id"`
	HomeTeam   string     `json:"home_team"`
	AwayTeam   string     `json:"away_team"`
	TeamName   string     `json:"team_name"`
	OppName    string     `json:"opp_name"`
	MatchDate  *time.Time `json:"match_date"`
	Tournament *string    `json:"tournament"`
	Season     *string    `json:"season"`
	IsHome     bool       `json:"is_home"`
	TeamScore  int        `json:"team_score"`
	OppScore   int        `json:"opp_score"`
	ScoreStr   string     `json:"score_str"`
	TeamTries  int        `json:"team_tries"`
	OppTries   int        `json:"opp_tries"`
	Result     string     `json:"result"`
	PlaysCount int        `json:"plays_count"`
}

// RecentMatches returns the latest results, newest first.
func (s *Service) RecentMatches(scope Scope, limit int) ([]RecentMatch, error) {
	matches, err := s.visibleMatches(scope, "matches.match_date DESC, matches.created_at DESC")
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]RecentMatch, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		plays, err := s.matchPlays(m.ID)
		if err != nil {
			return nil, err
		}
		result := ResultFor(plays, m.HomeTeam, m.AwayTeam, scope.TeamNames)
		teamName, oppName := orientTeams(m, result.IsHome)
		row := RecentMatch{
			ID:         m.ID,
			HomeTeam:   m.HomeTeam,
			AwayTeam:   m.AwayTeam,
			TeamName:   teamName,
			OppName:    oppName,
			MatchDate:  m.MatchDate,
			IsHome:     result.IsHome,
			TeamScore:  result.TeamScore,
			OppScore:   result.OppScore,
			ScoreStr:   result.ScoreStr,
			TeamTries:  CountTries(plays, teamName),
			OppTries:   CountTries(plays, oppName),
			Result:     result.Result,
			PlaysCount: len(plays),
		}
		if m.Tournament != nil {
			short, season := m.Tournament.ShortName, m.Tournament.Season
			row.Tournament = &short
			row.Season = &season
		}
		out = append(out, row)
	}
	return out, nil
}

// TrendPoint is one match in the chronological trend series.
type TrendPoint struct {
	Index                 int     `json:"index"`
	Date                  *string `json:"date"`
	Opponent              string  `json:"opponent"`
	TeamScore             int     `json:"team_score"`
	OppScore              int     `json:"opp_score"`
	TeamTries             int     `json:"team_tries"`
	OppTries              int     `json:"opp_tries"`
	TeamPenaltiesConceded int     `json:"team_penalties_conceded"`
	OppPenaltiesConceded  int     `json:"opp_penalties_conceded"`
	Result                int     `json:"result"`
	CumulativeWins        int     `json:"cumulative_wins"`
}

// TrendData builds the last-N series in chronological order with a running
// win count. Result is signed: 1 win, 0 draw, -1 loss.
func (s *Service) TrendData(scope Scope, lastN int) ([]TrendPoint, error) {
	matches, err := s.visibleMatches(scope, "matches.match_date, matches.created_at")
	if err != nil {
		return nil, err
	}
	if lastN > 0 && len(matches) > lastN {
		matches = matches[len(matches)-lastN:]
	}
	out := make([]TrendPoint, 0, len(matches))
	cumulativeWins := 0
	for i := range matches {
		m := &matches[i]
		plays, err := s.matchPlays(m.ID)
		if err != nil {
			return nil, err
		}
		result := ResultFor(plays, m.HomeTeam, m.AwayTeam, scope.TeamNames)
		teamName, oppName := orientTeams(m, result.IsHome)
		signed := 0
		switch result.Result {
		case "W":
			cumulativeWins++
			signed = 1
		case "L":
			signed = -1
		}
		point := TrendPoint{
			Index:                 i + 1,
			Opponent:              oppName,
			TeamScore:             result.TeamScore,
			OppScore:              result.OppScore,
			TeamTries:             CountTries(plays, teamName),
			OppTries:              CountTries(plays, oppName),
			TeamPenaltiesConceded: CountPenaltiesConceded(plays, teamName),
			OppPenaltiesConceded:  CountPenaltiesConceded(plays, oppName),
			Result:                signed,
			CumulativeWins:        cumulativeWins,
		}
		if m.MatchDate != nil {
			iso := m.MatchDate.Format("2006-01-02")
			point.Date = &iso
		}
		out = append(out, point)
	}
	return out, nil
}

// PlaysDistribution tallies every play visible to the scope.
func (s *Service) PlaysDistribution(scope Scope) (*Distribution, error) {
	plays, err := s.scopedPlays(scope)
	if err != nil {
		return nil, err
	}
	return BuildDistribution(plays, scope.TeamNames), nil
}

// ZoneHeatmapData aggregates zone transitions over every visible play.
func (s *Service) ZoneHeatmapData(scope Scope) (*ZoneData, error) {
	plays, err := s.scopedPlays(scope)
	if err != nil {
		return nil, err
	}
	return ZoneHeatmap(plays), nil
}

func (s *Service) scopedPlays(scope Scope) ([]models.Play, error) {
	matches, err := s.visibleMatches(scope, "")
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(matches))
	for i := range matches {
		ids = append(ids, matches[i].ID)
	}
	return s.playsFor(ids)
}

// MatchDetailedStats loads a single match and computes its full stat block.
func (s *Service) MatchDetailedStats(scope Scope, matchID int64) (*MatchDetail, error) {
	var m models.Match
	if err := s.db.Preload("Tournament").First(&m, matchID).Error; err != nil {
		return nil, err
	}
	plays, err := s.matchPlays(m.ID)
	if err != nil {
		return nil, err
	}
	return BuildMatchDetail(&m, plays, scope.TeamNames), nil
}

// Comparison pairs detailed stat blocks for side-by-side charts.
type Comparison struct {
	Matches []*MatchDetail `json:"matches"`
	Count   int            `json:"count"`
}

// CompareMatches collects detailed stats per id, skipping unknown matches.
func (s *Service) CompareMatches(scope Scope, matchIDs []int64) (*Comparison, error) {
	cmp := &Comparison{Matches: []*MatchDetail{}}
	for _, id := range matchIDs {
		detail, err := s.MatchDetailedStats(scope, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cmp.Matches = append(cmp.Matches, detail)
	}
	cmp.Count = len(cmp.Matches)
	return cmp, nil
}

// AvailableSeasons lists the seasons of the visible matches, newest first.
func (s *Service) AvailableSeasons(scope Scope) ([]string, error) {
	var seasons []string
	err := s.matchQueryBare(scope, false).
		Where("tournaments.season IS NOT NULL AND tournaments.season <> ''").
		Distinct().Order("tournaments.season DESC").
		Pluck("tournaments.season", &seasons).Error
	if err != nil {
		return nil, err
	}
	return seasons, nil
}

// TournamentOption is one filter choice, unique by name across seasons.
type TournamentOption struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// AvailableTournaments lists the competitions of the visible matches, one
// entry per name regardless of season.
func (s *Service) AvailableTournaments(scope Scope) ([]TournamentOption, error) {
	matches, err := s.visibleMatchesNoTournamentFilter(scope)
	if err != nil {
		return nil, err
	}
	seen := map[string]TournamentOption{}
	for i := range matches {
		t := matches[i].Tournament
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		if _, ok := seen[t.Name]; !ok {
			seen[t.Name] = TournamentOption{Name: t.Name, ShortName: t.ShortName}
		}
	}
	out := make([]TournamentOption, 0, len(seen))
	for _, opt := range seen {
		out = append(out, opt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Service) visibleMatchesNoTournamentFilter(scope Scope) ([]models.Match, error) {
	var list []models.Match
	if err := s.matchQuery(scope, false).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
