package matches

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/coachdesk/playlog/internal/models"
)

var ErrDuplicateMatch = errors.New("a match with the same teams and date already exists")

const insertBatchSize = 1000

type Repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) *Repository { return &Repository{db: db} }

// ImportRequest carries the match identity of an upload.
type ImportRequest struct {
	HomeTeam     string
	AwayTeam     string
	MatchDate    *time.Time
	VideoID      string
	TournamentID *int64
	Division     string
}

// ImportPlays upserts the match keyed by video id and replaces its full play
// set in one transaction. A fresh creation colliding with an existing
// (home, away, date) triple fails with ErrDuplicateMatch before any mutation.
// Returns the match and whether it was newly created.
func (r *Repository) ImportPlays(req ImportRequest, plays []models.Play) (*models.Match, bool, error) {
	var match models.Match
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("video_id = ?", req.VideoID).First(&match).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			var n int64
			q := tx.Model(&models.Match{}).
				Where("home_team = ? AND away_team = ?",
					strings.ToUpper(strings.TrimSpace(req.HomeTeam)),
					strings.ToUpper(strings.TrimSpace(req.AwayTeam)))
			if req.MatchDate != nil {
				q = q.Where("match_date = ?", req.MatchDate)
			} else {
				q = q.Where("match_date IS NULL")
			}
			if err := q.Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrDuplicateMatch
			}
			match = models.Match{
				HomeTeam:     req.HomeTeam,
				AwayTeam:     req.AwayTeam,
				VideoID:      req.VideoID,
				MatchDate:    req.MatchDate,
				TournamentID: req.TournamentID,
				Division:     req.Division,
			}
			if err := tx.Create(&match).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			match.HomeTeam = req.HomeTeam
			match.AwayTeam = req.AwayTeam
			match.MatchDate = req.MatchDate
			match.TournamentID = req.TournamentID
			match.Division = req.Division
			if err := tx.Save(&match).Error; err != nil {
				return err
			}
			if err := tx.Where("match_id = ?", match.ID).Delete(&models.Play{}).Error; err != nil {
				return err
			}
		}
		return insertPlays(tx, match.ID, plays)
	})
	if err != nil {
		return nil, false, err
	}
	return &match, created, nil
}

// ReplacePlays swaps the full play set of an existing match atomically.
func (r *Repository) ReplacePlays(matchID int64, plays []models.Play) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var match models.Match
		if err := tx.First(&match, matchID).Error; err != nil {
			return err
		}
		if err := tx.Where("match_id = ?", matchID).Delete(&models.Play{}).Error; err != nil {
			return err
		}
		return insertPlays(tx, matchID, plays)
	})
}

func insertPlays(tx *gorm.DB, matchID int64, plays []models.Play) error {
	if len(plays) == 0 {
		return nil
	}
	for i := range plays {
		plays[i].ID = 0
		plays[i].MatchID = matchID
	}
	return tx.CreateInBatches(plays, insertBatchSize).Error
}

func (r *Repository) Get(id int64) (*models.Match, error) {
	var m models.Match
	err := r.db.Preload("Tournament").Preload("Tournament.Country").First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes a match and its plays.
func (r *Repository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", id).Delete(&models.Play{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Match{}, id).Error
	})
}

// Participation scopes which matches a coach may see in a season.
type Participation struct {
	TeamName string
	Season   string
}

// ParticipationsFor returns the active season/team assignments of a user,
// using the team alias when present.
func (r *Repository) ParticipationsFor(userID int64) ([]Participation, error) {
	var rows []models.CoachSeasonTeam
	err := r.db.Preload("Team").Where("user_id = ? AND active = ?", userID, true).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Participation, 0, len(rows))
	for _, row := range rows {
		name := ""
		if row.Team != nil {
			name = row.Team.Identifier()
		}
		if name == "" {
			continue
		}
		out = append(out, Participation{TeamName: name, Season: strings.TrimSpace(row.Season)})
	}
	return out, nil
}

// ProfileTeamFor returns the identifier of the user's primary team, empty when
// the user has no profile or no team.
func (r *Repository) ProfileTeamFor(userID int64) (string, error) {
	var p models.Profile
	err := r.db.Preload("Team").Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if p.Team == nil {
		return "", nil
	}
	return p.Team.Identifier(), nil
}

// Visibility restricts a listing to a coach's own matches or their rivals'.
type Visibility struct {
	Staff          bool
	Rivals         bool
	Participations []Participation
	ProfileTeam    string
}

// ListFilter holds the optional filters of the match listing.
type ListFilter struct {
	Query        string
	TournamentID int64
	Division     string
	CountryID    int64
	Season       string
	DateFrom     *time.Time
	DateTo       *time.Time
	Sort         string
}

var validSorts = map[string]bool{
	"home_team": true, "away_team": true,
	"created_at": true, "-created_at": true,
	"match_date": true, "-match_date": true,
}

// MatchRow is one listing entry: the match plus the scoreline text of its
// last play and the size of its play set.
type MatchRow struct {
	models.Match
	Result     string `json:"result"`
	PlaysCount int64  `json:"plays_count"`
}

// List returns matches visible to the caller, filtered and sorted. Non-staff
// callers see their own matches by default, or same-season matches not
// involving their teams when Rivals is set.
func (r *Repository) List(vis Visibility, f ListFilter) ([]MatchRow, error) {
	qs := r.db.Model(&models.Match{}).
		Joins("LEFT JOIN tournaments ON tournaments.id = matches.tournament_id").
		Preload("Tournament").Preload("Tournament.Country")

	qs = applyVisibility(qs, vis)

	if f.TournamentID > 0 {
		qs = qs.Where("matches.tournament_id = ?", f.TournamentID)
	}
	if f.Division != "" {
		qs = qs.Where("matches.division = ?", f.Division)
	}
	if f.CountryID > 0 {
		qs = qs.Where("tournaments.country_id = ?", f.CountryID)
	}
	if s := strings.TrimSpace(f.Season); s != "" {
		qs = qs.Where("UPPER(tournaments.season) = ?", strings.ToUpper(s))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToUpper(q) + "%"
		qs = qs.Where("matches.home_team LIKE ? OR matches.away_team LIKE ?", like, like)
	}
	if f.DateFrom != nil {
		qs = qs.Where("matches.match_date >= ?", f.DateFrom)
	}
	if f.DateTo != nil {
		qs = qs.Where("matches.match_date <= ?", f.DateTo)
	}

	switch {
	case f.Sort == "match_date":
		qs = qs.Order("matches.match_date, matches.created_at DESC")
	case f.Sort == "-match_date" || !validSorts[f.Sort]:
		qs = qs.Order("matches.match_date DESC, matches.created_at DESC")
	case strings.HasPrefix(f.Sort, "-"):
		qs = qs.Order(fmt.Sprintf("matches.%s DESC", f.Sort[1:]))
	default:
		qs = qs.Order("matches." + f.Sort)
	}

	var list []models.Match
	if err := qs.Find(&list).Error; err != nil {
		return nil, err
	}
	rows := make([]MatchRow, 0, len(list))
	for _, m := range list {
		row := MatchRow{Match: m}
		var scorelines []string
		err := r.db.Model(&models.Play{}).
			Where("match_id = ? AND marcador_final <> ''", m.ID).
			Order("fin DESC").Limit(1).
			Pluck("marcador_final", &scorelines).Error
		if err != nil {
			return nil, err
		}
		if len(scorelines) > 0 {
			row.Result = scorelines[0]
		}
		if err := r.db.Model(&models.Play{}).Where("match_id = ?", m.ID).Count(&row.PlaysCount).Error; err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func applyVisibility(qs *gorm.DB, vis Visibility) *gorm.DB {
	if vis.Staff {
		return qs
	}
	if len(vis.Participations) > 0 {
		if vis.Rivals {
			seasons := map[string]bool{}
			for _, p := range vis.Participations {
				if p.Season != "" {
					seasons[strings.ToUpper(p.Season)] = true
				}
			}
			if len(seasons) > 0 {
				keys := make([]string, 0, len(seasons))
				for s := range seasons {
					keys = append(keys, s)
				}
				qs = qs.Where("UPPER(tournaments.season) IN ?", keys)
			}
			for _, p := range vis.Participations {
				name := strings.ToUpper(strings.TrimSpace(p.TeamName))
				qs = qs.Where("NOT (matches.home_team = ? OR matches.away_team = ?)", name, name)
			}
			return qs
		}
		conds := make([]string, 0, len(vis.Participations))
		args := make([]any, 0, 3*len(vis.Participations))
		for _, p := range vis.Participations {
			name := strings.ToUpper(strings.TrimSpace(p.TeamName))
			conds = append(conds,
				"((matches.home_team = ? OR matches.away_team = ?) AND UPPER(IFNULL(tournaments.season, '')) = ?)")
			args = append(args, name, name, strings.ToUpper(p.Season))
		}
		return qs.Where(strings.Join(conds, " OR "), args...)
	}
	if vis.ProfileTeam != "" {
		name := strings.ToUpper(strings.TrimSpace(vis.ProfileTeam))
		if vis.Rivals {
			return qs.Where("NOT (matches.home_team = ? OR matches.away_team = ?)", name, name)
		}
		return qs.Where("matches.home_team = ? OR matches.away_team = ?", name, name)
	}
	return qs
}
