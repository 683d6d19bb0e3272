package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Division tags for a match within a club.
const (
	DivisionPrimera = "PRIMERA"
	DivisionReserva = "RESERVA"
	DivisionPreA    = "PRE_A"
	DivisionPreB    = "PRE_B"
)

var DivisionChoices = []string{DivisionPrimera, DivisionReserva, DivisionPreA, DivisionPreB}

var ErrSameTeams = errors.New("home and away team cannot be the same")

// Country catalogues tournament/team origins.
type Country struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	ISOCode string `gorm:"size:3" json:"iso_code"`
}

// Tournament is a competition in a specific season. The (name, country, season)
// triple is unique so the same competition can recur across seasons.
type Tournament struct {
	ID        int64    `gorm:"primaryKey" json:"id"`
	Name      string   `gorm:"size:150;not null;uniqueIndex:uniq_tournament" json:"name"`
	CountryID int64    `gorm:"not null;uniqueIndex:uniq_tournament" json:"country_id"`
	Country   *Country `json:"country,omitempty"`
	Season    string   `gorm:"size:20;index;uniqueIndex:uniq_tournament" json:"season"`
	Level     string   `gorm:"size:100" json:"level"`
	ShortName string   `gorm:"size:50" json:"short_name"`
}

// Match is one fixture between two teams, container for its plays.
type Match struct {
	ID           int64       `gorm:"primaryKey" json:"id"`
	HomeTeam     string      `gorm:"size:100;index;not null;uniqueIndex:uniq_match_teams_date" json:"home_team"`
	AwayTeam     string      `gorm:"size:100;index;not null;uniqueIndex:uniq_match_teams_date" json:"away_team"`
	VideoID      string      `gorm:"size:20;uniqueIndex;not null" json:"video_id"`
	CreatedAt    time.Time   `gorm:"index" json:"created_at"`
	MatchDate    *time.Time  `gorm:"index;uniqueIndex:uniq_match_teams_date" json:"match_date"`
	TournamentID *int64      `json:"tournament_id"`
	Tournament   *Tournament `json:"tournament,omitempty"`
	Division     string      `gorm:"size:20;index" json:"division"`
	Plays        []Play      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeSave normalizes team names to trimmed uppercase so filters and the
// uniqueness constraint behave regardless of input casing.
func (m *Match) BeforeSave(tx *gorm.DB) error {
	m.HomeTeam = strings.ToUpper(strings.TrimSpace(m.HomeTeam))
	m.AwayTeam = strings.ToUpper(strings.TrimSpace(m.AwayTeam))
	if m.HomeTeam != "" && m.HomeTeam == m.AwayTeam {
		return ErrSameTeams
	}
	return nil
}

// Play is one timestamped, tagged event inside a match. Field names follow the
// canonical CSV vocabulary of the analysis sheets; Inicio/Fin are exact
// fixed-point seconds with millisecond precision.
type Play struct {
	ID      int64 `gorm:"primaryKey" json:"id"`
	MatchID int64 `gorm:"index:idx_play_match_inicio;not null" json:"match_id"`

	Jugada        string          `gorm:"size:255;index" json:"jugada"`
	Arbitro       string          `gorm:"size:255" json:"arbitro"`
	CanalDeInicio string          `gorm:"size:100" json:"canal_de_inicio"`
	Evento        string          `gorm:"size:255;index" json:"evento"`
	Equipo        string          `gorm:"size:255;index" json:"equipo"`
	Fin           decimal.Decimal `gorm:"type:numeric(9,3)" json:"fin"`
	Ficha         string          `gorm:"size:100" json:"ficha"`
	Inicia        string          `gorm:"size:100;index" json:"inicia"`
	Inicio        decimal.Decimal `gorm:"type:numeric(9,3);index:idx_play_match_inicio" json:"inicio"`
	MarcadorFinal string          `gorm:"size:50" json:"marcador_final"`
	Termina       string          `gorm:"size:100" json:"termina"`
	Tiempo        string          `gorm:"size:50" json:"tiempo"`
	Torneo        string          `gorm:"size:255" json:"torneo"`
	ZonaFin       string          `gorm:"size:100;index" json:"zona_fin"`
	ZonaInicio    string          `gorm:"size:100;index" json:"zona_inicio"`
	Resultado     string          `gorm:"size:100" json:"resultado"`
	Jugadores     string          `gorm:"size:255" json:"jugadores"`
	SigueCon      string          `gorm:"size:255" json:"sigue_con"`
	PosTiro       string          `gorm:"size:100" json:"pos_tiro"`
	Set           string          `gorm:"size:100;column:set_tag" json:"set"`
	Tiro          string          `gorm:"size:100" json:"tiro"`
	Tipo          string          `gorm:"size:100;index" json:"tipo"`
	Accion        string          `gorm:"size:100;index" json:"accion"`
	TerminaEn     string          `gorm:"size:100;index" json:"termina_en"`
	Sancion       string          `gorm:"size:100;index" json:"sancion"`
	Situacion     string          `gorm:"size:100;index" json:"situacion"`
	Transicion    string          `gorm:"size:100;index" json:"transicion"`
	SituacionPenal string         `gorm:"size:100" json:"situacion_penal"`
	NuevaCategoria string         `gorm:"size:100" json:"nueva_categoria"`
	Acercar       string          `gorm:"size:50" json:"acercar"`
	Alejar        string          `gorm:"size:50" json:"alejar"`
}

// Team catalogues clubs; Alias carries the short form used in overlays and
// participation records.
type Team struct {
	ID    int64  `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Alias string `gorm:"size:50" json:"alias"`
}

// Identifier returns the name used to match this team against play/match text
// fields: the alias when present, the full name otherwise.
func (t Team) Identifier() string {
	if s := strings.TrimSpace(t.Alias); s != "" {
		return s
	}
	return strings.TrimSpace(t.Name)
}

// User roles.
const (
	RoleCoach  = "COACH"
	RolePlayer = "PLAYER"
)

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	Token     string    `gorm:"primaryKey;size:64" json:"-"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile extends a user with a role and an optional primary team.
type Profile struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	UserID int64  `gorm:"uniqueIndex;not null" json:"user_id"`
	TeamID *int64 `json:"team_id"`
	Team   *Team  `json:"team,omitempty"`
	Role   string `gorm:"size:10;default:COACH" json:"role"`
}

// CoachSeasonTeam assigns which team a coach runs in a season; it scopes both
// match-list visibility and the analyzed team of the statistics engine.
type CoachSeasonTeam struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uniq_coach_season_team" json:"user_id"`
	Season    string    `gorm:"size:20;index;not null;uniqueIndex:uniq_coach_season_team" json:"season"`
	TeamID    int64     `gorm:"not null;uniqueIndex:uniq_coach_season_team" json:"team_id"`
	Team      *Team     `json:"team,omitempty"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// SelectionPreset stores a reusable, ordered selection of plays of one match.
type SelectionPreset struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uniq_preset" json:"user_id"`
	MatchID   int64     `gorm:"not null;uniqueIndex:uniq_preset" json:"match_id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:uniq_preset" json:"name"`
	PlayIDs   []int64   `gorm:"serializer:json" json:"play_ids"`
	Token     string    `gorm:"size:36;uniqueIndex" json:"token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All lists every persisted entity for migration.
func All() []any {
	return []any{
		&Country{}, &Tournament{}, &Match{}, &Play{}, &Team{},
		&User{}, &Session{}, &Profile{}, &CoachSeasonTeam{}, &SelectionPreset{},
	}
}
