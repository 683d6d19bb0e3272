package matches

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/coachdesk/playlog/internal/models"
)

// PlayQuery describes one page of a match's plays: exact filters, a global
// substring search, a sortable column and an offset window.
type PlayQuery struct {
	Equipo     string
	Jugada     string
	ZonaInicio string
	ZonaFin    string
	Search     string
	OrderBy    string
	Descending bool
	Offset     int
	Limit      int
}

var playOrderColumns = map[string]bool{
	"jugada": true, "equipo": true, "inicio": true, "fin": true,
	"zona_inicio": true, "zona_fin": true, "resultado": true, "sancion": true,
}

// PlayPage is one window of plays plus the totals a data-table needs.
type PlayPage struct {
	Plays    []models.Play
	Total    int64
	Filtered int64
}

// Plays returns a filtered, ordered window of a match's plays.
func (r *Repository) Plays(matchID int64, q PlayQuery) (*PlayPage, error) {
	filtered := func() *gorm.DB {
		qs := r.db.Model(&models.Play{}).Where("match_id = ?", matchID)
		for col, val := range map[string]string{
			"equipo": q.Equipo, "jugada": q.Jugada,
			"zona_inicio": q.ZonaInicio, "zona_fin": q.ZonaFin,
		} {
			if val != "" {
				qs = qs.Where(col+" = ?", val)
			}
		}
		if sv := strings.TrimSpace(q.Search); sv != "" {
			like := "%" + strings.ToUpper(sv) + "%"
			qs = qs.Where(
				"UPPER(jugada) LIKE ? OR UPPER(evento) LIKE ? OR UPPER(equipo) LIKE ? OR UPPER(zona_inicio) LIKE ? OR UPPER(zona_fin) LIKE ? OR UPPER(resultado) LIKE ? OR UPPER(sancion) LIKE ?",
				like, like, like, like, like, like, like)
		}
		return qs
	}

	var page PlayPage
	if err := r.db.Model(&models.Play{}).Where("match_id = ?", matchID).Count(&page.Total).Error; err != nil {
		return nil, err
	}
	if err := filtered().Count(&page.Filtered).Error; err != nil {
		return nil, err
	}

	col := q.OrderBy
	if !playOrderColumns[col] {
		col = "inicio"
	}
	order := col
	if q.Descending {
		order += " DESC"
	}
	qs := filtered().Order(order)
	if q.Offset > 0 {
		qs = qs.Offset(q.Offset)
	}
	if q.Limit > 0 {
		qs = qs.Limit(q.Limit)
	}
	if err := qs.Find(&page.Plays).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// ExportFilter selects which plays of a match go into a CSV export. All fields
// optional; IDs, when present, restricts to an explicit selection.
type ExportFilter struct {
	Evento     string
	Equipo     string
	ZonaInicio string
	ZonaFin    string
	Inicia     string
	Jugada     string
	IDs        []int64
}

// ExportPlays returns the selected plays ordered by start time.
func (r *Repository) ExportPlays(matchID int64, f ExportFilter) ([]models.Play, error) {
	qs := r.db.Where("match_id = ?", matchID).Order("inicio")
	for col, val := range map[string]string{
		"evento": f.Evento, "equipo": f.Equipo, "zona_inicio": f.ZonaInicio,
		"zona_fin": f.ZonaFin, "inicia": f.Inicia, "jugada": f.Jugada,
	} {
		if val != "" {
			qs = qs.Where(col+" = ?", val)
		}
	}
	if len(f.IDs) > 0 {
		qs = qs.Where("id IN ?", f.IDs)
	}
	var plays []models.Play
	if err := qs.Find(&plays).Error; err != nil {
		return nil, err
	}
	return plays, nil
}

// ValidPlayIDs returns the subset of ids that belong to the match.
func (r *Repository) ValidPlayIDs(matchID int64, ids []int64) (map[int64]bool, error) {
	if len(ids) == 0 {
		return map[int64]bool{}, nil
	}
	var found []int64
	err := r.db.Model(&models.Play{}).
		Where("match_id = ? AND id IN ?", matchID, ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]bool, len(found))
	for _, id := range found {
		out[id] = true
	}
	return out, nil
}

// FindPlayID matches an exported row back to a stored play by its normalized
// times, narrowing by jugada/equipo when given. Falls back to jugada+inicio
// when the full key has no hit. Returns 0 when nothing matches.
func (r *Repository) FindPlayID(matchID int64, inicio, fin decimal.Decimal, jugada, equipo string) (int64, error) {
	qs := r.db.Model(&models.Play{}).
		Where("match_id = ? AND inicio = ? AND fin = ?", matchID, inicio, fin)
	if jugada != "" {
		qs = qs.Where("jugada = ?", jugada)
	}
	if equipo != "" {
		qs = qs.Where("equipo = ?", equipo)
	}
	var ids []int64
	if err := qs.Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 && jugada != "" {
		err := r.db.Model(&models.Play{}).
			Where("match_id = ? AND jugada = ? AND inicio = ?", matchID, jugada, inicio).
			Limit(1).Pluck("id", &ids).Error
		if err != nil {
			return 0, err
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

// ---- Selection presets ----

func (r *Repository) ListPresets(userID, matchID int64) ([]models.SelectionPreset, error) {
	var out []models.SelectionPreset
	err := r.db.Where("user_id = ? AND match_id = ?", userID, matchID).
		Order("name").Find(&out).Error
	return out, err
}

// SavePreset creates or overwrites the (user, match, name) preset with the
// given ordered play ids.
func (r *Repository) SavePreset(userID, matchID int64, name string, playIDs []int64) (*models.SelectionPreset, error) {
	var preset models.SelectionPreset
	err := r.db.Where("user_id = ? AND match_id = ? AND name = ?", userID, matchID, name).
		First(&preset).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		preset = models.SelectionPreset{
			UserID:  userID,
			MatchID: matchID,
			Name:    name,
			PlayIDs: playIDs,
			Token:   uuid.NewString(),
		}
		if err := r.db.Create(&preset).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		preset.PlayIDs = playIDs
		if err := r.db.Save(&preset).Error; err != nil {
			return nil, err
		}
	}
	return &preset, nil
}

func (r *Repository) GetPreset(matchID, presetID int64) (*models.SelectionPreset, error) {
	var preset models.SelectionPreset
	err := r.db.Where("id = ? AND match_id = ?", presetID, matchID).First(&preset).Error
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

func (r *Repository) DeletePreset(matchID, presetID int64) error {
	return r.db.Where("id = ? AND match_id = ?", presetID, matchID).
		Delete(&models.SelectionPreset{}).Error
}
