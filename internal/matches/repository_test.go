package matches

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/coachdesk/playlog/internal/db"
	"github.com/coachdesk/playlog/internal/models"
)

func newTestRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := dbpkg.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return NewRepository(db), db
}

func sec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testPlay(jugada, equipo, inicio, fin string) models.Play {
	return models.Play{
		Jugada: jugada,
		Equipo: equipo,
		Inicio: sec(inicio),
		Fin:    sec(fin),
	}
}

func dateAt(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestImportPlays_CreateThenFullReplace(t *testing.T) {
	repo, db := newTestRepo(t)
	req := ImportRequest{
		HomeTeam:  "los tilos",
		AwayTeam:  "San Luis",
		MatchDate: dateAt(2024, 5, 4),
		VideoID:   "dQw4w9WgXcQ",
	}
	first := []models.Play{
		testPlay("P OUR 1", "LOS TILOS", "10.000", "15.000"),
		testPlay("POSESION", "SAN LUIS", "20.000", "32.500"),
		testPlay("SALIDAS", "LOS TILOS", "40.000", "44.000"),
	}
	m, created, err := repo.ImportPlays(req, first)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true on first import")
	}
	if m.HomeTeam != "LOS TILOS" || m.AwayTeam != "SAN LUIS" {
		t.Fatalf("expected uppercased teams, got %q vs %q", m.HomeTeam, m.AwayTeam)
	}

	// same video id again: update in place, previous plays fully replaced
	req.Division = models.DivisionPrimera
	second := []models.Play{
		testPlay("RUCKS_GANADOS", "LOS TILOS", "5.000", "8.000"),
		testPlay("TRIES", "LOS TILOS", "70.250", "75.000"),
	}
	m2, created, err := repo.ImportPlays(req, second)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if created {
		t.Fatalf("expected created=false on re-import")
	}
	if m2.ID != m.ID {
		t.Fatalf("expected same match row, got %d and %d", m.ID, m2.ID)
	}
	if m2.Division != models.DivisionPrimera {
		t.Fatalf("expected division updated, got %q", m2.Division)
	}
	var n int64
	db.Model(&models.Play{}).Where("match_id = ?", m.ID).Count(&n)
	if n != int64(len(second)) {
		t.Fatalf("expected %d plays after replace, got %d", len(second), n)
	}
	var matches int64
	db.Model(&models.Match{}).Count(&matches)
	if matches != 1 {
		t.Fatalf("expected a single match, got %d", matches)
	}
}

func TestImportPlays_DuplicateTeamsAndDate(t *testing.T) {
	repo, db := newTestRepo(t)
	req := ImportRequest{HomeTeam: "A", AwayTeam: "B", MatchDate: dateAt(2024, 6, 1), VideoID: "aaaaaaaaaaa"}
	if _, _, err := repo.ImportPlays(req, []models.Play{testPlay("P OUR 1", "A", "1.000", "2.000")}); err != nil {
		t.Fatalf("first import: %v", err)
	}
	// new video id, same (home, away, date) triple
	dupe := req
	dupe.VideoID = "bbbbbbbbbbb"
	_, _, err := repo.ImportPlays(dupe, []models.Play{testPlay("POSESION", "A", "3.000", "4.000")})
	if !errors.Is(err, ErrDuplicateMatch) {
		t.Fatalf("expected ErrDuplicateMatch, got %v", err)
	}
	var matches, plays int64
	db.Model(&models.Match{}).Count(&matches)
	db.Model(&models.Play{}).Count(&plays)
	if matches != 1 || plays != 1 {
		t.Fatalf("rejected import must not mutate: matches=%d plays=%d", matches, plays)
	}
	// a different date is a different fixture
	other := req
	other.VideoID = "ccccccccccc"
	other.MatchDate = dateAt(2024, 6, 8)
	if _, _, err := repo.ImportPlays(other, nil); err != nil {
		t.Fatalf("different date should import: %v", err)
	}
}

func TestReplacePlays_MissingMatch(t *testing.T) {
	repo, _ := newTestRepo(t)
	err := repo.ReplacePlays(999, []models.Play{testPlay("X", "A", "1.000", "2.000")})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestDelete_RemovesPlays(t *testing.T) {
	repo, db := newTestRepo(t)
	m, _, err := repo.ImportPlays(
		ImportRequest{HomeTeam: "A", AwayTeam: "B", VideoID: "ddddddddddd"},
		[]models.Play{testPlay("P OUR 1", "A", "1.000", "2.000")})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := repo.Delete(m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var plays int64
	db.Model(&models.Play{}).Count(&plays)
	if plays != 0 {
		t.Fatalf("expected orphan plays removed, got %d", plays)
	}
}

func seedPlaysMatch(t *testing.T, repo *Repository) *models.Match {
	t.Helper()
	plays := []models.Play{
		testPlay("P OUR 1", "LOS TILOS", "10.000", "15.000"),
		testPlay("POSESION", "SAN LUIS", "20.000", "32.500"),
		testPlay("SALIDAS", "LOS TILOS", "40.000", "44.000"),
		testPlay("RUCKS_GANADOS", "LOS TILOS", "50.000", "52.000"),
		testPlay("TRIES", "SAN LUIS", "60.000", "66.000"),
	}
	plays[1].ZonaInicio = "ZONA ROJA"
	plays[4].Resultado = "GANA LIMPIO"
	m, _, err := repo.ImportPlays(
		ImportRequest{HomeTeam: "LOS TILOS", AwayTeam: "SAN LUIS", VideoID: "eeeeeeeeeee"}, plays)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return m
}

func TestPlays_FilterSearchOrderPage(t *testing.T) {
	repo, _ := newTestRepo(t)
	m := seedPlaysMatch(t, repo)

	page, err := repo.Plays(m.ID, PlayQuery{Limit: 2, OrderBy: "inicio", Descending: true})
	if err != nil {
		t.Fatalf("plays: %v", err)
	}
	if page.Total != 5 || page.Filtered != 5 {
		t.Fatalf("expected totals 5/5, got %d/%d", page.Total, page.Filtered)
	}
	if len(page.Plays) != 2 || page.Plays[0].Jugada != "TRIES" {
		t.Fatalf("expected TRIES first descending, got %+v", page.Plays)
	}

	page, err = repo.Plays(m.ID, PlayQuery{Equipo: "LOS TILOS", Limit: 10})
	if err != nil {
		t.Fatalf("plays: %v", err)
	}
	if page.Total != 5 || page.Filtered != 3 {
		t.Fatalf("equipo filter: expected 5/3, got %d/%d", page.Total, page.Filtered)
	}

	page, err = repo.Plays(m.ID, PlayQuery{Search: "rucks", Limit: 10})
	if err != nil {
		t.Fatalf("plays: %v", err)
	}
	if page.Filtered != 1 || page.Plays[0].Jugada != "RUCKS_GANADOS" {
		t.Fatalf("search: expected the rucks row, got %+v", page.Plays)
	}

	page, err = repo.Plays(m.ID, PlayQuery{OrderBy: "inicio", Offset: 4, Limit: 2})
	if err != nil {
		t.Fatalf("plays: %v", err)
	}
	if len(page.Plays) != 1 || page.Plays[0].Jugada != "TRIES" {
		t.Fatalf("offset window: expected last row only, got %+v", page.Plays)
	}
}

func TestExportPlays_SelectionAndOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	m := seedPlaysMatch(t, repo)

	all, err := repo.ExportPlays(m.ID, ExportFilter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(all) != 5 || !all[0].Inicio.Equal(sec("10.000")) {
		t.Fatalf("expected 5 rows ordered by inicio, got %d", len(all))
	}

	byTeam, err := repo.ExportPlays(m.ID, ExportFilter{Equipo: "SAN LUIS"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(byTeam) != 2 {
		t.Fatalf("expected 2 SAN LUIS rows, got %d", len(byTeam))
	}

	ids := []int64{all[4].ID, all[0].ID}
	sel, err := repo.ExportPlays(m.ID, ExportFilter{IDs: ids})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(sel) != 2 || !sel[0].Inicio.Equal(sec("10.000")) {
		t.Fatalf("id selection should keep inicio order, got %+v", sel)
	}
}

func TestFindPlayID_Fallback(t *testing.T) {
	repo, _ := newTestRepo(t)
	m := seedPlaysMatch(t, repo)

	id, err := repo.FindPlayID(m.ID, sec("20.000"), sec("32.500"), "POSESION", "SAN LUIS")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected exact match")
	}
	// fin does not match: fall back to jugada+inicio
	fb, err := repo.FindPlayID(m.ID, sec("20.000"), sec("99.000"), "POSESION", "")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if fb != id {
		t.Fatalf("expected fallback to hit the same row, got %d and %d", id, fb)
	}
	none, err := repo.FindPlayID(m.ID, sec("1.000"), sec("2.000"), "NOPE", "")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if none != 0 {
		t.Fatalf("expected 0 for no match, got %d", none)
	}
}

func TestPresets_SaveOverwriteDelete(t *testing.T) {
	repo, db := newTestRepo(t)
	m := seedPlaysMatch(t, repo)
	user := models.User{Email: "coach@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	all, _ := repo.ExportPlays(m.ID, ExportFilter{})

	p, err := repo.SavePreset(user.ID, m.ID, "Highlights", []int64{all[0].ID, all[1].ID})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if p.Token == "" {
		t.Fatalf("expected a share token")
	}
	// same name overwrites the selection
	p2, err := repo.SavePreset(user.ID, m.ID, "Highlights", []int64{all[2].ID})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if p2.ID != p.ID || len(p2.PlayIDs) != 1 {
		t.Fatalf("expected in-place overwrite, got %+v", p2)
	}
	list, err := repo.ListPresets(user.ID, m.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(list))
	}
	if err := repo.DeletePreset(m.ID, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetPreset(m.ID, p.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestList_VisibilityAndFilters(t *testing.T) {
	repo, db := newTestRepo(t)
	country := models.Country{Name: "Argentina", ISOCode: "AR"}
	if err := db.Create(&country).Error; err != nil {
		t.Fatalf("country: %v", err)
	}
	urba := models.Tournament{Name: "URBA Top 12", CountryID: country.ID, Season: "2024"}
	if err := db.Create(&urba).Error; err != nil {
		t.Fatalf("tournament: %v", err)
	}
	seed := []ImportRequest{
		{HomeTeam: "LOS TILOS", AwayTeam: "SAN LUIS", MatchDate: dateAt(2024, 5, 4), VideoID: "v0000000001", TournamentID: &urba.ID},
		{HomeTeam: "CASI", AwayTeam: "SIC", MatchDate: dateAt(2024, 5, 11), VideoID: "v0000000002", TournamentID: &urba.ID},
		{HomeTeam: "LOS TILOS", AwayTeam: "CASI", MatchDate: dateAt(2024, 5, 18), VideoID: "v0000000003"},
	}
	for _, req := range seed {
		if _, _, err := repo.ImportPlays(req, nil); err != nil {
			t.Fatalf("seed %s: %v", req.VideoID, err)
		}
	}

	staff := Visibility{Staff: true}
	rows, err := repo.List(staff, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("staff sees all: expected 3, got %d", len(rows))
	}
	if rows[0].VideoID != "v0000000003" {
		t.Fatalf("default order is newest first, got %s", rows[0].VideoID)
	}

	rows, err = repo.List(staff, ListFilter{Query: "tilos"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("query filter: expected 2, got %d", len(rows))
	}

	rows, err = repo.List(staff, ListFilter{Season: "2024"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("season filter: expected 2, got %d", len(rows))
	}

	coach := Visibility{Participations: []Participation{{TeamName: "LOS TILOS", Season: "2024"}}}
	rows, err = repo.List(coach, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].VideoID != "v0000000001" {
		t.Fatalf("participation scopes to the team's season matches, got %+v", rows)
	}

	profile := Visibility{ProfileTeam: "CASI"}
	rows, err = repo.List(profile, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("profile team: expected 2, got %d", len(rows))
	}
}
