package matches

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/coachdesk/playlog/internal/auth"
	"github.com/coachdesk/playlog/internal/ingest"
	"github.com/coachdesk/playlog/internal/models"
)

var filenameSafe = regexp.MustCompile(`[^A-Za-z0-9_\-]+`)

// RegisterRoutes mounts the match API. requireAuth guards every route;
// requireStaff additionally guards the mutating ones.
func RegisterRoutes(r *gin.Engine, repo *Repository, requireAuth, requireStaff gin.HandlerFunc) {
	api := r.Group("/api", requireAuth)
	{
		api.POST("/matches/upload", requireStaff, func(c *gin.Context) {
			home := strings.TrimSpace(c.PostForm("home_team"))
			away := strings.TrimSpace(c.PostForm("away_team"))
			if home == "" || away == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "home_team and away_team are required"})
				return
			}
			if strings.EqualFold(home, away) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "home and away team cannot be the same"})
				return
			}
			videoID, err := ingest.ParseVideoID(c.PostForm("video_url"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "video URL not recognized"})
				return
			}
			req := ImportRequest{HomeTeam: home, AwayTeam: away, VideoID: videoID}
			if s := strings.TrimSpace(c.PostForm("match_date")); s != "" {
				d, err := time.Parse("2006-01-02", s)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "match_date must be YYYY-MM-DD"})
					return
				}
				req.MatchDate = &d
			}
			if s := strings.TrimSpace(c.PostForm("tournament_id")); s != "" {
				id, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "tournament_id must be an integer"})
					return
				}
				req.TournamentID = &id
			}
			if d := strings.TrimSpace(c.PostForm("division")); d != "" {
				if !slices.Contains(models.DivisionChoices, d) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "unknown division"})
					return
				}
				req.Division = d
			}

			plays, warnings, ok := readPlaysUpload(c)
			if !ok {
				return
			}
			match, created, err := repo.ImportPlays(req, plays)
			if errors.Is(err, ErrDuplicateMatch) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			logrus.WithFields(logrus.Fields{
				"match_id": match.ID,
				"created":  created,
				"plays":    len(plays),
				"rejected": len(warnings),
			}).Info("plays imported")
			status := http.StatusOK
			if created {
				status = http.StatusCreated
			}
			c.JSON(status, gin.H{
				"match_id": match.ID,
				"created":  created,
				"imported": len(plays),
				"warnings": warnings,
			})
		})

		api.POST("/matches/:id/plays", requireStaff, func(c *gin.Context) {
			id, ok := pathID(c, "id")
			if !ok {
				return
			}
			plays, warnings, ok := readPlaysUpload(c)
			if !ok {
				return
			}
			if err := repo.ReplacePlays(id, plays); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			logrus.WithFields(logrus.Fields{
				"match_id": id,
				"plays":    len(plays),
				"rejected": len(warnings),
			}).Info("plays replaced")
			c.JSON(http.StatusOK, gin.H{"match_id": id, "imported": len(plays), "warnings": warnings})
		})

		api.GET("/matches", func(c *gin.Context) {
			user, _ := auth.CurrentUser(c)
			vis, err := visibilityFor(repo, user, c.Query("filter") == "rivals")
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			f := ListFilter{
				Query:    c.Query("q"),
				Division: c.Query("division"),
				Season:   c.Query("season"),
				Sort:     c.DefaultQuery("sort", "-match_date"),
			}
			if s := c.Query("tournament"); s != "" {
				f.TournamentID, _ = strconv.ParseInt(s, 10, 64)
			}
			if s := c.Query("country"); s != "" {
				f.CountryID, _ = strconv.ParseInt(s, 10, 64)
			}
			var bad []string
			f.DateFrom, bad = queryDate(c, "date_from", bad)
			f.DateTo, bad = queryDate(c, "date_to", bad)
			if len(bad) > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid date in %s, use YYYY-MM-DD", strings.Join(bad, ", "))})
				return
			}
			rows, err := repo.List(vis, f)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"matches": rows, "count": len(rows)})
		})

		api.GET("/matches/:id", func(c *gin.Context) {
			id, ok := pathID(c, "id")
			if !ok {
				return
			}
			m, err := repo.Get(id)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
				return
			}
			c.JSON(http.StatusOK, m)
		})

		api.DELETE("/matches/:id", requireStaff, func(c *gin.Context) {
			id, ok := pathID(c, "id")
			if !ok {
				return
			}
			if err := repo.Delete(id); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.Status(http.StatusNoContent)
		})

		api.GET("/matches/:id/plays", func(c *gin.Context) {
			id, ok := pathID(c, "id")
			if !ok {
				return
			}
			q := PlayQuery{
				Equipo:     c.Query("equipo"),
				Jugada:     c.Query("jugada"),
				ZonaInicio: c.Query("zona_inicio"),
				ZonaFin:    c.Query("zona_fin"),
				Search:     c.Query("search"),
				OrderBy:    c.DefaultQuery("order", "inicio"),
				Descending: c.Query("dir") == "desc",
			}
			q.Offset, _ = strconv.Atoi(c.DefaultQuery("start", "0"))
			q.Limit, _ = strconv.Atoi(c.DefaultQuery("length", "10"))
			page, err := repo.Plays(id, q)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			draw, _ := strconv.Atoi(c.Query("draw"))
			data := make([][]any, 0, len(page.Plays))
			for _, p := range page.Plays {
				data = append(data, []any{
					p.ID, ingest.FormatSeconds(p.Inicio), ingest.FormatSeconds(p.Fin),
					p.Evento, p.Equipo, p.Jugada, p.ZonaInicio, p.ZonaFin, p.Resultado, p.Sancion,
				})
			}
			c.JSON(http.StatusOK, gin.H{
				"draw":            draw,
				"recordsTotal":    page.Total,
				"recordsFiltered": page.Filtered,
				"data":            data,
			})
		})

		api.GET("/matches/:id/export.csv", func(c *gin.Context) {
			id, ok := pathID(c, "id")
			if !ok {
				return
			}
			match, err := repo.Get(id)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
				return
			}
			f := ExportFilter{
				Evento:     c.Query("evento"),
				Equipo:     c.Query("equipo"),
				ZonaInicio: c.Query("zona_inicio"),
				ZonaFin:    c.Query("zona_fin"),
				Inicia:     c.Query("inicia"),
				Jugada:     c.Query("jugada"),
				IDs:        parseIDs(c.Query("ids")),
			}
			plays, err := repo.ExportPlays(id, f)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			name := fmt.Sprintf("plays_match_%d", match.ID)
			if len(f.IDs) > 0 {
				name = fmt.Sprintf("%s vs %s_jugadas_destacadas", match.HomeTeam, match.AwayTeam)
			}
			c.Header("Content-Type", "text/csv; charset=utf-8")
			c.Header("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", filenameSafe.ReplaceAllString(name, "_")+".csv"))
			w := csv.NewWriter(c.Writer)
			_ = w.Write(ingest.ExportFields)
			for _, p := range plays {
				_ = w.Write(exportRow(p))
			}
			w.Flush()
			if err := w.Error(); err != nil {
				c.String(http.StatusInternalServerError, err.Error())
			}
		})

		registerPresetRoutes(api, repo)
	}
}

// exportRow renders one play in the canonical column order.
func exportRow(p models.Play) []string {
	return []string{
		p.Jugada, p.Arbitro, p.CanalDeInicio, p.Evento, p.Equipo,
		ingest.FormatSeconds(p.Fin), p.Ficha, p.Inicia, ingest.FormatSeconds(p.Inicio),
		p.MarcadorFinal, p.Termina, p.Tiempo, p.Torneo, p.ZonaFin, p.ZonaInicio,
		p.Resultado, p.Jugadores, p.SigueCon, p.PosTiro, p.Set, p.Tiro, p.Tipo,
		p.Accion, p.Sancion, p.Transicion,
		p.SituacionPenal, p.NuevaCategoria, p.Acercar, p.Alejar, p.Situacion, p.TerminaEn,
	}
}

func visibilityFor(repo *Repository, user *models.User, rivals bool) (Visibility, error) {
	vis := Visibility{Rivals: rivals}
	if user == nil {
		return vis, nil
	}
	if user.IsAdmin {
		vis.Staff = true
		return vis, nil
	}
	parts, err := repo.ParticipationsFor(user.ID)
	if err != nil {
		return vis, err
	}
	vis.Participations = parts
	if len(parts) == 0 {
		team, err := repo.ProfileTeamFor(user.ID)
		if err != nil {
			return vis, err
		}
		vis.ProfileTeam = team
	}
	return vis, nil
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryDate(c *gin.Context, name string, bad []string) (*time.Time, []string) {
	s := strings.TrimSpace(c.Query(name))
	if s == "" {
		return nil, bad
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, append(bad, name)
	}
	return &d, bad
}

func parseIDs(s string) []int64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(s, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil && id > 0 {
			out = append(out, id)
		}
	}
	return out
}
