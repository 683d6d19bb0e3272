package matches

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coachdesk/playlog/internal/auth"
	"github.com/coachdesk/playlog/internal/ingest"
)

type presetSaveReq struct {
	Name    string  `json:"name"`
	PlayIDs []int64 `json:"play_ids"`
}

func registerPresetRoutes(api *gin.RouterGroup, repo *Repository) {
	api.GET("/matches/:id/presets", func(c *gin.Context) {
		matchID, ok := pathID(c, "id")
		if !ok {
			return
		}
		user, _ := auth.CurrentUser(c)
		presets, err := repo.ListPresets(user.ID, matchID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]gin.H, 0, len(presets))
		for _, p := range presets {
			out = append(out, gin.H{
				"id": p.ID, "name": p.Name,
				"created_at": p.CreatedAt, "updated_at": p.UpdatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"presets": out})
	})

	api.POST("/matches/:id/presets", func(c *gin.Context) {
		matchID, ok := pathID(c, "id")
		if !ok {
			return
		}
		user, _ := auth.CurrentUser(c)
		var req presetSaveReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		valid, err := repo.ValidPlayIDs(matchID, req.PlayIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ids := dedupeIDs(req.PlayIDs, valid)
		if len(ids) != len(uniqueIDs(req.PlayIDs)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "some plays do not belong to this match"})
			return
		}
		preset, err := repo.SavePreset(user.ID, matchID, name, ids)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": preset.ID, "name": preset.Name, "updated_at": preset.UpdatedAt})
	})

	api.GET("/matches/:id/presets/:presetID", func(c *gin.Context) {
		matchID, ok := pathID(c, "id")
		if !ok {
			return
		}
		presetID, ok := pathID(c, "presetID")
		if !ok {
			return
		}
		preset, err := repo.GetPreset(matchID, presetID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "preset not found"})
			return
		}
		user, _ := auth.CurrentUser(c)
		if preset.UserID != user.ID && !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your preset"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": preset.ID, "name": preset.Name, "play_ids": preset.PlayIDs, "token": preset.Token})
	})

	api.DELETE("/matches/:id/presets/:presetID", func(c *gin.Context) {
		matchID, ok := pathID(c, "id")
		if !ok {
			return
		}
		presetID, ok := pathID(c, "presetID")
		if !ok {
			return
		}
		preset, err := repo.GetPreset(matchID, presetID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "preset not found"})
			return
		}
		user, _ := auth.CurrentUser(c)
		if preset.UserID != user.ID && !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your preset"})
			return
		}
		if err := repo.DeletePreset(matchID, presetID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	})

	// Preset from an exported CSV: rows carry either an ID column or the
	// canonical columns, in which case they are matched back by times.
	api.POST("/matches/:id/presets/import", func(c *gin.Context) {
		matchID, ok := pathID(c, "id")
		if !ok {
			return
		}
		user, _ := auth.CurrentUser(c)
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()
		raw, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		text, err := ingest.DecodeText(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		reader, err := ingest.NewReader(text)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		playIDs, err := matchPresetRows(repo, matchID, reader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		valid, err := repo.ValidPlayIDs(matchID, playIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ids := dedupeIDs(playIDs, valid)
		if len(ids) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no rows could be matched to plays of this match"})
			return
		}
		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			name = strings.TrimSuffix(fh.Filename, ".csv")
			if len(name) > 100 {
				name = name[:100]
			}
			if name == "" {
				name = "Preset CSV"
			}
		}
		preset, err := repo.SavePreset(user.ID, matchID, name, ids)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": preset.ID, "name": preset.Name, "matched": len(ids)})
	})
}

// matchPresetRows resolves the play id of every data row: through an explicit
// id column when present, otherwise by normalized start/end times narrowed by
// jugada and equipo.
func matchPresetRows(repo *Repository, matchID int64, src ingest.RowSource) ([]int64, error) {
	fields := src.Fields()
	idCol := -1
	cols := map[string]int{}
	for i, f := range fields {
		key := strings.ToLower(strings.TrimSpace(f))
		cols[key] = i
		if idCol < 0 && (key == "id" || key == "play_id" || key == "playid") {
			idCol = i
		}
	}
	if idCol < 0 {
		if _, ok := cols["inicio"]; !ok {
			return nil, errors.New("file needs an ID column or the canonical INICIO/FIN columns")
		}
		if _, ok := cols["fin"]; !ok {
			return nil, errors.New("file needs an ID column or the canonical INICIO/FIN columns")
		}
	}
	get := func(row []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []int64
	for {
		row, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if idCol >= 0 {
			if idCol < len(row) {
				if id, err := strconv.ParseInt(strings.TrimSpace(row[idCol]), 10, 64); err == nil && id > 0 {
					out = append(out, id)
				}
			}
			continue
		}
		inicio := ingest.ParseSeconds(get(row, "inicio"))
		fin := ingest.ParseSeconds(get(row, "fin"))
		id, err := repo.FindPlayID(matchID, inicio, fin, get(row, "jugada"), get(row, "equipo"))
		if err != nil {
			return nil, err
		}
		if id > 0 {
			out = append(out, id)
		}
	}
	return out, nil
}

// dedupeIDs keeps the first occurrence of each id that passed validation,
// preserving order.
func dedupeIDs(ids []int64, valid map[int64]bool) []int64 {
	seen := map[int64]bool{}
	var out []int64
	for _, id := range ids {
		if valid[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func uniqueIDs(ids []int64) []int64 {
	seen := map[int64]bool{}
	var out []int64
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
