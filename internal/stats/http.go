package stats

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/coachdesk/playlog/internal/auth"
)

// RegisterRoutes mounts the dashboard JSON API. Every endpoint accepts the
// shared context parameters: team, season (repeatable), tournament
// (repeatable).
func RegisterRoutes(r *gin.Engine, svc *Service, requireAuth gin.HandlerFunc) {
	api := r.Group("/api/dashboard", requireAuth)
	api.GET("/summary", func(c *gin.Context) {
		scope, ok := scopeFrom(c, svc)
		if !ok {
			return
		}
		data, err := svc.SummaryStats(scope)
		respond(c, data, err)
	})
	api.GET("/recent", func(c *gin.Context) {
		scope, ok := scopeFrom(c, svc)
		if !ok {
			return
		}
		data, err := svc.RecentMatches(scope, queryInt(c, "limit", 5))
		respond(c, data, err)
	})
	api.GET("/plays", func(c *gin.Context) {
		scope, ok := scopeFrom(c, svc)
		if !ok {
			return
		}
		data, err := svc.PlaysDistribution(scope)
		respond(c, data, err)
	})
	api.GET("/trend", func(c *gin.Context) {
		scope, ok := scopeFrom(c, svc)
		if !ok {
			return
		}
		data, err := svc.TrendData(scope, queryInt(c, "n", 10))
		respond(c, data, err)
	})
	api.GET("/zones", func(c *gin.Context) {
		scope, ok := scopeFrom(c, svc)
		if !ok {
			return
		}
		data, err := svc.ZoneHeatmapData(scope)
		respond(c, data, err)
	})
	api.GET("/match", func(c *gin.Context) {
		scope, ok := scopeFrom(c, svc)
		if !ok {
			return
		}
		matchID, err := strconv.ParseInt(c.Query("match_id"), 10, 64)
		if err != nil || matchID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_id required"})
			return
		}
		detail, err := svc.MatchDetailedStats(scope, matchID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		respond(c, detail, err)
	})
	api.GET("/compare", func(c *gin.Context) {
		scope, ok := scopeFrom(c, svc)
		if !ok {
			return
		}
		ids := make([]int64, 0)
		for _, raw := range c.QueryArray("match_id") {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				ids = append(ids, id)
			}
		}
		data, err := svc.CompareMatches(scope, ids)
		respond(c, data, err)
	})
	api.GET("/seasons", func(c *gin.Context) {
		scope, ok := scopeFrom(c, svc)
		if !ok {
			return
		}
		seasons, err := svc.AvailableSeasons(scope)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"seasons": seasons})
	})
	api.GET("/tournaments", func(c *gin.Context) {
		scope, ok := scopeFrom(c, svc)
		if !ok {
			return
		}
		tournaments, err := svc.AvailableTournaments(scope)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tournaments": tournaments})
	})
}

func scopeFrom(c *gin.Context, svc *Service) (Scope, bool) {
	user, _ := auth.CurrentUser(c)
	scope, err := svc.ScopeFor(user, c.Query("team"), c.QueryArray("season"), c.QueryArray("tournament"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats query failed"})
		return Scope{}, false
	}
	return scope, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func respond(c *gin.Context, data any, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats query failed"})
		return
	}
	c.JSON(http.StatusOK, data)
}
