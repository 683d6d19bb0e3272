package stats

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/coachdesk/playlog/internal/models"
)

func scored(marcador string, fin int64) models.Play {
	return models.Play{MarcadorFinal: marcador, Fin: decimal.NewFromInt(fin)}
}

func TestParseScoreline_LatestNonEmptyWins(t *testing.T) {
	plays := []models.Play{
		scored("10 - 5", 100),
		scored("", 500),
		scored("13 - 25", 200),
	}
	h, a, ok := ParseScoreline(plays)
	assert.True(t, ok)
	assert.Equal(t, 13, h)
	assert.Equal(t, 25, a)
}

func TestParseScoreline_Formats(t *testing.T) {
	h, a, ok := ParseScoreline([]models.Play{scored("13-25", 1)})
	assert.True(t, ok)
	assert.Equal(t, 13, h)
	assert.Equal(t, 25, a)

	_, _, ok = ParseScoreline(nil)
	assert.False(t, ok)
	_, _, ok = ParseScoreline([]models.Play{scored("13-25-1", 1)})
	assert.False(t, ok)
	_, _, ok = ParseScoreline([]models.Play{scored("13 a 25", 1)})
	assert.False(t, ok)
}

func TestResultFor_Orientation(t *testing.T) {
	plays := []models.Play{scored("13 - 25", 100)}

	home := ResultFor(plays, "LOS TILOS", "SAN LUIS", map[string]bool{"LOS TILOS": true})
	assert.Equal(t, "L", home.Result)
	assert.Equal(t, 13, home.TeamScore)
	assert.Equal(t, 25, home.OppScore)
	assert.True(t, home.IsHome)
	assert.Equal(t, "13 - 25", home.ScoreStr)
	assert.True(t, home.HasScore)

	away := ResultFor(plays, "LOS TILOS", "SAN LUIS", map[string]bool{"SAN LUIS": true})
	assert.Equal(t, "W", away.Result)
	assert.Equal(t, 25, away.TeamScore)
	assert.False(t, away.IsHome)
}

func TestResultFor_NoScoreDefaults(t *testing.T) {
	res := ResultFor(nil, "A", "B", map[string]bool{"A": true})
	assert.Equal(t, "D", res.Result)
	assert.Equal(t, 0, res.TeamScore)
	assert.Equal(t, 0, res.OppScore)
	assert.Equal(t, "-", res.ScoreStr)
	assert.False(t, res.HasScore)
	assert.True(t, res.IsHome)
}

func TestResultFor_Draw(t *testing.T) {
	res := ResultFor([]models.Play{scored("12 - 12", 10)}, "A", "B", map[string]bool{"A": true})
	assert.Equal(t, "D", res.Result)
	assert.True(t, res.HasScore)
}
