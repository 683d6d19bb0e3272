package stats

import (
	"sort"
	"strings"

	"github.com/coachdesk/playlog/internal/models"
)

// Set-piece tag predicates. Line-out totals only count the exact tags so
// unrelated LINE-containing plays do not inflate the denominator.
func isLine(jugada string) bool      { return strings.Contains(up(jugada), "LINE") }
func isLineExact(jugada string) bool { u := up(jugada); return u == "LINE" || u == "LINES" }
func isScrum(jugada string) bool     { return strings.Contains(up(jugada), "SCRUM") }
func isScrumExact(jugada string) bool { return up(jugada) == "SCRUMS" }

func winsClean(resultado string) bool { return up(resultado) == "GANA" }
func winsDirty(resultado string) bool { return strings.Contains(up(resultado), "GANA SUCIO") }
func winsAny(resultado string) bool   { return strings.Contains(up(resultado), "GANA") }
func loses(resultado string) bool     { return strings.Contains(up(resultado), "PIERDE") }

// Outcome maps a raw RESULTADO to its display class by ordered prefix, the
// dirty win before the clean one. Unknown results map to "".
func Outcome(resultado string) string {
	u := up(resultado)
	switch {
	case strings.HasPrefix(u, "GANA SUCIO"):
		return "Gana sucio"
	case strings.HasPrefix(u, "GANA"):
		return "Gana"
	case strings.HasPrefix(u, "PIERDE"):
		return "Pierde"
	}
	return ""
}

// Breakdown is an outcome x continuation matrix for one set-piece family.
type Breakdown struct {
	Labels   []string `json:"labels"`
	Outcomes []string `json:"outcomes"`
	Matrix   [][]int  `json:"matrix"`
}

var breakdownOutcomes = []string{"Gana", "Gana sucio", "Pierde"}

// followLabel normalizes the SIGUE CON continuation tag; the "8"/"8VO"
// spelling variants collapse into one label and blanks read "Sin dato".
func followLabel(sigueCon string) string {
	raw := strings.TrimSpace(sigueCon)
	if raw == "" {
		return "Sin dato"
	}
	key := strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(raw, ".", ""), " ", ""))
	if key == "8" || key == "8VO" {
		return "8.vo"
	}
	return raw
}

// BuildBreakdown tallies outcome/continuation pairs for the plays selected by
// match, with continuation labels sorted for a stable matrix.
func BuildBreakdown(plays []models.Play, match func(models.Play) bool) Breakdown {
	counts := map[[2]string]int{}
	labelSet := map[string]bool{}
	for i := range plays {
		if !match(plays[i]) {
			continue
		}
		outcome := Outcome(plays[i].Resultado)
		if outcome == "" {
			continue
		}
		label := followLabel(plays[i].SigueCon)
		labelSet[label] = true
		counts[[2]string{outcome, label}]++
	}
	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	matrix := make([][]int, len(breakdownOutcomes))
	for i, out := range breakdownOutcomes {
		row := make([]int, len(labels))
		for j, l := range labels {
			row[j] = counts[[2]string{out, l}]
		}
		matrix[i] = row
	}
	return Breakdown{Labels: labels, Outcomes: append([]string(nil), breakdownOutcomes...), Matrix: matrix}
}
