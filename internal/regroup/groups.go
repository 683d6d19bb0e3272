// Package regroup splits raw analysis workbooks, where every tagging category
// lives in its own stacked section, into one sheet per unified category group.
package regroup

import "strings"

// categoryGroups maps the raw section titles of an analysis workbook to the
// unified group each one belongs to. OUR/OPP variants collapse into the same
// group; the side only decides which team name is stamped on the rows.
var categoryGroups = map[string]string{
	"P OUR":              "POSESION",
	"P OPP":              "POSESION",
	"SALIDA OUR":         "SALIDAS",
	"SALIDA OPP":         "SALIDAS",
	"SCRUM OUR":          "SCRUMS",
	"SCRUM OPP":          "SCRUMS",
	"LINE OUR":           "LINE",
	"LINE OPP":           "LINE",
	"MAUL OUR":           "MAULS",
	"MAUL OPP":           "MAULS",
	"JUEGO":              "SECUENCIA",
	"PAUSA":              "OUT",
	"AMARILLA OUR":       "TARJETAS",
	"AMARILLA OPP":       "TARJETAS",
	"ROJA OUR":           "TARJETAS",
	"ROJA OPP":           "TARJETAS",
	"RUCKS GANADOS OPP":  "RUCKS",
	"RUCKS GANADOS OUR":  "RUCKS",
	"RUCKS PERDIDOS OUR": "RUCKS_PERDIDO",
	"RUCKS PERDIDOS OPP": "RUCKS_PERDIDO",
	"PENAL/FK OUR":       "PENALES_FK",
	"PENAL/FK OPP":       "PENALES_FK",
	"DROP OUR":           "DROPS",
	"DROP OPP":           "DROPS",
	"GOAL OUR":           "GOALS",
	"GOAL OPP":           "GOALS",
	"CONV OUR":           "CONVERSIONES",
	"CONV OPP":           "CONVERSIONES",
	"TRY OUR":            "TRIES",
	"TRY OPP":            "TRIES",
	"TRY P. OUR":         "TRIES",
	"TRY P. OPP":         "TRIES",
	"TRY DESDE OUR":      "TRIES_DESDE",
	"TRY DESDE OPP":      "TRIES_DESDE",
	"TO OPP":             "PELOTA_PERDIDA",
	"TO OUR":             "PELOTA_PERDIDA",
	"BREAKLINE OUR":      "BREAKLINE",
	"BREAKLINE OPP":      "BREAKLINE",
	"KICK OUR":           "KICKS",
	"KICK OPP":           "KICKS",
	"KICK MALO OUR":      "KICKS_MALO",
	"KICK MALO OPP":      "KICKS_MALO",
	"GOAL KICK OUR":      "GOAL_ERRADOS",
	"GOAL KICK OPP":      "GOAL_ERRADOS",
	"KILLER INSTINT OUR": "KILLER_INSTINT",
	"KILLER INSTINT OPP": "KILLER_INSTINT",
	"PENAL OUR":          "PENALES_CONCEDIDOS",
	"PENAL OPP":          "PENALES_CONCEDIDOS",
	"CANCHA OUR":         "CANCHA",
	"CANCHA OPP":         "CANCHA",
	"TACKLE OUR":         "TACKLES",
	"TACKLE OPP":         "TACKLES",
	"PASE OUR":           "PASE",
	"PASE OPP":           "PASE",
	"CARRY OUR":          "CARRIES",
	"CARRY OPP":          "CARRIES",
	"OUR (IG a 50)":      "ZONA_DFF",
	"OPP(IG a 50)":       "ZONA_DFF",
	"OPP(50 a IG)":       "ZONA_ATT",
	"OUR(50 a IG)":       "ZONA_ATT",
	"LANZA OUR":          "LANZAMIENTOS",
	"LANZA OPP":          "LANZAMIENTOS",
	"HLG":                "HIGLIGTHS",
	"MEDICO":             "MEDICO",
	"Sustituciones":      "SUSTITUCIONES",
}

// GroupFor resolves the unified group of a raw section title.
func GroupFor(category string) (string, bool) {
	g, ok := categoryGroups[category]
	return g, ok
}

// timedGroups get a computed duration column appended.
var timedGroups = map[string]bool{
	"POSESION": true, "OUT": true, "SECUENCIA": true,
}

var sheetNameReplacer = strings.NewReplacer(
	"/", "_", `\`, "_", "?", "_", "*", "_", "[", "_", "]", "_", ":", "_",
)

// SheetName makes a group name safe as an XLSX sheet title.
func SheetName(name string) string {
	s := sheetNameReplacer.Replace(name)
	if len(s) > 31 {
		s = s[:31]
	}
	return s
}
