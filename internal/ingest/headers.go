package ingest

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical CSV column names, in the order used for export. These are the
// field labels of the analysis sheets and are preserved verbatim for wire
// compatibility.
const (
	FieldJugada         = "JUGADA"
	FieldArbitro        = "ARBITRO"
	FieldCanalDeInicio  = "CANAL DE INICIO"
	FieldEvento         = "EVENTO"
	FieldEquipo         = "EQUIPO"
	FieldFin            = "FIN"
	FieldFicha          = "FICHA"
	FieldInicia         = "INICIA"
	FieldInicio         = "INICIO"
	FieldMarcadorFinal  = "MARCADOR FINAL"
	FieldTermina        = "TERMINA"
	FieldTiempo         = "TIEMPO"
	FieldTorneo         = "TORNEO"
	FieldZonaFin        = "ZONA FIN"
	FieldZonaInicio     = "ZONA INICIO"
	FieldResultado      = "RESULTADO"
	FieldJugadores      = "JUGADORES"
	FieldSigueCon       = "SIGUE CON"
	FieldPosTiro        = "POS TIRO"
	FieldSet            = "SET"
	FieldTiro           = "TIRO"
	FieldTipo           = "TIPO"
	FieldAccion         = "ACCION"
	FieldSancion        = "SANCION"
	FieldTransicion     = "TRANSICION"
	FieldSituacionPenal = "SITUACION PENAL"
	FieldNuevaCategoria = "NUEVA CATEGORIA"
	FieldAcercar        = "ACERCAR"
	FieldAlejar         = "ALEJAR"
	FieldSituacion      = "SITUACION"
	FieldTerminaEn      = "TERMINA EN"
)

// RequiredFields must all be resolvable in an incoming file or the import is
// rejected as a whole.
var RequiredFields = []string{
	FieldJugada, FieldArbitro, FieldCanalDeInicio, FieldEvento, FieldEquipo,
	FieldFin, FieldFicha, FieldInicia, FieldInicio, FieldMarcadorFinal,
	FieldTermina, FieldTiempo, FieldTorneo, FieldZonaFin, FieldZonaInicio,
	FieldResultado, FieldJugadores, FieldSigueCon, FieldPosTiro, FieldSet,
	FieldTiro, FieldTipo, FieldAccion, FieldSancion, FieldTransicion,
}

// OptionalFields map to empty strings when absent and never fail an import.
var OptionalFields = []string{
	FieldSituacionPenal, FieldNuevaCategoria, FieldAcercar, FieldAlejar,
	FieldSituacion, FieldTerminaEn,
}

// ExportFields is the canonical column order for CSV export.
var ExportFields = append(append([]string{}, RequiredFields...), OptionalFields...)

// fieldSynonyms lists accepted spellings per canonical field. The first
// synonym present in the incoming header wins; fields not listed here accept
// only their own (normalized) name.
var fieldSynonyms = map[string][]string{
	FieldCanalDeInicio:  {FieldCanalDeInicio, "CANAL INICIO"},
	FieldZonaFin:        {FieldZonaFin, "ZONA_FINAL", "ZONA FINAL"},
	FieldZonaInicio:     {FieldZonaInicio, "ZONA_INICIO", "ZONA DE INICIO"},
	FieldSigueCon:       {FieldSigueCon, "SIGUE_CON"},
	FieldPosTiro:        {FieldPosTiro, "POS_TIRO", "POS. TIRO"},
	FieldTerminaEn:      {FieldTerminaEn, "TERMINA_EN"},
	FieldMarcadorFinal:  {FieldMarcadorFinal, "MARCADOR_FINAL"},
	FieldSituacionPenal: {FieldSituacionPenal, "SITUACION_PENAL", "SIT PENAL", "PENAL SITUACION"},
	FieldNuevaCategoria: {FieldNuevaCategoria, "NUEVA_CATEGORIA", "CATEGORIA NUEVA", "CATEGORIA", "NUEVA SUBCATEGORIA", "NUEVA_SUBCATEGORIA", "SUBCATEGORIA NUEVA"},
	FieldAcercar:        {FieldAcercar, "ZOOM IN", "ZOOM_IN"},
	FieldAlejar:         {FieldAlejar, "ZOOM OUT", "ZOOM_OUT"},
}

// HeaderMap maps canonical field name to the column name exactly as it appears
// in the incoming file. Optional fields without a match are absent.
type HeaderMap map[string]string

// HeaderValidationError reports every required canonical column that could not
// be matched against the incoming header.
type HeaderValidationError struct {
	Missing []string
}

func (e *HeaderValidationError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normKey makes header comparison case-, diacritic- and whitespace-insensitive
// and treats underscores as spaces.
func normKey(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// ReconcileHeaders resolves the incoming column names against the canonical
// field set. Unknown incoming columns are ignored; missing optional fields are
// simply absent from the result; missing required fields fail the whole file.
func ReconcileHeaders(fields []string) (HeaderMap, error) {
	if len(fields) == 0 {
		return nil, &HeaderValidationError{Missing: append([]string{}, RequiredFields...)}
	}
	incoming := make(map[string]string, len(fields))
	for _, f := range fields {
		key := normKey(f)
		if _, seen := incoming[key]; !seen {
			incoming[key] = f
		}
	}
	hm := make(HeaderMap, len(ExportFields))
	var missing []string
	for _, canon := range RequiredFields {
		if name, ok := resolve(incoming, canon); ok {
			hm[canon] = name
		} else {
			missing = append(missing, canon)
		}
	}
	for _, canon := range OptionalFields {
		if name, ok := resolve(incoming, canon); ok {
			hm[canon] = name
		}
	}
	if len(missing) > 0 {
		return nil, &HeaderValidationError{Missing: missing}
	}
	return hm, nil
}

func resolve(incoming map[string]string, canon string) (string, bool) {
	candidates, ok := fieldSynonyms[canon]
	if !ok {
		candidates = []string{canon}
	}
	for _, cand := range candidates {
		if name, ok := incoming[normKey(cand)]; ok {
			return name, true
		}
	}
	return "", false
}
