package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/coachdesk/playlog/internal/models"
)

// RowWarning reports a data row that was rejected without aborting the import.
// Row numbers are 1-based counting the header as row 1.
type RowWarning struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// BuildPlays turns reconciled rows into Play records. Time fields go through
// ParseSeconds; every other field is trimmed as-is. Rows violating
// end >= start >= 0 are dropped with a warning rather than failing the file.
func BuildPlays(src RowSource, hm HeaderMap) ([]models.Play, []RowWarning, error) {
	idx := columnIndexes(src.Fields(), hm)
	var plays []models.Play
	var warnings []RowWarning
	rowNum := 1
	for {
		row, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", rowNum+1, err)
		}
		rowNum++
		get := func(field string) string {
			i, ok := idx[field]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		inicio := ParseSeconds(get(FieldInicio))
		fin := ParseSeconds(get(FieldFin))
		if inicio.IsNegative() || fin.IsNegative() {
			warnings = append(warnings, RowWarning{Row: rowNum, Reason: "negative time value"})
			continue
		}
		if fin.LessThan(inicio) {
			warnings = append(warnings, RowWarning{
				Row:    rowNum,
				Reason: fmt.Sprintf("end time %s before start time %s", FormatSeconds(fin), FormatSeconds(inicio)),
			})
			continue
		}
		plays = append(plays, models.Play{
			Jugada:         get(FieldJugada),
			Arbitro:        get(FieldArbitro),
			CanalDeInicio:  get(FieldCanalDeInicio),
			Evento:         get(FieldEvento),
			Equipo:         get(FieldEquipo),
			Fin:            fin,
			Ficha:          get(FieldFicha),
			Inicia:         get(FieldInicia),
			Inicio:         inicio,
			MarcadorFinal:  get(FieldMarcadorFinal),
			Termina:        get(FieldTermina),
			Tiempo:         get(FieldTiempo),
			Torneo:         get(FieldTorneo),
			ZonaFin:        get(FieldZonaFin),
			ZonaInicio:     get(FieldZonaInicio),
			Resultado:      get(FieldResultado),
			Jugadores:      get(FieldJugadores),
			SigueCon:       get(FieldSigueCon),
			PosTiro:        get(FieldPosTiro),
			Set:            get(FieldSet),
			Tiro:           get(FieldTiro),
			Tipo:           get(FieldTipo),
			Accion:         get(FieldAccion),
			TerminaEn:      get(FieldTerminaEn),
			Sancion:        get(FieldSancion),
			Situacion:      get(FieldSituacion),
			Transicion:     get(FieldTransicion),
			SituacionPenal: get(FieldSituacionPenal),
			NuevaCategoria: get(FieldNuevaCategoria),
			Acercar:        get(FieldAcercar),
			Alejar:         get(FieldAlejar),
		})
	}
	return plays, warnings, nil
}

// columnIndexes resolves the header map to column positions so each field is a
// single indexed lookup per row.
func columnIndexes(fields []string, hm HeaderMap) map[string]int {
	pos := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, seen := pos[f]; !seen {
			pos[f] = i
		}
	}
	idx := make(map[string]int, len(hm))
	for canon, incoming := range hm {
		if i, ok := pos[incoming]; ok {
			idx[canon] = i
		}
	}
	return idx
}
