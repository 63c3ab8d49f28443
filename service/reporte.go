package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sebas91ts/inmueble-panel-api/config"
	"github.com/Sebas91ts/inmueble-panel-api/model"
)

// Analizador infers how to render an arbitrary report result set: whether
// it is a flat entity list or a grouped aggregation, and which columns
// carry money, grouping and date information.
//
// Column classification works over field names, not values, and is a known
// approximation (cantidad_dormitorios matches the money patterns). The
// pattern lists come from config so a deployment can override them, and an
// explicit shape tag from the reporting endpoint always wins over the
// heuristic.
type Analizador struct {
	patronesMonto   []string
	fechasPorSujeto map[string]string
}

func NewAnalizador(cfg *config.ReportesConfig) *Analizador {
	patrones := make([]string, len(cfg.PatronesMonto))
	for i, p := range cfg.PatronesMonto {
		patrones[i] = strings.ToLower(p)
	}
	return &Analizador{
		patronesMonto:   patrones,
		fechasPorSujeto: cfg.FechasPorSujeto,
	}
}

// Analizar determines the shape of a result set. formaDeclarada, when the
// upstream envelope tagged the result, overrides the heuristic.
func (a *Analizador) Analizar(filas []model.Fila, modo, sujeto, formaDeclarada string) model.FormaReporte {
	forma := model.FormaReporte{
		Columnas: columnas(filas),
	}

	switch formaDeclarada {
	case model.FormaLista, model.FormaAgrupado:
		forma.Tipo = formaDeclarada
	default:
		forma.Tipo = a.inferirTipo(filas, modo, sujeto)
	}

	forma.ColumnaMonto = a.columnaMonto(forma.Columnas)
	forma.ColumnaFecha = a.columnaFecha(forma.Columnas, sujeto)
	if forma.Tipo == model.FormaAgrupado {
		forma.ColumnaAgrupador = columnaAgrupador(forma.Columnas, forma.ColumnaMonto)
	}
	return forma
}

// inferirTipo guesses grouped vs flat. Free-form results are considered
// aggregated when the first row exposes no id; fixed-filter results are
// aggregated for every subject except agentes and clientes, which the core
// always returns as flat entity lists.
func (a *Analizador) inferirTipo(filas []model.Fila, modo, sujeto string) string {
	if modo == model.ModoFijo {
		if sujeto == "agentes" || sujeto == "clientes" {
			return model.FormaLista
		}
		return model.FormaAgrupado
	}
	if len(filas) == 0 {
		return model.FormaLista
	}
	if filas[0].Tiene("id") {
		return model.FormaLista
	}
	return model.FormaAgrupado
}

// columnas returns the ordered first-seen union of keys across all rows;
// grouped results may carry optional keys on only some rows.
func columnas(filas []model.Fila) []string {
	var cols []string
	visto := make(map[string]bool)
	for _, f := range filas {
		for _, k := range f.Claves() {
			if !visto[k] {
				visto[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

func (a *Analizador) columnaMonto(cols []string) string {
	for _, c := range cols {
		bajo := strings.ToLower(c)
		for _, p := range a.patronesMonto {
			if strings.Contains(bajo, p) {
				return c
			}
		}
	}
	return ""
}

func (a *Analizador) columnaFecha(cols []string, sujeto string) string {
	if esperado, ok := a.fechasPorSujeto[sujeto]; ok {
		for _, c := range cols {
			if strings.Contains(strings.ToLower(c), strings.ToLower(esperado)) {
				return c
			}
		}
	}
	for _, c := range cols {
		if strings.Contains(strings.ToLower(c), "fecha") {
			return c
		}
	}
	return ""
}

func columnaAgrupador(cols []string, columnaMonto string) string {
	for _, c := range cols {
		if c != columnaMonto && c != "id" {
			return c
		}
	}
	return ""
}

// ComputeKPIs derives the summary cards for a result set. Empty input is
// valid: everything degrades to zero or absent, never to an error.
func (a *Analizador) ComputeKPIs(filas []model.Fila, forma model.FormaReporte) model.KPIs {
	kpis := model.KPIs{TotalRegistros: len(filas)}

	if forma.ColumnaMonto != "" {
		total := decimal.Zero
		for _, f := range filas {
			if v, ok := f.Valor(forma.ColumnaMonto); ok {
				if d, ok := numeroDe(v); ok {
					total = total.Add(d)
				}
			}
		}
		kpis.TotalMonto = model.Monto{Decimal: total}
	} else if forma.Tipo == model.FormaLista {
		kpis.TotalMonto = model.Monto{Decimal: decimal.NewFromInt(int64(len(filas)))}
	}

	if kpis.TotalRegistros > 0 && kpis.TotalMonto.Decimal.IsPositive() {
		kpis.Promedio = model.Monto{
			Decimal: kpis.TotalMonto.Decimal.DivRound(decimal.NewFromInt(int64(kpis.TotalRegistros)), 2),
		}
	}

	if forma.ColumnaFecha != "" {
		kpis.Fechas = rangoFechas(filas, forma.ColumnaFecha)
	}
	return kpis
}

// ComputeCharts builds the pie and bar projections. Only free-form reports
// render charts; fixed reports show the table and KPIs alone.
func (a *Analizador) ComputeCharts(filas []model.Fila) model.Graficos {
	return model.Graficos{
		Torta:  contarPor(filas, columnaTorta(filas, a.columnaMonto(columnas(filas)))),
		Barras: top5(contarPor(filas, columnaBarras(filas))),
	}
}

// FiltrarFilas keeps the rows where any field's stringified value contains
// the query, case-insensitive. An empty query keeps everything.
func FiltrarFilas(filas []model.Fila, consulta string) []model.Fila {
	consulta = strings.TrimSpace(strings.ToLower(consulta))
	if consulta == "" {
		return filas
	}
	var out []model.Fila
	for _, f := range filas {
		for _, k := range f.Claves() {
			v, _ := f.Valor(k)
			if strings.Contains(strings.ToLower(fmt.Sprintf("%v", v)), consulta) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// columnaTorta picks the pie dimension: a state-like, agent-like or
// city-like column, else the first string-typed column.
func columnaTorta(filas []model.Fila, columnaMonto string) string {
	cols := columnas(filas)
	for _, frag := range []string{"estado", "agente", "ciudad"} {
		for _, c := range cols {
			if strings.Contains(strings.ToLower(c), frag) {
				return c
			}
		}
	}
	for _, c := range cols {
		if c == "id" || c == columnaMonto {
			continue
		}
		for _, f := range filas {
			if v, ok := f.Valor(c); ok {
				if _, esTexto := v.(string); esTexto {
					return c
				}
				break
			}
		}
	}
	return ""
}

// columnaBarras picks the bar dimension: agent-like, city-like, then
// type/category-like.
func columnaBarras(filas []model.Fila) string {
	cols := columnas(filas)
	for _, frag := range []string{"agente", "ciudad", "tipo", "categoria"} {
		for _, c := range cols {
			if strings.Contains(strings.ToLower(c), frag) {
				return c
			}
		}
	}
	return ""
}

// contarPor counts occurrences per distinct value of col, in first-seen
// order. Empty col yields no points.
func contarPor(filas []model.Fila, col string) []model.PuntoGrafico {
	if col == "" {
		return nil
	}
	var puntos []model.PuntoGrafico
	indice := make(map[string]int)
	for _, f := range filas {
		v, ok := f.Valor(col)
		if !ok || v == nil {
			continue
		}
		nombre := fmt.Sprintf("%v", v)
		if i, visto := indice[nombre]; visto {
			puntos[i].Valor++
			continue
		}
		indice[nombre] = len(puntos)
		puntos = append(puntos, model.PuntoGrafico{Nombre: nombre, Valor: 1})
	}
	return puntos
}

// top5 sorts descending by count and keeps the first five. The sort is
// stable so ties resolve in first-encountered order.
func top5(puntos []model.PuntoGrafico) []model.PuntoGrafico {
	sort.SliceStable(puntos, func(i, j int) bool {
		return puntos[i].Valor > puntos[j].Valor
	})
	if len(puntos) > 5 {
		puntos = puntos[:5]
	}
	return puntos
}

// fechaLayouts are the date formats the core API has been seen emitting.
var fechaLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
}

func parseFecha(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range fechaLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// rangoFechas returns the min/max of the parseable dates in col, or nil
// when no value parses.
func rangoFechas(filas []model.Fila, col string) *model.RangoFechas {
	var desde, hasta time.Time
	alguna := false
	for _, f := range filas {
		v, ok := f.Valor(col)
		if !ok {
			continue
		}
		t, ok := parseFecha(v)
		if !ok {
			continue
		}
		if !alguna || t.Before(desde) {
			desde = t
		}
		if !alguna || t.After(hasta) {
			hasta = t
		}
		alguna = true
	}
	if !alguna {
		return nil
	}
	return &model.RangoFechas{
		Desde: desde.Format("2006-01-02"),
		Hasta: hasta.Format("2006-01-02"),
	}
}

// numeroDe coerces a JSON value to a decimal. Rows decode with UseNumber,
// but values may also arrive as strings or already-typed numbers.
func numeroDe(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	default:
		return decimal.Decimal{}, false
	}
}
