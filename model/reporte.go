package model

// Report query modes. Libre runs a free-form natural-language query through
// the core API's AI endpoint; Fijo runs a fixed-filter query over a known
// subject (contratos, pagos, agentes, ...).
const (
	ModoLibre = "libre"
	ModoFijo  = "fijo"
)

// Report result shapes
const (
	FormaLista    = "lista"
	FormaAgrupado = "agrupado"
)

// FormaReporte describes the inferred (or upstream-declared) shape of a
// report result set: whether it is a flat entity list or a grouped
// aggregation, plus which columns drive money, grouping and date rendering.
type FormaReporte struct {
	Tipo             string   `json:"tipo"`
	Columnas         []string `json:"columnas"`
	ColumnaMonto     string   `json:"columna_monto,omitempty"`
	ColumnaAgrupador string   `json:"columna_agrupador,omitempty"`
	ColumnaFecha     string   `json:"columna_fecha,omitempty"`
}

// RangoFechas is the min/max of the parseable dates found in the date column.
type RangoFechas struct {
	Desde string `json:"desde"`
	Hasta string `json:"hasta"`
}

// KPIs are the summary cards rendered above a report table.
type KPIs struct {
	TotalRegistros int          `json:"total_registros"`
	TotalMonto     Monto        `json:"total_monto"`
	Promedio       Monto        `json:"promedio"`
	Fechas         *RangoFechas `json:"fechas,omitempty"`
}

// PuntoGrafico is one slice/bar of a chart projection.
type PuntoGrafico struct {
	Nombre string `json:"nombre"`
	Valor  int    `json:"valor"`
}

// Graficos holds the chart projections computed for free-form reports.
type Graficos struct {
	Torta  []PuntoGrafico `json:"torta"`
	Barras []PuntoGrafico `json:"barras"`
}
