package handler

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Sebas91ts/inmueble-panel-api/middleware"
	"github.com/Sebas91ts/inmueble-panel-api/model"
	"github.com/Sebas91ts/inmueble-panel-api/pkg/logger"
	"github.com/Sebas91ts/inmueble-panel-api/service"
)

type ReporteHandler struct {
	core       *service.CoreAPIClient
	analizador *service.Analizador
	archivo    *service.ArchivoService

	// enVuelo guards exports per agencia+sujeto+formato so a double-click
	// on the export button cannot launch the same job twice.
	enVuelo sync.Map
}

func NewReporteHandler(core *service.CoreAPIClient, analizador *service.Analizador, archivo *service.ArchivoService) *ReporteHandler {
	return &ReporteHandler{
		core:       core,
		analizador: analizador,
		archivo:    archivo,
	}
}

type ConsultaLibreRequest struct {
	Consulta string `json:"consulta" binding:"required"`
	Filtro   string `json:"filtro"`
}

// ConsultaLibre runs a free-form report query and returns everything the
// panel needs to render it: inferred shape, KPI cards, chart projections
// and the (optionally text-filtered) rows.
func (h *ReporteHandler) ConsultaLibre(c *gin.Context) {
	var req ConsultaLibreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Consulta requerida"})
		return
	}

	filas, formaDeclarada, err := h.core.ConsultaLibre(c.Request.Context(), req.Consulta)
	if err != nil {
		respondError(c, err)
		return
	}

	filas = service.FiltrarFilas(filas, req.Filtro)
	forma := h.analizador.Analizar(filas, model.ModoLibre, "", formaDeclarada)
	kpis := h.analizador.ComputeKPIs(filas, forma)
	graficos := h.analizador.ComputeCharts(filas)

	if filas == nil {
		filas = []model.Fila{}
	}
	c.JSON(http.StatusOK, gin.H{
		"forma":    forma,
		"kpis":     kpis,
		"graficos": graficos,
		"filas":    filas,
	})
}

// ReporteFijo runs a fixed-filter report over a known subject. No charts:
// the panel only renders KPI cards and the table in this mode.
func (h *ReporteHandler) ReporteFijo(c *gin.Context) {
	sujeto := c.Query("sujeto")
	if sujeto == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sujeto requerido"})
		return
	}
	filtro := c.Query("filtro")

	filtros := make(map[string]string)
	for k, vs := range c.Request.URL.Query() {
		if k == "sujeto" || k == "filtro" || len(vs) == 0 {
			continue
		}
		filtros[k] = vs[0]
	}

	filas, formaDeclarada, err := h.core.ReporteFijo(c.Request.Context(), sujeto, filtros)
	if err != nil {
		respondError(c, err)
		return
	}

	filas = service.FiltrarFilas(filas, filtro)
	forma := h.analizador.Analizar(filas, model.ModoFijo, sujeto, formaDeclarada)
	kpis := h.analizador.ComputeKPIs(filas, forma)

	if filas == nil {
		filas = []model.Fila{}
	}
	c.JSON(http.StatusOK, gin.H{
		"forma": forma,
		"kpis":  kpis,
		"filas": filas,
	})
}

type ExportarRequest struct {
	Formato string            `json:"formato" binding:"required"`
	Sujeto  string            `json:"sujeto" binding:"required"`
	Filtros map[string]string `json:"filtros"`
}

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"csv":  "text/csv",
}

// Exportar fetches the report file from the core API, archives a copy in
// object storage and returns a presigned download URL. Duplicate in-flight
// exports of the same report are rejected instead of queued.
func (h *ReporteHandler) Exportar(c *gin.Context) {
	agencia := middleware.GetAgencia(c)

	var req ExportarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato y sujeto requeridos"})
		return
	}

	clave := fmt.Sprintf("%s/%s/%s", agencia, req.Sujeto, req.Formato)
	if _, ocupado := h.enVuelo.LoadOrStore(clave, struct{}{}); ocupado {
		c.JSON(http.StatusConflict, gin.H{"error": "Ya hay una exportación de este reporte en curso"})
		return
	}
	defer h.enVuelo.Delete(clave)

	data, filename, err := h.core.ExportarReporte(c.Request.Context(), req.Formato, req.Sujeto, req.Filtros)
	if err != nil {
		respondError(c, err)
		return
	}

	contentType := contentTypes[req.Formato]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	exportID := uuid.New().String()
	objeto, err := h.archivo.GuardarExport(c.Request.Context(), agencia, exportID, filename, contentType, data)
	if err != nil {
		logger.Error(c.Request.Context(), "no se pudo archivar la exportación", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo archivar la exportación"})
		return
	}

	url, err := h.archivo.GetPresignedURL(c.Request.Context(), objeto)
	if err != nil {
		logger.Error(c.Request.Context(), "no se pudo firmar la URL de descarga", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar la URL de descarga"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     exportID,
		"nombre": filename,
		"url":    url,
	})
}

// ListExports returns the agency's archived exports.
func (h *ReporteHandler) ListExports(c *gin.Context) {
	agencia := middleware.GetAgencia(c)

	exports, err := h.archivo.ListarExports(c.Request.Context(), agencia)
	if err != nil {
		logger.Error(c.Request.Context(), "no se pudieron listar las exportaciones", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudieron listar las exportaciones"})
		return
	}
	if exports == nil {
		exports = []service.ExportArchivado{}
	}

	c.JSON(http.StatusOK, gin.H{"exports": exports})
}

// DeleteExport removes one archived export. Objects are namespaced by
// agency, so a caller can only delete under its own prefix.
func (h *ReporteHandler) DeleteExport(c *gin.Context) {
	agencia := middleware.GetAgencia(c)

	objeto := c.Query("objeto")
	if objeto == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Objeto requerido"})
		return
	}
	if !strings.HasPrefix(objeto, agencia+"/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exportación no encontrada"})
		return
	}

	if err := h.archivo.DeleteExport(c.Request.Context(), objeto); err != nil {
		logger.Error(c.Request.Context(), "no se pudo eliminar la exportación",
			"objeto", objeto,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo eliminar la exportación"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Exportación eliminada"})
}
