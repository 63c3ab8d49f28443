package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sebas91ts/inmueble-panel-api/pkg/apperr"
)

// respondError maps a core-API error to the panel's distinct error states:
// a feature-gate 403 becomes an upsell prompt, everything else a generic
// retry-capable error. Empty-but-valid results never reach here.
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.FeatureGated:
		var e *apperr.Error
		mensaje := "esta función requiere un plan superior"
		if errors.As(err, &e) {
			mensaje = e.Mensaje
		}
		c.JSON(http.StatusForbidden, gin.H{
			"upgrade_required": true,
			"mensaje":          mensaje,
		})
	case apperr.Upstream, apperr.Decode, apperr.Transport:
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "No se pudo consultar la API core",
			"reintentar": true,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del panel"})
	}
}
