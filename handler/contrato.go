package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sebas91ts/inmueble-panel-api/model"
	"github.com/Sebas91ts/inmueble-panel-api/service"
)

type ContratoHandler struct {
	refresher *service.Refresher
}

func NewContratoHandler(refresher *service.Refresher) *ContratoHandler {
	return &ContratoHandler{refresher: refresher}
}

// ListResumenes returns a client's contracts with their derived financial
// state. The first request starts the periodic refresh for the client;
// ?refresh=1 forces an immediate run instead of serving the snapshot.
func (h *ContratoHandler) ListResumenes(c *gin.Context) {
	clienteID := c.Param("id")
	forzar := c.Query("refresh") == "1"

	resumenes, err := h.refresher.Resumenes(c.Request.Context(), clienteID, forzar)
	if err != nil {
		respondError(c, err)
		return
	}
	if resumenes == nil {
		resumenes = []model.ContratoResumen{}
	}

	c.JSON(http.StatusOK, gin.H{
		"contratos": resumenes,
		"count":     len(resumenes),
	})
}

// OlvidarCliente stops following a client, dropping its snapshot and
// periodic task. The panel calls this when the active user changes.
func (h *ContratoHandler) OlvidarCliente(c *gin.Context) {
	h.refresher.Olvidar(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Seguimiento detenido"})
}
