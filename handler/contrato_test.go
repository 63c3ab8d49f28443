package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sebas91ts/inmueble-panel-api/model"
	"github.com/Sebas91ts/inmueble-panel-api/service"
)

type fakeCore struct {
	contratos    []model.Contrato
	contratosErr error
	pagos        map[int64][]model.Pago
}

func (f *fakeCore) ListContratosCliente(_ context.Context, _ string) ([]model.Contrato, error) {
	return f.contratos, f.contratosErr
}

func (f *fakeCore) ListPagosContrato(_ context.Context, contratoID int64) ([]model.Pago, error) {
	return f.pagos[contratoID], nil
}

func contratoRouter(core service.CoreFetcher) (*gin.Engine, *service.Refresher) {
	refresher := service.NewRefresher(
		service.NewResumenService(core),
		service.NewSnapshotStore(0),
		nil,
		time.Hour,
	)
	h := NewContratoHandler(refresher)

	router := gin.New()
	router.GET("/clientes/:id/contratos", h.ListResumenes)
	router.DELETE("/clientes/:id/seguimiento", h.OlvidarCliente)
	return router, refresher
}

func TestContratoHandlerListResumenes(t *testing.T) {
	core := &fakeCore{
		contratos: []model.Contrato{
			{ID: 1, Estado: model.ContratoActivo, Monto: model.NuevoMonto("1000")},
		},
		pagos: map[int64][]model.Pago{
			1: {{Estado: model.PagoConfirmado, MontoPagado: model.NuevoMonto("1000")}},
		},
	}
	router, refresher := contratoRouter(core)
	defer refresher.Close()

	req := httptest.NewRequest("GET", "/clientes/c1/contratos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Contratos []model.ContratoResumen `json:"contratos"`
		Count     int                     `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Count != 1 {
		t.Fatalf("Expected count 1, got %d", response.Count)
	}
	if !response.Contratos[0].PagoCompleto {
		t.Error("Expected pago_completo true")
	}
	if response.Contratos[0].SaldoRestante.Decimal.String() != "0" {
		t.Errorf("Expected saldo 0, got %s", response.Contratos[0].SaldoRestante.Decimal.String())
	}
}

func TestContratoHandlerSinContratos(t *testing.T) {
	router, refresher := contratoRouter(&fakeCore{contratos: []model.Contrato{}})
	defer refresher.Close()

	req := httptest.NewRequest("GET", "/clientes/c1/contratos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for empty list, got %d", w.Code)
	}
	// Empty, not null: the panel renders an explicit "no data" state.
	var response map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if string(response["contratos"]) == "null" {
		t.Error("Expected [] for contratos, got null")
	}
}

func TestContratoHandlerErrorDeLista(t *testing.T) {
	router, refresher := contratoRouter(&fakeCore{contratosErr: errors.New("core caído")})
	defer refresher.Close()

	req := httptest.NewRequest("GET", "/clientes/c1/contratos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
}

func TestContratoHandlerOlvidar(t *testing.T) {
	router, refresher := contratoRouter(&fakeCore{contratos: []model.Contrato{}})
	defer refresher.Close()

	req := httptest.NewRequest("DELETE", "/clientes/c1/seguimiento", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
