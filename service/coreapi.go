package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/Sebas91ts/inmueble-panel-api/config"
	"github.com/Sebas91ts/inmueble-panel-api/model"
	"github.com/Sebas91ts/inmueble-panel-api/pkg/apperr"
)

// CoreAPIClient talks to the brokerage core REST API. The token travels
// explicitly with the client; nothing reads ambient credential state.
type CoreAPIClient struct {
	config     *config.CoreAPIConfig
	httpClient *http.Client
}

func NewCoreAPIClient(cfg *config.CoreAPIConfig) *CoreAPIClient {
	return &CoreAPIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// gateMessage is the body shape the core API uses for 403 plan-gate replies.
// Older deployments use "detail", newer ones "mensaje".
type gateMessage struct {
	Mensaje string `json:"mensaje"`
	Detail  string `json:"detail"`
	Error   string `json:"error"`
}

func (g gateMessage) text() string {
	switch {
	case g.Mensaje != "":
		return g.Mensaje
	case g.Detail != "":
		return g.Detail
	case g.Error != "":
		return g.Error
	}
	return "esta función requiere un plan superior"
}

// do performs a request against the core API and classifies failures.
// A 403 becomes a FeatureGated error so callers can show an upsell prompt
// instead of a generic error panel.
func (c *CoreAPIClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, apperr.Wrap(apperr.Decode, "no se pudo serializar la petición", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transport, "no se pudo crear la petición", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transport, "fallo de red hacia la API core", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transport, "no se pudo leer la respuesta", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		var gate gateMessage
		_ = json.Unmarshal(data, &gate)
		return nil, apperr.Gated(gate.text())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := apperr.Wrap(apperr.Upstream, fmt.Sprintf("la API core respondió %d", resp.StatusCode), nil)
		e.Status = resp.StatusCode
		return nil, e
	}

	return data, nil
}

// contratosEnvelope covers the three envelope shapes the core API has used
// for contract lists across versions.
type contratosEnvelope struct {
	Values *struct {
		Contratos []model.Contrato `json:"contratos"`
		Count     int              `json:"count"`
	} `json:"values"`
	Contratos []model.Contrato `json:"contratos"`
}

// ListContratosCliente returns the contracts of a client. An empty list is
// a valid result, distinct from an error fetching the list.
func (c *CoreAPIClient) ListContratosCliente(ctx context.Context, clienteID string) ([]model.Contrato, error) {
	data, err := c.do(ctx, http.MethodGet, "/clientes/"+url.PathEscape(clienteID)+"/contratos", nil)
	if err != nil {
		return nil, err
	}

	// Bare array form first, then the two envelope forms.
	var bare []model.Contrato
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var env contratosEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperr.Wrap(apperr.Decode, "forma de respuesta de contratos no reconocida", err)
	}
	if env.Values != nil {
		return env.Values.Contratos, nil
	}
	if env.Contratos != nil {
		return env.Contratos, nil
	}
	return nil, apperr.New(apperr.Decode, "forma de respuesta de contratos no reconocida")
}

type pagosEnvelope struct {
	Values []model.Pago `json:"values"`
}

// ListPagosContrato returns the payment history of one contract.
func (c *CoreAPIClient) ListPagosContrato(ctx context.Context, contratoID int64) ([]model.Pago, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/contratos/%d/pagos", contratoID), nil)
	if err != nil {
		return nil, err
	}

	var bare []model.Pago
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var env pagosEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperr.Wrap(apperr.Decode, "forma de respuesta de pagos no reconocida", err)
	}
	return env.Values, nil
}

// reporteEnvelope is the optional envelope around report rows. Newer core
// versions tag the result shape explicitly ("lista"/"agrupado"); when
// present that tag overrides the client-side heuristic.
type reporteEnvelope struct {
	Values []model.Fila `json:"values"`
	Forma  string       `json:"forma"`
}

func decodeFilas(data []byte) ([]model.Fila, string, error) {
	var bare []model.Fila
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, "", nil
	}
	var env reporteEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", apperr.Wrap(apperr.Decode, "forma de respuesta de reporte no reconocida", err)
	}
	return env.Values, env.Forma, nil
}

// ConsultaLibre runs a free-form natural-language report query. Returns the
// rows plus the upstream-declared shape tag when the envelope carries one.
func (c *CoreAPIClient) ConsultaLibre(ctx context.Context, consulta string) ([]model.Fila, string, error) {
	body := map[string]string{"consulta": consulta}
	data, err := c.do(ctx, http.MethodPost, "/reportes/consulta-libre", body)
	if err != nil {
		return nil, "", err
	}
	return decodeFilas(data)
}

// ReporteFijo runs a fixed-filter report over a known subject.
func (c *CoreAPIClient) ReporteFijo(ctx context.Context, sujeto string, filtros map[string]string) ([]model.Fila, string, error) {
	q := url.Values{}
	q.Set("sujeto", sujeto)
	for k, v := range filtros {
		q.Set(k, v)
	}
	data, err := c.do(ctx, http.MethodGet, "/reportes?"+q.Encode(), nil)
	if err != nil {
		return nil, "", err
	}
	return decodeFilas(data)
}

// ExportarReporte asks the core API for a report file (pdf/xlsx) and returns
// the blob together with the filename hinted by Content-Disposition.
func (c *CoreAPIClient) ExportarReporte(ctx context.Context, formato, sujeto string, filtros map[string]string) ([]byte, string, error) {
	q := url.Values{}
	q.Set("formato", formato)
	q.Set("sujeto", sujeto)
	for k, v := range filtros {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/reportes/exportar?"+q.Encode(), nil)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Transport, "no se pudo crear la petición", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Transport, "fallo de red hacia la API core", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		data, _ := io.ReadAll(resp.Body)
		var gate gateMessage
		_ = json.Unmarshal(data, &gate)
		return nil, "", apperr.Gated(gate.text())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := apperr.Wrap(apperr.Upstream, fmt.Sprintf("la API core respondió %d", resp.StatusCode), nil)
		e.Status = resp.StatusCode
		return nil, "", e
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Transport, "no se pudo leer el archivo exportado", err)
	}

	filename := "reporte." + formato
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := params["filename"]; name != "" {
				filename = name
			}
		}
	}

	return data, filename, nil
}
