package model

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Estados de contrato según la API core
const (
	ContratoPendiente  = "pendiente"
	ContratoActivo     = "activo"
	ContratoFinalizado = "finalizado"
	ContratoCancelado  = "cancelado"
)

// Estados de pago
const (
	PagoConfirmado       = "confirmado"
	PagoPendiente        = "pendiente"
	PagoFallido          = "fallido"
	PagoRequiereRevision = "requiere_revision"
)

// Métodos de pago
const (
	MetodoStripe        = "stripe"
	MetodoTransferencia = "transferencia"
	MetodoQREfectivo    = "qr_efectivo"
)

// Monto is a currency amount. The core API is inconsistent about whether
// amounts arrive as JSON numbers or quoted strings, and some legacy rows
// carry empty or junk values; anything unparsable decodes as zero rather
// than failing the payload.
type Monto struct {
	decimal.Decimal
}

// NuevoMonto parses s as a decimal amount, returning zero on junk input.
func NuevoMonto(s string) Monto {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Monto{}
	}
	return Monto{d}
}

func (m *Monto) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		m.Decimal = decimal.Zero
		return nil
	}
	// Quoted string form: "1234.56"
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			m.Decimal = decimal.Zero
			return nil
		}
		*m = NuevoMonto(s)
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		m.Decimal = decimal.Zero
		return nil
	}
	m.Decimal = d
	return nil
}

func (m Monto) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// Contrato is a lease or anticretic agreement as returned by the core API.
type Contrato struct {
	ID                int64  `json:"id"`
	Estado            string `json:"estado"`
	Monto             Monto  `json:"monto"`
	InmuebleDireccion string `json:"inmueble_direccion"`
	FechaInicio       string `json:"fecha_inicio"`
	FechaFin          string `json:"fecha_fin"`
}

// Pago is one entry of a contract's payment history. Immutable from the
// panel's perspective; only the core API transitions Estado.
type Pago struct {
	ID          int64  `json:"id"`
	Estado      string `json:"estado"`
	MontoPagado Monto  `json:"monto_pagado"`
	FechaPago   string `json:"fecha_pago"`
	Metodo      string `json:"metodo"`
	Comprobante string `json:"comprobante,omitempty"`
}

// ContratoResumen is a contract enriched with derived financial state.
// It is recomputed in full on every refresh and never sent back upstream.
type ContratoResumen struct {
	Contrato
	HistorialPagos []Pago `json:"historial_pagos"`
	MontoTotal     Monto  `json:"monto_total"`
	MontoPagado    Monto  `json:"monto_pagado"`
	SaldoRestante  Monto  `json:"saldo_restante"`
	PagoCompleto   bool   `json:"pago_completo"`
}
