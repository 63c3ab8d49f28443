package service

import (
	"context"
	"sync"

	"github.com/Sebas91ts/inmueble-panel-api/model"
	"github.com/Sebas91ts/inmueble-panel-api/pkg/logger"
)

// maxPagosConcurrentes bounds the parallel payment lookups per refresh so a
// client with many contracts does not burst the core API.
const maxPagosConcurrentes = 5

// CoreFetcher is the slice of the core API the summary service needs.
type CoreFetcher interface {
	ListContratosCliente(ctx context.Context, clienteID string) ([]model.Contrato, error)
	ListPagosContrato(ctx context.Context, contratoID int64) ([]model.Pago, error)
}

// ResumenService derives per-contract financial state for a client: amount
// paid, remaining balance and the fully-paid flag that decides whether the
// panel offers a "Pagar" action.
type ResumenService struct {
	core CoreFetcher
}

func NewResumenService(core CoreFetcher) *ResumenService {
	return &ResumenService{core: core}
}

// Resumir computes the derived financial fields for one contract. Only
// confirmed payments count toward monto_pagado; pending, failed and
// under-review payments never do.
func Resumir(c model.Contrato, pagos []model.Pago) model.ContratoResumen {
	if pagos == nil {
		pagos = []model.Pago{}
	}

	pagado := model.Monto{}
	for _, p := range pagos {
		if p.Estado == model.PagoConfirmado {
			pagado.Decimal = pagado.Decimal.Add(p.MontoPagado.Decimal)
		}
	}

	saldo := model.Monto{Decimal: c.Monto.Decimal.Sub(pagado.Decimal)}

	return model.ContratoResumen{
		Contrato:       c,
		HistorialPagos: pagos,
		MontoTotal:     c.Monto,
		MontoPagado:    pagado,
		SaldoRestante:  saldo,
		PagoCompleto:   pagado.Decimal.GreaterThanOrEqual(c.Monto.Decimal),
	}
}

// ResumenesCliente fetches a client's contracts and builds the summary for
// each one. A failure fetching the contract list is fatal; a failure
// fetching one contract's payments is recovered locally so a single bad
// sub-fetch never drops the contract or aborts the batch.
func (s *ResumenService) ResumenesCliente(ctx context.Context, clienteID string) ([]model.ContratoResumen, error) {
	contratos, err := s.core.ListContratosCliente(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	return s.construir(ctx, contratos), nil
}

// construir fetches payment histories concurrently and reassembles the
// results in the original contract order.
func (s *ResumenService) construir(ctx context.Context, contratos []model.Contrato) []model.ContratoResumen {
	resumenes := make([]model.ContratoResumen, len(contratos))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPagosConcurrentes)

	for i := range contratos {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			c := contratos[i]
			pagos, err := s.core.ListPagosContrato(ctx, c.ID)
			if err != nil {
				logger.Warn(ctx, "no se pudo cargar el historial de pagos",
					"contrato_id", c.ID,
					"error", err,
				)
				pagos = nil
			}
			resumenes[i] = Resumir(c, pagos)
		}(i)
	}

	wg.Wait()
	return resumenes
}
