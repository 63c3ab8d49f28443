package service

import (
	"context"
	"sync"
	"time"

	"github.com/Sebas91ts/inmueble-panel-api/model"
	"github.com/Sebas91ts/inmueble-panel-api/pkg/logger"
)

// Refresher keeps per-client contract summaries fresh. Each followed client
// gets an explicit repeating task tied to the refresher's lifetime instead
// of a free-running timer, so shutdown cancels everything and nothing leaks.
//
// Runs for the same client are serialized and numbered; the store discards
// a run's result when a later-initiated run already landed.
type Refresher struct {
	resumenes *ResumenService
	store     *SnapshotStore
	cache     *SnapshotCache // may be nil
	interval  time.Duration

	mu     sync.Mutex
	tareas map[string]*tareaRefresco
	ctx    context.Context
	cancel context.CancelFunc
}

type tareaRefresco struct {
	cancel  context.CancelFunc
	corrida sync.Mutex // serializes runs for one client
	seq     uint64
	seqMu   sync.Mutex
}

func (t *tareaRefresco) siguienteSeq() uint64 {
	t.seqMu.Lock()
	defer t.seqMu.Unlock()
	t.seq++
	return t.seq
}

func NewRefresher(resumenes *ResumenService, store *SnapshotStore, cache *SnapshotCache, interval time.Duration) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		resumenes: resumenes,
		store:     store,
		cache:     cache,
		interval:  interval,
		tareas:    make(map[string]*tareaRefresco),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Resumenes returns the client's summaries, fetching synchronously when no
// snapshot exists or the caller forces a refresh, and starts the periodic
// task for the client if it is not running yet.
func (r *Refresher) Resumenes(ctx context.Context, clienteID string, forzar bool) ([]model.ContratoResumen, error) {
	t := r.seguir(clienteID)

	if !forzar {
		if snap := r.store.Get(clienteID); snap != nil {
			return snap.Resumenes, nil
		}
		if r.cache != nil {
			if resumenes, ok := r.cache.Obtener(ctx, clienteID); ok {
				return resumenes, nil
			}
		}
	}

	return r.refrescar(ctx, clienteID, t)
}

// Olvidar stops the periodic task for a client and drops its snapshot and
// cache entry, e.g. when the requesting user changes. The next read always
// hits the core API fresh.
func (r *Refresher) Olvidar(ctx context.Context, clienteID string) {
	r.mu.Lock()
	t, ok := r.tareas[clienteID]
	if ok {
		delete(r.tareas, clienteID)
	}
	r.mu.Unlock()

	if ok {
		t.cancel()
	}
	r.store.Delete(clienteID)
	if r.cache != nil {
		r.cache.Invalidar(ctx, clienteID)
	}
}

// Close cancels every periodic task and any in-flight refresh.
func (r *Refresher) Close() {
	r.cancel()
	r.mu.Lock()
	for id, t := range r.tareas {
		t.cancel()
		delete(r.tareas, id)
	}
	r.mu.Unlock()
}

// seguir returns the client's task, starting the periodic loop when absent.
func (r *Refresher) seguir(clienteID string) *tareaRefresco {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tareas[clienteID]; ok {
		return t
	}

	tctx, cancel := context.WithCancel(r.ctx)
	t := &tareaRefresco{cancel: cancel}
	r.tareas[clienteID] = t

	go r.bucle(tctx, clienteID, t)
	return t
}

func (r *Refresher) bucle(ctx context.Context, clienteID string, t *tareaRefresco) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.refrescar(ctx, clienteID, t); err != nil {
				logger.Warn(ctx, "refresco periódico fallido",
					"cliente_id", clienteID,
					"error", err,
				)
			}
		}
	}
}

// refrescar runs one numbered refresh for the client. The sequence number
// is taken at initiation time so a slower earlier run can never overwrite
// a faster later one.
func (r *Refresher) refrescar(ctx context.Context, clienteID string, t *tareaRefresco) ([]model.ContratoResumen, error) {
	seq := t.siguienteSeq()

	t.corrida.Lock()
	defer t.corrida.Unlock()

	resumenes, err := r.resumenes.ResumenesCliente(ctx, clienteID)
	if err != nil {
		return nil, err
	}

	aplicado := r.store.SaveIfNewer(&Snapshot{
		ClienteID: clienteID,
		Resumenes: resumenes,
		Seq:       seq,
	})
	if aplicado && r.cache != nil {
		if err := r.cache.Guardar(ctx, clienteID, resumenes); err != nil {
			logger.Warn(ctx, "no se pudo cachear el snapshot",
				"cliente_id", clienteID,
				"error", err,
			)
		}
	}
	return resumenes, nil
}
