package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Sebas91ts/inmueble-panel-api/config"
	"github.com/Sebas91ts/inmueble-panel-api/model"
)

// Snapshot is the last known summary state for one client's contracts.
type Snapshot struct {
	ClienteID     string                  `json:"cliente_id"`
	Resumenes     []model.ContratoResumen `json:"resumenes"`
	Seq           uint64                  `json:"seq"`
	ActualizadoEn time.Time               `json:"actualizado_en"`
}

// SnapshotStore keeps the latest summary snapshot per client in memory.
// Each write carries the sequence number of the refresh run that produced
// it; stale runs (a slower, earlier-initiated fetch completing after a
// newer one) are discarded so the last initiated refresh always wins.
type SnapshotStore struct {
	snapshots map[string]*Snapshot
	mu        sync.RWMutex
	maxSize   int // maximum clients to keep, 0 = unlimited
}

var (
	globalSnapshots *SnapshotStore
	snapshotsOnce   sync.Once
)

// NewSnapshotStore builds an isolated store; maxSize 0 means unlimited.
func NewSnapshotStore(maxSize int) *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]*Snapshot),
		maxSize:   maxSize,
	}
}

// InitSnapshotStore initializes the global snapshot store with configuration
func InitSnapshotStore(cfg *config.RefrescoConfig) {
	snapshotsOnce.Do(func() {
		maxSize := cfg.MaxSnapshots
		if maxSize < 0 {
			maxSize = 0
		}
		globalSnapshots = &SnapshotStore{
			snapshots: make(map[string]*Snapshot),
			maxSize:   maxSize,
		}
		slog.Info("snapshot store initialized", "max_snapshots", maxSize)
	})
}

// GetSnapshotStore returns the global snapshot store
func GetSnapshotStore() *SnapshotStore {
	if globalSnapshots == nil {
		globalSnapshots = &SnapshotStore{
			snapshots: make(map[string]*Snapshot),
			maxSize:   500,
		}
	}
	return globalSnapshots
}

// SaveIfNewer stores the snapshot unless a newer refresh already landed.
// Returns false when the write was discarded as stale.
func (s *SnapshotStore) SaveIfNewer(snap *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actual, ok := s.snapshots[snap.ClienteID]; ok && actual.Seq >= snap.Seq {
		slog.Debug("discarding stale snapshot",
			"cliente_id", snap.ClienteID,
			"seq", snap.Seq,
			"seq_actual", actual.Seq,
		)
		return false
	}

	snap.ActualizadoEn = time.Now()
	s.snapshots[snap.ClienteID] = snap
	s.cleanupIfNeeded()
	return true
}

func (s *SnapshotStore) Get(clienteID string) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[clienteID]
}

func (s *SnapshotStore) Delete(clienteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, clienteID)
}

// cleanupIfNeeded removes the oldest snapshots if the store exceeds maxSize.
// Must be called with lock held.
func (s *SnapshotStore) cleanupIfNeeded() {
	if s.maxSize <= 0 {
		return
	}
	if len(s.snapshots) <= s.maxSize {
		return
	}

	snaps := make([]*Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].ActualizadoEn.Before(snaps[j].ActualizadoEn)
	})

	removeCount := len(snaps) - s.maxSize
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old snapshot",
			"cliente_id", snaps[i].ClienteID,
			"actualizado_en", snaps[i].ActualizadoEn,
		)
		delete(s.snapshots, snaps[i].ClienteID)
	}
}

// Count returns the number of snapshots in the store
func (s *SnapshotStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
