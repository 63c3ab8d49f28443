package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sebas91ts/inmueble-panel-api/config"
	"github.com/Sebas91ts/inmueble-panel-api/model"
)

// SnapshotCache is an optional redis layer under the in-memory snapshot
// store, so a panel reload right after a restart does not burst the core
// API. Misses and redis failures are soft: callers fall through to a fresh
// fetch.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache connects to redis from a URL or host:port address.
// Returns nil (cache disabled) when the URL is empty.
func NewSnapshotCache(cfg *config.CacheConfig) (*SnapshotCache, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	var rdb *redis.Client
	if strings.HasPrefix(cfg.RedisURL, "redis://") {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb = redis.NewClient(opt)
	} else {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	}

	return &SnapshotCache{
		rdb: rdb,
		ttl: time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

func claveResumenes(clienteID string) string {
	return "panel:resumenes:" + clienteID
}

// Guardar stores the client's summaries with the configured TTL.
func (c *SnapshotCache) Guardar(ctx context.Context, clienteID string, resumenes []model.ContratoResumen) error {
	data, err := json.Marshal(resumenes)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, claveResumenes(clienteID), data, c.ttl).Err()
}

// Obtener returns the cached summaries and whether the key was present.
func (c *SnapshotCache) Obtener(ctx context.Context, clienteID string) ([]model.ContratoResumen, bool) {
	data, err := c.rdb.Get(ctx, claveResumenes(clienteID)).Bytes()
	if err != nil {
		return nil, false
	}
	var resumenes []model.ContratoResumen
	if err := json.Unmarshal(data, &resumenes); err != nil {
		return nil, false
	}
	return resumenes, true
}

// Invalidar drops the client's cached summaries.
func (c *SnapshotCache) Invalidar(ctx context.Context, clienteID string) {
	c.rdb.Del(ctx, claveResumenes(clienteID))
}

// Close releases the redis connection.
func (c *SnapshotCache) Close() error {
	return c.rdb.Close()
}
