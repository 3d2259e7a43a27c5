package signals

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wonny/alphalab/pkg/redis"
)

// ErrNoTable is returned when no signal table has been generated yet.
var ErrNoTable = errors.New("signals: no table available")

const (
	cacheKey = "signals:latest"
	cacheTTL = 24 * time.Hour
)

// Store keeps the latest signal table in memory, backed by Redis so a
// restarted process serves the last generated table immediately. The
// in-memory copy is authoritative; Redis is a warm cache.
type Store struct {
	mu    sync.RWMutex
	table *Table
	cache *redis.Cache
}

// NewStore creates a signal store backed by the given cache.
func NewStore(cache *redis.Cache) *Store {
	return &Store{cache: cache}
}

// Put replaces the current table and writes it through to Redis.
func (s *Store) Put(ctx context.Context, table *Table) error {
	s.mu.Lock()
	s.table = table
	s.mu.Unlock()

	return s.cache.Set(ctx, cacheKey, table, cacheTTL)
}

// Latest returns the current table, reloading from Redis after a restart.
func (s *Store) Latest(ctx context.Context) (*Table, error) {
	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()
	if table != nil {
		return table, nil
	}

	var cached Table
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoTable
	}

	s.mu.Lock()
	s.table = &cached
	s.mu.Unlock()

	return &cached, nil
}
