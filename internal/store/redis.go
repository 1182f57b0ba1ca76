package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bondhedge/hedge-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Calculations are immutable, so they are cached on write. Sweep
// lists are invalidated whenever a new sweep is appended.
//
// A sweep-list read that misses before an insert can write its stale
// result after the insert's delete. The key is therefore deleted a second
// time after redeleteDelay, bounding that window well below the TTL.
type CachedStore struct {
	primary       Store
	rdb           redis.Cmdable
	ttl           time.Duration
	redeleteDelay time.Duration
}

// DefaultRedeleteDelay is the gap between the two sweep-list deletes.
const DefaultRedeleteDelay = 500 * time.Millisecond

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb redis.Cmdable, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary:       primary,
		rdb:           rdb,
		ttl:           ttl,
		redeleteDelay: DefaultRedeleteDelay,
	}
}

// --- Write-through ---

func (s *CachedStore) CreateCalculation(ctx context.Context, c *model.Calculation) error {
	if err := s.primary.CreateCalculation(ctx, c); err != nil {
		return err
	}
	s.cacheCalculation(ctx, c)
	return nil
}

func (s *CachedStore) InsertSweep(ctx context.Context, sw *model.Sweep) error {
	if err := s.primary.InsertSweep(ctx, sw); err != nil {
		return err
	}
	// Invalidate; next read re-populates.
	key := sweepsKey(sw.CalculationID)
	s.rdb.Del(ctx, key)
	bg := context.WithoutCancel(ctx)
	time.AfterFunc(s.redeleteDelay, func() { s.rdb.Del(bg, key) })
	return nil
}

// --- Read-through ---

func (s *CachedStore) GetCalculation(ctx context.Context, id string) (*model.Calculation, error) {
	data, err := s.rdb.Get(ctx, calculationKey(id)).Bytes()
	if err == nil {
		var c model.Calculation
		if json.Unmarshal(data, &c) == nil {
			return &c, nil
		}
	}

	// Cache miss: read from primary.
	c, err := s.primary.GetCalculation(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheCalculation(ctx, c)
	return c, nil
}

func (s *CachedStore) GetSweepsByCalculation(ctx context.Context, calculationID string) ([]model.Sweep, error) {
	data, err := s.rdb.Get(ctx, sweepsKey(calculationID)).Bytes()
	if err == nil {
		var sweeps []model.Sweep
		if json.Unmarshal(data, &sweeps) == nil {
			return sweeps, nil
		}
	}

	sweeps, err := s.primary.GetSweepsByCalculation(ctx, calculationID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(sweeps); err == nil {
		s.rdb.Set(ctx, sweepsKey(calculationID), data, s.ttl)
	}
	return sweeps, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListCalculations(ctx context.Context, limit int) ([]model.Calculation, error) {
	return s.primary.ListCalculations(ctx, limit)
}

// --- Cache helpers ---

func (s *CachedStore) cacheCalculation(ctx context.Context, c *model.Calculation) {
	if data, err := json.Marshal(c); err == nil {
		s.rdb.Set(ctx, calculationKey(c.ID), data, s.ttl)
	}
}

func calculationKey(id string) string { return fmt.Sprintf("calculation:%s", id) }

func sweepsKey(calcID string) string { return fmt.Sprintf("sweeps:%s", calcID) }
