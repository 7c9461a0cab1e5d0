package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
	"github.com/clinicdesk/health-records/internal/pkg/metrics"
)

const (
	programsKey       = "programs:all"
	generationKey     = "programs:generation"
	defaultProgramTTL = 5 * time.Minute
)

var _ ports.ProgramCache = (*ProgramCache)(nil)

var errStaleFill = errors.New("program cache generation moved")

// ProgramCache keeps the full program listing under a single key.
// Writes to programs invalidate it and bump a generation counter; a fill
// computed under an older generation is discarded. The TTL bounds staleness
// if an invalidation is ever lost.
type ProgramCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProgramCache wraps client. A non-positive ttl falls back to five minutes.
func NewProgramCache(client *redis.Client, ttl time.Duration) *ProgramCache {
	if ttl <= 0 {
		ttl = defaultProgramTTL
	}
	return &ProgramCache{client: client, ttl: ttl}
}

type cachedProgram struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *ProgramCache) Get(ctx context.Context) ([]*domain.Program, bool, error) {
	raw, err := c.client.Get(ctx, programsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ProgramCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.ProgramCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("program cache get: %w", err)
	}

	var entries []cachedProgram
	if err := json.Unmarshal(raw, &entries); err != nil {
		metrics.ProgramCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("program cache decode: %w", err)
	}

	programs := make([]*domain.Program, len(entries))
	for i, e := range entries {
		programs[i] = &domain.Program{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.UpdatedAt,
		}
	}
	metrics.ProgramCacheTotal.WithLabelValues("hit").Inc()
	return programs, true, nil
}

// Generation returns the current invalidation count, zero before the first write.
func (c *ProgramCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.client.Get(ctx, generationKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("program cache generation: %w", err)
	}
	return gen, nil
}

// Set stores programs if the generation still equals gen. The check and the
// write run in one WATCH transaction, so an Invalidate landing in between
// aborts the fill.
func (c *ProgramCache) Set(ctx context.Context, gen uint64, programs []*domain.Program) error {
	entries := make([]cachedProgram, len(programs))
	for i, p := range programs {
		entries[i] = cachedProgram{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("program cache encode: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, programsKey, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		metrics.ProgramCacheTotal.WithLabelValues("stale").Inc()
		return nil
	case err != nil:
		return fmt.Errorf("program cache set: %w", err)
	}
	return nil
}

// Invalidate drops the listing and advances the generation.
func (c *ProgramCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, programsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("program cache invalidate: %w", err)
	}
	return nil
}
