package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
	"github.com/clinicdesk/health-records/internal/pkg/metrics"
)

const (
	defaultWorkers      = 4
	defaultBuffer       = 256
	defaultDrainTimeout = 5 * time.Second
)

var _ ports.AuditRecorder = (*AuditDispatcher)(nil)

// AuditDispatcher routes audit events to a fixed set of workers using
// consistent hashing on the entity id, so events for one entity are written
// in the order they were recorded.
type AuditDispatcher struct {
	shards       []chan domain.AuditEvent
	repo         ports.AuditRepository
	log          zerolog.Logger
	drainTimeout time.Duration
	wg           sync.WaitGroup
}

// NewAuditDispatcher creates a dispatcher with numWorkers shards of buffer
// slots each. Non-positive values fall back to the defaults.
func NewAuditDispatcher(numWorkers, buffer int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &AuditDispatcher{
		shards:       make([]chan domain.AuditEvent, numWorkers),
		repo:         repo,
		log:          log,
		drainTimeout: defaultDrainTimeout,
	}
	for i := range d.shards {
		d.shards[i] = make(chan domain.AuditEvent, buffer)
	}
	return d
}

// Start launches the workers. When ctx is cancelled each worker writes what
// is already buffered, bounded by the drain timeout, and exits.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.shards {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has exited.
func (d *AuditDispatcher) Wait() {
	d.wg.Wait()
}

// Record hands the event to its shard without blocking. A full shard drops
// the event.
func (d *AuditDispatcher) Record(event domain.AuditEvent) {
	idx := d.shardIndex(event.EntityID)
	select {
	case d.shards[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.shards[idx])))
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("action", string(event.Action)).
			Str("entity_id", event.EntityID).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps an entity id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(entityID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(entityID))
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			if ctx.Err() != nil {
				d.drain(id, ch, event)
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.write(ctx, id, event)
		}
	}
}

// drain writes pending and whatever is still buffered using a fresh context
// bounded by the drain timeout.
func (d *AuditDispatcher) drain(id int, ch <-chan domain.AuditEvent, pending ...domain.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()

	for _, event := range pending {
		d.write(ctx, id, event)
	}

	for {
		select {
		case event := <-ch:
			d.write(ctx, id, event)
		default:
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *AuditDispatcher) write(ctx context.Context, id int, event domain.AuditEvent) {
	start := time.Now()
	err := d.repo.Insert(ctx, &event)
	metrics.AuditWriteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("action", string(event.Action)).
			Str("entity_id", event.EntityID).
			Int("worker_id", id).
			Msg("audit write failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("written").Inc()
}
