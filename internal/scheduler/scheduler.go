// Package scheduler debounces, coalesces, and batches geocoding work for the
// delivery dashboard. Bursts of order updates collapse into a single run, and
// within a run lookups are issued in fixed-size chunks so the number of
// simultaneous provider calls stays bounded.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fornelloapp/dispatch/internal/geocache"
	"github.com/fornelloapp/dispatch/internal/geocoding"
	"github.com/fornelloapp/dispatch/internal/metrics"
	"github.com/fornelloapp/dispatch/internal/models"
	"github.com/google/uuid"
)

// Scheduler owns the geocode queue. Orders enqueued on the very first load are
// processed immediately so the map populates promptly; later arrivals are held
// for a debounce period and merged by order id, latest snapshot winning.
type Scheduler struct {
	log          *slog.Logger        // Logger for scheduler activity
	provider     geocoding.Provider  // Geocoding provider for address lookups
	providerName string              // Provider name for metrics labeling
	cache        *geocache.Cache     // Location cache receiving resolved coordinates
	metrics      *metrics.Metrics    // Metrics for tracking pipeline behavior
	debounce     time.Duration       // Quiet period before a queued batch runs
	chunkSize    int                 // Number of concurrent lookups per chunk
	proximity    *models.Coordinates // Proximity hint biasing provider results
	onApplied    func(applied int)   // Re-render signal after cache updates

	mu          sync.Mutex
	pending     map[uuid.UUID]models.Order
	timer       *time.Timer
	initialDone bool
	running     bool
	closed      bool
}

// New creates a Scheduler. The proximity hint may be nil when the business
// location is unknown.
func New(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	cache *geocache.Cache,
	appMetrics *metrics.Metrics,
	debounce time.Duration,
	chunkSize int,
	proximity *models.Coordinates,
) *Scheduler {
	return &Scheduler{
		log:          log,
		provider:     provider,
		providerName: providerName,
		cache:        cache,
		metrics:      appMetrics,
		debounce:     debounce,
		chunkSize:    chunkSize,
		proximity:    proximity,
		pending:      make(map[uuid.UUID]models.Order),
	}
}

// SetOnApplied registers a callback invoked after a chunk merges new
// coordinates into the cache. Must be set before the first Enqueue.
func (s *Scheduler) SetOnApplied(fn func(applied int)) {
	s.onApplied = fn
}

// Enqueue merges orders into the pending set. On the first-ever call the batch
// starts immediately; afterwards the debounce timer is restarted, so bursts
// arriving within the quiet period run as a single batch. The initial-load
// flag flips under the same lock that owns the queue, so two concurrent first
// snapshots cannot both take the immediate path.
func (s *Scheduler) Enqueue(ctx context.Context, orders []models.Order) {
	if len(orders) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	for _, order := range orders {
		if _, exists := s.pending[order.ID]; exists {
			s.metrics.CoalescedOrders.Inc()
		}
		s.pending[order.ID] = order
	}

	if !s.initialDone {
		s.initialDone = true
		s.mu.Unlock()
		go s.flush(ctx)
		return
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.flush(ctx) })
	s.mu.Unlock()
}

// Close tears the scheduler down: the debounce timer is cancelled and any
// in-flight run stops before applying further results.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// flush drains the pending set and runs it as one batch. Only one run may be
// active at a time; if one is already in progress the flush is retried after
// another debounce period instead of overlapping.
func (s *Scheduler) flush(ctx context.Context) {
	s.mu.Lock()
	if s.closed || len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	if s.running {
		s.timer = time.AfterFunc(s.debounce, func() { s.flush(ctx) })
		s.mu.Unlock()
		return
	}

	batch := make([]models.Order, 0, len(s.pending))
	for _, order := range s.pending {
		batch = append(batch, order)
	}
	s.pending = make(map[uuid.UUID]models.Order)
	s.running = true
	s.mu.Unlock()

	s.runBatch(ctx, batch)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// runBatch partitions the batch into chunks processed sequentially, so chunk
// N's results land in the cache before chunk N+1 begins.
func (s *Scheduler) runBatch(ctx context.Context, orders []models.Order) {
	s.metrics.BatchRuns.Inc()
	s.log.DebugContext(ctx, "Starting geocode batch", "orders", len(orders), "chunk_size", s.chunkSize)

	for start := 0; start < len(orders); start += s.chunkSize {
		if s.isClosed() || ctx.Err() != nil {
			s.log.DebugContext(ctx, "Geocode batch interrupted", "processed", start)
			return
		}
		end := min(start+s.chunkSize, len(orders))
		s.processChunk(ctx, orders[start:end])
	}

	s.log.DebugContext(ctx, "Geocode batch finished", "orders", len(orders))
}

// processChunk geocodes every eligible order of the chunk concurrently, waits
// for all lookups, and merges the results into the cache in one transition.
// Individual failures are logged and leave the order without a location; they
// never abort the chunk. Results arriving after teardown are discarded.
func (s *Scheduler) processChunk(ctx context.Context, chunk []models.Order) {
	type lookup struct {
		orderID uuid.UUID
		coords  models.Coordinates
	}

	results := make(chan lookup, len(chunk))
	var wgr sync.WaitGroup

	for _, order := range chunk {
		if !order.IsDeliverable() || !order.HasAddress() {
			continue
		}

		wgr.Add(1)
		go func(order models.Order) {
			defer wgr.Done()

			s.metrics.InflightLookups.Inc()
			defer s.metrics.InflightLookups.Dec()

			query := geocoding.Query{
				Street:     order.Street,
				City:       order.City,
				PostalCode: order.PostalCode,
				Proximity:  s.proximity,
			}

			startTime := time.Now()
			coords, err := s.provider.Geocode(ctx, query)
			s.metrics.RequestSeconds.WithLabelValues(s.providerName).Observe(time.Since(startTime).Seconds())

			if err != nil {
				s.log.ErrorContext(ctx, "Failed to geocode order", "order", order.ID, "error", err)
				s.metrics.OrdersGeocoded.WithLabelValues("failure").Inc()
				s.metrics.ProviderErrors.Inc()
				return
			}

			s.metrics.OrdersGeocoded.WithLabelValues("success").Inc()
			results <- lookup{orderID: order.ID, coords: *coords}
		}(order)
	}

	wgr.Wait()
	close(results)

	if s.isClosed() {
		return
	}

	updates := make(map[uuid.UUID]models.Coordinates, len(chunk))
	for res := range results {
		updates[res.orderID] = res.coords
	}
	if len(updates) == 0 {
		return
	}

	applied := s.cache.SetMany(updates)
	s.metrics.CachedLocations.Set(float64(s.cache.Len()))

	if applied > 0 && s.onApplied != nil {
		s.onApplied(applied)
	}
}

func (s *Scheduler) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
