// Package dashboard composes the delivery-assignment pipeline: it receives
// live order snapshots, decides which orders need geocoding, applies the
// manager's filters, and feeds the synchronized list and map views.
package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fornelloapp/dispatch/internal/assignment"
	"github.com/fornelloapp/dispatch/internal/geocache"
	"github.com/fornelloapp/dispatch/internal/models"
	"github.com/fornelloapp/dispatch/internal/scheduler"
	"github.com/fornelloapp/dispatch/internal/signature"
	"github.com/fornelloapp/dispatch/internal/zones"
	"github.com/google/uuid"
)

// StatusFilter selects which orders the list view displays. It never affects
// which orders get geocoded.
type StatusFilter string

const (
	// FilterAll shows every order of the day.
	FilterAll StatusFilter = "all"
	// FilterPending shows open orders without an assigned driver.
	FilterPending StatusFilter = "pending"
	// FilterActive shows open orders with an assigned driver.
	FilterActive StatusFilter = "active"
	// FilterCompleted shows completed orders.
	FilterCompleted StatusFilter = "completed"
)

// OrderStream delivers live order snapshots for a service date; the full list
// is reissued on any change.
type OrderStream interface {
	Subscribe(ctx context.Context, date time.Time) (<-chan []models.Order, error)
}

// ZoneSource lists the current delivery zone geometries.
type ZoneSource interface {
	ListZones(ctx context.Context) ([]models.Zone, error)
}

// OrderCard is one rendered row of the list view, annotated with everything
// the card and its map marker need.
type OrderCard struct {
	Order    models.Order
	Key      int                 // Key is the stable identity handle for scroll addressing.
	Location *models.Coordinates // Location is nil until a geocode succeeds.
	Zone     *models.Zone        // Zone is nil when no delivery zone contains the location.
	Driver   *models.Driver      // Driver is nil while the order is unassigned.
}

// ViewState is the rendered dashboard state handed to the presentation layer.
type ViewState struct {
	Cards      []OrderCard
	Markers    map[uuid.UUID]models.Coordinates
	SelectedID *uuid.UUID
}

// Orchestrator owns the session-scoped pipeline state: the signature tracker,
// the location cache, the geocode queue, filters, and the selection shared
// between list and map. All of it has a single writer, this instance.
type Orchestrator struct {
	log      *slog.Logger
	tracker  *signature.Tracker
	cache    *geocache.Cache
	sched    *scheduler.Scheduler
	workflow *assignment.Workflow
	stream   OrderStream
	source   ZoneSource

	mu         sync.Mutex
	zoneList   []models.Zone
	orders     []models.Order
	keys       map[uuid.UUID]int
	nextKey    int
	search     string
	filter     StatusFilter
	selected   *uuid.UUID
	viewActive bool
	listener   func(ViewState)
}

// New creates an Orchestrator and hooks the scheduler's apply signal so the
// views re-render whenever new coordinates land in the cache.
func New(
	log *slog.Logger,
	cache *geocache.Cache,
	sched *scheduler.Scheduler,
	workflow *assignment.Workflow,
	stream OrderStream,
	source ZoneSource,
) *Orchestrator {
	orch := &Orchestrator{
		log:        log,
		tracker:    signature.NewTracker(),
		cache:      cache,
		sched:      sched,
		workflow:   workflow,
		stream:     stream,
		source:     source,
		keys:       make(map[uuid.UUID]int),
		filter:     FilterAll,
		viewActive: true,
	}
	sched.SetOnApplied(func(int) { orch.publish() })
	return orch
}

// SetListener registers the presentation callback receiving rendered state.
func (o *Orchestrator) SetListener(fn func(ViewState)) {
	o.mu.Lock()
	o.listener = fn
	o.mu.Unlock()
}

// Run subscribes to the order stream for the given service date and processes
// snapshots until the context is cancelled or the stream closes. The zone list
// is loaded once; a load failure degrades to no zone annotations.
func (o *Orchestrator) Run(ctx context.Context, date time.Time) error {
	defer o.sched.Close()

	zoneList, err := o.source.ListZones(ctx)
	if err != nil {
		o.log.ErrorContext(ctx, "Failed to load delivery zones", "error", err)
	} else {
		o.mu.Lock()
		o.zoneList = zoneList
		o.mu.Unlock()
	}

	snapshots, err := o.stream.Subscribe(ctx, date)
	if err != nil {
		return err
	}

	o.log.InfoContext(ctx, "Dashboard orchestrator started", "date", date.Format(time.DateOnly))

	for {
		select {
		case <-ctx.Done():
			o.log.InfoContext(ctx, "Dashboard orchestrator stopped")
			return nil
		case orders, ok := <-snapshots:
			if !ok {
				o.log.InfoContext(ctx, "Order stream closed")
				return nil
			}
			o.processSnapshot(ctx, orders)
		}
	}
}

// processSnapshot runs the pipeline over one order-list snapshot: stable keys,
// signature tracking with cache invalidation, geocode scheduling over the
// search-filtered (but not status-filtered) set, and a view publish.
func (o *Orchestrator) processSnapshot(ctx context.Context, orders []models.Order) {
	o.mu.Lock()
	o.orders = orders
	if !o.viewActive {
		o.mu.Unlock()
		return
	}

	for _, order := range orders {
		if _, ok := o.keys[order.ID]; !ok {
			o.keys[order.ID] = o.nextKey
			o.nextKey++
		}
	}

	searched := o.searchFiltered(orders)

	needGeocode := make([]models.Order, 0, len(searched))
	seed := make(map[uuid.UUID]models.Coordinates)

	for _, order := range searched {
		switch o.tracker.Observe(order) {
		case signature.Changed:
			// Stale location must not persist once the address changed.
			o.cache.Delete(order.ID)
			if order.IsDeliverable() && order.HasAddress() {
				needGeocode = append(needGeocode, order)
			}
		case signature.New:
			if !order.IsDeliverable() {
				continue
			}
			if stored, ok := order.StoredCoordinates(); ok {
				seed[order.ID] = stored
			} else if order.HasAddress() {
				needGeocode = append(needGeocode, order)
			}
		case signature.Unchanged:
			// No geocode request, even if the backend re-reports coordinates.
		}
	}

	if len(seed) > 0 {
		o.cache.SetMany(seed)
	}
	o.mu.Unlock()

	o.sched.Enqueue(ctx, needGeocode)

	o.publish()
}

// SetSearch updates the free-text filter over name, order number, and address.
func (o *Orchestrator) SetSearch(ctx context.Context, query string) {
	o.mu.Lock()
	o.search = strings.TrimSpace(query)
	orders := o.orders
	o.mu.Unlock()

	// Widening the search can reveal orders never geocoded before.
	if orders != nil {
		o.processSnapshot(ctx, orders)
	}
}

// SetStatusFilter updates the display filter. It only changes what is shown.
func (o *Orchestrator) SetStatusFilter(filter StatusFilter) {
	o.mu.Lock()
	o.filter = filter
	o.mu.Unlock()
	o.publish()
}

// SetViewActive toggles the orders view. Snapshots arriving while inactive are
// stored but not processed; reactivation replays the latest one.
func (o *Orchestrator) SetViewActive(ctx context.Context, active bool) {
	o.mu.Lock()
	wasActive := o.viewActive
	o.viewActive = active
	orders := o.orders
	o.mu.Unlock()

	if active && !wasActive && orders != nil {
		o.processSnapshot(ctx, orders)
	}
}

// Select marks an order as selected in both views.
func (o *Orchestrator) Select(orderID uuid.UUID) {
	o.mu.Lock()
	o.selected = &orderID
	o.mu.Unlock()
	o.publish()
}

// ClearSelection removes the shared selection.
func (o *Orchestrator) ClearSelection() {
	o.mu.Lock()
	o.selected = nil
	o.mu.Unlock()
	o.publish()
}

// KeyFor returns the stable identity handle for an order id, used by the
// presentation layer for scroll-to-card addressing.
func (o *Orchestrator) KeyFor(orderID uuid.UUID) (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key, ok := o.keys[orderID]
	return key, ok
}

// publish renders the current state and hands it to the listener. Cards are
// status-filtered; markers cover the whole search-filtered set so the map
// stays complete even for orders hidden by the status filter.
func (o *Orchestrator) publish() {
	o.mu.Lock()

	searched := o.searchFiltered(o.orders)
	markers := make(map[uuid.UUID]models.Coordinates, len(searched))
	cards := make([]OrderCard, 0, len(searched))

	for _, order := range searched {
		location, hasLocation := o.cache.Get(order.ID)
		if hasLocation {
			markers[order.ID] = location
		}

		if !o.statusMatches(order) {
			continue
		}

		card := OrderCard{Order: order, Key: o.keys[order.ID]}
		if hasLocation {
			card.Location = &location
			if zone, ok := zones.Match(location, o.zoneList); ok {
				card.Zone = &zone
			}
		}
		if order.AssignedDriverID != nil {
			if driver, ok := o.workflow.DriverByID(*order.AssignedDriverID); ok {
				card.Driver = &driver
			}
		}
		cards = append(cards, card)
	}

	state := ViewState{Cards: cards, Markers: markers, SelectedID: o.selected}
	listener := o.listener
	o.mu.Unlock()

	if listener != nil {
		listener(state)
	}
}

// searchFiltered applies the free-text filter. Callers hold o.mu.
func (o *Orchestrator) searchFiltered(orders []models.Order) []models.Order {
	if o.search == "" {
		return orders
	}

	query := strings.ToLower(o.search)
	out := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if strings.Contains(strings.ToLower(order.CustomerName), query) ||
			strings.Contains(strings.ToLower(order.Number), query) ||
			strings.Contains(strings.ToLower(order.Address()), query) {
			out = append(out, order)
		}
	}
	return out
}

// statusMatches applies the display status filter. Callers hold o.mu.
func (o *Orchestrator) statusMatches(order models.Order) bool {
	open := order.Status != models.StatusCompleted && order.Status != models.StatusCancelled

	switch o.filter {
	case FilterPending:
		return open && order.AssignedDriverID == nil
	case FilterActive:
		return open && order.AssignedDriverID != nil
	case FilterCompleted:
		return order.Status == models.StatusCompleted
	default:
		return true
	}
}
