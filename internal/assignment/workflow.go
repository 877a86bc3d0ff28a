// Package assignment carries the driver assignment workflow of the delivery
// dashboard: selecting a driver for an order, mutating the backend, and
// surfacing the outcome as a user-visible notice.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fornelloapp/dispatch/internal/metrics"
	"github.com/fornelloapp/dispatch/internal/models"
	"github.com/google/uuid"
)

// State enumerates the workflow phases. At most one order can be past
// StateIdle at a time; the busy-order id is the single gate serializing
// assignment operations.
type State int

const (
	// StateIdle means no assignment operation is in progress.
	StateIdle State = iota
	// StateSelecting means a driver selection dialog is open for the busy order.
	StateSelecting
	// StateMutating means the backend mutation for the busy order is in flight.
	StateMutating
)

// NoticeKind classifies user-visible notices.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notifier surfaces transient, dismissible notices to the manager.
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// Directory lists staff by role; the driver list is loaded once per session.
type Directory interface {
	ListActiveDrivers(ctx context.Context, role string) ([]models.Driver, error)
}

// Mutator performs the backend assignment mutation. A nil driver id clears
// the assignment.
type Mutator interface {
	UpdateOrderAssignedDriver(ctx context.Context, orderID uuid.UUID, driverID *uuid.UUID) error
}

// Workflow errors.
var (
	// ErrNoDrivers is returned when assignment is requested with an empty
	// driver directory.
	ErrNoDrivers = errors.New("no active delivery drivers available")
	// ErrBusy is returned when another assignment operation is in progress.
	ErrBusy = errors.New("another assignment operation is in progress")
	// ErrNotSelecting is returned when Confirm is called outside a selection.
	ErrNotSelecting = errors.New("no driver selection in progress")
)

// Workflow is the assignment state machine. The order's assignment field is
// never mutated locally; the backend stream re-delivers the updated order.
type Workflow struct {
	log      *slog.Logger
	repo     Mutator
	notifier Notifier
	metrics  *metrics.Metrics

	mu          sync.Mutex
	drivers     []models.Driver
	state       State
	busyOrderID uuid.UUID
}

// NewWorkflow creates a Workflow in the idle state with an empty driver
// directory.
func NewWorkflow(log *slog.Logger, repo Mutator, notifier Notifier, appMetrics *metrics.Metrics) *Workflow {
	return &Workflow{
		log:      log,
		repo:     repo,
		notifier: notifier,
		metrics:  appMetrics,
	}
}

// LoadDrivers fetches the active delivery drivers once at session start. On
// failure the directory stays empty and the workflow degrades to the
// no-drivers path.
func (w *Workflow) LoadDrivers(ctx context.Context, directory Directory) error {
	drivers, err := directory.ListActiveDrivers(ctx, models.RoleDelivery)
	if err != nil {
		w.log.ErrorContext(ctx, "Failed to load delivery drivers", "error", err)
		return fmt.Errorf("failed to load delivery drivers: %w", err)
	}

	w.mu.Lock()
	w.drivers = drivers
	w.mu.Unlock()

	w.log.InfoContext(ctx, "Delivery drivers loaded", "count", len(drivers))
	return nil
}

// Drivers returns a copy of the loaded driver directory.
func (w *Workflow) Drivers() []models.Driver {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.Driver, len(w.drivers))
	copy(out, w.drivers)
	return out
}

// DriverByID looks a driver up in the loaded directory.
func (w *Workflow) DriverByID(driverID uuid.UUID) (models.Driver, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, driver := range w.drivers {
		if driver.ID == driverID {
			return driver, true
		}
	}
	return models.Driver{}, false
}

// Busy returns the order currently holding the gate, if any.
func (w *Workflow) Busy() (uuid.UUID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busyOrderID, w.state != StateIdle
}

// Begin opens a driver selection for the order. With an empty directory it
// surfaces a no-drivers notice and does not enter the selecting state.
func (w *Workflow) Begin(orderID uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.drivers) == 0 {
		w.notifier.Notify(NoticeError, "No delivery drivers available")
		w.metrics.Assignments.WithLabelValues("no_drivers").Inc()
		return ErrNoDrivers
	}
	if w.state != StateIdle {
		return ErrBusy
	}

	w.state = StateSelecting
	w.busyOrderID = orderID
	return nil
}

// Cancel abandons an open driver selection.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateSelecting {
		w.state = StateIdle
		w.busyOrderID = uuid.UUID{}
	}
}

// Confirm commits the selected driver for the busy order. The busy gate is
// cleared on completion regardless of outcome, and the result is surfaced as
// a notice. The local order snapshot is left untouched on failure.
func (w *Workflow) Confirm(ctx context.Context, driverID uuid.UUID) error {
	w.mu.Lock()
	if w.state != StateSelecting {
		w.mu.Unlock()
		return ErrNotSelecting
	}
	orderID := w.busyOrderID
	w.state = StateMutating
	w.mu.Unlock()

	err := w.repo.UpdateOrderAssignedDriver(ctx, orderID, &driverID)
	w.clearBusy()

	if err != nil {
		w.log.ErrorContext(ctx, "Failed to assign driver", "order", orderID, "driver", driverID, "error", err)
		w.metrics.Assignments.WithLabelValues("failure").Inc()
		w.notifier.Notify(NoticeError, "Failed to assign driver")
		return fmt.Errorf("failed to assign driver: %w", err)
	}

	w.log.InfoContext(ctx, "Driver assigned", "order", orderID, "driver", driverID)
	w.metrics.Assignments.WithLabelValues("assigned").Inc()
	w.notifier.Notify(NoticeSuccess, "Driver assigned")
	return nil
}

// Unassign clears the order's assigned driver, holding the busy gate for the
// duration of the mutation.
func (w *Workflow) Unassign(ctx context.Context, orderID uuid.UUID) error {
	w.mu.Lock()
	if w.state != StateIdle {
		w.mu.Unlock()
		return ErrBusy
	}
	w.state = StateMutating
	w.busyOrderID = orderID
	w.mu.Unlock()

	err := w.repo.UpdateOrderAssignedDriver(ctx, orderID, nil)
	w.clearBusy()

	if err != nil {
		w.log.ErrorContext(ctx, "Failed to unassign driver", "order", orderID, "error", err)
		w.metrics.Assignments.WithLabelValues("failure").Inc()
		w.notifier.Notify(NoticeError, "Failed to unassign driver")
		return fmt.Errorf("failed to unassign driver: %w", err)
	}

	w.log.InfoContext(ctx, "Driver unassigned", "order", orderID)
	w.metrics.Assignments.WithLabelValues("unassigned").Inc()
	w.notifier.Notify(NoticeSuccess, "Driver unassigned")
	return nil
}

func (w *Workflow) clearBusy() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateIdle
	w.busyOrderID = uuid.UUID{}
}
