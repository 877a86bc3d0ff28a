package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fornelloapp/dispatch/internal/models"
)

// OrderLister is the repository surface the stream needs.
type OrderLister interface {
	ListOrdersByDate(ctx context.Context, date time.Time) ([]models.Order, error)
}

// Stream turns the order table into a push-based snapshot feed: it polls on a
// ticker and reissues the full list whenever anything changed. Unchanged polls
// are filtered out with a cheap digest so subscribers are not woken for
// nothing.
type Stream struct {
	repo     OrderLister
	log      *slog.Logger
	interval time.Duration
}

// NewStream creates a Stream polling at the given interval.
func NewStream(repo OrderLister, log *slog.Logger, interval time.Duration) *Stream {
	return &Stream{repo: repo, log: log, interval: interval}
}

// Subscribe starts polling orders for the given service date and returns the
// snapshot channel. The channel is closed when the context is cancelled.
func (s *Stream) Subscribe(ctx context.Context, date time.Time) (<-chan []models.Order, error) {
	snapshots := make(chan []models.Order, 1)
	go s.poll(ctx, date, snapshots)
	return snapshots, nil
}

func (s *Stream) poll(ctx context.Context, date time.Time, out chan<- []models.Order) {
	defer close(out)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var lastDigest string

	deliver := func() {
		orders, err := s.repo.ListOrdersByDate(ctx, date)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to poll orders", "error", err)
			return
		}

		digest := snapshotDigest(orders)
		if digest == lastDigest {
			return
		}
		lastDigest = digest

		select {
		case out <- orders:
		case <-ctx.Done():
		}
	}

	deliver()

	for {
		select {
		case <-ctx.Done():
			s.log.DebugContext(ctx, "Order stream polling stopped")
			return
		case <-ticker.C:
			deliver()
		}
	}
}

// snapshotDigest fingerprints the fields whose changes matter to subscribers.
func snapshotDigest(orders []models.Order) string {
	var b strings.Builder
	for _, order := range orders {
		assigned := ""
		if order.AssignedDriverID != nil {
			assigned = order.AssignedDriverID.String()
		}
		fmt.Fprintf(&b, "%s|%s|%s|%s|%s|%s\n",
			order.ID, order.Status, assigned,
			order.Address(), order.CreatedAt.UTC().Format(time.RFC3339Nano),
			order.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
	}
	return b.String()
}
