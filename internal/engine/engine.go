// Package engine runs parent orders to completion: one pacing controller
// per order, a shared read-only market view, sealed execution records out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"algo_exec/internal/algo"
	"algo_exec/internal/domain"
)

// ErrOrderActive is returned when a parent order already has a running
// controller; an order has at most one at a time.
var ErrOrderActive = errors.New("order already executing")

// RecordSink receives sealed execution records (e.g. a sqlite archive).
type RecordSink interface {
	SaveRecord(ctx context.Context, rec domain.ExecutionRecord) error
}

// Engine is the facade callers submit parent orders to.
type Engine struct {
	view    domain.MarketView
	budget  Budget
	archive RecordSink // optional

	mu      sync.Mutex
	active  map[string]*Handle
	records map[string]domain.ExecutionRecord // last sealed per order
}

// Option configures the engine at construction.
type Option func(*Engine)

// WithBudget sets the per-order iteration/time safety net. The default
// caps iterations only; pass an explicit zero Budget to lift all bounds.
func WithBudget(b Budget) Option {
	return func(e *Engine) { e.budget = b }
}

// WithArchive persists every sealed record to the given sink.
func WithArchive(sink RecordSink) Option {
	return func(e *Engine) { e.archive = sink }
}

// DefaultBudget guards against the planners that can loop forever on a
// market that never trades (participation-rate, liquidity-matching).
var DefaultBudget = Budget{MaxIterations: 100_000}

// New creates an engine over a shared market view.
func New(view domain.MarketView, opts ...Option) *Engine {
	e := &Engine{
		view:    view,
		budget:  DefaultBudget,
		active:  make(map[string]*Handle),
		records: make(map[string]domain.ExecutionRecord),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit validates the order and algorithm parameters, then starts the
// execution task. Parameter errors fail here, synchronously; once the
// task runs, every outcome is a terminal state on the handle.
func (e *Engine) Submit(ctx context.Context, order domain.Order, params algo.Params) (*Handle, error) {
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("invalid order: %w", err)
	}
	if params == nil {
		return nil, fmt.Errorf("algorithm parameters are required")
	}
	if !algo.Supported(params.Algorithm()) {
		return nil, fmt.Errorf("unsupported execution algorithm: %s", params.Algorithm())
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s parameters: %w", params.Algorithm(), err)
	}

	e.mu.Lock()
	if h, ok := e.active[order.ID]; ok && !h.terminal() {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrOrderActive, order.ID)
	}

	ctrl := newController(order, params.Algorithm(), params.NewPlanner(order, e.view), e.view, e.budget)
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{orderID: order.ID, algorithm: params.Algorithm(), ctrl: ctrl, cancel: cancel}
	ctrl.onSealed = func(rec domain.ExecutionRecord) { e.sealed(rec) }
	e.active[order.ID] = h
	e.mu.Unlock()

	slog.Info("order submitted",
		slog.String("order", order.ID),
		slog.String("symbol", order.Symbol),
		slog.String("side", string(order.Side)),
		slog.Int64("qty", order.Quantity),
		slog.String("algorithm", string(params.Algorithm())))

	go ctrl.run(runCtx)
	return h, nil
}

// Record returns the last sealed record for an order ID, if any.
func (e *Engine) Record(orderID string) (domain.ExecutionRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.records[orderID]
	return rec, ok
}

func (e *Engine) sealed(rec domain.ExecutionRecord) {
	e.mu.Lock()
	e.records[rec.OrderID] = rec
	e.mu.Unlock()

	if e.archive != nil {
		// Archival is best-effort; a storage fault must not disturb the
		// already-sealed execution outcome.
		if err := e.archive.SaveRecord(context.Background(), rec); err != nil {
			slog.Error("ARCHIVE_WRITE_FAILED",
				slog.String("order", rec.OrderID), slog.Any("error", err))
		}
	}
}

// Handle tracks one submitted order.
type Handle struct {
	orderID   string
	algorithm algo.Algorithm
	ctrl      *controller
	cancel    context.CancelFunc
}

// OrderID returns the parent order this handle tracks.
func (h *Handle) OrderID() string { return h.orderID }

// Algorithm returns the slicing strategy in use.
func (h *Handle) Algorithm() algo.Algorithm { return h.algorithm }

// Status returns a non-blocking snapshot: the current state and a
// partial (or, once terminal, final) execution record.
func (h *Handle) Status() (domain.ExecState, domain.ExecutionRecord) {
	return h.ctrl.snapshot()
}

// Cancel requests cooperative cancellation. The controller honors it at
// the next suspension point; partial fills remain valid and reported.
// Idempotent: repeated calls have no further effect.
func (h *Handle) Cancel() {
	h.cancel()
}

// Await blocks until the order reaches a terminal state and returns the
// sealed record. The context bounds the wait, not the execution.
func (h *Handle) Await(ctx context.Context) (domain.ExecutionRecord, error) {
	select {
	case <-ctx.Done():
		return domain.ExecutionRecord{}, ctx.Err()
	case <-h.ctrl.done:
	}
	_, rec := h.ctrl.snapshot()
	return rec, nil
}

func (h *Handle) terminal() bool {
	state, _ := h.ctrl.snapshot()
	return state.Terminal()
}
