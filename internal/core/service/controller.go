package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
)

type ControllerOpt func(*controllerOpts) error

type controllerOpts struct {
	stats    port.StatsFetcher
	metrics  port.ListMetrics
	debounce time.Duration
	clock    Clock
	maxLimit int
}

func StatsOpt(f port.StatsFetcher) ControllerOpt {
	return func(o *controllerOpts) error {
		if f == nil {
			return errors.New("stats fetcher is nil")
		}
		o.stats = f
		return nil
	}
}

func MetricsOpt(m port.ListMetrics) ControllerOpt {
	return func(o *controllerOpts) error {
		if m == nil {
			return errors.New("list metrics is nil")
		}
		o.metrics = m
		return nil
	}
}

func DebounceOpt(d time.Duration) ControllerOpt {
	return func(o *controllerOpts) error {
		if d <= 0 {
			return fmt.Errorf("invalid debounce %s", d)
		}
		o.debounce = d
		return nil
	}
}

func ClockOpt(c Clock) ControllerOpt {
	return func(o *controllerOpts) error {
		if c == nil {
			return errors.New("clock is nil")
		}
		o.clock = c
		return nil
	}
}

func MaxLimitOpt(n int) ControllerOpt {
	return func(o *controllerOpts) error {
		if n < 1 || n > domain.MaxLimit {
			return fmt.Errorf("max limit out of range [1, %d]: %d", domain.MaxLimit, n)
		}
		o.maxLimit = n
		return nil
	}
}

// Controller turns filter and pagination events into list fetches for
// one store.
//
// Every fetch takes a sequence token. A response is applied only while
// its token is the latest issued one; older responses are dropped.
type Controller[T domain.Entity] struct {
	baseCtx   context.Context
	store     *Store[T]
	lister    port.ResourceLister[T]
	stats     port.StatsFetcher
	metrics   port.ListMetrics
	debouncer *Debouncer
	maxLimit  int

	mu            sync.Mutex
	query         domain.Query
	pendingSearch *string

	seq      atomic.Uint64
	statsSeq atomic.Uint64
}

// NewController binds the controller to store. Debounced searches are
// issued with ctx.
func NewController[T domain.Entity](
	ctx context.Context,
	store *Store[T],
	lister port.ResourceLister[T],
	opts ...ControllerOpt,
) (*Controller[T], error) {
	const op = "NewController"

	if store == nil || lister == nil {
		return nil, fmt.Errorf("%s: store and lister are required", op)
	}

	options := controllerOpts{
		metrics:  noopMetrics{},
		debounce: DefaultDebounce,
		clock:    realClock{},
		maxLimit: domain.MaxLimit,
	}
	for _, o := range opts {
		if err := o(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	q := store.Query()
	q.Page = domain.ClampPage(q.Page)
	q.Limit = domain.ClampLimit(q.Limit, options.maxLimit)
	store.SetQuery(q)

	return &Controller[T]{
		baseCtx:   ctx,
		store:     store,
		lister:    lister,
		stats:     options.stats,
		metrics:   options.metrics,
		debouncer: NewDebouncer(options.debounce, options.clock),
		maxLimit:  options.maxLimit,
		query:     q,
	}, nil
}

func (c *Controller[T]) Store() *Store[T] {
	return c.store
}

// Load fetches the current query and the stats side by side.
func (c *Controller[T]) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.Refresh(ctx)
	}()
	go func() {
		defer wg.Done()
		c.RefreshStats(ctx)
	}()
	wg.Wait()
}

// SetFilter applies patch. A changed filter resets the page.
func (c *Controller[T]) SetFilter(ctx context.Context, patch domain.FilterPatch) {
	c.update(ctx, func(q domain.Query) (domain.Query, bool) {
		return q.Apply(patch)
	})
}

// SetSearch commits term once typing has been quiet for the debounce
// window. Only the last term of a burst is fetched.
func (c *Controller[T]) SetSearch(term string) {
	c.mu.Lock()
	c.pendingSearch = &term
	c.mu.Unlock()

	c.debouncer.Trigger(func() {
		c.commitSearch(c.baseCtx)
	})
}

// FlushSearch commits a pending search term immediately.
func (c *Controller[T]) FlushSearch(ctx context.Context) {
	c.debouncer.Cancel()
	c.commitSearch(ctx)
}

func (c *Controller[T]) ClearFilters(ctx context.Context) {
	c.debouncer.Cancel()
	c.mu.Lock()
	c.pendingSearch = nil
	c.mu.Unlock()

	c.update(ctx, func(q domain.Query) (domain.Query, bool) {
		next := q.ClearFilters()
		return next, next != q
	})
}

// SetPage moves to page n and keeps the filters.
func (c *Controller[T]) SetPage(ctx context.Context, n int) {
	c.update(ctx, func(q domain.Query) (domain.Query, bool) {
		n = domain.ClampPage(n)
		if n == q.Page {
			return q, false
		}
		q.Page = n
		return q, true
	})
}

// SetLimit changes the page size and returns to the first page.
func (c *Controller[T]) SetLimit(ctx context.Context, n int) {
	c.update(ctx, func(q domain.Query) (domain.Query, bool) {
		n = domain.ClampLimit(n, c.maxLimit)
		if n == q.Limit {
			return q, false
		}
		q.Limit = n
		q.Page = domain.DefaultPage
		return q, true
	})
}

// Navigate applies several list settings with a single fetch and reports
// whether anything changed.
func (c *Controller[T]) Navigate(ctx context.Context, change domain.QueryChange) bool {
	return c.update(ctx, func(q domain.Query) (domain.Query, bool) {
		return q.Change(change, c.maxLimit)
	})
}

// Refresh refetches the current query unconditionally.
func (c *Controller[T]) Refresh(ctx context.Context) {
	c.mu.Lock()
	q := c.query
	token := c.seq.Add(1)
	c.mu.Unlock()

	c.fetch(ctx, token, q)
}

func (c *Controller[T]) RefreshStats(ctx context.Context) {
	const op = "Controller.RefreshStats"

	if c.stats == nil {
		return
	}
	token := c.statsSeq.Add(1)
	latest := func() bool { return c.statsSeq.Load() == token }

	stats, err := c.stats.Stats(ctx)
	switch {
	case err == nil:
		c.store.apply(latest, func() { c.store.setStats(stats) })
	case errors.Is(err, domain.ErrUnauthorized):
	default:
		slog.Debug("stats fetch failed", "op", op, "kind", c.store.Kind(), "err", err)
		c.store.apply(latest, func() {
			c.store.statsErr = domain.PublicMessage(err)
		})
	}
}

// Close stops the debouncer. A pending search is dropped.
func (c *Controller[T]) Close() {
	c.debouncer.Stop()
}

func (c *Controller[T]) commitSearch(ctx context.Context) {
	c.mu.Lock()
	term := c.pendingSearch
	c.pendingSearch = nil
	c.mu.Unlock()
	if term == nil {
		return
	}
	c.SetFilter(ctx, domain.FilterPatch{Search: term})
}

func (c *Controller[T]) update(
	ctx context.Context, change func(domain.Query) (domain.Query, bool),
) bool {
	c.mu.Lock()
	q, changed := change(c.query)
	if !changed {
		c.mu.Unlock()
		return false
	}
	c.query = q
	token := c.seq.Add(1)
	c.mu.Unlock()

	c.fetch(ctx, token, q)
	return true
}

func (c *Controller[T]) fetch(ctx context.Context, token uint64, q domain.Query) {
	const op = "Controller.fetch"

	kind := c.store.Kind()
	log := slog.With("op", op, "kind", kind, "token", token)
	latest := func() bool { return c.seq.Load() == token }

	c.store.apply(latest, func() {
		c.store.query = q
		c.store.beginLoad()
	})

	c.metrics.FetchIssued(kind)
	start := time.Now()
	page, err := c.lister.List(ctx, q)
	c.metrics.FetchCompleted(kind, time.Since(start), err)

	var applied bool
	switch {
	case err == nil:
		applied = c.store.apply(latest, func() {
			c.store.setResult(page.Items, page.Pagination)
		})
	case errors.Is(err, domain.ErrUnauthorized):
		applied = c.store.apply(latest, c.store.abortLoad)
	default:
		applied = c.store.apply(latest, func() {
			c.store.setError(domain.PublicMessage(err))
		})
		if applied {
			log.Warn("list fetch failed", "err", err)
		}
	}

	if !applied {
		c.metrics.StaleDiscarded(kind)
		log.Debug("stale response discarded")
	}
}

type noopMetrics struct{}

func (noopMetrics) FetchIssued(domain.ResourceKind)                          {}
func (noopMetrics) FetchCompleted(domain.ResourceKind, time.Duration, error) {}
func (noopMetrics) StaleDiscarded(domain.ResourceKind)                       {}
