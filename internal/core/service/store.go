package service

import (
	"slices"
	"sync"

	"github.com/niksmo/ecom-admin/internal/core/domain"
)

type LoadStatus int

const (
	StatusIdle LoadStatus = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s LoadStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// A Snapshot is a copy of the store state. It is safe to keep.
type Snapshot[T any] struct {
	Kind       domain.ResourceKind
	Items      []T
	Pagination domain.Pagination
	Query      domain.Query
	Status     LoadStatus
	Loading    bool
	Err        string
	Stats      *domain.Stats
	StatsErr   string
}

// Store is the client copy of one resource collection.
//
// All methods are safe for concurrent use. Subscribers are called after
// the store lock is released, so they may call back into the store.
type Store[T domain.Entity] struct {
	mu         sync.Mutex
	kind       domain.ResourceKind
	items      []T
	pagination domain.Pagination
	query      domain.Query
	status     LoadStatus
	err        string
	stats      *domain.Stats
	statsErr   string

	subs    map[int]func(Snapshot[T])
	nextSub int
}

func NewStore[T domain.Entity](kind domain.ResourceKind, q domain.Query) *Store[T] {
	return &Store[T]{
		kind:  kind,
		query: q,
		subs:  make(map[int]func(Snapshot[T])),
	}
}

func (s *Store[T]) Kind() domain.ResourceKind {
	return s.kind
}

// BeginLoad enters loading. Stale items stay visible.
func (s *Store[T]) BeginLoad() {
	s.apply(always, s.beginLoad)
}

// SetResult replaces items and pagination at once.
func (s *Store[T]) SetResult(items []T, p domain.Pagination) {
	s.apply(always, func() { s.setResult(items, p) })
}

// SetError records message and keeps the current items.
func (s *Store[T]) SetError(message string) {
	s.apply(always, func() { s.setError(message) })
}

// AbortLoad leaves loading without recording an error.
func (s *Store[T]) AbortLoad() {
	s.apply(always, s.abortLoad)
}

// AddItem puts item first. An item with the same ID is replaced instead.
func (s *Store[T]) AddItem(item T) {
	s.apply(always, func() {
		if i := s.indexOf(item.EntityID()); i >= 0 {
			s.items[i] = item
			return
		}
		s.items = append([]T{item}, s.items...)
		s.pagination.Total++
	})
}

func (s *Store[T]) ReplaceItem(item T) {
	s.apply(always, func() {
		if i := s.indexOf(item.EntityID()); i >= 0 {
			s.items[i] = item
		}
	})
}

func (s *Store[T]) RemoveItem(id string) {
	s.apply(always, func() {
		i := s.indexOf(id)
		if i < 0 {
			return
		}
		s.items = slices.Delete(slices.Clone(s.items), i, i+1)
		if s.pagination.Total > 0 {
			s.pagination.Total--
		}
	})
}

func (s *Store[T]) SetQuery(q domain.Query) {
	s.apply(always, func() { s.query = q })
}

func (s *Store[T]) Query() domain.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Store[T]) SetStats(stats domain.Stats) {
	s.apply(always, func() { s.setStats(stats) })
}

func (s *Store[T]) SetStatsError(message string) {
	s.apply(always, func() { s.statsErr = message })
}

// Item returns the loaded copy of id.
func (s *Store[T]) Item(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers fn for every state change and returns the
// function that removes it.
func (s *Store[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func always() bool { return true }

// apply runs mutate under the lock when valid still holds and notifies
// subscribers afterwards. It reports whether mutate ran.
func (s *Store[T]) apply(valid func() bool, mutate func()) bool {
	s.mu.Lock()
	if !valid() {
		s.mu.Unlock()
		return false
	}
	mutate()
	snap := s.snapshot()
	subs := make([]func(Snapshot[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return true
}

func (s *Store[T]) beginLoad() {
	s.status = StatusLoading
	s.err = ""
}

func (s *Store[T]) setResult(items []T, p domain.Pagination) {
	s.items = slices.Clone(items)
	s.pagination = p
	s.status = StatusReady
	s.err = ""
}

func (s *Store[T]) setError(message string) {
	s.status = StatusError
	s.err = message
}

func (s *Store[T]) abortLoad() {
	if s.status == StatusLoading {
		s.status = StatusReady
	}
}

func (s *Store[T]) setStats(stats domain.Stats) {
	s.stats = &stats
	s.statsErr = ""
}

func (s *Store[T]) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(item T) bool {
		return item.EntityID() == id
	})
}

func (s *Store[T]) snapshot() Snapshot[T] {
	snap := Snapshot[T]{
		Kind:       s.kind,
		Items:      slices.Clone(s.items),
		Pagination: s.pagination,
		Query:      s.query,
		Status:     s.status,
		Loading:    s.status == StatusLoading,
		Err:        s.err,
		StatsErr:   s.statsErr,
	}
	if s.stats != nil {
		stats := *s.stats
		snap.Stats = &stats
	}
	return snap
}
