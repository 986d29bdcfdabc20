package service_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/service"
	"github.com/stretchr/testify/mock"
)

type (
	item struct {
		ID     string
		Name   string
		Active bool
	}

	itemInput struct {
		Name string
	}
)

func (i item) EntityID() string { return i.ID }

func validateItem(in itemInput) domain.FieldErrors {
	if in.Name == "" {
		return domain.FieldErrors{"name": "is required"}
	}
	return nil
}

// memBackend is an in-memory API for one resource kind.
type memBackend struct {
	mu      sync.Mutex
	items   []item
	nextID  int
	queries []domain.Query
	writes  int
	listErr error
	mutErr  error
}

func (b *memBackend) List(_ context.Context, q domain.Query) (domain.Page[item], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, q)
	if b.listErr != nil {
		return domain.Page[item]{}, b.listErr
	}

	var matched []item
	for _, it := range b.items {
		if q.Search == "" || strings.Contains(it.Name, q.Search) {
			matched = append(matched, it)
		}
	}
	from := min((q.Page-1)*q.Limit, len(matched))
	to := min(from+q.Limit, len(matched))
	return domain.Page[item]{
		Items:      slices.Clone(matched[from:to]),
		Pagination: domain.NewPagination(len(matched), q.Page, q.Limit),
	}, nil
}

func (b *memBackend) Stats(context.Context) (domain.Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := domain.Stats{Total: len(b.items)}
	for _, it := range b.items {
		if it.Active {
			s.Active++
		} else {
			s.Inactive++
		}
	}
	return s, nil
}

func (b *memBackend) Create(_ context.Context, in itemInput) (item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes++
	if b.mutErr != nil {
		return item{}, b.mutErr
	}
	b.nextID++
	it := item{ID: fmt.Sprintf("id-%d", b.nextID), Name: in.Name, Active: true}
	b.items = append([]item{it}, b.items...)
	return it, nil
}

func (b *memBackend) Update(_ context.Context, id string, in itemInput) (item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes++
	if b.mutErr != nil {
		return item{}, b.mutErr
	}
	i := slices.IndexFunc(b.items, func(it item) bool { return it.ID == id })
	if i < 0 {
		return item{}, &domain.ServerError{Status: 404, Message: "Not found"}
	}
	b.items[i].Name = in.Name
	return b.items[i], nil
}

func (b *memBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes++
	if b.mutErr != nil {
		return b.mutErr
	}
	b.items = slices.DeleteFunc(b.items, func(it item) bool { return it.ID == id })
	return nil
}

func (b *memBackend) ToggleActive(_ context.Context, id string) (item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes++
	if b.mutErr != nil {
		return item{}, b.mutErr
	}
	i := slices.IndexFunc(b.items, func(it item) bool { return it.ID == id })
	if i < 0 {
		return item{}, &domain.ServerError{Status: 404, Message: "Not found"}
	}
	b.items[i].Active = !b.items[i].Active
	return b.items[i], nil
}

func (b *memBackend) seed(names ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range names {
		b.nextID++
		b.items = append(b.items, item{ID: fmt.Sprintf("id-%d", b.nextID), Name: n})
	}
}

func (b *memBackend) listCalls() []domain.Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.queries)
}

func (b *memBackend) writeCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

type (
	listCall struct {
		query domain.Query
		reply chan listReply
	}

	listReply struct {
		page domain.Page[item]
		err  error
	}

	// gatedLister blocks every List call until the test replies to it.
	gatedLister struct {
		calls chan listCall
	}
)

func newGatedLister() *gatedLister {
	return &gatedLister{calls: make(chan listCall)}
}

func (l *gatedLister) List(_ context.Context, q domain.Query) (domain.Page[item], error) {
	c := listCall{query: q, reply: make(chan listReply)}
	l.calls <- c
	r := <-c.reply
	return r.page, r.err
}

type manualTimer struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// manualClock fires timers only when the test says so.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(_ time.Duration, fn func()) service.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Fire runs every timer that is still armed and returns their count.
func (c *manualClock) Fire() int {
	c.mu.Lock()
	timers := slices.Clone(c.timers)
	c.mu.Unlock()

	var n int
	for _, t := range timers {
		t.mu.Lock()
		armed := !t.stopped && !t.fired
		t.fired = true
		t.mu.Unlock()
		if armed {
			n++
			t.fn()
		}
	}
	return n
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.successes), len(n.errors)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, a domain.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) FetchIssued(kind domain.ResourceKind) {
	m.Called(kind)
}

func (m *MockMetrics) FetchCompleted(
	kind domain.ResourceKind, d time.Duration, err error,
) {
	m.Called(kind, d, err)
}

func (m *MockMetrics) StaleDiscarded(kind domain.ResourceKind) {
	m.Called(kind)
}
