package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/service"
)

type ListController interface {
	Load(context.Context)
	SetFilter(context.Context, domain.FilterPatch)
	SetSearch(term string)
	FlushSearch(context.Context)
	ClearFilters(context.Context)
	SetPage(ctx context.Context, n int)
	SetLimit(ctx context.Context, n int)
	Navigate(context.Context, domain.QueryChange) bool
	Refresh(context.Context)
	RefreshStats(context.Context)
	Close()
}

// A List drives one resource list without knowing its item type.
type List struct {
	ListController
	Kind      domain.ResourceKind
	snapshot  func() any
	loadErr   func() string
	subscribe func(func(any)) func()
}

func newList[T domain.Entity](kind domain.ResourceKind, c *service.Controller[T]) List {
	store := c.Store()
	return List{
		ListController: c,
		Kind:           kind,
		snapshot:       func() any { return store.Snapshot() },
		loadErr:        func() string { return store.Snapshot().Err },
		subscribe: func(fn func(any)) func() {
			return store.Subscribe(func(s service.Snapshot[T]) { fn(s) })
		},
	}
}

// Snapshot returns a [service.Snapshot] of the list item type.
func (l List) Snapshot() any {
	return l.snapshot()
}

// LoadError is the message of the last failed fetch, if the list is in
// error.
func (l List) LoadError() string {
	return l.loadErr()
}

func (l List) Subscribe(fn func(snapshot any)) (unsubscribe func()) {
	return l.subscribe(fn)
}

// Result is a [service.Outcome] with the item type erased.
type Result struct {
	OK          bool
	Item        any
	FieldErrors domain.FieldErrors
	Message     string
}

// An Editor submits JSON form payloads of one resource kind.
type Editor interface {
	Create(ctx context.Context, raw []byte) (Result, error)
	Update(ctx context.Context, id string, raw []byte) (Result, error)
	Remove(ctx context.Context, id string) Result
	ToggleActive(ctx context.Context, id string) Result
}

// form tells a preparer which submission it is filling. prev is the
// loaded copy of the item on update, if any.
type form[T any] struct {
	creating bool
	prev     *T
}

// A preparer fills what a form derives before submission.
type preparer[T, In any] func(in In, f form[T]) In

type editor[T domain.Entity, In any] struct {
	m       *service.Mutations[T, In]
	store   *service.Store[T]
	prepare preparer[T, In]
}

func newEditor[T domain.Entity, In any](
	m *service.Mutations[T, In], store *service.Store[T], prepare func(In, form[T]) In,
) editor[T, In] {
	if prepare == nil {
		prepare = func(in In, _ form[T]) In { return in }
	}
	return editor[T, In]{m, store, prepare}
}

func (e editor[T, In]) Create(ctx context.Context, raw []byte) (Result, error) {
	in, err := decodeInput[In](raw)
	if err != nil {
		return Result{}, err
	}
	return result(e.m.Create(ctx, e.prepare(in, form[T]{creating: true}))), nil
}

func (e editor[T, In]) Update(ctx context.Context, id string, raw []byte) (Result, error) {
	in, err := decodeInput[In](raw)
	if err != nil {
		return Result{}, err
	}
	var f form[T]
	if it, ok := e.store.Item(id); ok {
		f.prev = &it
	}
	return result(e.m.Update(ctx, id, e.prepare(in, f))), nil
}

func (e editor[T, In]) Remove(ctx context.Context, id string) Result {
	return result(e.m.Remove(ctx, id))
}

func (e editor[T, In]) ToggleActive(ctx context.Context, id string) Result {
	return result(e.m.ToggleActive(ctx, id))
}

func result[T any](o service.Outcome[T]) Result {
	r := Result{OK: o.OK, FieldErrors: o.FieldErrors, Message: o.Message}
	if o.OK {
		r.Item = o.Item
	}
	return r
}

func decodeInput[In any](raw []byte) (In, error) {
	const op = "decodeInput"

	var in In
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("%s: %w", op, err)
	}
	return in, nil
}

// prepareProduct derives the slug on create and the variant SKUs. On
// update, SKUs still generated from the loaded slug follow a new slug.
func prepareProduct(in domain.ProductInput, f form[domain.Product]) domain.ProductInput {
	var prevSlug string
	if f.prev != nil {
		prevSlug = f.prev.Slug
	}
	if f.creating && in.Slug == "" {
		in.Slug = domain.Slugify(in.Title)
	}
	for i := range in.Variants {
		in.Variants[i].Adopt(prevSlug, in.Slug)
	}
	return in
}

func prepareCategory(in domain.CategoryInput, f form[domain.Category]) domain.CategoryInput {
	if f.creating && in.Slug == "" {
		in.Slug = domain.Slugify(in.Name)
	}
	return in
}

// prepareAdmin marks create forms, which must carry a password.
func prepareAdmin(in domain.AdminInput, f form[domain.Admin]) domain.AdminInput {
	in.NewAccount = f.creating
	return in
}
