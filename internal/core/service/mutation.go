package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
)

const (
	ValidationMessage        = "Please fix the highlighted fields."
	ToggleUnsupportedMessage = "This resource cannot be toggled; edit it instead."
)

// Outcome is what a form gets back from a submission. On failure the
// form keeps its values and shows Message and FieldErrors.
type Outcome[T any] struct {
	OK          bool
	Item        T
	FieldErrors domain.FieldErrors
	Message     string
}

type refresher interface {
	Refresh(context.Context)
	RefreshStats(context.Context)
}

type MutationOpt func(*mutationOpts) error

type mutationOpts struct {
	publisher port.ActivityPublisher
	actor     func() string
	after     []func(context.Context) error
	now       func() time.Time
}

func PublisherOpt(p port.ActivityPublisher) MutationOpt {
	return func(o *mutationOpts) error {
		if p == nil {
			return errors.New("activity publisher is nil")
		}
		o.publisher = p
		return nil
	}
}

// ActorOpt names the admin recorded in published activity.
func ActorOpt(fn func() string) MutationOpt {
	return func(o *mutationOpts) error {
		if fn == nil {
			return errors.New("actor func is nil")
		}
		o.actor = fn
		return nil
	}
}

// AfterMutationOpt adds a hook run after each successful mutation and
// before the list refresh. Hook errors are logged only.
func AfterMutationOpt(fn func(context.Context) error) MutationOpt {
	return func(o *mutationOpts) error {
		if fn == nil {
			return errors.New("after mutation hook is nil")
		}
		o.after = append(o.after, fn)
		return nil
	}
}

func NowOpt(fn func() time.Time) MutationOpt {
	return func(o *mutationOpts) error {
		if fn == nil {
			return errors.New("now func is nil")
		}
		o.now = fn
		return nil
	}
}

// effects is the success and failure handling shared by every
// mutation of one resource kind.
type effects struct {
	kind     domain.ResourceKind
	noun     string
	ctrl     refresher
	notifier port.Notifier
	mutationOpts
}

func newEffects(
	kind domain.ResourceKind,
	noun string,
	ctrl refresher,
	notifier port.Notifier,
	opts []MutationOpt,
) (effects, error) {
	if ctrl == nil || notifier == nil {
		return effects{}, errors.New("controller and notifier are required")
	}
	options := mutationOpts{
		actor: func() string { return "" },
		now:   time.Now,
	}
	for _, o := range opts {
		if err := o(&options); err != nil {
			return effects{}, err
		}
	}
	return effects{kind, noun, ctrl, notifier, options}, nil
}

func (e effects) succeed(
	ctx context.Context, action domain.Action, id, msg string,
) {
	const op = "Mutations.succeed"
	log := slog.With("op", op, "kind", e.kind, "action", action, "id", id)

	e.notifier.Success(msg)

	if e.publisher != nil {
		a := domain.Activity{
			EventID:    uuid.NewString(),
			Resource:   e.kind,
			Action:     action,
			EntityID:   id,
			Admin:      e.actor(),
			OccurredAt: e.now().UTC(),
		}
		if err := e.publisher.Publish(ctx, a); err != nil {
			log.Warn("failed to publish activity", "err", err)
		}
	}

	for _, fn := range e.after {
		if err := fn(ctx); err != nil {
			log.Warn("after mutation hook failed", "err", err)
		}
	}

	e.ctrl.Refresh(ctx)
	e.ctrl.RefreshStats(ctx)
}

// fail reports err on the toast surface and returns its message.
// Authorization failures are left to the login redirect.
func (e effects) fail(op string, err error) string {
	msg := domain.PublicMessage(err)
	if errors.Is(err, domain.ErrUnauthorized) {
		return msg
	}
	slog.Debug("mutation failed", "op", op, "kind", e.kind, "err", err)
	e.notifier.Error(msg)
	return msg
}

// Mutations runs create, update, delete and toggle for one resource kind:
// validate, submit, notify, refresh.
//
// Toggling needs a client that also implements [port.ResourceToggler].
type Mutations[T domain.Entity, In any] struct {
	effects
	store    *Store[T]
	client   port.ResourceMutator[T, In]
	toggler  port.ResourceToggler[T]
	validate func(In) domain.FieldErrors
}

// NewMutations builds the mutation flow. noun is the display name used
// in toasts, like "Product".
func NewMutations[T domain.Entity, In any](
	kind domain.ResourceKind,
	noun string,
	store *Store[T],
	client port.ResourceMutator[T, In],
	validate func(In) domain.FieldErrors,
	ctrl refresher,
	notifier port.Notifier,
	opts ...MutationOpt,
) (*Mutations[T, In], error) {
	const op = "NewMutations"

	if store == nil || client == nil || validate == nil {
		return nil, fmt.Errorf("%s: store, client and validate are required", op)
	}
	e, err := newEffects(kind, noun, ctrl, notifier, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	toggler, _ := client.(port.ResourceToggler[T])
	return &Mutations[T, In]{
		effects:  e,
		store:    store,
		client:   client,
		toggler:  toggler,
		validate: validate,
	}, nil
}

func (m *Mutations[T, In]) Create(ctx context.Context, in In) Outcome[T] {
	const op = "Mutations.Create"

	if fe := m.validate(in); len(fe) != 0 {
		return Outcome[T]{FieldErrors: fe, Message: ValidationMessage}
	}

	item, err := m.client.Create(ctx, in)
	if err != nil {
		return Outcome[T]{Message: m.fail(op, err)}
	}

	m.store.AddItem(item)
	m.succeed(ctx, domain.ActionCreate, item.EntityID(), m.noun+" created successfully")
	return Outcome[T]{OK: true, Item: item}
}

func (m *Mutations[T, In]) Update(ctx context.Context, id string, in In) Outcome[T] {
	const op = "Mutations.Update"

	if fe := m.validate(in); len(fe) != 0 {
		return Outcome[T]{FieldErrors: fe, Message: ValidationMessage}
	}

	item, err := m.client.Update(ctx, id, in)
	if err != nil {
		return Outcome[T]{Message: m.fail(op, err)}
	}

	m.store.ReplaceItem(item)
	m.succeed(ctx, domain.ActionUpdate, id, m.noun+" updated successfully")
	return Outcome[T]{OK: true, Item: item}
}

func (m *Mutations[T, In]) Remove(ctx context.Context, id string) Outcome[T] {
	const op = "Mutations.Remove"

	if err := m.client.Delete(ctx, id); err != nil {
		return Outcome[T]{Message: m.fail(op, err)}
	}

	m.store.RemoveItem(id)
	m.succeed(ctx, domain.ActionDelete, id, m.noun+" deleted successfully")
	return Outcome[T]{OK: true}
}

func (m *Mutations[T, In]) ToggleActive(ctx context.Context, id string) Outcome[T] {
	const op = "Mutations.ToggleActive"

	if m.toggler == nil {
		return Outcome[T]{Message: ToggleUnsupportedMessage}
	}

	item, err := m.toggler.ToggleActive(ctx, id)
	if err != nil {
		return Outcome[T]{Message: m.fail(op, err)}
	}

	m.store.ReplaceItem(item)
	m.succeed(ctx, domain.ActionToggleActive, id, m.noun+" status updated")
	return Outcome[T]{OK: true, Item: item}
}
