package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
)

// OrderActions processes orders: status workflow and refund decisions.
type OrderActions struct {
	effects
	store     *Store[domain.Order]
	client    port.OrderClient
	validator *Validator
}

func NewOrderActions(
	store *Store[domain.Order],
	client port.OrderClient,
	validator *Validator,
	ctrl refresher,
	notifier port.Notifier,
	opts ...MutationOpt,
) (*OrderActions, error) {
	const op = "NewOrderActions"

	if store == nil || client == nil || validator == nil {
		return nil, fmt.Errorf("%s: store, client and validator are required", op)
	}
	e, err := newEffects(domain.ResourceOrder, "Order", ctrl, notifier, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &OrderActions{
		effects:   e,
		store:     store,
		client:    client,
		validator: validator,
	}, nil
}

func (a *OrderActions) UpdateStatus(
	ctx context.Context, id string, status domain.OrderStatus,
) Outcome[domain.Order] {
	const op = "OrderActions.UpdateStatus"

	if fe := a.validator.OrderStatus(status); fe != nil {
		return Outcome[domain.Order]{FieldErrors: fe, Message: ValidationMessage}
	}

	order, err := a.client.UpdateStatus(ctx, id, status)
	if err != nil {
		return Outcome[domain.Order]{Message: a.fail(op, err)}
	}

	a.store.ReplaceItem(order)
	a.succeed(ctx, domain.ActionUpdateStatus, id, "Order status updated to "+string(status))
	return Outcome[domain.Order]{OK: true, Item: order}
}

// ApproveRefund approves the pending refund request; notes are optional.
func (a *OrderActions) ApproveRefund(
	ctx context.Context, id, notes string,
) Outcome[domain.Order] {
	const op = "OrderActions.ApproveRefund"

	if fe := a.awaitsDecision(id); fe != nil {
		return Outcome[domain.Order]{FieldErrors: fe, Message: ValidationMessage}
	}

	order, err := a.client.ApproveRefund(ctx, id, strings.TrimSpace(notes))
	if err != nil {
		return Outcome[domain.Order]{Message: a.fail(op, err)}
	}

	a.store.ReplaceItem(order)
	a.succeed(ctx, domain.ActionApproveRefund, id, "Refund approved")
	return Outcome[domain.Order]{OK: true, Item: order}
}

// RejectRefund rejects the pending refund request; a reason is required.
func (a *OrderActions) RejectRefund(
	ctx context.Context, id, reason string,
) Outcome[domain.Order] {
	const op = "OrderActions.RejectRefund"

	if fe := a.validator.RefundRejection(reason); fe != nil {
		return Outcome[domain.Order]{FieldErrors: fe, Message: ValidationMessage}
	}
	if fe := a.awaitsDecision(id); fe != nil {
		return Outcome[domain.Order]{FieldErrors: fe, Message: ValidationMessage}
	}

	order, err := a.client.RejectRefund(ctx, id, strings.TrimSpace(reason))
	if err != nil {
		return Outcome[domain.Order]{Message: a.fail(op, err)}
	}

	a.store.ReplaceItem(order)
	a.succeed(ctx, domain.ActionRejectRefund, id, "Refund rejected")
	return Outcome[domain.Order]{OK: true, Item: order}
}

// awaitsDecision checks the loaded copy of the order. Orders that are
// not in the store are left to the server to judge.
func (a *OrderActions) awaitsDecision(id string) domain.FieldErrors {
	for _, o := range a.store.Snapshot().Items {
		if o.ID == id && !o.AwaitsRefundDecision() {
			return domain.FieldErrors{"refund": "no refund request is awaiting a decision"}
		}
	}
	return nil
}
