package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/niksmo/ecom-admin/internal/core/domain"
)

type Orders struct {
	c *Client
}

func (c *Client) Orders() *Orders {
	return &Orders{c}
}

func (o *Orders) List(ctx context.Context, q domain.Query) (domain.Page[domain.Order], error) {
	const op = "Orders.List"

	body, err := o.c.do(ctx, op, request{
		method: http.MethodGet, path: "/orders/admin/orders", query: listQuery(q),
	})
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	dtos, p, err := decodeList[orderDTO](body, "orders", q)
	if err != nil {
		return domain.Page[domain.Order]{}, &domain.RequestError{Op: op, Err: err}
	}
	orders := make([]domain.Order, len(dtos))
	for i, d := range dtos {
		orders[i] = d.toDomain()
	}
	return domain.Page[domain.Order]{Items: orders, Pagination: p}, nil
}

func (o *Orders) UpdateStatus(
	ctx context.Context, id string, status domain.OrderStatus,
) (domain.Order, error) {
	return o.write(ctx, "Orders.UpdateStatus", http.MethodPatch,
		"/orders/"+url.PathEscape(id)+"/status",
		map[string]string{"status": string(status)},
	)
}

func (o *Orders) ApproveRefund(ctx context.Context, id, adminNotes string) (domain.Order, error) {
	return o.write(ctx, "Orders.ApproveRefund", http.MethodPost,
		"/orders/"+url.PathEscape(id)+"/refund-approve",
		map[string]string{"adminNotes": adminNotes},
	)
}

func (o *Orders) RejectRefund(ctx context.Context, id, reason string) (domain.Order, error) {
	return o.write(ctx, "Orders.RejectRefund", http.MethodPost,
		"/orders/"+url.PathEscape(id)+"/refund-reject",
		map[string]string{"rejectionReason": reason},
	)
}

func (o *Orders) write(
	ctx context.Context, op, method, path string, payload any,
) (domain.Order, error) {
	body, err := o.c.do(ctx, op, request{method: method, path: path, body: payload})
	if err != nil {
		return domain.Order{}, err
	}
	d, err := decodeSingle[orderDTO](body, "order")
	if err != nil {
		return domain.Order{}, &domain.RequestError{Op: op, Err: err}
	}
	return d.toDomain(), nil
}
