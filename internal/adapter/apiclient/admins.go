package apiclient

import (
	"context"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
)

var _ port.AdminClient = (*Admins)(nil)

var adminEndpoints = endpoints{
	list:   "/admin/admins",
	create: "/admin/create-admin",
	item:   "/admin/admins/%s",
	stats:  "/admin/stats",
	key:    "admins",
	single: "admin",
}

// Admins manages admin accounts. The API serves it to superadmins only.
type Admins struct {
	r *Resource[domain.Admin, domain.AdminInput, adminDTO]
}

func (c *Client) Admins() *Admins {
	return &Admins{&Resource[domain.Admin, domain.AdminInput, adminDTO]{
		c: c, name: "Admins", ep: adminEndpoints,
		payload: func(in domain.AdminInput) any { return in },
	}}
}

func (a *Admins) List(ctx context.Context, q domain.Query) (domain.Page[domain.Admin], error) {
	return a.r.List(ctx, q)
}

func (a *Admins) Stats(ctx context.Context) (domain.Stats, error) {
	return a.r.Stats(ctx)
}

func (a *Admins) Create(ctx context.Context, in domain.AdminInput) (domain.Admin, error) {
	return a.r.Create(ctx, in)
}

func (a *Admins) Update(ctx context.Context, id string, in domain.AdminInput) (domain.Admin, error) {
	return a.r.Update(ctx, id, in)
}

func (a *Admins) Delete(ctx context.Context, id string) error {
	return a.r.Delete(ctx, id)
}
