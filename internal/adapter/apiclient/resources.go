package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
)

var (
	_ port.ResourceClient[domain.Product, domain.ProductInput]   = (*Resource[domain.Product, domain.ProductInput, productDTO])(nil)
	_ port.ResourceClient[domain.Category, domain.CategoryInput] = (*Resource[domain.Category, domain.CategoryInput, categoryDTO])(nil)
	_ port.ResourceClient[domain.Banner, domain.BannerInput]     = (*Resource[domain.Banner, domain.BannerInput, bannerDTO])(nil)
	_ port.OrderClient                                           = (*Orders)(nil)
	_ port.CategoryOptionsLister                                 = (*Client)(nil)
)

type (
	dto[T any] interface {
		toDomain() T
	}

	endpoints struct {
		list   string
		create string
		item   string // with one %s for the id
		toggle string // with one %s for the id
		stats  string
		key    string // plural key of nested list envelopes
		single string // key of nested single envelopes
	}
)

var (
	productEndpoints = endpoints{
		list:   "/products/admin/products",
		create: "/products/create-product",
		item:   "/products/admin/products/%s",
		toggle: "/products/admin/products/%s/toggle-active",
		stats:  "/products/admin/products/stats",
		key:    "products",
		single: "product",
	}

	categoryEndpoints = endpoints{
		list:   "/category/admin/categories",
		create: "/category/create-category",
		item:   "/category/admin/category/%s",
		toggle: "/category/admin/category/%s/toggle-active",
		stats:  "/category/admin/categories/stats",
		key:    "categories",
		single: "category",
	}

	bannerEndpoints = endpoints{
		list:   "/banners/admin/banners",
		create: "/banners",
		item:   "/banners/%s",
		toggle: "/banners/admin/banners/%s/toggle-active",
		stats:  "/banners/admin/banners/stats",
		key:    "banners",
		single: "banner",
	}
)

// Resource is the typed client of one resource kind. D is the wire shape
// the API returns.
type Resource[T any, In any, D dto[T]] struct {
	c       *Client
	name    string
	ep      endpoints
	payload func(In) any
}

func (c *Client) Products() *Resource[domain.Product, domain.ProductInput, productDTO] {
	return &Resource[domain.Product, domain.ProductInput, productDTO]{
		c: c, name: "Products", ep: productEndpoints,
		payload: func(in domain.ProductInput) any { return newProductPayload(in) },
	}
}

func (c *Client) Categories() *Resource[domain.Category, domain.CategoryInput, categoryDTO] {
	return &Resource[domain.Category, domain.CategoryInput, categoryDTO]{
		c: c, name: "Categories", ep: categoryEndpoints,
		payload: func(in domain.CategoryInput) any { return in },
	}
}

func (c *Client) Banners() *Resource[domain.Banner, domain.BannerInput, bannerDTO] {
	return &Resource[domain.Banner, domain.BannerInput, bannerDTO]{
		c: c, name: "Banners", ep: bannerEndpoints,
		payload: func(in domain.BannerInput) any { return in },
	}
}

func (r *Resource[T, In, D]) List(ctx context.Context, q domain.Query) (domain.Page[T], error) {
	op := r.name + ".List"

	body, err := r.c.do(ctx, op, request{
		method: http.MethodGet, path: r.ep.list, query: listQuery(q),
	})
	if err != nil {
		return domain.Page[T]{}, err
	}

	dtos, p, err := decodeList[D](body, r.ep.key, q)
	if err != nil {
		return domain.Page[T]{}, &domain.RequestError{Op: op, Err: err}
	}

	items := make([]T, len(dtos))
	for i, d := range dtos {
		items[i] = d.toDomain()
	}
	return domain.Page[T]{Items: items, Pagination: p}, nil
}

func (r *Resource[T, In, D]) Stats(ctx context.Context) (domain.Stats, error) {
	op := r.name + ".Stats"

	body, err := r.c.do(ctx, op, request{method: http.MethodGet, path: r.ep.stats})
	if err != nil {
		return domain.Stats{}, err
	}
	s, err := decodeSingle[statsDTO](body, "stats")
	if err != nil {
		return domain.Stats{}, &domain.RequestError{Op: op, Err: err}
	}
	return s.toDomain(), nil
}

func (r *Resource[T, In, D]) Create(ctx context.Context, in In) (T, error) {
	return r.write(ctx, r.name+".Create", http.MethodPost, r.ep.create, r.payload(in))
}

func (r *Resource[T, In, D]) Update(ctx context.Context, id string, in In) (T, error) {
	return r.write(ctx, r.name+".Update", http.MethodPut, r.itemPath(r.ep.item, id), r.payload(in))
}

func (r *Resource[T, In, D]) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, r.name+".Delete", request{
		method: http.MethodDelete, path: r.itemPath(r.ep.item, id),
	})
	return err
}

func (r *Resource[T, In, D]) ToggleActive(ctx context.Context, id string) (T, error) {
	return r.write(ctx, r.name+".ToggleActive", http.MethodPatch, r.itemPath(r.ep.toggle, id), nil)
}

func (r *Resource[T, In, D]) write(
	ctx context.Context, op, method, path string, payload any,
) (T, error) {
	var zero T

	body, err := r.c.do(ctx, op, request{method: method, path: path, body: payload})
	if err != nil {
		return zero, err
	}
	d, err := decodeSingle[D](body, r.ep.single)
	if err != nil {
		return zero, &domain.RequestError{Op: op, Err: err}
	}
	return d.toDomain(), nil
}

func (r *Resource[T, In, D]) itemPath(pattern, id string) string {
	return fmt.Sprintf(pattern, url.PathEscape(id))
}

// ActiveCategories lists the options of the product category filter.
func (c *Client) ActiveCategories(ctx context.Context) ([]domain.CategoryRef, error) {
	const op = "Client.ActiveCategories"

	body, err := c.do(ctx, op, request{
		method: http.MethodGet, path: "/category/admin/get-categories",
	})
	if err != nil {
		return nil, err
	}
	dtos, _, err := decodeList[categoryDTO](body, "categories", domain.Query{})
	if err != nil {
		return nil, &domain.RequestError{Op: op, Err: err}
	}

	refs := make([]domain.CategoryRef, len(dtos))
	for i, d := range dtos {
		refs[i] = d.toDomain().Ref()
	}
	return refs, nil
}
