package domain

type (
	Pagination struct {
		Total       int
		Page        int
		Limit       int
		TotalPages  int
		HasNextPage bool
		HasPrevPage bool
	}

	// A Page is one list response of the API.
	Page[T any] struct {
		Items      []T
		Pagination Pagination
	}

	Stats struct {
		Total    int
		Active   int
		Inactive int
		LowStock int // products only
		Live     int // banners only
		Expired  int // banners only

		SuperAdmins int // admins only
	}
)

// NewPagination fills the derived fields from total, page and limit.
func NewPagination(total, page, limit int) Pagination {
	p := Pagination{Total: total, Page: page, Limit: limit}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}
	p.HasNextPage = p.Page < p.TotalPages
	p.HasPrevPage = p.Page > 1
	return p
}

// An Entity is a server resource addressed by its identifier.
type Entity interface {
	EntityID() string
}
