package domain

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// A Query is the filter and pagination state of one resource list.
type Query struct {
	Search   string
	Status   string
	Category string

	// orders only
	PaymentStatus string
	RefundStatus  string
	SortBy        string
	SortOrder     string

	Page  int
	Limit int
}

func NewQuery(limit int) Query {
	return Query{Page: DefaultPage, Limit: ClampLimit(limit, MaxLimit)}
}

// A FilterPatch holds the filter fields to change. Nil fields are kept.
type FilterPatch struct {
	Search        *string
	Status        *string
	Category      *string
	PaymentStatus *string
	RefundStatus  *string
	SortBy        *string
	SortOrder     *string
}

func (p FilterPatch) IsEmpty() bool {
	return p.Search == nil && p.Status == nil && p.Category == nil &&
		p.PaymentStatus == nil && p.RefundStatus == nil &&
		p.SortBy == nil && p.SortOrder == nil
}

// Apply returns the patched query and whether any filter changed.
//
// A filter change always resets the page to the first one.
func (q Query) Apply(p FilterPatch) (Query, bool) {
	next := q
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&next.Search, p.Search)
	set(&next.Status, p.Status)
	set(&next.Category, p.Category)
	set(&next.PaymentStatus, p.PaymentStatus)
	set(&next.RefundStatus, p.RefundStatus)
	set(&next.SortBy, p.SortBy)
	set(&next.SortOrder, p.SortOrder)

	if next.filters() == q.filters() {
		return q, false
	}
	next.Page = DefaultPage
	return next, true
}

// A QueryChange is a batch of list settings applied as one change. Zero
// Page and Limit keep the current values.
type QueryChange struct {
	Filters FilterPatch
	Page    int
	Limit   int
}

// Change applies c in the order a user would: filters, page size, page.
// Filter and page size changes reset the page unless c names one.
func (q Query) Change(c QueryChange, maxLimit int) (Query, bool) {
	next, _ := q.Apply(c.Filters)
	if c.Limit > 0 {
		if l := ClampLimit(c.Limit, maxLimit); l != next.Limit {
			next.Limit = l
			next.Page = DefaultPage
		}
	}
	if c.Page > 0 {
		next.Page = ClampPage(c.Page)
	}
	return next, next != q
}

// ClearFilters drops every filter and resets the page, keeping the limit.
func (q Query) ClearFilters() Query {
	return Query{Page: DefaultPage, Limit: q.Limit}
}

func (q Query) HasFilters() bool {
	return q.filters() != (Query{}).filters()
}

type filterSet struct {
	search, status, category, payment, refund, sortBy, sortOrder string
}

func (q Query) filters() filterSet {
	return filterSet{
		q.Search, q.Status, q.Category,
		q.PaymentStatus, q.RefundStatus, q.SortBy, q.SortOrder,
	}
}

func ClampPage(page int) int {
	if page < DefaultPage {
		return DefaultPage
	}
	return page
}

func ClampLimit(limit, max int) int {
	if max <= 0 || max > MaxLimit {
		max = MaxLimit
	}
	switch {
	case limit <= 0:
		return min(DefaultLimit, max)
	case limit > max:
		return max
	default:
		return limit
	}
}

func StringPtr(s string) *string { return &s }
