package domain_test

import (
	"testing"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestQueryApply(t *testing.T) {
	t.Run("FilterChangeResetsPage", func(t *testing.T) {
		q := domain.NewQuery(20)
		q.Page = 3

		next, changed := q.Apply(domain.FilterPatch{Status: domain.StringPtr("active")})
		assert.True(t, changed)
		assert.Equal(t, 1, next.Page)
		assert.Equal(t, "active", next.Status)
		assert.Equal(t, 20, next.Limit)
	})

	t.Run("SameValueIsNoop", func(t *testing.T) {
		q := domain.NewQuery(20)
		q.Status = "active"
		q.Page = 3

		next, changed := q.Apply(domain.FilterPatch{Status: domain.StringPtr("active")})
		assert.False(t, changed)
		assert.Equal(t, q, next)
	})

	t.Run("EmptyPatch", func(t *testing.T) {
		p := domain.FilterPatch{}
		assert.True(t, p.IsEmpty())

		q := domain.NewQuery(10)
		_, changed := q.Apply(p)
		assert.False(t, changed)
	})
}

func TestQueryChange(t *testing.T) {
	t.Run("AllAtOnce", func(t *testing.T) {
		q := domain.NewQuery(20)
		q.Page = 4

		next, changed := q.Change(domain.QueryChange{
			Filters: domain.FilterPatch{Status: domain.StringPtr("active")},
			Limit:   50,
			Page:    2,
		}, 100)
		assert.True(t, changed)
		assert.Equal(t, "active", next.Status)
		assert.Equal(t, 50, next.Limit)
		assert.Equal(t, 2, next.Page)
	})

	t.Run("LimitResetsPage", func(t *testing.T) {
		q := domain.NewQuery(20)
		q.Page = 4

		next, changed := q.Change(domain.QueryChange{Limit: 500}, 50)
		assert.True(t, changed)
		assert.Equal(t, 50, next.Limit)
		assert.Equal(t, 1, next.Page)
	})

	t.Run("Noop", func(t *testing.T) {
		q := domain.NewQuery(20)
		q.Status = "active"

		next, changed := q.Change(domain.QueryChange{
			Filters: domain.FilterPatch{Status: domain.StringPtr("active")},
			Limit:   20,
			Page:    1,
		}, 100)
		assert.False(t, changed)
		assert.Equal(t, q, next)
	})
}

func TestQueryClearFilters(t *testing.T) {
	q := domain.Query{Search: "silk", Category: "c1", Page: 4, Limit: 50}
	assert.True(t, q.HasFilters())

	cleared := q.ClearFilters()
	assert.False(t, cleared.HasFilters())
	assert.Equal(t, 1, cleared.Page)
	assert.Equal(t, 50, cleared.Limit)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, domain.ClampPage(0))
	assert.Equal(t, 1, domain.ClampPage(-5))
	assert.Equal(t, 7, domain.ClampPage(7))

	assert.Equal(t, domain.DefaultLimit, domain.ClampLimit(0, 100))
	assert.Equal(t, 100, domain.ClampLimit(500, 100))
	assert.Equal(t, 50, domain.ClampLimit(80, 50))
	assert.Equal(t, 100, domain.ClampLimit(500, 0))
	assert.Equal(t, 15, domain.ClampLimit(15, 100))
}

func TestNewPagination(t *testing.T) {
	p := domain.NewPagination(45, 2, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)

	p = domain.NewPagination(0, 1, 20)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
}
