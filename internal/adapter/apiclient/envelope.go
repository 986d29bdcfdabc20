package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/niksmo/ecom-admin/internal/core/domain"
)

// The API wraps payloads in a few different ways. Everything below turns
// them into one shape before the domain sees them.
//
//	list:   {data: [...], pagination: {...}}
//	        {data: {<key>: [...], pagination: {...}}}
//	single: {data: {...}} | {data: {<key>: {...}}} | {...}

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *paginationDTO  `json:"pagination"`
}

type paginationDTO struct {
	Total       int   `json:"total"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	Pages       int   `json:"pages"`
	HasNextPage *bool `json:"hasNextPage"`
	HasPrevPage *bool `json:"hasPrevPage"`
}

func (p paginationDTO) toDomain(itemCount int, q domain.Query) domain.Pagination {
	page := p.Page
	if page < 1 {
		page = domain.ClampPage(q.Page)
	}
	limit := p.Limit
	if limit < 1 {
		limit = domain.ClampLimit(q.Limit, domain.MaxLimit)
	}
	total := p.Total
	if total == 0 && itemCount > 0 && page == 1 {
		total = itemCount
	}

	out := domain.NewPagination(total, page, limit)
	switch {
	case p.TotalPages > 0:
		out.TotalPages = p.TotalPages
	case p.Pages > 0:
		out.TotalPages = p.Pages
	}
	out.HasNextPage = out.Page < out.TotalPages
	out.HasPrevPage = out.Page > 1
	if p.HasNextPage != nil {
		out.HasNextPage = *p.HasNextPage
	}
	if p.HasPrevPage != nil {
		out.HasPrevPage = *p.HasPrevPage
	}
	return out
}

var errBadEnvelope = errors.New("unexpected response shape")

func decodeList[D any](body []byte, key string, q domain.Query) ([]D, domain.Pagination, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domain.Pagination{}, err
	}

	data := bytes.TrimSpace(env.Data)
	pagination := env.Pagination

	if len(data) > 0 && data[0] == '{' {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, domain.Pagination{}, err
		}
		items, ok := nested[key]
		if !ok {
			return nil, domain.Pagination{}, fmt.Errorf("%w: no %q list", errBadEnvelope, key)
		}
		data = items
		if raw, ok := nested["pagination"]; ok {
			pagination = new(paginationDTO)
			if err := json.Unmarshal(raw, pagination); err != nil {
				return nil, domain.Pagination{}, err
			}
		}
	}

	var items []D
	if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, domain.Pagination{}, err
		}
	}

	if pagination == nil {
		pagination = new(paginationDTO)
	}
	return items, pagination.toDomain(len(items), q), nil
}

func decodeSingle[D any](body []byte, key string) (D, error) {
	var out D

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return out, err
	}

	data, ok := top["data"]
	if !ok || isNull(data) {
		data = body
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(data, &nested); err != nil {
		return out, err
	}
	if inner, ok := nested[key]; ok && !isNull(inner) {
		data = inner
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// statsDTO accepts per-resource field names like totalBanners or
// activeProducts and maps them by prefix.
type statsDTO map[string]json.RawMessage

func (s statsDTO) toDomain() domain.Stats {
	var (
		out         domain.Stats
		hasInactive bool
	)
	for k, raw := range s {
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		switch k := strings.ToLower(k); {
		case strings.HasPrefix(k, "total"):
			out.Total = n
		case strings.HasPrefix(k, "inactive"):
			out.Inactive = n
			hasInactive = true
		case strings.HasPrefix(k, "active"):
			out.Active = n
		case strings.HasPrefix(k, "lowstock"):
			out.LowStock = n
		case strings.HasPrefix(k, "current"), strings.HasPrefix(k, "live"):
			out.Live = n
		case strings.HasPrefix(k, "expired"):
			out.Expired = n
		case strings.HasPrefix(k, "superadmin"):
			out.SuperAdmins = n
		}
	}
	if !hasInactive && out.Total > out.Active {
		out.Inactive = out.Total - out.Active
	}
	return out
}
