package httphandler

import (
	"time"

	"github.com/niksmo/ecom-admin/internal/core/domain"
)

type (
	ListStatus struct {
		Kind       string     `json:"kind"`
		Status     string     `json:"status"`
		Loading    bool       `json:"loading"`
		Error      string     `json:"error,omitempty"`
		IDs        []string   `json:"ids"`
		Pagination Pagination `json:"pagination"`
		Query      Query      `json:"query"`
		Stats      *Stats     `json:"stats,omitempty"`
		StatsError string     `json:"statsError,omitempty"`
	}

	Pagination struct {
		Total       int  `json:"total"`
		Page        int  `json:"page"`
		Limit       int  `json:"limit"`
		TotalPages  int  `json:"totalPages"`
		HasNextPage bool `json:"hasNextPage"`
		HasPrevPage bool `json:"hasPrevPage"`
	}

	Query struct {
		Search        string `json:"search,omitempty"`
		Status        string `json:"status,omitempty"`
		Category      string `json:"category,omitempty"`
		PaymentStatus string `json:"paymentStatus,omitempty"`
		RefundStatus  string `json:"refundStatus,omitempty"`
		SortBy        string `json:"sortBy,omitempty"`
		SortOrder     string `json:"sortOrder,omitempty"`
		Page          int    `json:"page"`
		Limit         int    `json:"limit"`
	}

	Stats struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		Inactive int `json:"inactive"`
		LowStock int `json:"lowStock,omitempty"`
		Live     int `json:"live,omitempty"`
		Expired  int `json:"expired,omitempty"`
	}

	Toast struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	}

	ActivityCounts struct {
		Kind     string           `json:"kind"`
		Total    int64            `json:"total"`
		ByAction map[string]int64 `json:"byAction"`
	}

	Activity struct {
		EventID    string    `json:"eventId"`
		Resource   string    `json:"resource"`
		Action     string    `json:"action"`
		EntityID   string    `json:"entityId"`
		Admin      string    `json:"admin"`
		OccurredAt time.Time `json:"occurredAt"`
	}
)

func toActivity(v domain.Activity) Activity {
	return Activity{
		EventID:    v.EventID,
		Resource:   string(v.Resource),
		Action:     string(v.Action),
		EntityID:   v.EntityID,
		Admin:      v.Admin,
		OccurredAt: v.OccurredAt,
	}
}
