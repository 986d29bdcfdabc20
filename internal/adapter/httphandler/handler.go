package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/ecom-admin/internal/adapter/notify"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/service"
)

// GET /v1/lists/{kind} (200 OK)
// GET /v1/toasts (200 OK)
// GET /v1/activity/{kind} (200 OK, 503 Service unavailable)
// GET /v1/recent-activity?kind=&limit= (200 OK, 400 Bad request)
// GET /v1/events/{id} (200 OK, 404 Not found)

// RegisterList exposes the store of one resource kind.
func RegisterList[T domain.Entity](mux *http.ServeMux, store *service.Store[T]) {
	path := "GET /v1/lists/" + string(store.Kind())
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, "ListHandler", listStatus(store.Snapshot()))
	})
}

type ToastSource interface {
	Recent() []notify.Toast
}

func RegisterToasts(mux *http.ServeMux, src ToastSource) {
	mux.HandleFunc("GET /v1/toasts", func(w http.ResponseWriter, r *http.Request) {
		recent := src.Recent()
		out := make([]Toast, len(recent))
		for i, t := range recent {
			out[i] = Toast{Level: string(t.Level), Message: t.Message}
		}
		writeJSON(w, "ToastsHandler", out)
	})
}

type ActivityCounter interface {
	Counts(domain.ResourceKind) (domain.ActivityCounts, error)
}

func RegisterActivityCounts(mux *http.ServeMux, counter ActivityCounter) {
	mux.HandleFunc("GET /v1/activity/{kind}", func(w http.ResponseWriter, r *http.Request) {
		const op = "ActivityCountsHandler"
		log := slog.With("op", op)

		kind := r.PathValue("kind")
		c, err := counter.Counts(domain.ResourceKind(kind))
		if err != nil {
			log.Error("failed to read counts", "kind", kind, "err", err)
			http.Error(w, "counts are unavailable", http.StatusServiceUnavailable)
			return
		}

		out := ActivityCounts{Kind: kind, Total: c.Total, ByAction: make(map[string]int64)}
		for a, n := range c.ByAction {
			out.ByAction[string(a)] = n
		}
		writeJSON(w, op, out)
	})
}

type ActivityReader interface {
	RecentActivity(ctx context.Context, kind domain.ResourceKind, limit int) ([]domain.Activity, error)
	ActivityByEvent(ctx context.Context, eventID string) (domain.Activity, error)
}

// RegisterActivityLog exposes the persisted activity. notFound is the
// error reader returns for an unknown event.
func RegisterActivityLog(mux *http.ServeMux, reader ActivityReader, notFound error) {
	mux.HandleFunc("GET /v1/recent-activity", func(w http.ResponseWriter, r *http.Request) {
		const op = "RecentActivityHandler"
		log := slog.With("op", op)

		var limit int
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}
		kind := domain.ResourceKind(r.URL.Query().Get("kind"))

		vs, err := reader.RecentActivity(r.Context(), kind, limit)
		if err != nil {
			log.Error("failed to read activity", "err", err)
			http.Error(w, "activity is unavailable", http.StatusServiceUnavailable)
			return
		}
		out := make([]Activity, len(vs))
		for i, v := range vs {
			out[i] = toActivity(v)
		}
		writeJSON(w, op, out)
	})

	mux.HandleFunc("GET /v1/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		const op = "ActivityEventHandler"
		log := slog.With("op", op)

		v, err := reader.ActivityByEvent(r.Context(), r.PathValue("id"))
		if err != nil {
			if errors.Is(err, notFound) {
				http.Error(w, "event not found", http.StatusNotFound)
				return
			}
			log.Error("failed to read event", "err", err)
			http.Error(w, "activity is unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, op, toActivity(v))
	})
}

func writeJSON(w http.ResponseWriter, op string, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}

func listStatus[T domain.Entity](s service.Snapshot[T]) ListStatus {
	out := ListStatus{
		Kind:    string(s.Kind),
		Status:  s.Status.String(),
		Loading: s.Loading,
		Error:   s.Err,
		IDs:     make([]string, len(s.Items)),
		Pagination: Pagination{
			Total:       s.Pagination.Total,
			Page:        s.Pagination.Page,
			Limit:       s.Pagination.Limit,
			TotalPages:  s.Pagination.TotalPages,
			HasNextPage: s.Pagination.HasNextPage,
			HasPrevPage: s.Pagination.HasPrevPage,
		},
		Query: Query{
			Search:        s.Query.Search,
			Status:        s.Query.Status,
			Category:      s.Query.Category,
			PaymentStatus: s.Query.PaymentStatus,
			RefundStatus:  s.Query.RefundStatus,
			SortBy:        s.Query.SortBy,
			SortOrder:     s.Query.SortOrder,
			Page:          s.Query.Page,
			Limit:         s.Query.Limit,
		},
		StatsError: s.StatsErr,
	}
	for i, item := range s.Items {
		out.IDs[i] = item.EntityID()
	}
	if st := s.Stats; st != nil {
		out.Stats = &Stats{
			Total:    st.Total,
			Active:   st.Active,
			Inactive: st.Inactive,
			LowStock: st.LowStock,
			Live:     st.Live,
			Expired:  st.Expired,
		}
	}
	return out
}
