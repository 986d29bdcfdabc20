package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niksmo/ecom-admin/internal/adapter/httphandler"
	"github.com/niksmo/ecom-admin/internal/adapter/notify"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestListHandler(t *testing.T) {
	store := service.NewStore[domain.Category](domain.ResourceCategory, domain.NewQuery(20))
	store.SetResult(
		[]domain.Category{{ID: "c1", Name: "Rings"}, {ID: "c2", Name: "Earrings"}},
		domain.NewPagination(2, 1, 20),
	)
	store.SetStats(domain.Stats{Total: 2, Active: 1, Inactive: 1})

	mux := httphandler.NewMux(nil)
	httphandler.RegisterList(mux, store)

	w := serve(t, mux, http.MethodGet, "/v1/lists/category")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got httphandler.ListStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "category", got.Kind)
	assert.Equal(t, "ready", got.Status)
	assert.Equal(t, []string{"c1", "c2"}, got.IDs)
	assert.Equal(t, 1, got.Pagination.TotalPages)
	require.NotNil(t, got.Stats)
	assert.Equal(t, 1, got.Stats.Inactive)

	w = serve(t, mux, http.MethodGet, "/v1/lists/product")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToastsHandler(t *testing.T) {
	toasts := notify.New(slog.New(slog.DiscardHandler), 5)
	toasts.Success("Category created")

	mux := httphandler.NewMux(nil)
	httphandler.RegisterToasts(mux, toasts)

	w := serve(t, mux, http.MethodGet, "/v1/toasts")
	require.Equal(t, http.StatusOK, w.Code)

	var got []httphandler.Toast
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, []httphandler.Toast{{Level: "success", Message: "Category created"}}, got)
}

type fakeCounter struct {
	counts map[domain.ResourceKind]domain.ActivityCounts
	err    error
}

func (c fakeCounter) Counts(kind domain.ResourceKind) (domain.ActivityCounts, error) {
	return c.counts[kind], c.err
}

func TestActivityCountsHandler(t *testing.T) {
	t.Run("Ok", func(t *testing.T) {
		mux := httphandler.NewMux(nil)
		httphandler.RegisterActivityCounts(mux, fakeCounter{counts: map[domain.ResourceKind]domain.ActivityCounts{
			domain.ResourceBanner: {Total: 3, ByAction: map[domain.Action]int64{domain.ActionCreate: 3}},
		}})

		w := serve(t, mux, http.MethodGet, "/v1/activity/banner")
		require.Equal(t, http.StatusOK, w.Code)

		var got httphandler.ActivityCounts
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.EqualValues(t, 3, got.Total)
		assert.EqualValues(t, 3, got.ByAction["create"])
	})

	t.Run("Unavailable", func(t *testing.T) {
		mux := httphandler.NewMux(nil)
		httphandler.RegisterActivityCounts(mux, fakeCounter{err: errors.New("view is not ready")})

		w := serve(t, mux, http.MethodGet, "/v1/activity/banner")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestMiddleware(t *testing.T) {
	mux := httphandler.NewMux(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	}))
	h := httphandler.LogRequests(httphandler.AllowJSON(mux))

	w := serve(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, "metrics", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(httphandler.RequestIDHeader))

	w = serve(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusNoContent, w.Code)

	r := httptest.NewRequest(http.MethodPost, "/metrics", strings.NewReader("x"))
	r.Header.Set("Content-Type", "text/plain")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

var errNoEvent = errors.New("no event")

type fakeActivityReader struct {
	events    []domain.Activity
	gotKind   domain.ResourceKind
	gotLimit  int
	recentErr error
}

func (r *fakeActivityReader) RecentActivity(
	_ context.Context, kind domain.ResourceKind, limit int,
) ([]domain.Activity, error) {
	r.gotKind, r.gotLimit = kind, limit
	return r.events, r.recentErr
}

func (r *fakeActivityReader) ActivityByEvent(
	_ context.Context, eventID string,
) (domain.Activity, error) {
	for _, e := range r.events {
		if e.EventID == eventID {
			return e, nil
		}
	}
	return domain.Activity{}, fmt.Errorf("fake: %w", errNoEvent)
}

func TestActivityLogHandler(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	reader := &fakeActivityReader{events: []domain.Activity{{
		EventID:    "e1",
		Resource:   domain.ResourceProduct,
		Action:     domain.ActionDelete,
		EntityID:   "p1",
		Admin:      "root",
		OccurredAt: at,
	}}}

	mux := httphandler.NewMux(nil)
	httphandler.RegisterActivityLog(mux, reader, errNoEvent)

	t.Run("Recent", func(t *testing.T) {
		w := serve(t, mux, http.MethodGet, "/v1/recent-activity?kind=product&limit=5")
		require.Equal(t, http.StatusOK, w.Code)

		var got []httphandler.Activity
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		require.Len(t, got, 1)
		assert.Equal(t, "delete", got[0].Action)
		assert.True(t, at.Equal(got[0].OccurredAt))
		assert.Equal(t, domain.ResourceProduct, reader.gotKind)
		assert.Equal(t, 5, reader.gotLimit)
	})

	t.Run("BadLimit", func(t *testing.T) {
		w := serve(t, mux, http.MethodGet, "/v1/recent-activity?limit=zero")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Event", func(t *testing.T) {
		w := serve(t, mux, http.MethodGet, "/v1/events/e1")
		require.Equal(t, http.StatusOK, w.Code)

		var got httphandler.Activity
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, "p1", got.EntityID)
	})

	t.Run("EventNotFound", func(t *testing.T) {
		w := serve(t, mux, http.MethodGet, "/v1/events/e2")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
