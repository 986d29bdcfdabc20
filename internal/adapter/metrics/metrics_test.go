package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niksmo/ecom-admin/internal/adapter/metrics"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMetrics(t *testing.T) {
	m := metrics.NewListMetrics()

	m.FetchIssued(domain.ResourceProduct)
	m.FetchIssued(domain.ResourceProduct)
	m.FetchCompleted(domain.ResourceProduct, 20*time.Millisecond, nil)
	m.FetchCompleted(domain.ResourceProduct, 30*time.Millisecond,
		&domain.RequestError{Op: "x", Err: errors.New("timeout")})
	m.FetchCompleted(domain.ResourceOrder, time.Millisecond, domain.ErrUnauthorized)
	m.StaleDiscarded(domain.ResourceProduct)

	expected := `
# HELP ecom_admin_list_fetches_issued_total List fetches sent to the API
# TYPE ecom_admin_list_fetches_issued_total counter
ecom_admin_list_fetches_issued_total{kind="product"} 2
# HELP ecom_admin_list_fetches_completed_total List fetches that returned, by outcome
# TYPE ecom_admin_list_fetches_completed_total counter
ecom_admin_list_fetches_completed_total{kind="order",outcome="unauthorized"} 1
ecom_admin_list_fetches_completed_total{kind="product",outcome="ok"} 1
ecom_admin_list_fetches_completed_total{kind="product",outcome="request_error"} 1
# HELP ecom_admin_list_stale_discarded_total Responses dropped because a newer fetch was issued
# TYPE ecom_admin_list_stale_discarded_total counter
ecom_admin_list_stale_discarded_total{kind="product"} 1
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"ecom_admin_list_fetches_issued_total",
		"ecom_admin_list_fetches_completed_total",
		"ecom_admin_list_stale_discarded_total",
	)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(m.Registry(), "ecom_admin_list_fetch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListMetricsHandler(t *testing.T) {
	m := metrics.NewListMetrics()
	m.FetchIssued(domain.ResourceBanner)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `ecom_admin_list_fetches_issued_total{kind="banner"} 1`)
}
