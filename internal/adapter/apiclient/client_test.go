package apiclient_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/niksmo/ecom-admin/internal/adapter/apiclient"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreds struct {
	token       string
	invalidated atomic.Int32
}

func (c *fakeCreds) Token() (string, error) {
	if c.token == "" {
		return "", errors.New("no session")
	}
	return c.token, nil
}

func (c *fakeCreds) Invalidate() { c.invalidated.Add(1) }

func newTestClient(
	t *testing.T, h http.HandlerFunc,
) (*apiclient.Client, *fakeCreds) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	creds := &fakeCreds{token: "tkn"}
	c, err := apiclient.New(srv.URL+"/api", creds, apiclient.TimeoutOpt(time.Second))
	require.NoError(t, err)
	return c, creds
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	creds := &fakeCreds{token: "t"}

	t.Run("RelativeURL", func(t *testing.T) {
		_, err := apiclient.New("/api", creds)
		assert.Error(t, err)
	})

	t.Run("NilCreds", func(t *testing.T) {
		_, err := apiclient.New("http://localhost", nil)
		assert.Error(t, err)
	})

	t.Run("BadTimeout", func(t *testing.T) {
		_, err := apiclient.New("http://localhost", creds, apiclient.TimeoutOpt(0))
		assert.Error(t, err)
	})

	t.Run("Ok", func(t *testing.T) {
		_, err := apiclient.New("http://localhost/api/", creds)
		assert.NoError(t, err)
	})
}

func TestClientHeaders(t *testing.T) {
	var got *http.Request
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})

	_, err := c.Categories().List(t.Context(), domain.Query{Page: 2, Limit: 10, Search: "rings"})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/api/category/admin/categories", got.URL.Path)
	assert.Equal(t, "Bearer tkn", got.Header.Get("Authorization"))
	assert.NotEmpty(t, got.Header.Get(apiclient.RequestIDHeader))
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "10", got.URL.Query().Get("limit"))
	assert.Equal(t, "rings", got.URL.Query().Get("search"))
	assert.False(t, got.URL.Query().Has("status"))
}

func TestClientErrors(t *testing.T) {
	t.Run("Unauthorized", func(t *testing.T) {
		c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "jwt expired"})
		})
		_, err := c.Products().List(t.Context(), domain.NewQuery(20))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.EqualValues(t, 1, creds.invalidated.Load())
	})

	t.Run("NoToken", func(t *testing.T) {
		var calls atomic.Int32
		c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})
		creds.token = ""
		_, err := c.Products().Stats(t.Context())
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Zero(t, calls.Load())
		assert.EqualValues(t, 1, creds.invalidated.Load())
	})

	t.Run("ServerMessage", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]any{"message": "Slug already exists"})
		})
		_, err := c.Categories().Create(t.Context(), domain.CategoryInput{Name: "Rings"})
		var se *domain.ServerError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusConflict, se.Status)
		assert.Equal(t, "Slug already exists", domain.PublicMessage(err))
	})

	t.Run("NotFound", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		err := c.Banners().Delete(t.Context(), "b1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Malformed", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html>")
		})
		_, err := c.Banners().List(t.Context(), domain.NewQuery(20))
		var re *domain.RequestError
		assert.ErrorAs(t, err, &re)
	})

	t.Run("Transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := apiclient.New(srv.URL, &fakeCreds{token: "t"})
		require.NoError(t, err)

		_, err = c.Orders().List(t.Context(), domain.NewQuery(20))
		var re *domain.RequestError
		assert.ErrorAs(t, err, &re)
		assert.Equal(t, "Network error. Please check your connection.", domain.PublicMessage(err))
	})
}

func TestProductsCreate(t *testing.T) {
	var payload map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/products/create-product", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		writeJSON(w, http.StatusCreated, map[string]any{
			"data": map[string]any{
				"product": map[string]any{
					"_id":      "p1",
					"title":    "Gold Ring",
					"slug":     "gold-ring",
					"category": map[string]any{"_id": "c1", "name": "Rings"},
					"variants": []any{map[string]any{
						"sku":        "GOLD-RING-7-GOL",
						"price":      49.9,
						"stock":      3,
						"attributes": map[string]any{"size": "7", "color": "Gold"},
						"images":     []any{map[string]any{"url": "https://cdn/x.jpg"}},
					}},
				},
			},
		})
	})

	in := domain.ProductInput{
		Title:      "Gold Ring",
		Slug:       "gold-ring",
		CategoryID: "c1",
		Variants: []domain.Variant{{
			SKU:        "GOLD-RING-7-GOL",
			Price:      decimal.RequireFromString("49.90"),
			Stock:      3,
			Attributes: domain.VariantAttributes{Size: "7", Color: "Gold"},
		}},
	}
	p, err := c.Products().Create(t.Context(), in)
	require.NoError(t, err)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Rings", p.Category.Name)
	require.Len(t, p.Variants, 1)
	assert.True(t, decimal.RequireFromString("49.9").Equal(p.Variants[0].Price))
	assert.Equal(t, []string{"https://cdn/x.jpg"}, p.Variants[0].Images)

	assert.Equal(t, "c1", payload["category"])
	variants := payload["variants"].([]any)
	assert.EqualValues(t, 49.9, variants[0].(map[string]any)["price"])
	assert.Equal(t, []any{}, payload["tags"])
}

func TestResourceWrites(t *testing.T) {
	var method, path string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"_id": "c1", "name": "Rings", "isActive": false},
		})
	})

	cat, err := c.Categories().ToggleActive(t.Context(), "c1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/api/category/admin/category/c1/toggle-active", path)
	assert.False(t, cat.IsActive)

	_, err = c.Categories().Update(t.Context(), "c1", domain.CategoryInput{Name: "Rings"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/category/admin/category/c1", path)

	require.NoError(t, c.Banners().Delete(t.Context(), "b1"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/banners/b1", path)
}

func TestOrders(t *testing.T) {
	var (
		path    string
		payload map[string]string
	)
	order := map[string]any{
		"_id":         "o1",
		"orderNumber": "ORD-1",
		"status":      "processing",
		"total":       "120.50",
		"guestCheckout": map[string]any{
			"fullName": "Ann Lee", "email": "ann@example.com",
		},
		"items": []any{map[string]any{
			"product":  map[string]any{"_id": "p1", "title": "Gold Ring"},
			"variant":  map[string]any{"sku": "GR-7", "attributes": map[string]any{"size": "7"}},
			"quantity": 2,
			"price":    60.25,
		}},
		"refundRequest": map[string]any{"status": "pending_approval", "amount": 120.5},
	}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": map[string]any{
					"orders":     []any{order},
					"pagination": map[string]any{"total": 21, "page": 1, "limit": 20, "pages": 2},
				},
			})
			return
		}
		payload = map[string]string{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"order": order}})
	})

	page, err := c.Orders().List(t.Context(), domain.NewQuery(20))
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/admin/orders", path)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNextPage)

	o := page.Items[0]
	assert.Equal(t, "Ann Lee", o.Customer.Name)
	assert.Equal(t, "Gold Ring", o.Items[0].ProductTitle)
	assert.Equal(t, "GR-7", o.Items[0].SKU)
	assert.Equal(t, "7", o.Items[0].Size)
	require.NotNil(t, o.Refund)
	assert.Equal(t, domain.RefundPendingApproval, o.Refund.Status)

	_, err = c.Orders().UpdateStatus(t.Context(), "o1", domain.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/o1/status", path)
	assert.Equal(t, "shipped", payload["status"])

	_, err = c.Orders().ApproveRefund(t.Context(), "o1", "ok")
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/o1/refund-approve", path)
	assert.Equal(t, "ok", payload["adminNotes"])

	_, err = c.Orders().RejectRefund(t.Context(), "o1", "used item")
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/o1/refund-reject", path)
	assert.Equal(t, "used item", payload["rejectionReason"])
}

func TestAdmins(t *testing.T) {
	var (
		method, path string
		payload      map[string]any
	)
	admin := map[string]any{
		"_id": "a2", "username": "editor", "email": "editor@shop.test",
		"role": "admin", "isActive": true, "lastLogin": nil,
	}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		switch {
		case r.URL.Path == "/api/admin/stats":
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
				"totalAdmins": 3, "activeAdmins": 2, "superAdmins": 1,
			}})
		case r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{
				"data":       []any{admin},
				"pagination": map[string]any{"total": 1, "page": 1, "limit": 10, "totalPages": 1},
			})
		case r.Method == http.MethodDelete:
			writeJSON(w, http.StatusOK, map[string]any{"message": "deleted"})
		default:
			payload = map[string]any{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"admin": admin}})
		}
	})

	page, err := c.Admins().List(t.Context(), domain.NewQuery(10))
	require.NoError(t, err)
	assert.Equal(t, "/api/admin/admins", path)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a2", page.Items[0].EntityID())
	assert.True(t, page.Items[0].IsActive)
	assert.Nil(t, page.Items[0].LastLogin)

	in := domain.NewAdminInput()
	in.Username, in.Email, in.Password = "editor", "editor@shop.test", "secret1"
	_, err = c.Admins().Create(t.Context(), in)
	require.NoError(t, err)
	assert.Equal(t, "/api/admin/create-admin", path)
	assert.Equal(t, "secret1", payload["password"])
	assert.NotContains(t, payload, "NewAccount")

	_, err = c.Admins().Update(t.Context(), "a2", domain.AdminInputFrom(page.Items[0]))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/admin/admins/a2", path)
	assert.NotContains(t, payload, "password", "an untyped password is not sent")

	require.NoError(t, c.Admins().Delete(t.Context(), "a2"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/admin/admins/a2", path)

	s, err := c.Admins().Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Total: 3, Active: 2, Inactive: 1, SuperAdmins: 1}, s)
}

func TestStats(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"totalBanners":   5,
			"activeBanners":  3,
			"currentBanners": 2,
			"expiredBanners": 1,
		}})
	})

	s, err := c.Banners().Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Total: 5, Active: 3, Inactive: 2, Live: 2, Expired: 1}, s)
}

func TestLogin(t *testing.T) {
	c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		if r.URL.Path != "/api/admin/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"admin":  map[string]any{"_id": "a1", "username": "root", "role": "superadmin"},
			"tokens": map[string]any{"accessToken": "acc", "refreshToken": "ref"},
		}})
	})
	creds.token = ""

	s, err := c.Login(t.Context(), domain.Credentials{Email: "a@b.c", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "root", s.Admin.Username)
	assert.Equal(t, "acc", s.Tokens.AccessToken)

	_, err = c.Login(t.Context(), domain.Credentials{Email: "a@b.c", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, creds.invalidated.Load())
}

func TestUploadImage(t *testing.T) {
	var folder, filename, content string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload/image", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		folder = r.FormValue("folder")
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		filename, content = hdr.Filename, string(data)
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"url": "https://cdn/ring.png"}})
	})

	u, err := c.UploadImage(t.Context(), "/tmp/ring.png", strings.NewReader("PNG"), "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/ring.png", u)
	assert.Equal(t, apiclient.DefaultUploadFolder, folder)
	assert.Equal(t, "ring.png", filename)
	assert.Equal(t, "PNG", content)
}
