package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
)

const (
	DefaultTimeout = 10 * time.Second

	RequestIDHeader = "X-Request-ID"

	maxBodySize = 8 << 20
)

type Opt func(*clientOpts) error

type clientOpts struct {
	timeout    time.Duration
	tlsConfig  *tls.Config
	httpClient *http.Client
}

func TimeoutOpt(d time.Duration) Opt {
	return func(o *clientOpts) error {
		if d <= 0 {
			return fmt.Errorf("invalid timeout %s", d)
		}
		o.timeout = d
		return nil
	}
}

func TLSConfigOpt(cfg *tls.Config) Opt {
	return func(o *clientOpts) error {
		if cfg == nil {
			return errors.New("tls config is nil")
		}
		o.tlsConfig = cfg
		return nil
	}
}

// HTTPClientOpt replaces the underlying client. Timeout and TLS options
// are ignored then.
func HTTPClientOpt(c *http.Client) Opt {
	return func(o *clientOpts) error {
		if c == nil {
			return errors.New("http client is nil")
		}
		o.httpClient = c
		return nil
	}
}

// Client talks to the admin REST API. It keeps no state besides the
// credential source.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	creds   port.CredentialSource
}

func New(baseURL string, creds port.CredentialSource, opts ...Opt) (*Client, error) {
	const op = "apiclient.New"

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url must be absolute: %q", op, baseURL)
	}
	if creds == nil {
		return nil, fmt.Errorf("%s: credential source is nil", op)
	}

	options := clientOpts{timeout: DefaultTimeout}
	for _, o := range opts {
		if err := o(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	hc := options.httpClient
	if hc == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if options.tlsConfig != nil {
			transport.TLSClientConfig = options.tlsConfig
		}
		hc = &http.Client{Timeout: options.timeout, Transport: transport}
	}

	return &Client{baseURL: u, http: hc, creds: creds}, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any

	// raw with contentType is sent as is; body is ignored then.
	raw         io.Reader
	contentType string

	public bool
}

// do issues the request and returns the response body of a 2xx reply.
func (c *Client) do(ctx context.Context, op string, r request) ([]byte, error) {
	var token string
	if !r.public {
		t, err := c.creds.Token()
		if err != nil {
			c.creds.Invalidate()
			return nil, fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
		}
		token = t
	}

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, &domain.RequestError{Op: op, Err: err}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	log := slog.With("op", op, "requestID", reqID, "method", r.method, "path", r.path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("request failed", "err", err)
		return nil, &domain.RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &domain.RequestError{Op: op, Err: err}
	}
	log.Debug("response", "status", resp.StatusCode, "elapsed", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		if !r.public {
			c.creds.Invalidate()
		}
		return nil, fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%s: %w", op, serverError(resp.StatusCode, body))
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	u, err := url.Parse(c.baseURL.String() + r.path)
	if err != nil {
		return nil, err
	}
	if len(r.query) != 0 {
		u.RawQuery = r.query.Encode()
	}

	body := r.raw
	contentType := r.contentType
	if body == nil && r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func serverError(status int, body []byte) *domain.ServerError {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &e)

	msg := e.Message
	if msg == "" {
		msg = e.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &domain.ServerError{Status: status, Message: msg}
}

func listQuery(q domain.Query) url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	v.Set("page", fmt.Sprint(domain.ClampPage(q.Page)))
	v.Set("limit", fmt.Sprint(domain.ClampLimit(q.Limit, domain.MaxLimit)))
	set("search", q.Search)
	set("status", q.Status)
	set("category", q.Category)
	set("paymentStatus", q.PaymentStatus)
	set("refundStatus", q.RefundStatus)
	set("sortBy", q.SortBy)
	set("sortOrder", q.SortOrder)
	return v
}
