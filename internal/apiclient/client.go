// Package apiclient talks to the marketplace REST backend. Every function
// issues exactly one request, never retries, and returns ErrUnauthenticated,
// *RemoteError or *TransportError on failure.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const maxBodyBytes = 8 << 20

var (
	backendReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbaay_backend_requests_total",
			Help: "Requests sent to the marketplace backend.",
		},
		[]string{"method", "endpoint", "status"},
	)
	backendLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mbaay_backend_request_duration_seconds",
			Help:    "Latency of marketplace backend requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(backendReqs, backendLat)
}

type Options struct {
	BaseURL          string
	CommunityBaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

type Client struct {
	base      string
	community string
	http      *http.Client
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		base:      strings.TrimRight(opts.BaseURL, "/"),
		community: strings.TrimRight(opts.CommunityBaseURL, "/"),
		http:      hc,
	}
}

// call describes one request. endpoint is the metrics label; it must not
// contain ids.
type call struct {
	method   string
	base     string
	path     string
	endpoint string
	token    string
	auth     bool
	body     io.Reader
	ctype    string
}

func (c *Client) do(ctx context.Context, rc call) ([]byte, error) {
	if rc.auth && strings.TrimSpace(rc.token) == "" {
		return nil, ErrUnauthenticated
	}
	base := rc.base
	if base == "" {
		base = c.base
	}
	req, err := http.NewRequestWithContext(ctx, rc.method, base+rc.path, rc.body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", rc.method, rc.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if rc.ctype != "" {
		req.Header.Set("Content-Type", rc.ctype)
	}
	if rc.token != "" {
		req.Header.Set("Authorization", "Bearer "+rc.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	backendLat.WithLabelValues(rc.method, rc.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		backendReqs.WithLabelValues(rc.method, rc.endpoint, "transport_error").Inc()
		return nil, &TransportError{Op: rc.method + " " + rc.endpoint, Err: err}
	}
	defer resp.Body.Close()
	backendReqs.WithLabelValues(rc.method, rc.endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: "read " + rc.endpoint, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(body)
		if msg == "" {
			msg = genericMessage(resp.StatusCode)
		}
		return nil, &RemoteError{Status: resp.StatusCode, Message: msg}
	}
	return body, nil
}

func genericMessage(status int) string {
	if t := http.StatusText(status); t != "" {
		return strings.ToLower(t)
	}
	return "request failed"
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func (c *Client) getList(ctx context.Context, path, endpoint, token string, out any) error {
	body, err := c.do(ctx, call{method: http.MethodGet, path: path, endpoint: endpoint, token: token, auth: true})
	if err != nil {
		return err
	}
	if err := decodeList(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) getObject(ctx context.Context, path, endpoint, token string, auth bool, out any) error {
	body, err := c.do(ctx, call{method: http.MethodGet, path: path, endpoint: endpoint, token: token, auth: auth})
	if err != nil {
		return err
	}
	if err := decodeObject(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path, endpoint, token string, auth bool, in any) ([]byte, error) {
	var r io.Reader = http.NoBody
	if in != nil {
		var err error
		if r, err = jsonBody(in); err != nil {
			return nil, fmt.Errorf("encode %s: %w", endpoint, err)
		}
	}
	return c.do(ctx, call{method: method, path: path, endpoint: endpoint, token: token, auth: auth, body: r, ctype: "application/json"})
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}
