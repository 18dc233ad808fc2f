package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Client talks to the remote employee API. It holds no session state; every
// call receives the bearer token of the browser it acts for.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each upstream call. Zero leaves calls unbounded. The
// current http.Client is copied so a shared one is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Employees() Employees { return Employees{c: c} }

func (c *Client) Users() Users { return Users{c: c} }

type request struct {
	endpoint    string
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func jsonRequest(endpoint, method, path, token string, payload any) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, errors.Wrap(err, "encode payload")
	}
	return request{
		endpoint:    endpoint,
		method:      method,
		path:        path,
		token:       token,
		body:        bytes.NewReader(body),
		contentType: "application/json",
	}, nil
}

func formRequest(endpoint, method, path, token string, form Form) (request, error) {
	body, contentType, err := form.Encode()
	if err != nil {
		return request{}, err
	}
	return request{
		endpoint:    endpoint,
		method:      method,
		path:        path,
		token:       token,
		body:        body,
		contentType: contentType,
	}, nil
}

// call performs one upstream request and decodes the envelope. Failures that
// leave no envelope to read are returned as *TransportError.
func call[T any](ctx context.Context, c *Client, req request) (Outcome[T], error) {
	start := time.Now()
	outcome, err := roundTrip[T](ctx, c, req)
	if c.metrics != nil {
		c.metrics.observe(req.endpoint, outcomeLabel(outcome, err), time.Since(start))
	}
	return outcome, err
}

func roundTrip[T any](ctx context.Context, c *Client, req request) (Outcome[T], error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token := strings.TrimSpace(req.token); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Endpoint: req.endpoint, Err: err}
	}
	defer resp.Body.Close()

	outcome, err := decodeOutcome[T](resp)
	if err != nil {
		return nil, &TransportError{Endpoint: req.endpoint, Err: err}
	}
	return outcome, nil
}

func outcomeLabel[T any](o Outcome[T], err error) string {
	if err != nil {
		return "transport"
	}
	switch o.(type) {
	case Success[T]:
		return StatusSuccess
	case Fail[T]:
		return StatusFail
	default:
		return StatusError
	}
}
