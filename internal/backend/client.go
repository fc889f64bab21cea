// Package backend is the HTTP client for the shop's REST backend, the server
// of record for sessions, catalog, sales, refunds and clients. Every call takes
// the operator's credential explicitly and runs behind a circuit breaker.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tallerpos/internal/credential"
	"tallerpos/internal/infra"
)

var (
	ErrNotFound     = errors.New("backend: recurso no encontrado")
	ErrUnauthorized = errors.New("backend: credencial rechazada")
	ErrForbidden    = errors.New("backend: acceso denegado")
	// ErrUnreachable wraps transport failures (refused, timeout, truncated body).
	ErrUnreachable = errors.New("backend: no se pudo contactar el servidor")
	// ErrInvalidResponse is a 2xx answer whose body cannot be used. The backend
	// did process the request, so a write may well have been recorded.
	ErrInvalidResponse = errors.New("backend: respuesta inesperada del servidor")
)

const maxResponseBytes = 4 << 20

// HTTPError is a non-2xx answer, or a 2xx answer carrying ok=false.
type HTTPError struct {
	Status int
	Msg    string
}

func (e *HTTPError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Msg)
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}

// Message returns the backend's own message for err, if it sent one.
func Message(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Msg
	}
	return ""
}

// tripsBreaker reports whether err means the backend itself is unhealthy.
func tripsBreaker(err error) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status >= http.StatusInternalServerError
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrUnreachable)
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	cb         *infra.CircuitBreaker
}

func New(baseURL string, timeout time.Duration, cb *infra.CircuitBreaker) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: url invalida: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend: url invalida %q", baseURL)
	}
	if cb == nil {
		cb = infra.NewCircuitBreaker(infra.DefaultCBConfig())
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}, nil
}

// Breaker exposes the breaker state for the health endpoint.
func (c *Client) Breaker() infra.CBState { return c.cb.State() }

type call struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do executes one JSON call and decodes the response into out, which must
// embed envelope. A 2xx response with ok=false is reported as *HTTPError.
func (c *Client) do(ctx context.Context, cred credential.Credential, req call, out any) error {
	if cred.IsZero() {
		return credential.ErrMissing
	}

	var payload []byte
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("backend: marshal %s %s: %w", req.method, req.path, err)
		}
		payload = b
	}

	return c.cb.Execute(func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path, req.query), body)
		if err != nil {
			return fmt.Errorf("backend: create request: %w", err)
		}
		httpReq.Header.Set("Authorization", cred.Authorization())
		httpReq.Header.Set("Accept", "application/json")
		if payload != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		for k, v := range req.headers {
			httpReq.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %s %s: %v", ErrUnreachable, req.method, req.path, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return fmt.Errorf("%w: read %s: %v", ErrUnreachable, req.path, err)
		}

		var env envelope
		_ = json.Unmarshal(raw, &env)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &HTTPError{Status: resp.StatusCode, Msg: env.Msg}
		}
		if env.OK != nil && !*env.OK {
			return &HTTPError{Status: http.StatusUnprocessableEntity, Msg: env.Msg}
		}
		if out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrInvalidResponse, req.path, err)
		}
		return nil
	}, tripsBreaker)
}

// ResolveRef turns a receipt reference into an absolute URL on the backend's
// host. References pointing at any other origin (host or scheme) are refused
// so the operator's credential is never sent elsewhere.
func (c *Client) ResolveRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNotFound
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("backend: referencia invalida %q", ref)
	}
	if u.IsAbs() {
		if !strings.EqualFold(u.Host, c.baseURL.Host) || !strings.EqualFold(u.Scheme, c.baseURL.Scheme) {
			return "", fmt.Errorf("backend: referencia fuera del servidor %q", ref)
		}
		return u.String(), nil
	}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return c.endpoint(u.Path, u.Query()), nil
}

// Document is a streamed receipt. The caller must close Body.
type Document struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Comprobante streams the receipt document behind ref.
func (c *Client) Comprobante(ctx context.Context, cred credential.Credential, ref string) (*Document, error) {
	if cred.IsZero() {
		return nil, credential.ErrMissing
	}
	target, err := c.ResolveRef(ref)
	if err != nil {
		return nil, err
	}

	var doc *Document
	err = c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("backend: create request: %w", err)
		}
		req.Header.Set("Authorization", cred.Authorization())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: comprobante: %v", ErrUnreachable, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return &HTTPError{Status: resp.StatusCode}
		}
		doc = &Document{
			Body:          resp.Body,
			ContentType:   resp.Header.Get("Content-Type"),
			ContentLength: resp.ContentLength,
		}
		return nil
	}, tripsBreaker)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
