package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tallerpos/internal/credential"
)

// Resource is a CRUD client for one backend collection. The backend wraps
// single entities as {ok, <key>: {...}} and lists as {ok, <listKey>: [...]}.
type Resource[T any] struct {
	client  *Client
	path    string
	key     string
	listKey string
}

func NewResource[T any](c *Client, path, key, listKey string) *Resource[T] {
	return &Resource[T]{client: c, path: path, key: key, listKey: listKey}
}

// rawEnvelope keeps the payload undecoded until we know which key holds it.
type rawEnvelope map[string]json.RawMessage

func (r *Resource[T]) decode(env rawEnvelope, key string, out any) error {
	raw, ok := env[key]
	if !ok || string(raw) == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidResponse, r.path, err)
	}
	return nil
}

func (r *Resource[T]) List(ctx context.Context, cred credential.Credential, query url.Values) ([]T, error) {
	var env rawEnvelope
	if err := r.client.do(ctx, cred, call{method: http.MethodGet, path: r.path, query: query}, &env); err != nil {
		return nil, err
	}
	var out []T
	if err := r.decode(env, r.listKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, cred credential.Credential, id int64) (T, error) {
	return r.GetPath(ctx, cred, strconv.FormatInt(id, 10))
}

// GetPath fetches <path>/<sub>, for lookups keyed by something other than id.
func (r *Resource[T]) GetPath(ctx context.Context, cred credential.Credential, sub string) (T, error) {
	var zero, out T
	var env rawEnvelope
	if err := r.client.do(ctx, cred, call{method: http.MethodGet, path: r.path + "/" + sub}, &env); err != nil {
		return zero, err
	}
	if err := r.decode(env, r.key, &out); err != nil {
		return zero, err
	}
	return out, nil
}

func (r *Resource[T]) Create(ctx context.Context, cred credential.Credential, body any) (T, error) {
	return r.write(ctx, cred, http.MethodPost, r.path, body)
}

func (r *Resource[T]) Update(ctx context.Context, cred credential.Credential, id int64, body any) (T, error) {
	return r.write(ctx, cred, http.MethodPut, r.path+"/"+strconv.FormatInt(id, 10), body)
}

func (r *Resource[T]) Delete(ctx context.Context, cred credential.Credential, id int64) error {
	return r.client.do(ctx, cred, call{method: http.MethodDelete, path: r.path + "/" + strconv.FormatInt(id, 10)}, nil)
}

func (r *Resource[T]) write(ctx context.Context, cred credential.Credential, method, path string, body any) (T, error) {
	var zero, out T
	var env rawEnvelope
	if err := r.client.do(ctx, cred, call{method: method, path: path, body: body}, &env); err != nil {
		return zero, err
	}
	if err := r.decode(env, r.key, &out); err != nil {
		return zero, err
	}
	return out, nil
}
