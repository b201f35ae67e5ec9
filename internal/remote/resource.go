package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Record is what every entity resource works with: identity for URL
// construction and reconciliation, validation for strict decoding.
type Record interface {
	Key() string
	Validate() error
}

// Resource issues the four data-API verbs for one entity kind. The
// backend assigns ids and timestamps on create and merges fields on
// update.
type Resource[T Record] struct {
	c    *Client
	kind string // URL path segment, e.g. "memories"
}

func NewResource[T Record](c *Client, kind string) *Resource[T] {
	return &Resource[T]{c: c, kind: kind}
}

// List returns all records of the kind visible to the session,
// optionally narrowed by exact-match field predicates. The dataset is
// small and personal; no pagination contract exists.
func (r *Resource[T]) List(ctx context.Context, filter url.Values) ([]T, error) {
	var items []T
	if err := r.c.do(ctx, http.MethodGet, "/api/"+r.kind, filter, nil, &items, http.StatusOK); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("%w: list %s: %v", ErrBadShape, r.kind, err)
		}
	}
	return items, nil
}

// Create stores a new record and returns it with the server-assigned
// id and timestamps.
func (r *Resource[T]) Create(ctx context.Context, rec T) (T, error) {
	var out T
	if err := rec.Validate(); err != nil {
		return out, err
	}
	if err := r.c.do(ctx, http.MethodPost, "/api/"+r.kind, nil, rec, &out, http.StatusCreated); err != nil {
		return out, err
	}
	if err := out.Validate(); err != nil {
		return out, fmt.Errorf("%w: create %s: %v", ErrBadShape, r.kind, err)
	}
	return out, nil
}

// Update sends the record's current fields; the server merges and
// returns the stored version. An unknown id yields ErrNotFound.
func (r *Resource[T]) Update(ctx context.Context, rec T) (T, error) {
	var out T
	if err := rec.Validate(); err != nil {
		return out, err
	}
	if err := r.c.do(ctx, http.MethodPut, "/api/"+r.kind+"/"+url.PathEscape(rec.Key()), nil, rec, &out, http.StatusOK); err != nil {
		return out, err
	}
	if err := out.Validate(); err != nil {
		return out, fmt.Errorf("%w: update %s: %v", ErrBadShape, r.kind, err)
	}
	return out, nil
}

// Delete removes a record. "Already gone" counts as success.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	err := r.c.do(ctx, http.MethodDelete, "/api/"+r.kind+"/"+url.PathEscape(id), nil, nil, nil, http.StatusNoContent)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
