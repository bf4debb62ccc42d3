package registry

import (
	"context"

	"github.com/skyon-community/skyon-backend/internal/docstore"
)

// Repo gives typed access to one collection. T is the record shape as read back from the
// store; writes take any value that flattens into fields.
type Repo[T any] struct {
	client *docstore.Client
	coll   Collection
}

func NewRepo[T any](client *docstore.Client, coll Collection) *Repo[T] {
	return &Repo[T]{client: client, coll: coll}
}

func (r *Repo[T]) Collection() Collection { return r.coll }

// List returns the collection most recent first.
func (r *Repo[T]) List(ctx context.Context) ([]T, error) {
	records, err := r.client.List(ctx, string(r.coll))
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[T](records)
}

// Records returns the raw records most recent first.
func (r *Repo[T]) Records(ctx context.Context) ([]docstore.Record, error) {
	return r.client.List(ctx, string(r.coll))
}

func (r *Repo[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	rec, found, err := r.Record(ctx, id)
	if err != nil || !found {
		return zero, found, err
	}
	v, err := docstore.Decode[T](rec)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Record returns the untyped record, used where ownership is checked.
func (r *Repo[T]) Record(ctx context.Context, id string) (docstore.Record, bool, error) {
	return r.client.Get(ctx, string(r.coll), id)
}

func (r *Repo[T]) Create(ctx context.Context, input any, actor docstore.Snapshot) (string, error) {
	fields, err := docstore.Fields(input)
	if err != nil {
		return "", err
	}
	return r.client.Create(ctx, string(r.coll), fields, actor)
}

func (r *Repo[T]) Update(ctx context.Context, id string, partial map[string]any) error {
	return r.client.Update(ctx, string(r.coll), id, partial)
}

func (r *Repo[T]) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, string(r.coll), id)
}

func (r *Repo[T]) Increment(ctx context.Context, id, field string, delta float64) (float64, error) {
	return r.client.Increment(ctx, string(r.coll), id, field, delta)
}
