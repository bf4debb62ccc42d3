package docstore

import "context"

// Backend is the remote store boundary. Implementations own key generation and the
// createdAt stamp; the Client never supplies either.
//
// Get reports absence with found=false. Update, Delete and Increment return
// apperr.ErrNotFound when the record does not exist.
type Backend interface {
	// Push writes fields under a new unique key, stamping FieldCreatedAt with the store clock.
	Push(ctx context.Context, collection string, fields map[string]any) (string, error)
	// GetAll returns the whole collection keyed by record key. A missing collection is empty.
	GetAll(ctx context.Context, collection string) (map[string]Record, error)
	Get(ctx context.Context, collection, key string) (rec Record, found bool, err error)
	// Set writes a record under a caller-chosen key, replacing any previous value.
	Set(ctx context.Context, collection, key string, fields map[string]any) error
	// Update replaces only the named top-level fields.
	Update(ctx context.Context, collection, key string, fields map[string]any) error
	Delete(ctx context.Context, collection, key string) error
	// Increment atomically adds delta to a numeric field and returns the new value.
	Increment(ctx context.Context, collection, key, field string, delta float64) (float64, error)
	Name() string
}
