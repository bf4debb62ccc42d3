package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/internal/apperr"
)

// Client is the uniform CRUD facade every feature module goes through. It hides the
// backend's path and query syntax and applies the record conventions: ids, createdAt
// and ownership snapshots.
type Client struct {
	backend     Backend
	ownerFields map[string]string
	timeout     time.Duration
	log         *zap.Logger
}

type Option func(*Client)

// WithOwnerFields declares, per collection, the field that holds the ownership snapshot.
func WithOwnerFields(fields map[string]string) Option {
	return func(c *Client) {
		for coll, f := range fields {
			c.ownerFields[coll] = f
		}
	}
}

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(backend Backend, opts ...Option) *Client {
	c := &Client{
		backend:     backend,
		ownerFields: make(map[string]string),
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("backend", backend.Name()))
	return c
}

// OwnerField returns the ownership field name used by collection.
func (c *Client) OwnerField(collection string) string {
	if f, ok := c.ownerFields[collection]; ok {
		return f
	}
	return DefaultOwnerField
}

// ListRaw fetches a whole collection. Relative order is undefined; use List for the
// canonical most-recent-first order. A collection with no records yields an empty slice.
func (c *Client) ListRaw(ctx context.Context, collection string) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	cctx, cancel := c.withTimeout(ctx)
	defer cancel()

	all, err := c.backend.GetAll(cctx, collection)
	// The caller may have gone away while the fetch was outstanding; drop the result.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		c.log.Warn("list collection failed", zap.String("collection", collection), zap.Error(err))
		return nil, fmt.Errorf("list %s: %w: %v", collection, apperr.ErrStoreUnavailable, err)
	}

	out := make([]Record, 0, len(all))
	for key, rec := range all {
		if rec == nil {
			continue
		}
		rec[FieldID] = key
		out = append(out, rec)
	}
	return out, nil
}

// List fetches a collection ordered by createdAt, most recent first.
func (c *Client) List(ctx context.Context, collection string) ([]Record, error) {
	records, err := c.ListRaw(ctx, collection)
	if err != nil {
		return nil, err
	}
	SortByCreatedDesc(records)
	return records, nil
}

// Get fetches one record. A missing key is reported as found=false, not as an error.
func (c *Client) Get(ctx context.Context, collection, id string) (Record, bool, error) {
	if err := checkCollection(collection); err != nil {
		return nil, false, err
	}
	if err := checkKey(id); err != nil {
		return nil, false, nil
	}
	cctx, cancel := c.withTimeout(ctx)
	defer cancel()

	rec, found, err := c.backend.Get(cctx, collection, id)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, ctxErr
	}
	if err != nil {
		c.log.Warn("get record failed", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return nil, false, fmt.Errorf("get %s/%s: %w: %v", collection, id, apperr.ErrStoreUnavailable, err)
	}
	if !found || rec == nil {
		return nil, false, nil
	}
	rec[FieldID] = id
	return rec, true, nil
}

// Create writes a new record owned by actor and returns its store-assigned id.
// Every supplied field is kept; id, createdAt and the ownership field are reserved.
func (c *Client) Create(ctx context.Context, collection string, fields map[string]any, actor Snapshot) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}
	if actor.UID == "" {
		return "", fmt.Errorf("create %s: %w", collection, apperr.ErrUnauthenticated)
	}
	ownerField := c.OwnerField(collection)
	if err := checkReserved(fields, ownerField); err != nil {
		return "", err
	}

	doc, err := normalize(fields)
	if err != nil {
		return "", apperr.Invalid("fields", err.Error())
	}
	doc[ownerField] = actor

	cctx, cancel := c.withTimeout(ctx)
	defer cancel()

	id, err := c.backend.Push(cctx, collection, doc)
	if err != nil {
		c.log.Error("create record failed", zap.String("collection", collection), zap.String("uid", actor.UID), zap.Error(err))
		return "", fmt.Errorf("create %s: %w: %v", collection, apperr.ErrWriteFailed, err)
	}
	c.log.Debug("record created", zap.String("collection", collection), zap.String("id", id), zap.String("uid", actor.UID))
	return id, nil
}

// Put writes a record under a known key with no ownership snapshot or createdAt. It serves
// collections keyed by identity, such as resident profiles.
func (c *Client) Put(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := checkKey(id); err != nil {
		return err
	}
	if _, ok := fields[FieldID]; ok {
		return apperr.Invalid(FieldID, "field is managed by the store")
	}
	doc, err := normalize(fields)
	if err != nil {
		return apperr.Invalid("fields", err.Error())
	}

	cctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.backend.Set(cctx, collection, id, doc); err != nil {
		return c.writeErr("put", collection, id, err)
	}
	return nil
}

// Update shallow-merges partial into the record: only the named top-level fields are
// replaced. Nested values (such as a product list) must be supplied whole.
func (c *Client) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := checkKey(id); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, apperr.ErrNotFound)
	}
	if len(partial) == 0 {
		return apperr.Invalid("fields", "nothing to update")
	}
	if err := checkReserved(partial, c.OwnerField(collection)); err != nil {
		return err
	}
	for k := range partial {
		if strings.ContainsAny(k, "/.$#[]") || k == "" {
			return apperr.Invalid(k, "invalid field name")
		}
	}

	doc, err := normalize(partial)
	if err != nil {
		return apperr.Invalid("fields", err.Error())
	}

	cctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.backend.Update(cctx, collection, id, doc); err != nil {
		return c.writeErr("update", collection, id, err)
	}
	return nil
}

// Delete removes the record and everything nested beneath it. There is no tombstone.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := checkKey(id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, apperr.ErrNotFound)
	}
	cctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.backend.Delete(cctx, collection, id); err != nil {
		return c.writeErr("delete", collection, id, err)
	}
	return nil
}

// Increment atomically adds delta to a numeric field. Concurrent increments are never lost,
// unlike a read-modify-write through Update.
func (c *Client) Increment(ctx context.Context, collection, id, field string, delta float64) (float64, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	if err := checkKey(id); err != nil {
		return 0, fmt.Errorf("increment %s/%s: %w", collection, id, apperr.ErrNotFound)
	}
	if field == FieldID || field == FieldCreatedAt || field == c.OwnerField(collection) {
		return 0, apperr.Invalid(field, "field is managed by the store")
	}
	cctx, cancel := c.withTimeout(ctx)
	defer cancel()

	v, err := c.backend.Increment(cctx, collection, id, field, delta)
	if err != nil {
		return 0, c.writeErr("increment", collection, id, err)
	}
	return v, nil
}

func (c *Client) writeErr(op, collection, id string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrValidation) {
		return fmt.Errorf("%s %s/%s: %w", op, collection, id, err)
	}
	c.log.Error(op+" record failed", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
	return fmt.Errorf("%s %s/%s: %w: %v", op, collection, id, apperr.ErrWriteFailed, err)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func checkCollection(name string) error {
	if name == "" || strings.ContainsAny(name, "/.$#[]") {
		return apperr.Invalid("collection", fmt.Sprintf("invalid collection name %q", name))
	}
	return nil
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, "/.$#[]") {
		return apperr.Invalid("id", "invalid record id")
	}
	return nil
}

func checkReserved(fields map[string]any, ownerField string) error {
	var errs apperr.Collector
	for _, k := range []string{FieldID, FieldCreatedAt, ownerField} {
		if _, ok := fields[k]; ok {
			errs.Add(k, "field is managed by the store")
		}
	}
	return errs.Err()
}
