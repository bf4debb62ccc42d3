package docstore

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"

	"github.com/skyon-community/skyon-backend/internal/apperr"
)

// serverTimestamp is the Realtime Database placeholder the server replaces with its own
// clock in epoch milliseconds.
var serverTimestamp = map[string]any{".sv": "timestamp"}

// FirebaseBackend talks to a Firebase Realtime Database. Collections are top-level paths
// and record keys are the database's push ids, which sort chronologically.
type FirebaseBackend struct {
	client *db.Client
}

func NewFirebaseBackend(client *db.Client) *FirebaseBackend {
	return &FirebaseBackend{client: client}
}

func (f *FirebaseBackend) Name() string { return "firebase" }

func (f *FirebaseBackend) Push(ctx context.Context, collection string, fields map[string]any) (string, error) {
	doc := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc[FieldCreatedAt] = serverTimestamp

	ref, err := f.client.NewRef(collection).Push(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("push %s: %w", collection, err)
	}
	return ref.Key, nil
}

func (f *FirebaseBackend) GetAll(ctx context.Context, collection string) (map[string]Record, error) {
	var raw map[string]Record
	if err := f.client.NewRef(collection).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("get %s: %w", collection, err)
	}
	if raw == nil {
		raw = map[string]Record{}
	}
	return raw, nil
}

func (f *FirebaseBackend) Get(ctx context.Context, collection, key string) (Record, bool, error) {
	var rec Record
	if err := f.recordRef(collection, key).Get(ctx, &rec); err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	if rec == nil {
		return nil, false, nil
	}
	return rec, true, nil
}

func (f *FirebaseBackend) Set(ctx context.Context, collection, key string, fields map[string]any) error {
	if err := f.recordRef(collection, key).Set(ctx, fields); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}
	return nil
}

// Update merges fields inside a transaction so a record deleted meanwhile is not recreated
// from the partial fields alone.
func (f *FirebaseBackend) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	missing := false
	err := f.recordRef(collection, key).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var cur Record
		if err := node.Unmarshal(&cur); err != nil {
			return nil, err
		}
		merged, ok := mergeExisting(cur, fields)
		missing = !ok
		if !ok {
			return nil, nil
		}
		return merged, nil
	})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, key, err)
	}
	if missing {
		return apperr.ErrNotFound
	}
	return nil
}

// mergeExisting shallow-merges fields into cur. A nil cur is a deleted record and is left
// alone. A nil field value removes the child, as it does in a database update.
func mergeExisting(cur Record, fields map[string]any) (Record, bool) {
	if cur == nil {
		return nil, false
	}
	for k, v := range fields {
		if v == nil {
			delete(cur, k)
			continue
		}
		cur[k] = v
	}
	return cur, true
}

func (f *FirebaseBackend) Delete(ctx context.Context, collection, key string) error {
	if err := f.mustExist(ctx, collection, key); err != nil {
		return err
	}
	if err := f.recordRef(collection, key).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}

func (f *FirebaseBackend) Increment(ctx context.Context, collection, key, field string, delta float64) (float64, error) {
	var next float64
	missing := false

	err := f.recordRef(collection, key).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var cur Record
		if err := node.Unmarshal(&cur); err != nil {
			return nil, err
		}
		if cur == nil {
			missing = true
			return nil, nil
		}
		missing = false
		n, _ := cur.Number(field)
		next = n + delta
		cur[field] = next
		return cur, nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment %s/%s: %w", collection, key, err)
	}
	if missing {
		return 0, apperr.ErrNotFound
	}
	return next, nil
}

func (f *FirebaseBackend) mustExist(ctx context.Context, collection, key string) error {
	_, found, err := f.Get(ctx, collection, key)
	if err != nil {
		return err
	}
	if !found {
		return apperr.ErrNotFound
	}
	return nil
}

func (f *FirebaseBackend) recordRef(collection, key string) *db.Ref {
	return f.client.NewRef(collection).Child(key)
}
