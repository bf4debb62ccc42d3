package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/skyon-community/skyon-backend/internal/apperr"
)

const (
	collectionKeyPrefix = "ds:"        // Hash of records: ds:{collection} -> {key: json}
	clockKeySuffix      = ":clock"     // Last issued createdAt: ds:{collection}:clock
	eventChannelPrefix  = "ds:events:" // Pub/Sub channel per collection
	maxTxRetries        = 8
)

// ChangeEvent is published on ds:events:{collection} after every successful write.
type ChangeEvent struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

// stampScript issues a createdAt from the Redis server clock, strictly greater than the
// previous stamp of the same collection.
var stampScript = redis.NewScript(`
local t = redis.call('TIME')
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)
local last = tonumber(redis.call('GET', KEYS[1]) or '0')
if now <= last then
  now = last + 1
end
redis.call('SET', KEYS[1], now)
return now
`)

// RedisBackend stores each collection as a hash of JSON-encoded records.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Name() string { return "redis" }

func (r *RedisBackend) Push(ctx context.Context, collection string, fields map[string]any) (string, error) {
	key, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	ts, err := stampScript.Run(ctx, r.client, []string{r.clockKey(collection)}).Int64()
	if err != nil {
		return "", fmt.Errorf("stamp createdAt: %w", err)
	}

	doc := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc[FieldCreatedAt] = ts

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := r.client.HSet(ctx, r.collectionKey(collection), key.String(), data).Err(); err != nil {
		return "", fmt.Errorf("failed to write record: %w", err)
	}
	r.publish(ctx, collection, "create", key.String())
	return key.String(), nil
}

func (r *RedisBackend) Set(ctx context.Context, collection, key string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := r.client.HSet(ctx, r.collectionKey(collection), key, data).Err(); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	r.publish(ctx, collection, "set", key)
	return nil
}

func (r *RedisBackend) GetAll(ctx context.Context, collection string) (map[string]Record, error) {
	raw, err := r.client.HGetAll(ctx, r.collectionKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	out := make(map[string]Record, len(raw))
	for key, data := range raw {
		rec, err := decodeRecord([]byte(data))
		if err != nil {
			return nil, err
		}
		out[key] = rec
	}
	return out, nil
}

func (r *RedisBackend) Get(ctx context.Context, collection, key string) (Record, bool, error) {
	data, err := r.client.HGet(ctx, r.collectionKey(collection), key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read record: %w", err)
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (r *RedisBackend) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	err := r.modify(ctx, collection, key, func(rec Record) error {
		for k, v := range fields {
			rec[k] = v
		}
		return nil
	})
	if err == nil {
		r.publish(ctx, collection, "update", key)
	}
	return err
}

func (r *RedisBackend) Delete(ctx context.Context, collection, key string) error {
	n, err := r.client.HDel(ctx, r.collectionKey(collection), key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	r.publish(ctx, collection, "delete", key)
	return nil
}

func (r *RedisBackend) Increment(ctx context.Context, collection, key, field string, delta float64) (float64, error) {
	var next float64
	err := r.modify(ctx, collection, key, func(rec Record) error {
		cur, _ := rec.Number(field)
		next = cur + delta
		rec[field] = next
		return nil
	})
	if err == nil {
		r.publish(ctx, collection, "update", key)
	}
	return next, err
}

// EventChannel names the Pub/Sub channel carrying change events of collection.
func EventChannel(collection string) string {
	return eventChannelPrefix + collection
}

// publish is best effort; readers re-fetch and never depend on it.
func (r *RedisBackend) publish(ctx context.Context, collection, action, key string) {
	data, err := json.Marshal(ChangeEvent{Action: action, ID: key})
	if err == nil {
		r.client.Publish(ctx, EventChannel(collection), data)
	}
}

// modify performs an optimistic read-modify-write of a single record under WATCH, so two
// writers touching different fields of the same record never overwrite each other.
func (r *RedisBackend) modify(ctx context.Context, collection, key string, fn func(Record) error) error {
	hashKey := r.collectionKey(collection)

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, hashKey, key).Bytes()
		if err == redis.Nil {
			return apperr.ErrNotFound
		}
		if err != nil {
			return err
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
		out, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hashKey, key, out)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, hashKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("record %s/%s: too much write contention", collection, key)
}

func (r *RedisBackend) collectionKey(collection string) string {
	return fmt.Sprintf("%s%s", collectionKeyPrefix, collection)
}

func (r *RedisBackend) clockKey(collection string) string {
	return fmt.Sprintf("%s%s%s", collectionKeyPrefix, collection, clockKeySuffix)
}
