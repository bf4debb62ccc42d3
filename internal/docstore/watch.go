package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrWatchUnsupported is returned by Watch on backends without change notifications.
var ErrWatchUnsupported = errors.New("backend does not publish changes")

const watchBuffer = 16

// Watcher is implemented by backends that announce their writes.
type Watcher interface {
	Watch(ctx context.Context, collection string) (<-chan ChangeEvent, func(), error)
}

// Watch delivers a ChangeEvent per write to collection until ctx ends or cancel is called.
// Events carry no record data; consumers re-fetch. Slow consumers miss events.
func (c *Client) Watch(ctx context.Context, collection string) (<-chan ChangeEvent, func(), error) {
	if err := checkCollection(collection); err != nil {
		return nil, nil, err
	}
	w, ok := c.backend.(Watcher)
	if !ok {
		return nil, nil, ErrWatchUnsupported
	}
	return w.Watch(ctx, collection)
}

func (r *RedisBackend) Watch(ctx context.Context, collection string) (<-chan ChangeEvent, func(), error) {
	sctx, stop := context.WithCancel(ctx)
	pubsub := r.client.Subscribe(sctx, EventChannel(collection))
	// Wait for the subscription so no write after Watch returns is missed.
	if _, err := pubsub.Receive(sctx); err != nil {
		stop()
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", collection, err)
	}

	out := make(chan ChangeEvent, watchBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-sctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					continue
				}
				select {
				case out <- e:
				default:
				}
			}
		}
	}()

	cancel := func() {
		stop()
		<-done
	}
	return out, cancel, nil
}
