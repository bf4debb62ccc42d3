package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/internal/acl"
)

// Event tells open sessions of a user that their identity changed. Delivery is best effort
// with no ordering or latency bound; authorization never depends on it.
type Event struct {
	UID      string        `json:"uid"`
	State    string        `json:"state"`
	Identity *acl.Identity `json:"identity,omitempty"`
	At       time.Time     `json:"at"`
}

func NewEvent(uid string, id *acl.Identity) Event {
	return Event{UID: uid, State: id.State().String(), Identity: id, At: time.Now().UTC()}
}

// Hub fans identity events out to subscribers of the same uid.
type Hub interface {
	Publish(ctx context.Context, e Event) error
	// Subscribe delivers events for uid until ctx ends or cancel is called.
	Subscribe(ctx context.Context, uid string) (events <-chan Event, cancel func())
}

const subscriberBuffer = 8

// LocalHub delivers within one process. A slow subscriber misses events instead of blocking
// publishers.
type LocalHub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan Event
}

func NewLocalHub() *LocalHub {
	return &LocalHub{subs: make(map[string]map[int]chan Event)}
}

func (h *LocalHub) Publish(_ context.Context, e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[e.UID] {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

func (h *LocalHub) Subscribe(ctx context.Context, uid string) (<-chan Event, func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	ch := make(chan Event, subscriberBuffer)
	if h.subs[uid] == nil {
		h.subs[uid] = make(map[int]chan Event)
	}
	h.subs[uid][id] = ch
	h.mu.Unlock()

	var once sync.Once
	stopped := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[uid], id)
			if len(h.subs[uid]) == 0 {
				delete(h.subs, uid)
			}
			h.mu.Unlock()
			close(ch)
			close(stopped)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stopped:
		}
	}()
	return ch, cancel
}

// RedisHub delivers across API instances over Redis Pub/Sub, one channel per uid.
type RedisHub struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisHub(client *redis.Client, log *zap.Logger) *RedisHub {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisHub{client: client, log: log}
}

func identityChannel(uid string) string {
	return fmt.Sprintf("identity:%s", uid)
}

func (h *RedisHub) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal identity event: %w", err)
	}
	if err := h.client.Publish(ctx, identityChannel(e.UID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish identity event: %w", err)
	}
	return nil
}

func (h *RedisHub) Subscribe(ctx context.Context, uid string) (<-chan Event, func()) {
	sctx, stop := context.WithCancel(ctx)
	pubsub := h.client.Subscribe(sctx, identityChannel(uid))
	out := make(chan Event, subscriberBuffer)

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
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					h.log.Warn("dropping malformed identity event", zap.String("uid", uid), zap.Error(err))
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
	return out, cancel
}
