package events

import (
	"context"
	"sync"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
)

// Source is what a Board reads from and writes through. *Service satisfies it.
type Source interface {
	List(ctx context.Context, match func(rec docstore.Record, v *Event) bool) ([]*Event, error)
	RSVP(ctx context.Context, id string, seen *int) (int, error)
}

// Board is one session's view of the events list. RSVPs show immediately and are undone if
// the store refuses them. A refresh that started before a local change is discarded.
type Board struct {
	src Source

	mu     sync.Mutex
	events []Event
	gen    uint64
}

func NewBoard(src Source) *Board {
	return &Board{src: src}
}

// Events returns a copy of the current view.
func (b *Board) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Refresh reloads the view. It reports whether the result was applied.
func (b *Board) Refresh(ctx context.Context) (bool, error) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	list, err := b.src.List(ctx, nil)
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return false, nil
	}
	b.events = make([]Event, 0, len(list))
	for _, ev := range list {
		b.events = append(b.events, *ev)
	}
	return true, nil
}

// RSVP bumps the displayed count at once, then writes it through. On failure the bump is
// rolled back, unless something has changed that count in the meantime.
func (b *Board) RSVP(ctx context.Context, id string) (int, error) {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return 0, apperr.ErrNotFound
	}
	seen := b.events[i].RSVPs
	b.events[i].RSVPs = seen + 1
	b.gen++
	b.mu.Unlock()

	n, err := b.src.RSVP(ctx, id, &seen)

	b.mu.Lock()
	defer b.mu.Unlock()
	i = b.indexOf(id)
	if err != nil {
		if i >= 0 && b.events[i].RSVPs == seen+1 {
			b.events[i].RSVPs = seen
		}
		return seen, err
	}
	if i >= 0 {
		b.events[i].RSVPs = n
	}
	return n, nil
}

func (b *Board) indexOf(id string) int {
	for i := range b.events {
		if b.events[i].ID == id {
			return i
		}
	}
	return -1
}
