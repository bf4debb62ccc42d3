package events

import (
	"context"
	"fmt"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/audit"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/registry"
)

type Service struct {
	*crud.Service[*Event]
	atomic bool
}

// NewService counts RSVPs with an atomic increment when atomic is set, and with the
// read-modify-write the community app always used otherwise.
func NewService(deps crud.Deps, atomic bool) *Service {
	return &Service{
		Service: crud.NewService[*Event](deps, registry.Events, crud.Options{
			ImageField: "imageUrl",
			Validate:   crud.ValidateAs[EventInput](),
			Defaults:   map[string]any{fieldRSVPs: 0},
			ReadOnly:   []string{fieldRSVPs},
		}),
		atomic: atomic,
	}
}

func (s *Service) Atomic() bool { return s.atomic }

// RSVP adds one attendee. In the default mode the new count is seen+1, where seen is the
// count the caller last displayed: two RSVPs made from the same stale count both write the
// same value and one is lost. seen is capped at the stored count, so no call writes more than
// one above it. Atomic mode never loses an RSVP.
func (s *Service) RSVP(ctx context.Context, id string, seen *int) (int, error) {
	actor := acl.FromContext(ctx)
	if actor.State() == acl.SignedOut {
		return 0, fmt.Errorf("rsvp: %w", apperr.ErrUnauthenticated)
	}
	if seen != nil && *seen < 0 {
		return 0, apperr.Invalid("seen", "must not be negative")
	}

	var count int
	if s.atomic {
		v, err := s.Increment(ctx, id, fieldRSVPs, 1)
		if err != nil {
			return 0, err
		}
		count = int(v)
	} else {
		ev, err := s.Get(ctx, id)
		if err != nil {
			return 0, err
		}
		base := ev.RSVPs
		if seen != nil && *seen < base {
			base = *seen
		}
		count = base + 1
		if err := s.Repo().Update(ctx, id, map[string]any{fieldRSVPs: count}); err != nil {
			return 0, err
		}
	}

	s.Audit(ctx, id, audit.ActionRSVP, acl.Decision{Actor: actor})
	return count, nil
}
