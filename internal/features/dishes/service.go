package dishes

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/audit"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/registry"
)

const postedAtLayout = "03:04 PM"

type Service struct {
	*crud.Service[*Dish]
	loc *time.Location
	now func() time.Time
	log *zap.Logger
}

// NewService posts times in loc, the community's zone, unless a caller names another.
func NewService(deps crud.Deps, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	s := &Service{loc: loc, now: time.Now, log: deps.Log.With(zap.String("collection", registry.DailyDishes.String()))}
	s.Service = crud.NewService[*Dish](deps, registry.DailyDishes, crud.Options{
		ImageField: "imageUrl",
		Validate:   crud.ValidateAs[DishInput](),
		OnCreate: func(_ context.Context, fields map[string]any) error {
			fields["postedAt"] = s.now().In(s.loc).Format(postedAtLayout)
			return nil
		},
		ReadOnly: []string{"postedAt"},
	})
	return s
}

// Location resolves an IANA zone name; "" is the community's zone.
func (s *Service) Location(name string) (*time.Location, error) {
	if name == "" {
		return s.loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperr.Invalid("tz", "unknown time zone")
	}
	return loc, nil
}

// StartOfDay is midnight of the current day in loc, in epoch milliseconds.
func (s *Service) StartOfDay(loc *time.Location) int64 {
	now := s.now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).UnixMilli()
}

// Today keeps dishes posted since the start of the caller's local day.
func (s *Service) Today(ctx context.Context, loc *time.Location) ([]*Dish, error) {
	since := s.StartOfDay(loc)
	return s.List(ctx, func(rec docstore.Record, _ *Dish) bool {
		return rec.CreatedAt() >= since
	})
}

// Purge deletes dishes older than retention. It runs as the system, not as a resident, and
// returns how many records went.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := s.now().Add(-retention).UnixMilli()
	records, err := s.Repo().Records(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, rec := range records {
		if rec.CreatedAt() >= cutoff {
			continue
		}
		if err := s.Repo().Delete(ctx, rec.ID()); err != nil {
			s.log.Warn("failed to purge dish", zap.String("id", rec.ID()), zap.Error(err))
			continue
		}
		s.Audit(ctx, rec.ID(), audit.ActionPurge, acl.Decision{Actor: &acl.Identity{UID: audit.SystemActor}, AsAdmin: true})
		removed++
	}
	if removed > 0 {
		s.log.Info("purged stale dishes", zap.Int("count", removed), zap.Duration("retention", retention))
	}
	return removed, nil
}
