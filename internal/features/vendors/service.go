package vendors

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/registry"
	"github.com/skyon-community/skyon-backend/internal/validation"
)

const (
	fieldRating  = "rating"
	fieldReviews = "reviews"

	actionReview = "review"
)

type Service struct {
	*crud.Service[*Vendor]
}

func NewService(deps crud.Deps) *Service {
	return &Service{crud.NewService[*Vendor](deps, registry.Vendors, crud.Options{
		ImageField: "imageUrl",
		Validate:   crud.ValidateAs[VendorInput](),
		Defaults:   map[string]any{fieldRating: DefaultRating, fieldReviews: []any{}},
		ReadOnly:   []string{fieldRating, fieldReviews},
	})}
}

// ByService keeps vendors offering service, ignoring case.
func ByService(service string) func(docstore.Record, *Vendor) bool {
	service = strings.TrimSpace(service)
	if service == "" {
		return nil
	}
	return func(_ docstore.Record, v *Vendor) bool { return strings.EqualFold(v.Service, service) }
}

// AddReview appends the caller's review and recomputes the average rating. Any signed-in
// resident may review; the list is rewritten whole, as for bazaar products.
func (s *Service) AddReview(ctx context.Context, vendorID string, in ReviewInput) (*Vendor, error) {
	actor := acl.FromContext(ctx)
	if actor.State() == acl.SignedOut {
		return nil, fmt.Errorf("review: %w", apperr.ErrUnauthenticated)
	}
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	author := actor.DisplayName
	if author == "" {
		author = actor.Email
	}
	reviews := append(current.Reviews, Review{
		ID:        uuid.NewString(),
		Author:    author,
		AuthorUID: actor.UID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})

	err = s.Repo().Update(ctx, vendorID, map[string]any{
		fieldReviews: reviews,
		fieldRating:  AverageRating(reviews),
	})
	if err != nil {
		return nil, err
	}
	s.Audit(ctx, vendorID, actionReview, acl.Decision{Actor: actor})
	return s.Get(ctx, vendorID)
}

// AverageRating is the mean review rating to one decimal, or DefaultRating with no reviews.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return DefaultRating
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}
