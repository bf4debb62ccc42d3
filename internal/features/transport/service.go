package transport

import (
	"strings"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/registry"
)

type Service struct {
	Rides    *crud.Service[*Ride]
	Requests *crud.Service[*Request]
}

func NewService(deps crud.Deps) *Service {
	return &Service{
		Rides: crud.NewService[*Ride](deps, registry.CarpoolRides, crud.Options{
			Validate: crud.ValidateAs[RideInput](),
		}),
		Requests: crud.NewService[*Request](deps, registry.TransportRequests, crud.Options{
			Validate: crud.ValidateAs[RequestInput](),
		}),
	}
}

// ByDestination keeps rides whose destination contains to, ignoring case.
func ByDestination(to string) func(docstore.Record, *Ride) bool {
	to = strings.ToLower(strings.TrimSpace(to))
	if to == "" {
		return nil
	}
	return func(_ docstore.Record, r *Ride) bool { return strings.Contains(strings.ToLower(r.To), to) }
}

// ByRequestType keeps requests of one type; "" and "All" keep everything.
func ByRequestType(t string) (func(docstore.Record, *Request) bool, error) {
	switch t {
	case "", "All":
		return nil, nil
	case RequestRide, RequestDriver:
		return func(_ docstore.Record, r *Request) bool { return r.RequestType == t }, nil
	}
	return nil, apperr.Invalid("requestType", "must be All, Need a Ride or Need a Driver")
}
