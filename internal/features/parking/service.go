package parking

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/registry"
)

// timestampLayout matches the day-first local time residents see on reports.
const timestampLayout = "2/1/2006, 3:04:05 pm"

type Service struct {
	*crud.Service[*Violation]
	loc *time.Location
	now func() time.Time
}

func NewService(deps crud.Deps, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{loc: loc, now: time.Now}
	s.Service = crud.NewService[*Violation](deps, registry.ParkingViolations, crud.Options{
		ImageField:    "imageUrl",
		ImageRequired: true,
		Validate:      crud.ValidateAs[ViolationInput](),
		OnCreate: func(_ context.Context, fields map[string]any) error {
			if v, ok := fields["vehicleNumber"].(string); ok {
				fields["vehicleNumber"] = strings.ToUpper(strings.TrimSpace(v))
			}
			fields["timestamp"] = s.now().In(s.loc).Format(timestampLayout)
			return nil
		},
		ReadOnly: []string{"timestamp"},
	})
	return s
}

type Handler struct {
	crud *crud.Handler[*Violation, ViolationInput]
}

func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{crud: crud.NewHandler[*Violation, ViolationInput](svc.Service).WithMaxBytes(maxBytes)}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	h.crud.Register(rg.Group("/parking"))
}
