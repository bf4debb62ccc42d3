package dishes

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

type Handler struct {
	svc  *Service
	crud *crud.Handler[*Dish, DishInput]
}

func NewHandler(svc *Service, maxBytes int64) *Handler {
	h := &Handler{svc: svc}
	h.crud = crud.NewHandler[*Dish, DishInput](svc.Service, h.todayFilter).WithMaxBytes(maxBytes)
	return h
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/dishes")
	g.GET("/templates", h.Templates)
	h.crud.Register(g)
}

// todayFilter applies ?today=true, measured from midnight in ?tz (an IANA zone).
func (h *Handler) todayFilter(c *gin.Context) (func(docstore.Record, *Dish) bool, error) {
	raw := c.Query("today")
	if raw == "" {
		return nil, nil
	}
	today, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Invalid("today", "must be true or false")
	}
	if !today {
		return nil, nil
	}
	loc, err := h.svc.Location(c.Query("tz"))
	if err != nil {
		return nil, err
	}
	since := h.svc.StartOfDay(loc)
	return func(rec docstore.Record, _ *Dish) bool { return rec.CreatedAt() >= since }, nil
}

func (h *Handler) Templates(c *gin.Context) {
	response.OK(c, gin.H{"items": Templates()})
}
