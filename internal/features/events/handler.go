package events

import (
	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

type Handler struct {
	svc  *Service
	crud *crud.Handler[*Event, EventInput]
}

func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{
		svc:  svc,
		crud: crud.NewHandler[*Event, EventInput](svc.Service).WithMaxBytes(maxBytes),
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/events")
	g.POST("/:id/rsvp", h.RSVP)
	h.crud.Register(g)
}

// RSVP accepts an empty body or {"seen": n}.
func (h *Handler) RSVP(c *gin.Context) {
	var req RSVPRequest
	if c.Request.ContentLength > 0 {
		if _, err := crud.ReadBody(c, &req, 0); err != nil {
			response.Error(c, err)
			return
		}
	}
	id := c.Param("id")
	n, err := h.svc.RSVP(c.Request.Context(), id, req.Seen)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, RSVPResult{ID: id, RSVPs: n})
}
