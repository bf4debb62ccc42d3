package vendors

import (
	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

type Handler struct {
	svc  *Service
	crud *crud.Handler[*Vendor, VendorInput]
}

func NewHandler(svc *Service, maxBytes int64) *Handler {
	serviceFilter := func(c *gin.Context) (func(docstore.Record, *Vendor) bool, error) {
		return ByService(c.Query("service")), nil
	}
	return &Handler{
		svc:  svc,
		crud: crud.NewHandler[*Vendor, VendorInput](svc.Service, serviceFilter).WithMaxBytes(maxBytes),
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/vendors")
	g.POST("/:id/reviews", h.AddReview)
	h.crud.Register(g)
}

func (h *Handler) AddReview(c *gin.Context) {
	var in ReviewInput
	if _, err := crud.ReadBody(c, &in, 0); err != nil {
		response.Error(c, err)
		return
	}
	v, err := h.svc.AddReview(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, v)
}
