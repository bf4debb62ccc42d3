package marketplace

import (
	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

type Handler struct {
	svc  *Service
	crud *crud.Handler[*Listing, ListingInput]
}

func NewHandler(svc *Service, maxBytes int64) *Handler {
	byType := func(c *gin.Context) (func(docstore.Record, *Listing) bool, error) {
		return ByType(c.Query("type"))
	}
	return &Handler{
		svc:  svc,
		crud: crud.NewHandler[*Listing, ListingInput](svc.Service, byType).WithMaxBytes(maxBytes),
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/listings")
	g.GET("/suggest-category", h.SuggestCategory)
	g.GET("/:id/similar", h.Similar)
	h.crud.Register(g)
}

func (h *Handler) Similar(c *gin.Context) {
	items, err := h.svc.Similar(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"items": items})
}

func (h *Handler) SuggestCategory(c *gin.Context) {
	category, err := h.svc.SuggestCategory(c.Request.Context(), c.Query("title"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"category": category})
}
