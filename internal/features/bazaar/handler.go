package bazaar

import (
	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/upload"
)

type Handler struct {
	svc      *Service
	crud     *crud.Handler[*Store, StoreInput]
	maxBytes int64
}

func NewHandler(svc *Service, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = upload.DefaultMaxBytes
	}
	byCategory := func(c *gin.Context) (func(docstore.Record, *Store) bool, error) {
		return ByCategory(c.Query("category"))
	}
	return &Handler{
		svc:      svc,
		crud:     crud.NewHandler[*Store, StoreInput](svc.Service, byCategory).WithMaxBytes(maxBytes),
		maxBytes: maxBytes,
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/stores")
	h.crud.Register(g)
	g.POST("/:id/products", h.AddProduct)
	g.DELETE("/:id/products/:productId", h.RemoveProduct)
}

func (h *Handler) AddProduct(c *gin.Context) {
	var in ProductInput
	img, err := crud.ReadBody(c, &in, h.maxBytes)
	if err != nil {
		response.Error(c, err)
		return
	}
	store, err := h.svc.AddProduct(c.Request.Context(), c.Param("id"), in, img)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, store)
}

func (h *Handler) RemoveProduct(c *gin.Context) {
	store, err := h.svc.RemoveProduct(c.Request.Context(), c.Param("id"), c.Param("productId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, store)
}
