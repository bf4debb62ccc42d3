package lostfound

import (
	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/registry"
)

type Service = crud.Service[*Item]

func NewService(deps crud.Deps) *Service {
	return crud.NewService[*Item](deps, registry.LostAndFoundItems, crud.Options{
		ImageField: "imageUrl",
		Validate:   crud.ValidateAs[ItemInput](),
	})
}

type Handler struct {
	crud *crud.Handler[*Item, ItemInput]
}

func NewHandler(svc *Service, maxBytes int64) *Handler {
	statusFilter := func(c *gin.Context) (func(docstore.Record, *Item) bool, error) {
		return ByStatus(c.Query("status"))
	}
	return &Handler{crud: crud.NewHandler[*Item, ItemInput](svc, statusFilter).WithMaxBytes(maxBytes)}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	h.crud.Register(rg.Group("/lost-found"))
}
