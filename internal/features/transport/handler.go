package transport

import (
	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

type Handler struct {
	rides    *crud.Handler[*Ride, RideInput]
	requests *crud.Handler[*Request, RequestInput]
}

func NewHandler(svc *Service) *Handler {
	toFilter := func(c *gin.Context) (func(docstore.Record, *Ride) bool, error) {
		return ByDestination(c.Query("to")), nil
	}
	typeFilter := func(c *gin.Context) (func(docstore.Record, *Request) bool, error) {
		return ByRequestType(c.Query("requestType"))
	}
	return &Handler{
		rides:    crud.NewHandler[*Ride, RideInput](svc.Rides, toFilter),
		requests: crud.NewHandler[*Request, RequestInput](svc.Requests, typeFilter),
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/transport")
	h.rides.Register(g.Group("/rides"))
	h.requests.Register(g.Group("/requests"))
}
