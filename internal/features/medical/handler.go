package medical

import (
	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

type Handler struct {
	svc      *Service
	services *crud.Handler[*MedicalService, MedicalServiceInput]
	doctors  *crud.Handler[*Doctor, DoctorInput]
}

func NewHandler(svc *Service, maxBytes int64) *Handler {
	typeFilter := func(c *gin.Context) (func(docstore.Record, *MedicalService) bool, error) {
		return ByType(c.Query("type"))
	}
	residentFilter := func(c *gin.Context) (func(docstore.Record, *Doctor) bool, error) {
		return ByResident(c.Query("resident"))
	}
	return &Handler{
		svc:      svc,
		services: crud.NewHandler[*MedicalService, MedicalServiceInput](svc.Services, typeFilter),
		doctors:  crud.NewHandler[*Doctor, DoctorInput](svc.Doctors, residentFilter).WithMaxBytes(maxBytes),
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/medical")
	g.GET("", h.Directory)
	h.services.Register(g.Group("/services"))
	h.doctors.Register(g.Group("/doctors"))
}

func (h *Handler) Directory(c *gin.Context) {
	dir, err := h.svc.Directory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dir)
}
