package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/apperr"
)

const defaultLimit = 100

// AdminChecker answers whether the caller is on the admin allow-list.
type AdminChecker interface {
	IsAdmin(ctx context.Context) bool
}

// Handler serves the audit log to admins.
type Handler struct {
	rec    Recorder
	admins AdminChecker
}

func NewHandler(rec Recorder, admins AdminChecker) *Handler {
	return &Handler{rec: rec, admins: admins}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/admin/audit", h.Recent)
}

// Recent lists the latest entries, newest first. ?limit bounds the page (1..500).
func (h *Handler) Recent(c *gin.Context) {
	ctx := c.Request.Context()
	if acl.FromContext(ctx).State() == acl.SignedOut {
		response.Error(c, apperr.ErrUnauthenticated)
		return
	}
	if !h.admins.IsAdmin(ctx) {
		response.Error(c, apperr.ErrUnauthorized)
		return
	}

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			response.Error(c, apperr.Invalid("limit", "must be between 1 and 500"))
			return
		}
		limit = n
	}

	entries, err := h.rec.Recent(ctx, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}
