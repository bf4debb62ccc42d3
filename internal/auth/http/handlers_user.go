package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/auth"
	"github.com/skyon-community/skyon-backend/internal/auth/domain"
)

// GetMe returns the current user's profile and identity state
func (h *Handler) GetMe(c *gin.Context) {
	id := auth.CurrentIdentity(c)
	profile, err := h.authService.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, MeResponse{
		State:   id.State().String(),
		IsAdmin: h.admins.IsAdmin(id),
		Profile: profile,
	})
}

// SaveProfile creates or replaces the block, flat number and display name.
func (h *Handler) SaveProfile(c *gin.Context) {
	var in domain.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, apperr.Invalid("body", "invalid JSON body"))
		return
	}

	id := auth.CurrentIdentity(c)
	profile, err := h.authService.SaveProfile(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, MeResponse{
		State:   domain.Identity(id.UID, id.Email, id.DisplayName, profile).State().String(),
		IsAdmin: h.admins.IsAdmin(id),
		Profile: profile,
	})
}

// SyncUser is called by the client right after sign-in so a profile row exists.
func (h *Handler) SyncUser(c *gin.Context) {
	id := auth.CurrentIdentity(c)
	profile, err := h.authService.Sync(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, MeResponse{
		State:   id.State().String(),
		IsAdmin: h.admins.IsAdmin(id),
		Profile: profile,
	})
}

func (h *Handler) SignOut(c *gin.Context) {
	if err := h.authService.SignOut(c.Request.Context(), auth.CurrentIdentity(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamIdentity streams identity state changes for the caller using Server-Sent Events (SSE)
func (h *Handler) StreamIdentity(c *gin.Context) {
	id := auth.CurrentIdentity(c)
	ctx := c.Request.Context()

	// Subscribe before the initial event so nothing published in between is lost.
	events, cancel := h.authService.Hub().Subscribe(ctx, id.UID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, fmt.Errorf("streaming unsupported"))
		return
	}

	writeEvent(c, flusher, "initial", auth.NewEvent(id.UID, id))

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case e, ok := <-events:
			if !ok {
				return
			}
			writeEvent(c, flusher, "identity", e)
			if e.Identity == nil {
				// Signed out everywhere; the session behind this stream is gone.
				return
			}
		}
	}
}

func writeEvent(c *gin.Context, flusher http.Flusher, name string, e auth.Event) {
	data, _ := json.Marshal(e)
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, data)
	flusher.Flush()
}
