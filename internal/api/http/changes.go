package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/registry"
)

// ChangesHandler streams write notifications of one collection so open screens know to
// re-fetch. Only backends that publish changes support it.
type ChangesHandler struct {
	store     *docstore.Client
	guard     *acl.Guard
	keepAlive time.Duration
}

func NewChangesHandler(store *docstore.Client, guard *acl.Guard) *ChangesHandler {
	return &ChangesHandler{store: store, guard: guard, keepAlive: 15 * time.Second}
}

func (h *ChangesHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/changes/:collection", h.Stream)
}

func (h *ChangesHandler) Stream(c *gin.Context) {
	name := c.Param("collection")
	if !registry.Known(name) {
		response.Error(c, fmt.Errorf("collection %q: %w", name, apperr.ErrNotFound))
		return
	}
	ctx := c.Request.Context()
	if err := h.guard.AuthorizeRead(ctx, registry.Collection(name)); err != nil {
		response.Error(c, err)
		return
	}

	events, cancel, err := h.store.Watch(ctx, name)
	if errors.Is(err, docstore.ErrWatchUnsupported) {
		c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{
			"error": "live updates are not available on this store",
			"code":  "not_supported",
		})
		return
	}
	if err != nil {
		response.Error(c, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err))
		return
	}
	defer cancel()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, fmt.Errorf("streaming unsupported"))
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	flusher.Flush()

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
			data, _ := json.Marshal(e)
			fmt.Fprintf(c.Writer, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
