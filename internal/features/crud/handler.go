package crud

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/upload"
)

const (
	// Multipart requests carry the record as JSON in this form field and the photo in "image".
	payloadField = "payload"
	imageField   = "image"
)

// Filter turns query parameters into a record matcher. A nil matcher keeps everything.
type Filter[T Entity] func(c *gin.Context) (func(rec docstore.Record, v T) bool, error)

// Handler serves the standard routes of one collection. In is the create body.
type Handler[T Entity, In any] struct {
	svc      *Service[T]
	filters  []Filter[T]
	maxBytes int64
}

func NewHandler[T Entity, In any](svc *Service[T], filters ...Filter[T]) *Handler[T, In] {
	return &Handler[T, In]{svc: svc, filters: filters, maxBytes: upload.DefaultMaxBytes}
}

// WithMaxBytes bounds the image accepted by the handler.
func (h *Handler[T, In]) WithMaxBytes(n int64) *Handler[T, In] {
	if n > 0 {
		h.maxBytes = n
	}
	return h
}

// Register mounts list, detail, create, update and delete under rg.
func (h *Handler[T, In]) Register(rg gin.IRouter) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler[T, In]) List(c *gin.Context) {
	matchers := make([]func(docstore.Record, T) bool, 0, len(h.filters)+1)
	if q := c.Query("q"); q != "" {
		matchers = append(matchers, func(rec docstore.Record, _ T) bool { return ContainsText(rec, q) })
	}
	for _, f := range h.filters {
		m, err := f(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		if m != nil {
			matchers = append(matchers, m)
		}
	}

	items, err := h.svc.List(c.Request.Context(), func(rec docstore.Record, v T) bool {
		for _, m := range matchers {
			if !m(rec, v) {
				return false
			}
		}
		return true
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"items": items})
}

func (h *Handler[T, In]) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

func (h *Handler[T, In]) Create(c *gin.Context) {
	var in In
	img, err := ReadBody(c, &in, h.maxBytes)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.svc.Create(c.Request.Context(), in, img)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

func (h *Handler[T, In]) Update(c *gin.Context) {
	var partial map[string]any
	img, err := ReadBody(c, &partial, h.maxBytes)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.svc.Update(c.Request.Context(), c.Param("id"), partial, img)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

func (h *Handler[T, In]) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReadBody decodes the record into dst and returns the attached photo, if any. JSON bodies
// carry no photo; multipart bodies carry the JSON in "payload" and the photo in "image".
func ReadBody(c *gin.Context, dst any, maxBytes int64) (*upload.Image, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
			if err == io.EOF {
				return nil, apperr.Invalid("body", "request body is empty")
			}
			return nil, apperr.Invalid("body", "invalid JSON body")
		}
		return nil, nil
	}

	if payload := c.PostForm(payloadField); payload != "" {
		if err := json.Unmarshal([]byte(payload), dst); err != nil {
			return nil, apperr.Invalid(payloadField, "invalid JSON payload")
		}
	} else if err := json.Unmarshal([]byte("{}"), dst); err != nil {
		return nil, apperr.Invalid(payloadField, err.Error())
	}

	fh, err := c.FormFile(imageField)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Invalid(imageField, "invalid file upload")
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, apperr.Invalid(imageField, fmt.Sprintf("image exceeds %d bytes", maxBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Invalid(imageField, "unreadable file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, apperr.Invalid(imageField, "unreadable file")
	}
	return &upload.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
