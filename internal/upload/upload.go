// Package upload turns a local image into a durable public URL before any record references it.
package upload

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/skyon-community/skyon-backend/internal/apperr"
)

const DefaultMaxBytes = 10 << 20

// Image is an image received from a resident, held in memory until it is uploaded.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Uploader blocks until the image host returns a URL. On any failure the URL is empty and the
// error wraps apperr.ErrUploadFailed; callers must not write the dependent record.
type Uploader interface {
	Upload(ctx context.Context, img Image) (string, error)
}

// Check rejects images that are empty, larger than maxBytes or not images at all, so no
// request is made for them.
func Check(img Image, maxBytes int64) error {
	if len(img.Data) == 0 {
		return apperr.Invalid("image", "image is empty")
	}
	if maxBytes > 0 && int64(len(img.Data)) > maxBytes {
		return apperr.Invalid("image", fmt.Sprintf("image exceeds %d bytes", maxBytes))
	}
	sniffed := http.DetectContentType(img.Data)
	if !strings.HasPrefix(sniffed, "image/") {
		return apperr.Invalid("image", "file is not an image")
	}
	return nil
}
