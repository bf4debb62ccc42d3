package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/internal/apperr"
)

const cloudinaryBaseURL = "https://api.cloudinary.com/v1_1"

// Cloudinary uploads through an unsigned upload preset, so no API secret is held here.
type Cloudinary struct {
	baseURL    string
	cloudName  string
	preset     string
	maxBytes   int64
	httpClient *http.Client
	log        *zap.Logger
}

type CloudinaryOption func(*Cloudinary)

// WithBaseURL points the client at another API root; tests use an httptest server.
func WithBaseURL(u string) CloudinaryOption {
	return func(c *Cloudinary) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) CloudinaryOption {
	return func(c *Cloudinary) { c.httpClient = hc }
}

func WithMaxBytes(n int64) CloudinaryOption {
	return func(c *Cloudinary) { c.maxBytes = n }
}

func WithLogger(l *zap.Logger) CloudinaryOption {
	return func(c *Cloudinary) { c.log = l }
}

func NewCloudinary(cloudName, preset string, opts ...CloudinaryOption) *Cloudinary {
	c := &Cloudinary{
		baseURL:   cloudinaryBaseURL,
		cloudName: cloudName,
		preset:    preset,
		maxBytes:  DefaultMaxBytes,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Cloudinary) Upload(ctx context.Context, img Image) (string, error) {
	if err := Check(img, c.maxBytes); err != nil {
		return "", err
	}

	body, contentType, err := c.form(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrUploadFailed, err)
	}

	url := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", apperr.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("image upload request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", apperr.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", apperr.ErrUploadFailed, err)
	}

	var out cloudinaryResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		if out.Error != nil {
			msg = out.Error.Message
		}
		c.log.Warn("image host rejected upload", zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return "", fmt.Errorf("%w: image host returned %d: %s", apperr.ErrUploadFailed, resp.StatusCode, msg)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("%w: response carried no url", apperr.ErrUploadFailed)
	}
	return out.SecureURL, nil
}

func (c *Cloudinary) form(img Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := img.Filename
	if name == "" {
		name = "image"
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("upload_preset", c.preset); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
