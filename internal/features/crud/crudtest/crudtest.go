// Package crudtest provides residents, fakes and an HTTP harness for feature module tests.
package crudtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/audit"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/registry"
	"github.com/skyon-community/skyon-backend/internal/upload"
)

var (
	ResidentA  = &acl.Identity{UID: "resident-a", Email: "asha@example.com", DisplayName: "Asha", Block: "B", FlatNumber: "402"}
	ResidentB  = &acl.Identity{UID: "resident-b", Email: "ravi@example.com", DisplayName: "Ravi", Block: "E", FlatNumber: "1103"}
	Incomplete = &acl.Identity{UID: "resident-c", Email: "new@example.com", DisplayName: "New"}
	Admin      = &acl.Identity{UID: "committee", Email: "committee@skyon.example", DisplayName: "Committee"}
)

// PNG is the smallest payload the upload sniffer accepts as an image.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func Photo() *upload.Image {
	return &upload.Image{Filename: "photo.png", ContentType: "image/png", Data: PNG}
}

// As returns a context carrying id, as the auth middleware would.
func As(id *acl.Identity) context.Context {
	return acl.WithIdentity(context.Background(), id)
}

// Uploader hands out predictable URLs, or fails when Err is set.
type Uploader struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

func (u *Uploader) Upload(_ context.Context, img upload.Image) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Calls++
	if u.Err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrUploadFailed, u.Err)
	}
	if err := upload.Check(img, upload.DefaultMaxBytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://img.example/%d.jpg", u.Calls), nil
}

// AuditLog keeps entries in memory.
type AuditLog struct {
	mu      sync.Mutex
	Entries []audit.Entry
}

func (a *AuditLog) Record(_ context.Context, e audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, e)
	return nil
}

func (a *AuditLog) Recent(_ context.Context, limit int) ([]audit.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.Entry, 0, len(a.Entries))
	for i := len(a.Entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.Entries[i])
	}
	return out, nil
}

// CountingBackend wraps a backend and counts every write that reaches it.
type CountingBackend struct {
	docstore.Backend

	mu     sync.Mutex
	writes map[string]int
}

func NewCountingBackend(b docstore.Backend) *CountingBackend {
	return &CountingBackend{Backend: b, writes: make(map[string]int)}
}

func (c *CountingBackend) count(op string) {
	c.mu.Lock()
	c.writes[op]++
	c.mu.Unlock()
}

// Writes returns how many calls of op ("push", "set", "update", "delete", "increment") ran.
func (c *CountingBackend) Writes(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes[op]
}

func (c *CountingBackend) Push(ctx context.Context, coll string, fields map[string]any) (string, error) {
	c.count("push")
	return c.Backend.Push(ctx, coll, fields)
}

func (c *CountingBackend) Set(ctx context.Context, coll, key string, fields map[string]any) error {
	c.count("set")
	return c.Backend.Set(ctx, coll, key, fields)
}

func (c *CountingBackend) Update(ctx context.Context, coll, key string, fields map[string]any) error {
	c.count("update")
	return c.Backend.Update(ctx, coll, key, fields)
}

func (c *CountingBackend) Delete(ctx context.Context, coll, key string) error {
	c.count("delete")
	return c.Backend.Delete(ctx, coll, key)
}

func (c *CountingBackend) Increment(ctx context.Context, coll, key, field string, delta float64) (float64, error) {
	c.count("increment")
	return c.Backend.Increment(ctx, coll, key, field, delta)
}

// Env is a complete in-memory dependency set.
type Env struct {
	Memory   *docstore.MemoryBackend
	Backend  *CountingBackend
	Client   *docstore.Client
	Guard    *acl.Guard
	Uploader *Uploader
	Audit    *AuditLog
}

func NewEnv(t testing.TB) *Env {
	t.Helper()
	mem := docstore.NewMemoryBackend()
	counting := NewCountingBackend(mem)
	return &Env{
		Memory:   mem,
		Backend:  counting,
		Client:   docstore.NewClient(counting, docstore.WithOwnerFields(registry.OwnerFields())),
		Guard:    acl.NewGuard(acl.NewAdmins([]string{Admin.Email}, nil), acl.DefaultPolicies()),
		Uploader: &Uploader{},
		Audit:    &AuditLog{},
	}
}

func (e *Env) Deps() crud.Deps {
	return crud.Deps{Client: e.Client, Guard: e.Guard, Uploader: e.Uploader, Audit: e.Audit}
}

var residents = map[string]*acl.Identity{
	ResidentA.UID:  ResidentA,
	ResidentB.UID:  ResidentB,
	Incomplete.UID: Incomplete,
	Admin.UID:      Admin,
}

// Router mounts register under /api/v1 behind a stand-in for the auth middleware: the bearer
// token is the uid of one of the residents above.
func Router(register func(rg *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		uid := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if id, ok := residents[uid]; ok {
			c.Request = c.Request.WithContext(acl.WithIdentity(c.Request.Context(), id))
		}
		c.Next()
	})
	register(api)
	return r
}

// Do sends a JSON request as id (nil for signed out) and returns the recorder.
func Do(t testing.TB, r http.Handler, method, path string, id *acl.Identity, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(r, req, id)
}

// DoMultipart sends payload as JSON in the "payload" field plus the image file.
func DoMultipart(t testing.TB, r http.Handler, method, path string, id *acl.Identity, payload any, image []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("payload", string(b)))
	if image != nil {
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return serve(r, req, id)
}

func serve(r http.Handler, req *http.Request, id *acl.Identity) *httptest.ResponseRecorder {
	if id != nil {
		req.Header.Set("Authorization", "Bearer "+id.UID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the response body.
func Decode[V any](t testing.TB, w *httptest.ResponseRecorder) V {
	t.Helper()
	var v V
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// Items is the list response shape.
type Items[V any] struct {
	Items []V `json:"items"`
}
