package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/auth"
)

type stubAuthenticator map[string]*acl.Identity

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*acl.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, errors.Join(apperr.ErrUnauthenticated, errors.New("bad token"))
}

func newRouter(gates ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(stubAuthenticator{
		"complete":   {UID: "uid-a", Block: "B", FlatNumber: "402"},
		"incomplete": {UID: "uid-b"},
	}))
	handlers := append(gates, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uid":   auth.UserFirebaseUID(c),
			"state": auth.CurrentIdentity(c).State().String(),
		})
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, token string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthenticate(t *testing.T) {
	r := newRouter()

	w, body := do(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "signed_out", body["state"])

	w, body = do(r, "complete")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid-a", body["uid"])
	assert.Equal(t, "complete", body["state"])

	w, body = do(r, "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", body["code"])
}

func TestRequireUser(t *testing.T) {
	r := newRouter(RequireUser())

	w, _ := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(r, "incomplete")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireCompleteProfile(t *testing.T) {
	r := newRouter(RequireCompleteProfile())

	w, _ := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := do(r, "incomplete")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "profile_incomplete", body["code"])

	w, _ = do(r, "complete")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	c.Request.Header.Set("Authorization", "bearer abc")
	assert.Equal(t, "abc", extractToken(c))

	c.Request.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, extractToken(c))
}
