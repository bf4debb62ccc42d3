package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/auth"
	"github.com/skyon-community/skyon-backend/internal/auth/middleware"
	"github.com/skyon-community/skyon-backend/internal/auth/repository"
	"github.com/skyon-community/skyon-backend/internal/auth/service"
	"github.com/skyon-community/skyon-backend/internal/docstore"
)

type tokenProvider struct {
	revoked []string
}

func (p *tokenProvider) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	switch idToken {
	case "asha":
		return &auth.Token{UID: "uid-a", Email: "asha@example.com", Name: "Asha"}, nil
	case "admin":
		return &auth.Token{UID: "uid-admin", Email: "Admin@Skyon.example", Name: "Admin"}, nil
	}
	return nil, assert.AnError
}

func (p *tokenProvider) RevokeSessions(_ context.Context, uid string) error {
	p.revoked = append(p.revoked, uid)
	return nil
}

func setupRouter(t *testing.T) (*gin.Engine, *tokenProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := &tokenProvider{}
	profiles := repository.NewDocstoreProfileRepository(docstore.NewClient(docstore.NewMemoryBackend()))
	svc := service.NewAuthService(provider, profiles, auth.NewLocalHub(), nil)

	h := New(svc, acl.NewAdmins([]string{"admin@skyon.example"}, nil))
	h.keepAlive = 20 * time.Millisecond

	r := gin.New()
	api := r.Group("/api/v1", middleware.Authenticate(svc))
	h.Register(api)
	return r, provider
}

func call(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMe(t *testing.T, w *httptest.ResponseRecorder) MeResponse {
	t.Helper()
	var me MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	return me
}

func TestProfileFlow(t *testing.T) {
	r, _ := setupRouter(t)

	w := call(r, http.MethodGet, "/api/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, http.MethodPost, "/api/v1/auth/sync", "asha", "")
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeMe(t, w)
	assert.Equal(t, "incomplete", me.State)
	assert.False(t, me.IsAdmin)

	w = call(r, http.MethodPut, "/api/v1/me/profile", "asha", `{"displayName":"Asha","block":"B","flatNumber":"12"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "flatNumber")

	w = call(r, http.MethodPut, "/api/v1/me/profile", "asha", `{"displayName":"Asha","block":"B","flatNumber":"402"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "complete", decodeMe(t, w).State)

	w = call(r, http.MethodGet, "/api/v1/me", "asha", "")
	require.Equal(t, http.StatusOK, w.Code)
	me = decodeMe(t, w)
	assert.Equal(t, "complete", me.State)
	assert.Equal(t, "402", me.Profile.FlatNumber)
}

func TestGetMeAdmin(t *testing.T) {
	r, _ := setupRouter(t)

	w := call(r, http.MethodGet, "/api/v1/me", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeMe(t, w).IsAdmin)
}

func TestSignOut(t *testing.T) {
	r, provider := setupRouter(t)

	w := call(r, http.MethodPost, "/api/v1/auth/signout", "asha", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"uid-a"}, provider.revoked)
}

func TestStreamIdentity(t *testing.T) {
	r, _ := setupRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/me/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer asha")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q", prefix)
		return ""
	}

	assert.Equal(t, "event: initial", next("event: "))
	assert.Contains(t, next("data: "), `"state":"incomplete"`)
	next(": keep-alive")

	w := call(r, http.MethodPut, "/api/v1/me/profile", "asha", `{"displayName":"Asha","block":"B","flatNumber":"402"}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "event: identity", next("event: identity"))
	assert.Contains(t, next("data: "), `"state":"complete"`)

	w = call(r, http.MethodPost, "/api/v1/auth/signout", "asha", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, "event: identity", next("event: identity"))
	assert.Contains(t, next("data: "), `"state":"signed_out"`)
}
