package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/acl"
)

type memRecorder struct{ entries []Entry }

func (m *memRecorder) Record(_ context.Context, e Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memRecorder) Recent(_ context.Context, limit int) ([]Entry, error) {
	out := []Entry{}
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func TestHandler_Recent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	admin := &acl.Identity{UID: "committee", Email: "committee@skyon.example"}
	resident := &acl.Identity{UID: "resident-a", Email: "asha@example.com", DisplayName: "Asha", Block: "B", FlatNumber: "402"}
	guard := acl.NewGuard(acl.NewAdmins([]string{admin.Email}, nil), acl.DefaultPolicies())

	rec := &memRecorder{}
	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, rec.Record(context.Background(), Entry{Collection: "events", RecordID: id, Action: ActionDelete}))
	}

	serve := func(id *acl.Identity, target string) *httptest.ResponseRecorder {
		r := gin.New()
		g := r.Group("/api/v1", func(c *gin.Context) {
			if id != nil {
				c.Request = c.Request.WithContext(acl.WithIdentity(c.Request.Context(), id))
			}
		})
		NewHandler(rec, guard).Register(g)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil, "/api/v1/admin/audit").Code)
	assert.Equal(t, http.StatusForbidden, serve(resident, "/api/v1/admin/audit").Code)
	assert.Equal(t, http.StatusBadRequest, serve(admin, "/api/v1/admin/audit?limit=0").Code)

	w := serve(admin, "/api/v1/admin/audit?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items []Entry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "r3", body.Items[0].RecordID)
}
