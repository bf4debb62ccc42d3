package parking

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/features/crud/crudtest"
)

func report() ViolationInput {
	return ViolationInput{VehicleNumber: " mh04 ab 1234 ", Location: "Visitor bay 3", Description: "Blocking the ramp"}
}

func newService(env *crudtest.Env) *Service {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	svc := NewService(env.Deps(), loc)
	svc.now = func() time.Time { return time.Date(2026, 10, 16, 9, 30, 5, 0, time.UTC) }
	return svc
}

func TestCreate_PhotoFirst(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := newService(env)
	asA := crudtest.As(crudtest.ResidentA)

	_, err := svc.Create(asA, report(), nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, env.Backend.Writes("push"))

	v, err := svc.Create(asA, report(), crudtest.Photo())
	require.NoError(t, err)
	assert.Equal(t, "MH04 AB 1234", v.VehicleNumber)
	assert.Equal(t, "16/10/2026, 3:00:05 pm", v.Timestamp)
	assert.Equal(t, "https://img.example/1.jpg", v.ImageURL)
	assert.Equal(t, crudtest.ResidentA.Snapshot(), v.ReportedBy)

	_, err = svc.Update(asA, v.ID, map[string]any{"timestamp": "yesterday"}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// A non-reporter's delete is refused before any write, and the reporter's own delete removes it.
func TestDelete_ReporterOnly(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := newService(env)
	asA := crudtest.As(crudtest.ResidentA)

	v, err := svc.Create(asA, report(), crudtest.Photo())
	require.NoError(t, err)

	err = svc.Delete(crudtest.As(crudtest.ResidentB), v.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Zero(t, env.Backend.Writes("delete"))

	list, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].CanMutate)

	require.NoError(t, svc.Delete(asA, v.ID))
	assert.Equal(t, 1, env.Backend.Writes("delete"))
	list, err = svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHandler_Multipart(t *testing.T) {
	env := crudtest.NewEnv(t)
	r := crudtest.Router(func(rg *gin.RouterGroup) { NewHandler(newService(env), 64).Register(rg) })

	w := crudtest.Do(t, r, http.MethodPost, "/api/v1/parking", crudtest.ResidentA, report())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := make([]byte, 65)
	copy(big, crudtest.PNG)
	w = crudtest.DoMultipart(t, r, http.MethodPost, "/api/v1/parking", crudtest.ResidentA, report(), big)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = crudtest.DoMultipart(t, r, http.MethodPost, "/api/v1/parking", crudtest.ResidentA, report(), crudtest.PNG)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	v := crudtest.Decode[Violation](t, w)

	w = crudtest.Do(t, r, http.MethodDelete, "/api/v1/parking/"+v.ID, crudtest.ResidentB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = crudtest.Do(t, r, http.MethodDelete, "/api/v1/parking/"+v.ID, crudtest.Admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreate_LocalImageRefused(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := newService(env)
	asA := crudtest.As(crudtest.ResidentA)

	for _, ref := range []string{"blob:http://localhost/3f1c", "file:///sdcard/DCIM/plate.jpg", "http://img.example/plate.jpg"} {
		in := report()
		in.ImageURL = ref
		_, err := svc.Create(asA, in, nil)
		require.ErrorIs(t, err, apperr.ErrValidation, ref)
		assert.Contains(t, apperr.FieldErrors(err), "imageUrl", ref)
	}
	assert.Zero(t, env.Backend.Writes("push"))

	in := report()
	in.ImageURL = "https://res.cloudinary.com/skyon/image/upload/v1/plate.jpg"
	v, err := svc.Create(asA, in, nil)
	require.NoError(t, err)
	assert.Equal(t, in.ImageURL, v.ImageURL)
	assert.Zero(t, env.Uploader.Calls)
}

func TestUpdate_PhotoStaysMandatory(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := newService(env)
	asA := crudtest.As(crudtest.ResidentA)

	v, err := svc.Create(asA, report(), crudtest.Photo())
	require.NoError(t, err)

	for _, patch := range []map[string]any{
		{"imageUrl": ""},
		{"imageUrl": nil},
		{"imageUrl": "blob:http://localhost/3f1c"},
		{"imageUrl": 42},
	} {
		_, err = svc.Update(asA, v.ID, patch, nil)
		assert.ErrorIs(t, err, apperr.ErrValidation, patch)
	}
	assert.Zero(t, env.Backend.Writes("update"))

	got, err := svc.Get(asA, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/1.jpg", got.ImageURL)

	got, err = svc.Update(asA, v.ID, map[string]any{"location": "Gate 1"}, crudtest.Photo())
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/2.jpg", got.ImageURL)
	assert.Equal(t, "Gate 1", got.Location)
}
