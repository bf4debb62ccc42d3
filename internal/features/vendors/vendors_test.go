package vendors

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/features/crud/crudtest"
)

func plumber() VendorInput {
	return VendorInput{
		Name:        "Suresh Plumbing",
		Service:     "Plumber",
		Description: "Leaks, fittings, geysers",
		PhoneNumber: "9820011111",
	}
}

func TestCreateVendor_AdminOnly(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps())

	_, err := svc.Create(crudtest.As(crudtest.ResidentA), plumber(), nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Zero(t, env.Backend.Writes("push"))

	v, err := svc.Create(crudtest.As(crudtest.Admin), plumber(), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRating, v.Rating)
	assert.Empty(t, v.Reviews)
	assert.Equal(t, "committee", v.Owner.UID)
	require.NotNil(t, v.Contact)
	assert.Equal(t, "tel:9820011111", v.Contact.Call)
}

func TestAddReview(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps())
	v, err := svc.Create(crudtest.As(crudtest.Admin), plumber(), nil)
	require.NoError(t, err)

	_, err = svc.AddReview(crudtest.As(nil), v.ID, ReviewInput{Rating: 4, Comment: "ok"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.AddReview(crudtest.As(crudtest.ResidentA), v.ID, ReviewInput{Rating: 6, Comment: "great"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AddReview(crudtest.As(crudtest.ResidentA), "missing", ReviewInput{Rating: 4, Comment: "ok"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := svc.AddReview(crudtest.As(crudtest.ResidentA), v.ID, ReviewInput{Rating: 4, Comment: " Quick fix "})
	require.NoError(t, err)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "Asha", got.Reviews[0].Author)
	assert.Equal(t, "Quick fix", got.Reviews[0].Comment)
	assert.NotEmpty(t, got.Reviews[0].ID)
	assert.Equal(t, 4.0, got.Rating)

	got, err = svc.AddReview(crudtest.As(crudtest.ResidentB), v.ID, ReviewInput{Rating: 3, Comment: "Came late"})
	require.NoError(t, err)
	require.Len(t, got.Reviews, 2)
	assert.Equal(t, 3.5, got.Rating)
	assert.False(t, got.CanMutate)

	// Reviews and rating only change through AddReview.
	_, err = svc.Update(crudtest.As(crudtest.Admin), v.ID, map[string]any{"rating": 5}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, DefaultRating, AverageRating(nil))
	assert.Equal(t, 4.3, AverageRating([]Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}))
}

func TestHandler_Reviews(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps())
	r := crudtest.Router(func(rg *gin.RouterGroup) { NewHandler(svc, 0).Register(rg) })

	w := crudtest.Do(t, r, http.MethodPost, "/api/v1/vendors", crudtest.ResidentA, plumber())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = crudtest.Do(t, r, http.MethodPost, "/api/v1/vendors", crudtest.Admin, plumber())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	v := crudtest.Decode[Vendor](t, w)

	maid := plumber()
	maid.Name, maid.Service = "Lata", "Maid"
	w = crudtest.Do(t, r, http.MethodPost, "/api/v1/vendors", crudtest.Admin, maid)
	require.Equal(t, http.StatusCreated, w.Code)

	w = crudtest.Do(t, r, http.MethodGet, "/api/v1/vendors?service=plumber", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := crudtest.Decode[crudtest.Items[Vendor]](t, w)
	require.Len(t, list.Items, 1)
	assert.Equal(t, v.ID, list.Items[0].ID)

	w = crudtest.Do(t, r, http.MethodPost, "/api/v1/vendors/"+v.ID+"/reviews", crudtest.ResidentB, ReviewInput{Rating: 5, Comment: "Excellent"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := crudtest.Decode[Vendor](t, w)
	assert.Equal(t, 5.0, got.Rating)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "Ravi", got.Reviews[0].Author)
}
