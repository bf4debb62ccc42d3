package dishes

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/audit"
	"github.com/skyon-community/skyon-backend/internal/features/crud/crudtest"
)

func biryani() DishInput {
	return DishInput{Name: "Chicken Biryani", Price: 180, PhoneNumber: "9820012345"}
}

// clock is shared by the store and the service so createdAt and "today" agree.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setup(t *testing.T, start time.Time) (*Service, *crudtest.Env, *clock) {
	t.Helper()
	env := crudtest.NewEnv(t)
	clk := &clock{t: start}
	env.Memory.SetClock(clk.now)

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	svc := NewService(env.Deps(), kolkata)
	svc.now = clk.now
	return svc, env, clk
}

func TestCreateDish(t *testing.T) {
	// 13:35 in Kolkata.
	svc, _, _ := setup(t, time.Date(2026, 3, 10, 8, 5, 0, 0, time.UTC))

	dish, err := svc.Create(crudtest.As(crudtest.ResidentA), biryani(), nil)
	require.NoError(t, err)
	assert.Equal(t, "01:35 PM", dish.PostedAt)
	assert.Equal(t, crudtest.ResidentA.UID, dish.Seller.UID)
	assert.True(t, dish.CanMutate)

	_, err = svc.Update(crudtest.As(crudtest.ResidentA), dish.ID, map[string]any{"postedAt": "09:00 AM"}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	bad := biryani()
	bad.Price = -5
	_, err = svc.Create(crudtest.As(crudtest.ResidentA), bad, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestToday(t *testing.T) {
	// 23:30 on 9 March in Kolkata.
	svc, _, clk := setup(t, time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC))
	asA := crudtest.As(crudtest.ResidentA)

	_, err := svc.Create(asA, biryani(), nil)
	require.NoError(t, err)

	// 00:30 on 10 March in Kolkata, still 9 March in UTC.
	clk.t = time.Date(2026, 3, 9, 19, 0, 0, 0, time.UTC)
	fresh := biryani()
	fresh.Name = "Aloo Gobi"
	_, err = svc.Create(asA, fresh, nil)
	require.NoError(t, err)

	kolkata, err := svc.Location("")
	require.NoError(t, err)
	dishes, err := svc.Today(context.Background(), kolkata)
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, "Aloo Gobi", dishes[0].Name)

	dishes, err = svc.Today(context.Background(), time.UTC)
	require.NoError(t, err)
	assert.Len(t, dishes, 2)

	_, err = svc.Location("Nowhere/Special")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPurge(t *testing.T) {
	svc, env, clk := setup(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	asA := crudtest.As(crudtest.ResidentA)

	old, err := svc.Create(asA, biryani(), nil)
	require.NoError(t, err)

	clk.t = clk.t.Add(47 * time.Hour)
	recent, err := svc.Create(asA, biryani(), nil)
	require.NoError(t, err)

	clk.t = clk.t.Add(2 * time.Hour)
	removed, err := svc.Purge(context.Background(), 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = svc.Get(context.Background(), old.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Get(context.Background(), recent.ID)
	assert.NoError(t, err)

	require.Len(t, env.Audit.Entries, 1)
	assert.Equal(t, audit.ActionPurge, env.Audit.Entries[0].Action)
	assert.Equal(t, audit.SystemActor, env.Audit.Entries[0].ActorUID)
}

func TestHandler(t *testing.T) {
	svc, _, _ := setup(t, time.Now())
	r := crudtest.Router(func(rg *gin.RouterGroup) { NewHandler(svc, 0).Register(rg) })

	w := crudtest.Do(t, r, http.MethodGet, "/api/v1/dishes/templates", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	templates := crudtest.Decode[crudtest.Items[Template]](t, w)
	require.Len(t, templates.Items, 3)
	assert.Equal(t, Template{ID: 1, Name: "Chicken Biryani", Price: 180}, templates.Items[0])

	w = crudtest.Do(t, r, http.MethodPost, "/api/v1/dishes", crudtest.Incomplete, biryani())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = crudtest.Do(t, r, http.MethodPost, "/api/v1/dishes", crudtest.ResidentB, biryani())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = crudtest.Do(t, r, http.MethodGet, "/api/v1/dishes?today=true&tz=Europe/London", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, crudtest.Decode[crudtest.Items[Dish]](t, w).Items, 1)

	w = crudtest.Do(t, r, http.MethodGet, "/api/v1/dishes?today=true&tz=Bogus/Zone", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = crudtest.Do(t, r, http.MethodGet, "/api/v1/dishes?today=maybe", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
