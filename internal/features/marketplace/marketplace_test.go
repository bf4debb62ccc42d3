package marketplace

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud/crudtest"
	"github.com/skyon-community/skyon-backend/internal/suggest"
)

func sofa() ListingInput {
	return ListingInput{
		Title:       "Three-seater sofa",
		Price:       docstore.Amount(500),
		Type:        TypeForSale,
		Category:    "Furniture",
		Condition:   "Used - Good",
		PhoneNumber: "9820012345",
	}
}

func TestCreateListing_Price(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps(), nil)
	asA := crudtest.As(crudtest.ResidentA)

	paid, err := svc.Create(asA, sofa(), nil)
	require.NoError(t, err)
	assert.Equal(t, docstore.Amount(500), paid.Price)

	free := sofa()
	free.Title = "Old magazines"
	free.Price = docstore.FreePrice()
	got, err := svc.Create(asA, free, nil)
	require.NoError(t, err)
	assert.True(t, got.Price.Free)

	rec, found, err := env.Client.Get(context.Background(), "listings", got.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Free", rec["price"])

	zero := sofa()
	zero.Title = "Spare bricks"
	zero.Price = docstore.Amount(0)
	got, err = svc.Create(asA, zero, nil)
	require.NoError(t, err)
	assert.True(t, got.Price.Free, "a zero price is listed as Free")

	bad := sofa()
	bad.Price = docstore.Amount(-50)
	_, err = svc.Create(asA, bad, nil)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, apperr.FieldErrors(err), "price")

	bad = sofa()
	bad.Condition = "Broken"
	_, err = svc.Create(asA, bad, nil)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, apperr.FieldErrors(err), "condition")
}

func TestSimilar(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps(), nil)
	asA := crudtest.As(crudtest.ResidentA)

	var ids []string
	for _, title := range []string{"Sofa", "Chair", "Table", "Desk"} {
		in := sofa()
		in.Title = title
		l, err := svc.Create(asA, in, nil)
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}
	book := sofa()
	book.Title, book.Category = "Novel", "Books"
	_, err := svc.Create(asA, book, nil)
	require.NoError(t, err)

	similar, err := svc.Similar(context.Background(), ids[0])
	require.NoError(t, err)
	require.Len(t, similar, 2)
	assert.Equal(t, "Desk", similar[0].Title)
	assert.Equal(t, "Table", similar[1].Title)
	for _, l := range similar {
		assert.NotEqual(t, ids[0], l.ID)
		assert.Equal(t, "Furniture", l.Category)
	}

	_, err = svc.Similar(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

type fixedModel string

func (m fixedModel) Categorize(context.Context, string, []string) (string, error) {
	return string(m), nil
}

func TestSuggestCategory(t *testing.T) {
	env := crudtest.NewEnv(t)

	svc := NewService(env.Deps(), nil)
	got, err := svc.SuggestCategory(context.Background(), "Kids bicycle")
	require.NoError(t, err)
	assert.Equal(t, "Kids", got)

	_, err = svc.SuggestCategory(context.Background(), "tv")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	svc = NewService(env.Deps(), suggest.New(fixedModel("Appliances"), nil))
	got, err = svc.SuggestCategory(context.Background(), "Something odd")
	require.NoError(t, err)
	assert.Equal(t, "Appliances", got)
}

func TestHandler_TypeFilter(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps(), nil)
	r := crudtest.Router(func(rg *gin.RouterGroup) { NewHandler(svc, 0).Register(rg) })

	w := crudtest.Do(t, r, http.MethodPost, "/api/v1/listings", crudtest.ResidentA, sofa())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	rent := sofa()
	rent.Title, rent.Type, rent.Price = "Parking spot", TypeForRent, docstore.Amount(1500)
	w = crudtest.Do(t, r, http.MethodPost, "/api/v1/listings", crudtest.ResidentA, rent)
	require.Equal(t, http.StatusCreated, w.Code)

	w = crudtest.Do(t, r, http.MethodGet, "/api/v1/listings?type=For+Rent", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := crudtest.Decode[crudtest.Items[Listing]](t, w)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Parking spot", list.Items[0].Title)
	require.NotNil(t, list.Items[0].Contact)
	assert.Equal(t, "https://wa.me/9820012345", list.Items[0].Contact.WhatsApp)

	w = crudtest.Do(t, r, http.MethodGet, "/api/v1/listings?type=Swap", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = crudtest.Do(t, r, http.MethodGet, "/api/v1/listings/suggest-category?title=wooden+chair", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"category":"Furniture"}`, w.Body.String())

	w = crudtest.Do(t, r, http.MethodPost, "/api/v1/listings", nil, sofa())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
