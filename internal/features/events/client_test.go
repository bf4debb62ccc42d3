package events

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud/crudtest"
)

func TestAPIClient_BoardOverHTTP(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps(), false)
	id := seeded(t, svc, 10)
	srv := httptest.NewServer(crudtest.Router(func(rg *gin.RouterGroup) { NewHandler(svc, 0).Register(rg) }))
	defer srv.Close()

	ctx := context.Background()
	board := NewBoard(NewAPIClient(srv.URL+"/", crudtest.ResidentB.UID, srv.Client()))
	applied, err := board.Refresh(ctx)
	require.NoError(t, err)
	require.True(t, applied)
	require.Len(t, board.Events(), 1)
	assert.Equal(t, 10, board.Events()[0].RSVPs)

	n, err := board.RSVP(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, 11, rsvpsOf(t, svc, id))

	// The event disappears on the server; the optimistic bump is undone.
	require.NoError(t, svc.Delete(crudtest.As(crudtest.ResidentA), id))
	n, err = board.RSVP(ctx, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 11, n)
	assert.Equal(t, 11, board.Events()[0].RSVPs)
}

func TestAPIClient_Errors(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps(), false)
	id := seeded(t, svc, 2)
	srv := httptest.NewServer(crudtest.Router(func(rg *gin.RouterGroup) { NewHandler(svc, 0).Register(rg) }))
	defer srv.Close()
	ctx := context.Background()

	_, err := NewAPIClient(srv.URL, "", nil).RSVP(ctx, id, nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	neg := -1
	_, err = NewAPIClient(srv.URL, crudtest.ResidentB.UID, nil).RSVP(ctx, id, &neg)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	list, err := NewAPIClient(srv.URL, "", nil).List(ctx, func(rec docstore.Record, _ *Event) bool {
		return rec.String("title") == "Holi"
	})
	require.NoError(t, err)
	assert.Empty(t, list)
}
