package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/auth/domain"
	"github.com/skyon-community/skyon-backend/internal/docstore"
)

func setupUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewUserRepository(db)
	return repo, mock, db
}

func TestUserRepository_GetByFirebaseUID(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("returns profile", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT firebase_uid, email, display_name, block, flat_number`).
			WithArgs("uid-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"firebase_uid", "email", "display_name", "block", "flat_number",
				"created_at", "updated_at", "last_login_at",
			}).AddRow("uid-1", "asha@example.com", "Asha", "B", "402", now, now, nil))

		p, err := repo.GetByFirebaseUID(ctx, "uid-1")
		require.NoError(t, err)
		assert.Equal(t, "Asha", p.DisplayName)
		assert.Equal(t, "B", p.Block)
		assert.Equal(t, "402", p.FlatNumber)
		assert.Nil(t, p.LastLoginAt)
	})

	t.Run("null block and flat", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT firebase_uid`).
			WithArgs("uid-2").
			WillReturnRows(sqlmock.NewRows([]string{
				"firebase_uid", "email", "display_name", "block", "flat_number",
				"created_at", "updated_at", "last_login_at",
			}).AddRow("uid-2", "new@example.com", "", nil, nil, now, now, now))

		p, err := repo.GetByFirebaseUID(ctx, "uid-2")
		require.NoError(t, err)
		assert.Empty(t, p.Block)
		assert.Empty(t, p.FlatNumber)
		require.NotNil(t, p.LastLoginAt)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT firebase_uid`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByFirebaseUID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Upsert(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs("uid-1", "asha@example.com", "Asha", "B", "402").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	p := &domain.Profile{FirebaseUID: "uid-1", Email: "asha@example.com", DisplayName: "Asha", Block: "B", FlatNumber: "402"}
	require.NoError(t, repo.Upsert(context.Background(), p))
	assert.Equal(t, created, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectExec(`UPDATE profiles SET last_login_at`).
		WithArgs("uid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateLastLogin(ctx, "uid-1"))

	mock.ExpectExec(`UPDATE profiles SET last_login_at`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, "ghost"), domain.ErrProfileNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocstoreProfileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstoreProfileRepository(docstore.NewClient(docstore.NewMemoryBackend()))

	_, err := repo.GetByFirebaseUID(ctx, "uid-1")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, "uid-1"), domain.ErrProfileNotFound)

	p := &domain.Profile{FirebaseUID: "uid-1", Email: "asha@example.com", DisplayName: "Asha"}
	require.NoError(t, repo.Upsert(ctx, p))
	firstCreated := p.CreatedAt

	require.NoError(t, repo.UpdateLastLogin(ctx, "uid-1"))

	p.Block, p.FlatNumber = "B", "402"
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.GetByFirebaseUID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.DisplayName)
	assert.Equal(t, "B", got.Block)
	assert.Equal(t, "402", got.FlatNumber)
	assert.Equal(t, firstCreated, got.CreatedAt)
	assert.NotNil(t, got.LastLoginAt, "upsert keeps the login time")
}
