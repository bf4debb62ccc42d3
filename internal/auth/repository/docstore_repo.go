package repository

import (
	"context"
	"time"

	"github.com/skyon-community/skyon-backend/internal/auth/domain"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/registry"
)

// DocstoreProfileRepository keeps profiles under users/{uid} of the document store, next to
// the content collections. Used when no Postgres is configured.
type DocstoreProfileRepository struct {
	client *docstore.Client
	now    func() time.Time
}

func NewDocstoreProfileRepository(client *docstore.Client) *DocstoreProfileRepository {
	return &DocstoreProfileRepository{client: client, now: time.Now}
}

type storedProfile struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Block       string `json:"block,omitempty"`
	FlatNumber  string `json:"flatNumber,omitempty"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
	UpdatedAt   int64  `json:"updatedAt,omitempty"`
	LastLoginAt int64  `json:"lastLoginAt,omitempty"`
}

func (r *DocstoreProfileRepository) GetByFirebaseUID(ctx context.Context, uid string) (*domain.Profile, error) {
	rec, found, err := r.client.Get(ctx, registry.Users.String(), uid)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrProfileNotFound
	}
	s, err := docstore.Decode[storedProfile](rec)
	if err != nil {
		return nil, err
	}

	p := &domain.Profile{
		FirebaseUID: uid,
		Email:       s.Email,
		DisplayName: s.DisplayName,
		Block:       s.Block,
		FlatNumber:  s.FlatNumber,
		CreatedAt:   fromMillis(s.CreatedAt),
		UpdatedAt:   fromMillis(s.UpdatedAt),
	}
	if s.LastLoginAt > 0 {
		t := fromMillis(s.LastLoginAt)
		p.LastLoginAt = &t
	}
	return p, nil
}

func (r *DocstoreProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	now := r.now().UTC()
	created := now
	var lastLogin int64
	if existing, err := r.GetByFirebaseUID(ctx, p.FirebaseUID); err == nil {
		if !existing.CreatedAt.IsZero() {
			created = existing.CreatedAt
		}
		if existing.LastLoginAt != nil {
			lastLogin = existing.LastLoginAt.UnixMilli()
		}
	}

	fields, err := docstore.Fields(storedProfile{
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Block:       p.Block,
		FlatNumber:  p.FlatNumber,
		CreatedAt:   created.UnixMilli(),
		UpdatedAt:   now.UnixMilli(),
		LastLoginAt: lastLogin,
	})
	if err != nil {
		return err
	}
	if err := r.client.Put(ctx, registry.Users.String(), p.FirebaseUID, fields); err != nil {
		return err
	}
	p.CreatedAt = fromMillis(created.UnixMilli())
	p.UpdatedAt = fromMillis(now.UnixMilli())
	return nil
}

func (r *DocstoreProfileRepository) UpdateLastLogin(ctx context.Context, uid string) error {
	if _, err := r.GetByFirebaseUID(ctx, uid); err != nil {
		return err
	}
	return r.client.Update(ctx, registry.Users.String(), uid, map[string]any{
		"lastLoginAt": r.now().UTC().UnixMilli(),
	})
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
