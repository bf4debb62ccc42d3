package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/auth"
	"github.com/skyon-community/skyon-backend/internal/auth/domain"
	"github.com/skyon-community/skyon-backend/internal/auth/repository"
	"github.com/skyon-community/skyon-backend/internal/validation"
)

type AuthService struct {
	provider auth.Provider
	profiles repository.ProfileRepository
	hub      auth.Hub
	log      *zap.Logger
}

func NewAuthService(provider auth.Provider, profiles repository.ProfileRepository, hub auth.Hub, log *zap.Logger) *AuthService {
	if hub == nil {
		hub = auth.NewLocalHub()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{provider: provider, profiles: profiles, hub: hub, log: log}
}

func (s *AuthService) Hub() auth.Hub { return s.hub }

// Authenticate verifies the ID token and merges the stored profile into the identity. It runs
// on every request so a sign-out or profile change is seen by the next call.
func (s *AuthService) Authenticate(ctx context.Context, idToken string) (*acl.Identity, error) {
	tok, err := s.provider.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}

	profile, err := s.profiles.GetByFirebaseUID(ctx, tok.UID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		profile = nil
	case err != nil:
		return nil, fmt.Errorf("load profile: %w: %v", apperr.ErrStoreUnavailable, err)
	}
	return domain.Identity(tok.UID, tok.Email, tok.Name, profile), nil
}

// GetProfile returns the stored profile, or a blank one carrying the identity's email and
// name when the resident never saved the form.
func (s *AuthService) GetProfile(ctx context.Context, id *acl.Identity) (*domain.Profile, error) {
	if id.State() == acl.SignedOut {
		return nil, apperr.ErrUnauthenticated
	}
	p, err := s.profiles.GetByFirebaseUID(ctx, id.UID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return &domain.Profile{FirebaseUID: id.UID, Email: id.Email, DisplayName: id.DisplayName}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w: %v", apperr.ErrStoreUnavailable, err)
	}
	return p, nil
}

// SaveProfile validates and stores the profile form, then tells the user's other sessions.
func (s *AuthService) SaveProfile(ctx context.Context, id *acl.Identity, in domain.ProfileInput) (*domain.Profile, error) {
	if id.State() == acl.SignedOut {
		return nil, apperr.ErrUnauthenticated
	}
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Block = strings.ToUpper(strings.TrimSpace(in.Block))
	in.FlatNumber = strings.TrimSpace(in.FlatNumber)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	p := &domain.Profile{
		FirebaseUID: id.UID,
		Email:       id.Email,
		DisplayName: in.DisplayName,
		Block:       in.Block,
		FlatNumber:  in.FlatNumber,
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("save profile: %w: %v", apperr.ErrWriteFailed, err)
	}

	s.publish(ctx, id.UID, domain.Identity(id.UID, id.Email, id.DisplayName, p))
	return p, nil
}

// Sync makes sure a profile row exists after sign-in and records the login. Block and flat
// number already on file are kept.
func (s *AuthService) Sync(ctx context.Context, id *acl.Identity) (*domain.Profile, error) {
	if id.State() == acl.SignedOut {
		return nil, apperr.ErrUnauthenticated
	}

	p, err := s.profiles.GetByFirebaseUID(ctx, id.UID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		p = &domain.Profile{FirebaseUID: id.UID, Email: id.Email, DisplayName: id.DisplayName}
		if err := s.profiles.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("create profile: %w: %v", apperr.ErrWriteFailed, err)
		}
	case err != nil:
		return nil, fmt.Errorf("load profile: %w: %v", apperr.ErrStoreUnavailable, err)
	case id.Email != "" && p.Email != id.Email:
		p.Email = id.Email
		if err := s.profiles.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("update profile: %w: %v", apperr.ErrWriteFailed, err)
		}
	}

	if err := s.profiles.UpdateLastLogin(ctx, id.UID); err != nil {
		s.log.Warn("failed to record login", zap.String("uid", id.UID), zap.Error(err))
	}
	return p, nil
}

// SignOut revokes the user's sessions everywhere and notifies open views.
func (s *AuthService) SignOut(ctx context.Context, id *acl.Identity) error {
	if id.State() == acl.SignedOut {
		return apperr.ErrUnauthenticated
	}
	if err := s.provider.RevokeSessions(ctx, id.UID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.publish(ctx, id.UID, nil)
	return nil
}

// publish notifies subscribers of uid. A nil identity announces a sign-out.
func (s *AuthService) publish(ctx context.Context, uid string, id *acl.Identity) {
	if err := s.hub.Publish(ctx, auth.NewEvent(uid, id)); err != nil {
		s.log.Warn("failed to publish identity change", zap.String("uid", uid), zap.Error(err))
	}
}
