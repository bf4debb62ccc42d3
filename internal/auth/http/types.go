package http

import (
	"time"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/auth/domain"
	"github.com/skyon-community/skyon-backend/internal/auth/service"
)

const streamKeepAlive = 15 * time.Second

type Handler struct {
	authService *service.AuthService
	admins      *acl.Admins
	keepAlive   time.Duration
}

func New(authService *service.AuthService, admins *acl.Admins) *Handler {
	return &Handler{
		authService: authService,
		admins:      admins,
		keepAlive:   streamKeepAlive,
	}
}

// MeResponse pairs the stored profile with the derived identity state.
type MeResponse struct {
	State   string          `json:"state"`
	IsAdmin bool            `json:"isAdmin"`
	Profile *domain.Profile `json:"profile"`
}
