package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/api/http/response"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/auth"
	"github.com/skyon-community/skyon-backend/internal/logging"
)

// Authenticator resolves a bearer token into an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, idToken string) (*acl.Identity, error)
}

// Authenticate attaches the caller's identity to the request when a Bearer token is present.
// Requests without a token continue signed out; a token that fails verification is rejected.
func Authenticate(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		id, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(auth.CtxFirebaseUID, id.UID)
		ctx := acl.WithIdentity(c.Request.Context(), id)
		log := logging.FromContext(ctx).With(zap.String("uid", id.UID))
		c.Request = c.Request.WithContext(logging.WithContext(ctx, log))

		c.Next()
	}
}

// RequireUser rejects signed-out requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.CurrentIdentity(c).State() == acl.SignedOut {
			response.Error(c, apperr.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

// RequireCompleteProfile rejects callers that have not saved a block and flat number.
func RequireCompleteProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch auth.CurrentIdentity(c).State() {
		case acl.SignedOut:
			response.Error(c, apperr.ErrUnauthenticated)
			return
		case acl.Incomplete:
			response.Error(c, apperr.ErrProfileIncomplete)
			return
		}
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.EqualFold(bearerToken[:7], "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
