package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/acl"
)

const CtxFirebaseUID = "firebase_uid"

// CurrentIdentity returns the identity set by the authentication middleware, or nil.
func CurrentIdentity(c *gin.Context) *acl.Identity {
	return acl.FromContext(c.Request.Context())
}

// UserFirebaseUID returns the verified uid, or "" for signed-out requests.
func UserFirebaseUID(c *gin.Context) string {
	return c.GetString(CtxFirebaseUID)
}
