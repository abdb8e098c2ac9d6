package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const claimsKey = "userClaims"

// localDevUser is the fixed identity used when auth is skipped.
const localDevUser = "local-dev-user"

// Middleware verifies the Firebase bearer token and stores the user
// claims on the gin context. Every route behind it can rely on
// UserID(c) being set.
func Middleware(fb *FirebaseAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		claims, err := fb.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// SkipMiddleware stamps every request with a fixed local identity. For
// local development only; an X-User-ID header can pick a different
// partition.
func SkipMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader("X-User-ID")
		if uid == "" {
			uid = localDevUser
		}
		c.Set(claimsKey, &UserClaims{UID: uid, Verified: true})
		c.Next()
	}
}

// UserID returns the authenticated user id for the request, or "" when
// the middleware did not run.
func UserID(c *gin.Context) string {
	claims := Claims(c)
	if claims == nil {
		return ""
	}
	return claims.UID
}

// Claims returns the full user claims for the request, or nil.
func Claims(c *gin.Context) *UserClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*UserClaims)
	if !ok {
		return nil
	}
	return claims
}
