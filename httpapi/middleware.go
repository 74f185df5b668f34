package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"community-service/logs"
)

const viewerKey = "viewer_id"

// TokenVerifier resolves a bearer token to the user it was issued to.
type TokenVerifier interface {
	VerifyUser(token string) (uuid.UUID, error)
}

// OptionalAuthMiddleware sets the viewer when the request carries a valid
// bearer token and lets every request through.
func OptionalAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		viewerID, err := verifier.VerifyUser(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.Next()
			return
		}

		c.Set(viewerKey, viewerID)
		c.Next()
	}
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}

		viewerID, err := verifier.VerifyUser(token)
		if err != nil {
			logs.LogJSON("WARN", "Rejected bearer token", map[string]interface{}{
				"route": c.FullPath(),
				"error": err,
			})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(viewerKey, viewerID)
		c.Next()
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers
// on a websocket handshake, so upgrades may pass access_token instead.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if websocket.IsWebSocketUpgrade(c.Request) {
		return c.Query("access_token")
	}
	return ""
}

// viewer returns the authenticated viewer, or nil.
func viewer(c *gin.Context) *uuid.UUID {
	value, ok := c.Get(viewerKey)
	if !ok {
		return nil
	}
	viewerID, ok := value.(uuid.UUID)
	if !ok {
		return nil
	}
	return &viewerID
}
