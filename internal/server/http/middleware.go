package http

import (
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// authMiddleware resolves the bearer token in the Authorization header and
// stores the identity in the gin context.
func (s *HTTPServer) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var identity *models.Identity
		token, err := auth.ExtractBearer(c.GetHeader("Authorization"))
		if err == nil {
			identity, err = s.guard.Authenticate(c.Request.Context(), token)
		}
		if err != nil {
			s.writeError(c, err)
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFromGin(c *gin.Context) (*models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok && identity != nil
}

func (s *HTTPServer) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
