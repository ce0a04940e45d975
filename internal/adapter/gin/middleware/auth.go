package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "fuser-service/internal/domain/user"
	usecase "fuser-service/internal/usecase/user"
)

// callerKey is the gin context key holding the resolved caller.
const callerKey = "caller"

// BasicAuth returns a middleware that resolves the caller identity from HTTP
// Basic credentials. Requests without credentials, or with credentials that
// do not match, proceed as anonymous; the permission checks downstream decide
// between 401 and 403.
func BasicAuth(uc usecase.Usecase, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Next()
			return
		}

		caller, err := uc.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			log.Error("authentication lookup failed", zap.Error(err))
			c.Next()
			return
		}
		if caller != nil {
			c.Set(callerKey, caller)
		}
		c.Next()
	}
}

// CallerFromContext returns the authenticated caller, or nil when the
// request is anonymous.
func CallerFromContext(c *gin.Context) *domain.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, ok := v.(*domain.Caller)
	if !ok {
		return nil
	}
	return caller
}

// SetCaller attaches a caller to the gin context. Used by tests to inject an
// identity without going through basic auth.
func SetCaller(c *gin.Context, caller *domain.Caller) {
	c.Set(callerKey, caller)
}
