package server

import (
	"github.com/atomoco/atomo/internal/sessionctx"
	"github.com/gin-gonic/gin"
)

// RequireSession resolves the session cookie to an account and injects
// the account id into the request context for the services downstream.
func (s *Server) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		accountID, err := s.authsvc.Resolve(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := sessionctx.WithAccountID(c.Request.Context(), accountID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
