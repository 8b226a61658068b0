package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

// throttleAuth budgets credential attempts per source address and per
// handle. Limiter errors fail open: a Redis outage must not lock
// everyone out.
func (s *Server) throttleAuth(c *gin.Context, handle string) bool {
	if !s.limiter.Enabled() {
		return true
	}
	ctx := c.Request.Context()

	if ok, err := s.limiter.AllowIP(ctx, c.ClientIP()); err != nil {
		s.log.Warn("rate limiter check failed", zap.Error(err))
	} else if !ok {
		AbortWithError(c, ErrTooManyRequests)
		return false
	}

	if ok, err := s.limiter.AllowHandle(ctx, handle); err != nil {
		s.log.Warn("rate limiter check failed", zap.Error(err))
	} else if !ok {
		AbortWithError(c, ErrTooManyRequests)
		return false
	}
	return true
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if !s.throttleAuth(c, req.Handle) {
		return
	}

	session, account, err := s.authsvc.Login(c.Request.Context(), req.Handle, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusOK, account)
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("logout failed", zap.Error(err))
		}
	}
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	account, err := s.accountsvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
