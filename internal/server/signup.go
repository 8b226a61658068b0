package server

import (
	"net/http"

	signupdomain "github.com/atomoco/atomo/internal/signup/domain"
	"github.com/gin-gonic/gin"
)

type BeginSignupRequest struct {
	Name         string `json:"name"`
	Handle       string `json:"handle"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code"`
}

func (s *Server) BeginSignup(c *gin.Context) {
	var req BeginSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	// Each Begin sends a mail; throttle before any work happens.
	if !s.throttleAuth(c, req.Handle) {
		return
	}

	err := s.signupsvc.Begin(c.Request.Context(), signupdomain.BeginRequest{
		Name:         req.Name,
		Handle:       req.Handle,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "code_sent"})
}

type CompleteSignupRequest struct {
	Handle string `json:"handle"`
	Code   string `json:"code"`
}

func (s *Server) CompleteSignup(c *gin.Context) {
	var req CompleteSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	account, err := s.signupsvc.Complete(c.Request.Context(), signupdomain.CompleteRequest{
		Handle: req.Handle,
		Code:   req.Code,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
