package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ReferralOverview(c *gin.Context) {
	overview, err := s.referralsvc.Overview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
