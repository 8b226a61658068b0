package server

import (
	"net/http"

	clientdomain "github.com/atomoco/atomo/internal/client/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateClient(c *gin.Context) {
	var req clientdomain.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	client, err := s.clientsvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (s *Server) ListClients(c *gin.Context) {
	clients, err := s.clientsvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}
