package server

import (
	"net/http"
	"strings"

	targetdomain "github.com/atomoco/atomo/internal/paymenttarget/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreatePaymentTarget(c *gin.Context) {
	qr, err := readFormFile(c, "qr")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var alias *string
	if v := strings.TrimSpace(c.PostForm("alias")); v != "" {
		alias = &v
	}

	target, err := s.targetsvc.Create(c.Request.Context(), targetdomain.CreateTargetRequest{
		Bank:          c.PostForm("bank"),
		AccountNumber: c.PostForm("account_number"),
		Kind:          targetdomain.TargetKind(c.PostForm("kind")),
		Alias:         alias,
		QR:            qr,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

func (s *Server) ListPaymentTargets(c *gin.Context) {
	targets, err := s.targetsvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_targets": targets})
}

func (s *Server) ArchivePaymentTarget(c *gin.Context) {
	if err := s.targetsvc.Archive(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}
