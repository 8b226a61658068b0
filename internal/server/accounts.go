package server

import (
	"io"
	"net/http"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	"github.com/gin-gonic/gin"
)

// maxAssetBytes bounds uploaded images (logo, signature, QR, identity
// photos).
const maxAssetBytes = 4 << 20

// readFormFile reads an optional multipart file field. A missing field
// returns nil bytes and no error.
func readFormFile(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	if header.Size > maxAssetBytes {
		return nil, newValidationError(field, "file_too_large", "file too large")
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxAssetBytes))
}

func (s *Server) GetAccount(c *gin.Context) {
	account, err := s.accountsvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) UpdateAccountLegal(c *gin.Context) {
	signature, err := readFormFile(c, "signature")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	account, err := s.accountsvc.UpdateLegal(c.Request.Context(), accountdomain.UpdateLegalRequest{
		DisplayName:  c.PostForm("display_name"),
		TaxID:        c.PostForm("tax_id"),
		Phone:        c.PostForm("phone"),
		Address:      c.PostForm("address"),
		ContactEmail: c.PostForm("contact_email"),
		Signature:    signature,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) UpdateAccountBranding(c *gin.Context) {
	logo, err := readFormFile(c, "logo")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	account, err := s.accountsvc.UpdateBranding(c.Request.Context(), accountdomain.UpdateBrandingRequest{
		BrandColor: c.PostForm("brand_color"),
		Slogan:     c.PostForm("slogan"),
		Logo:       logo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
