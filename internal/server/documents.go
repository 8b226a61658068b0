package server

import (
	"net/http"

	billingdomain "github.com/atomoco/atomo/internal/billing/domain"
	"github.com/atomoco/atomo/internal/tax"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type LocalWithholdingRequest struct {
	PerMille decimal.Decimal `json:"per_mille"`
	City     string          `json:"city"`
}

type IssueDocumentRequest struct {
	ClientID        string                   `json:"client_id"`
	Description     string                   `json:"description"`
	Gross           decimal.Decimal          `json:"gross"`
	City            string                   `json:"city"`
	SourceCategory  string                   `json:"source_category"`
	Local           *LocalWithholdingRequest `json:"local"`
	PaymentTargetID string                   `json:"payment_target_id"`
}

type IssueDocumentResponse struct {
	Document    billingdomain.Document `json:"document"`
	Filename    string                 `json:"filename"`
	NegativeNet bool                   `json:"negative_net"`
}

func (s *Server) IssueDocument(c *gin.Context) {
	var req IssueDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issueReq := billingdomain.IssueRequest{
		ClientID:        req.ClientID,
		Description:     req.Description,
		Gross:           req.Gross,
		City:            req.City,
		PaymentTargetID: req.PaymentTargetID,
	}
	if req.SourceCategory != "" {
		category := tax.SourceCategory(req.SourceCategory)
		issueReq.Source = &category
	}
	if req.Local != nil {
		issueReq.Local = &tax.LocalSelection{
			PerMille: req.Local.PerMille,
			City:     req.Local.City,
		}
	}

	result, err := s.billingsvc.Issue(c.Request.Context(), issueReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, IssueDocumentResponse{
		Document:    result.Document,
		Filename:    result.Filename,
		NegativeNet: result.NegativeNet,
	})
}

func (s *Server) ListDocuments(c *gin.Context) {
	documents, err := s.billingsvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

func (s *Server) GetDocument(c *gin.Context) {
	document, err := s.billingsvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, document)
}

func (s *Server) DownloadDocument(c *gin.Context) {
	pdfBytes, filename, err := s.billingsvc.Render(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func (s *Server) SendDocument(c *gin.Context) {
	delivered, err := s.billingsvc.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateDocumentStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err := s.billingsvc.UpdateStatus(c.Request.Context(), c.Param("id"), billingdomain.DocumentStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) DocumentSummary(c *gin.Context) {
	summary, err := s.billingsvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) ListTaxCategories(c *gin.Context) {
	type categoryView struct {
		Code  string `json:"code"`
		Label string `json:"label"`
		Rate  string `json:"rate"`
	}
	categories := make([]categoryView, 0, len(tax.Categories()))
	for _, category := range tax.Categories() {
		categories = append(categories, categoryView{
			Code:  string(category),
			Label: category.Label(),
			Rate:  category.Rate().String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"categories":              categories,
		"default_local_per_mille": tax.DefaultLocalPerMille.String(),
	})
}
