package server

import (
	"net/http"

	entitlementdomain "github.com/atomoco/atomo/internal/entitlement/domain"
	"github.com/atomoco/atomo/internal/sessionctx"
	"github.com/gin-gonic/gin"
)

// VerifyIdentity accepts the identity document photo and a selfie as a
// multipart form and runs the one-time verification.
func (s *Server) VerifyIdentity(c *gin.Context) {
	accountID, ok := sessionctx.AccountIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	document, err := readFormFile(c, "document")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	selfie, err := readFormFile(c, "selfie")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if len(document) == 0 || len(selfie) == 0 {
		AbortWithError(c, newValidationError("document", "missing_image", "both images are required"))
		return
	}

	result, err := s.entitlementsvc.VerifyIdentity(c.Request.Context(), accountID, document, selfie)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.Verification(result.Matched)
	c.JSON(http.StatusOK, result)
}

type ActivateSubscriptionRequest struct {
	PlanDays int `json:"plan_days"`
}

func (s *Server) ActivateSubscription(c *gin.Context) {
	accountID, ok := sessionctx.AccountIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req ActivateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err := s.entitlementsvc.ActivateSubscription(c.Request.Context(), accountID, entitlementdomain.Plan(req.PlanDays))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	account, err := s.accountsvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) ListPlans(c *gin.Context) {
	plans := []entitlementdomain.Plan{
		entitlementdomain.PlanWeek,
		entitlementdomain.PlanMonth,
		entitlementdomain.PlanQuarter,
		entitlementdomain.PlanHalfYear,
		entitlementdomain.PlanYear,
	}
	c.JSON(http.StatusOK, gin.H{"plan_days": plans})
}
