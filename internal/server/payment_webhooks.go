package server

import (
	"crypto/subtle"
	"net/http"

	entitlementdomain "github.com/atomoco/atomo/internal/entitlement/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type PaymentConfirmation struct {
	AccountID string `json:"account_id"`
	PlanDays  int    `json:"plan_days"`
}

// PaymentWebhook receives a confirmed subscription payment from the
// gateway and extends the account's subscription window.
func (s *Server) PaymentWebhook(c *gin.Context) {
	secret := s.cfg.PaymentWebhookSecret
	if secret == "" {
		AbortWithError(c, ErrNotFound)
		return
	}
	provided := c.GetHeader("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
		AbortWithError(c, ErrForbidden)
		return
	}

	var confirmation PaymentConfirmation
	if err := c.ShouldBindJSON(&confirmation); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	accountID, err := snowflake.ParseString(confirmation.AccountID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.entitlementsvc.ActivateSubscription(c.Request.Context(), accountID, entitlementdomain.Plan(confirmation.PlanDays))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "activated"})
}
