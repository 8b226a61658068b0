package server

import (
	"errors"
	"net/http"
	"strings"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	authdomain "github.com/atomoco/atomo/internal/auth/domain"
	billingdomain "github.com/atomoco/atomo/internal/billing/domain"
	clientdomain "github.com/atomoco/atomo/internal/client/domain"
	entitlementdomain "github.com/atomoco/atomo/internal/entitlement/domain"
	targetdomain "github.com/atomoco/atomo/internal/paymenttarget/domain"
	signupdomain "github.com/atomoco/atomo/internal/signup/domain"
	"github.com/atomoco/atomo/internal/tax"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Reason  string            `json:"reason,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	// Entitlement denials carry a machine-readable reason the UI routes
	// on: verification flow vs. subscription upsell.
	var denied *entitlementdomain.DeniedError
	if errors.As(err, &denied) {
		return http.StatusForbidden, errorPayload{
			Type:    "entitlement_denied",
			Message: "entitlement denied",
			Reason:  string(denied.Reason),
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: strings.ReplaceAll(code, "_", " "),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrSessionNotFound):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many attempts, slow down",
		}
	case errors.Is(err, clientdomain.ErrDuplicateClient),
		errors.Is(err, signupdomain.ErrHandleTaken),
		errors.Is(err, accountdomain.ErrHandleTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, billingdomain.ErrPersistenceConflict):
		// Transient: the single in-service retry already ran.
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "persistence_conflict",
			Message: "issuance conflict, retry the request",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, signupdomain.ErrInvalidRequest),
		errors.Is(err, signupdomain.ErrInvalidCode),
		errors.Is(err, signupdomain.ErrCodeExpired):
		return true
	case errors.Is(err, accountdomain.ErrInvalidHandle),
		errors.Is(err, accountdomain.ErrInvalidTaxID),
		errors.Is(err, accountdomain.ErrInvalidPhone),
		errors.Is(err, accountdomain.ErrInvalidColor),
		errors.Is(err, accountdomain.ErrInvalidPassword):
		return true
	case errors.Is(err, clientdomain.ErrInvalidName),
		errors.Is(err, clientdomain.ErrInvalidTaxID),
		errors.Is(err, clientdomain.ErrInvalidPhone),
		errors.Is(err, clientdomain.ErrInvalidID):
		return true
	case errors.Is(err, targetdomain.ErrInvalidBank),
		errors.Is(err, targetdomain.ErrInvalidAccountNumber),
		errors.Is(err, targetdomain.ErrInvalidKind),
		errors.Is(err, targetdomain.ErrInvalidID):
		return true
	case errors.Is(err, billingdomain.ErrInvalidGross),
		errors.Is(err, billingdomain.ErrInvalidDescription),
		errors.Is(err, billingdomain.ErrInvalidCity),
		errors.Is(err, billingdomain.ErrInvalidID),
		errors.Is(err, billingdomain.ErrInvalidStatus),
		errors.Is(err, billingdomain.ErrNoRecipient):
		return true
	case errors.Is(err, tax.ErrNegativeGross),
		errors.Is(err, tax.ErrInvalidCategory),
		errors.Is(err, tax.ErrInvalidPerMille):
		return true
	case errors.Is(err, entitlementdomain.ErrInvalidPlan):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, targetdomain.ErrNotFound),
		errors.Is(err, billingdomain.ErrClientNotFound),
		errors.Is(err, billingdomain.ErrTargetNotFound),
		errors.Is(err, billingdomain.ErrDocumentNotFound),
		errors.Is(err, entitlementdomain.ErrAccountNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if field, ok := strings.CutPrefix(code, "invalid_"); ok {
		return field
	}
	return "request"
}
