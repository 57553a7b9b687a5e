package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	bookingdomain "github.com/arafateouronile-glitch/immokey/internal/booking/domain"
	"github.com/arafateouronile-glitch/immokey/internal/period"
	propertydomain "github.com/arafateouronile-glitch/immokey/internal/property/domain"
	rentbillingdomain "github.com/arafateouronile-glitch/immokey/internal/rentbilling/domain"
	tenancydomain "github.com/arafateouronile-glitch/immokey/internal/tenancy/domain"
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
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
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
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isPropertyValidationError(err),
		isTenancyValidationError(err),
		isBillingValidationError(err),
		isBookingValidationError(err),
		isPeriodValidationError(err):
		return true
	default:
		return false
	}
}

func isPropertyValidationError(err error) bool {
	switch err {
	case propertydomain.ErrInvalidID,
		propertydomain.ErrInvalidTitle,
		propertydomain.ErrInvalidRent,
		propertydomain.ErrInvalidCharges,
		propertydomain.ErrInvalidCurrency:
		return true
	default:
		return false
	}
}

func isTenancyValidationError(err error) bool {
	switch err {
	case tenancydomain.ErrInvalidID,
		tenancydomain.ErrInvalidPropertyID,
		tenancydomain.ErrInvalidName,
		tenancydomain.ErrInvalidRent,
		tenancydomain.ErrInvalidCharges,
		tenancydomain.ErrInvalidDueDay:
		return true
	default:
		return false
	}
}

func isBillingValidationError(err error) bool {
	switch err {
	case rentbillingdomain.ErrInvalidTenantID,
		rentbillingdomain.ErrInvalidProperty,
		rentbillingdomain.ErrInvalidDueDateID,
		rentbillingdomain.ErrInvalidAmount,
		rentbillingdomain.ErrInvalidMethod,
		rentbillingdomain.ErrInvalidPaidOn:
		return true
	default:
		return false
	}
}

func isBookingValidationError(err error) bool {
	switch err {
	case bookingdomain.ErrInvalidID,
		bookingdomain.ErrInvalidEstablishment,
		bookingdomain.ErrInvalidRoom,
		bookingdomain.ErrInvalidGuestName,
		bookingdomain.ErrInvalidCheckIn,
		bookingdomain.ErrInvalidCheckOut,
		bookingdomain.ErrInvalidDateRange,
		bookingdomain.ErrInvalidPrice,
		bookingdomain.ErrInvalidCharge,
		bookingdomain.ErrInvalidStatus,
		bookingdomain.ErrInvalidPaymentStatus:
		return true
	default:
		return false
	}
}

func isPeriodValidationError(err error) bool {
	switch err {
	case period.ErrInvalidPeriod,
		period.ErrReversedRange,
		period.ErrRangeTooLarge:
		return true
	default:
		return false
	}
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, propertydomain.ErrInvalidActor),
		errors.Is(err, tenancydomain.ErrInvalidActor),
		errors.Is(err, rentbillingdomain.ErrInvalidActor):
		return true
	default:
		return false
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, propertydomain.ErrNotOwner),
		errors.Is(err, tenancydomain.ErrNotOwner),
		errors.Is(err, rentbillingdomain.ErrNotOwner):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, propertydomain.ErrArchived),
		errors.Is(err, tenancydomain.ErrPropertyArchived),
		errors.Is(err, tenancydomain.ErrPropertyOccupied),
		errors.Is(err, tenancydomain.ErrNotActive),
		errors.Is(err, rentbillingdomain.ErrDueDateMismatch),
		errors.Is(err, rentbillingdomain.ErrDueDateSettled),
		errors.Is(err, bookingdomain.ErrInvalidTransition):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, propertydomain.ErrNotFound),
		errors.Is(err, tenancydomain.ErrNotFound),
		errors.Is(err, rentbillingdomain.ErrTenantNotFound),
		errors.Is(err, rentbillingdomain.ErrDueDateNotFound),
		errors.Is(err, bookingdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
