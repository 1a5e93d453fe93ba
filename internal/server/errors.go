package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
	distributordomain "github.com/tunebridge/tunebridge/internal/distributor/domain"
	ledgerdomain "github.com/tunebridge/tunebridge/internal/ledger/domain"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	partnerdomain "github.com/tunebridge/tunebridge/internal/partner/domain"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	trackdomain "github.com/tunebridge/tunebridge/internal/track/domain"
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
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
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
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
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
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
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
		errors.Is(err, settlementdomain.ErrInvalidYearMonth),
		errors.Is(err, settlementdomain.ErrInvalidStatus),
		errors.Is(err, settlementdomain.ErrMissingPaymentRef),
		errors.Is(err, settlementdomain.ErrInvalidPageToken),
		errors.Is(err, ledgerdomain.ErrInvalidPageToken),
		errors.Is(err, ledgerdomain.ErrInvalidYearMonth),
		errors.Is(err, ledgerdomain.ErrInvalidDistributor),
		errors.Is(err, ledgerdomain.ErrInvalidDataSource),
		errors.Is(err, ledgerdomain.ErrInvalidTrack),
		errors.Is(err, ledgerdomain.ErrEmptyImport),
		errors.Is(err, ledgerdomain.ErrNegativeRevenue),
		errors.Is(err, ledgerdomain.ErrNetExceedsGross),
		errors.Is(err, distributordomain.ErrInvalidName),
		errors.Is(err, distributordomain.ErrInvalidCommissionRate),
		errors.Is(err, trackdomain.ErrInvalidTitle),
		errors.Is(err, trackdomain.ErrInvalidArtist),
		errors.Is(err, partnerdomain.ErrInvalidName),
		errors.Is(err, partnerdomain.ErrInvalidEmail),
		errors.Is(err, contractdomain.ErrInvalidPartner),
		errors.Is(err, contractdomain.ErrInvalidTrack),
		errors.Is(err, contractdomain.ErrInvalidShareRate),
		errors.Is(err, contractdomain.ErrInvalidRole),
		errors.Is(err, contractdomain.ErrInvalidWindow),
		errors.Is(err, notificationdomain.ErrInvalidPartner),
		errors.Is(err, notificationdomain.ErrInvalidType):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, settlementdomain.ErrSettlementLocked),
		errors.Is(err, settlementdomain.ErrInvalidTransition),
		errors.Is(err, settlementdomain.ErrConcurrentModification),
		errors.Is(err, contractdomain.ErrActiveContractTaken),
		errors.Is(err, distributordomain.ErrCodeTaken),
		errors.Is(err, trackdomain.ErrSlugTaken),
		errors.Is(err, partnerdomain.ErrSlugTaken):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, settlementdomain.ErrNotFound),
		errors.Is(err, distributordomain.ErrNotFound),
		errors.Is(err, trackdomain.ErrNotFound),
		errors.Is(err, partnerdomain.ErrNotFound),
		errors.Is(err, contractdomain.ErrNotFound),
		errors.Is(err, notificationdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
