// internal/common/errors/http.go
package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPStatus maps an error code to the response status for the route layer.
// Missing-entity and validation codes are caller errors; infrastructure codes
// that reach this point mean the operation itself could not complete.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeCandidateNotFound, ErrCodeVacancyNotFound, ErrCodeAgentNotFound, ErrCodeUserNotFound:
		return http.StatusNotFound
	case ErrCodeValidationFailed, ErrCodeInvalidStatus, ErrCodeInvalidChannel, ErrCodeMissingCVText:
		return http.StatusBadRequest
	case ErrCodeDuplicateEmail:
		return http.StatusConflict
	case ErrCodeCVExtractionFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidCredentials, ErrCodeSessionInvalid:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed, ErrCodeSearchQueryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Respond writes err as a JSON error response, normalizing to StandardError.
func Respond(c *gin.Context, err error) {
	stdErr := normalize(err)
	c.AbortWithStatusJSON(HTTPStatus(stdErr.Code), errorResponse{
		Error:   stdErr.Message,
		Code:    string(stdErr.Code),
		Details: stdErr.Details,
	})
}

func normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
