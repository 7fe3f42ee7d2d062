package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tourwise/quoting-service/internal/domain"
)

// traceIDKey is the gin context key under which middleware stores the
// request trace ID.
const traceIDKey = "trace_id"

// requestIDHeader is the fallback header when no trace ID is in context.
const requestIDHeader = "X-Request-ID"

// GetTraceID returns the trace ID for the current request. It prefers the
// value stored in the gin context by middleware and falls back to the
// X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if v, exists := c.Get(traceIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}

		return ""
	}

	return c.Request.Header.Get(requestIDHeader)
}

// HandleError writes the error response for a failed operation. Domain
// errors map onto their HTTP status codes; binding and request validation
// errors become 400s; anything else is reported as a generic 500 so
// internals never leak to callers.
func HandleError(c *gin.Context, err error) {
	status, resp := errorResponseFor(err)
	c.JSON(status, resp.WithTraceID(GetTraceID(c)))
}

// AbortWithError is HandleError for middleware: it also stops the handler
// chain.
func AbortWithError(c *gin.Context, err error) {
	status, resp := errorResponseFor(err)
	c.AbortWithStatusJSON(status, resp.WithTraceID(GetTraceID(c)))
}

func errorResponseFor(err error) (int, *ErrorResponse) {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, err.Error())

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	case IsValidationError(err):
		return http.StatusBadRequest, NewErrorResponseWithDetails(
			ErrorCodeValidation,
			"request validation failed",
			ValidationErrors(err),
		)

	case errors.Is(err, ErrBinding):
		return http.StatusBadRequest, NewErrorResponse(ErrorCodeBadRequest, "malformed request body")

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}
