package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/twoechelon/alns-solver/internal/common/logging"
	"github.com/twoechelon/alns-solver/pkg/errors"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   *ErrorDetail           `json:"error"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler converts whatever AbortWithError (or any handler
// calling c.Error) collected on the gin context into the solver API's
// standardized JSON error response. Register it with r.Use before the
// routes it guards: gin runs middleware "before" code in registration
// order and "after" code (everything past c.Next()) in reverse, so
// this must sit here to see every downstream handler's errors.
func ErrorHandler(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := errors.GetAppError(err)

		logRequestError(logger, c, appErr)

		if c.Writer.Written() {
			return
		}

		detail := &ErrorDetail{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}

		// An infeasible instance is the one failure mode a caller can
		// plausibly recover from by resubmitting with a different
		// seed, so it gets an actionable hint the generic
		// AppError.Details does not carry.
		if appErr.Code == "UNPROCESSABLE_ENTITY" {
			if detail.Details == nil {
				detail.Details = map[string]interface{}{}
			}
			detail.Details["hint"] = "no feasible initial solution could be constructed for this instance; the construction is randomised, so a different seed may succeed"
		}

		c.JSON(appErr.Status, ErrorResponse{
			Success: false,
			Error:   detail,
			Meta:    buildErrorMeta(c),
		})
	}
}

// RecoveryHandler recovers from panics raised while solving a request
// (an out-of-range index in a destroy/repair operator driven by a
// malformed instance is the realistic case here) and reports a 500
// instead of crashing the process.
func RecoveryHandler(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if logger != nil {
					logger.WithFields(map[string]interface{}{
						"panic":  r,
						"method": c.Request.Method,
						"path":   c.Request.URL.Path,
						"stack":  string(debug.Stack()),
					}).Error("panic recovered while solving request")
				}

				if c.Writer.Written() {
					return
				}

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Success: false,
					Error: &ErrorDetail{
						Code:    "INTERNAL_ERROR",
						Message: "Internal server error",
					},
					Meta: buildErrorMeta(c),
				})
			}
		}()

		c.Next()
	}
}

// AbortWithError is a helper to abort request with AppError.
func AbortWithError(c *gin.Context, err *errors.AppError) {
	c.Error(err)
	c.Abort()
}

// AbortWithNotFound aborts with 404 error.
func AbortWithNotFound(c *gin.Context, resource string) {
	AbortWithError(c, errors.NewNotFoundError(resource))
}

// AbortWithUnauthorized aborts with 401 error.
func AbortWithUnauthorized(c *gin.Context, message string) {
	AbortWithError(c, errors.NewUnauthorizedError(message))
}

// AbortWithForbidden aborts with 403 error.
func AbortWithForbidden(c *gin.Context, message string) {
	AbortWithError(c, errors.NewForbiddenError(message))
}

// AbortWithValidation aborts with 400 validation error.
func AbortWithValidation(c *gin.Context, message string) {
	AbortWithError(c, errors.NewValidationError(message))
}

// AbortWithBadRequest aborts with 400 bad request error.
func AbortWithBadRequest(c *gin.Context, message string) {
	AbortWithError(c, errors.NewBadRequestError(message))
}

// AbortWithConflict aborts with 409 conflict error.
func AbortWithConflict(c *gin.Context, message string) {
	AbortWithError(c, errors.NewConflictError(message))
}

// AbortWithInternal aborts with 500 internal error.
func AbortWithInternal(c *gin.Context, message string, err error) {
	appErr := errors.NewInternalError(message)
	if err != nil {
		appErr = appErr.WithInternal(err)
	}
	AbortWithError(c, appErr)
}

// logRequestError logs err with request context through the shared
// structured logger instead of the standard library logger.
func logRequestError(logger *logging.Logger, c *gin.Context, err *errors.AppError) {
	if logger == nil {
		return
	}

	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = "unknown"
	}

	fields := map[string]interface{}{
		"request_id": requestID,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"code":       err.Code,
	}
	if err.InternalErr != nil {
		fields["internal_error"] = err.InternalErr.Error()
	}

	log := logger.WithFields(fields)
	if err.Status >= 500 {
		log.Error(err.Message)
		return
	}
	log.Warn(err.Message)
}

// buildErrorMeta builds metadata for error response.
func buildErrorMeta(c *gin.Context) map[string]interface{} {
	meta := make(map[string]interface{})

	if requestID := c.GetString("request_id"); requestID != "" {
		meta["request_id"] = requestID
	}

	meta["timestamp"] = c.GetTime("request_time").Format("2006-01-02T15:04:05Z07:00")

	return meta
}
