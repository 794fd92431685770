package middleware

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"media2text/internal/api/errors"
)

// ErrorHandler recovers from panics and answers with a JSON 500.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(RequestIDKey)

		var apiErr *errors.APIError
		switch err := recovered.(type) {
		case *errors.APIError:
			apiErr = err
		case error:
			logger.Error("Internal server error",
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			apiErr = errors.NewInternalError("Internal server error")
		default:
			logger.Error("Unknown panic occurred",
				zap.Any("recovered", recovered),
				zap.String("request_id", requestID),
			)
			apiErr = errors.NewInternalError("Internal server error")
		}

		apiErr.RequestID = requestID
		if c.Writer.Written() {
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes err as a JSON error response. Pipeline errors are
// mapped to their status; anything else becomes a 500.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var apiErr *errors.APIError
	if !stderrors.As(err, &apiErr) {
		apiErr = errors.FromPipeline(err)
	}
	apiErr.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}
