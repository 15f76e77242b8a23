package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/shaobohan917/douyin-toolbox/internal/api/dto"
	"github.com/shaobohan917/douyin-toolbox/internal/api/errors"
)

// ErrorHandler recovers panics and renders them as failure envelopes so the
// process never dies on a request.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString("request_id")

		var apiErr *errors.APIError

		switch err := recovered.(type) {
		case *errors.APIError:
			apiErr = err
		case error:
			logger.Error("Internal server error",
				"error", err.Error(),
				"request_id", requestID,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			apiErr = errors.NewInternalError("Internal server error")
		default:
			logger.Error("Unknown panic occurred",
				"recovered", recovered,
				"request_id", requestID,
			)
			apiErr = errors.NewInternalError("Internal server error")
		}

		c.AbortWithStatusJSON(apiErr.HTTPStatus(), dto.Fail(apiErr.Message))
	})
}

// HandleError writes err as a failure envelope. Domain errors are translated
// to their HTTP status; anything unrecognized becomes a 500.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := errors.Translate(err)
	apiErr.RequestID = c.GetString("request_id")
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), dto.Fail(apiErr.Message))
}
