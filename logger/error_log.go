package logger

import (
	"github.com/gin-gonic/gin"
)

// LogHTTPError logs an error tied to an HTTP request with its routing context.
// Used by the error handler middleware so all request failures share one shape.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	log := GetLogger()

	log.Errorw(message,
		"error", err,
		"status_code", statusCode,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"client_ip", c.ClientIP(),
		"request_id", c.GetString("request_id"),
	)
}
