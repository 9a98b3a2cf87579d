package middleware

import (
	"bytes"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/utils/types"
	"github.com/gin-gonic/gin"
)

// GinRequestLogger logs every request and its outcome. With logBodies the
// response body is captured and logged at debug level.
func GinRequestLogger(logger *log.Log, logBodies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		logger.Info("Incoming Request",
			log.String("method", c.Request.Method),
			log.String("url", c.Request.RequestURI),
			log.String("client_ip", c.ClientIP()),
			log.String("request_id", GetRequestID(c).String()),
			log.String("transaction_id", GetTransactionID(c).String()),
			log.String("user_agent", c.Request.UserAgent()),
			logger.Any("headers", c.Request.Header),
		)

		var responseBodyBuffer bytes.Buffer
		if logBodies {
			c.Writer = &responseWriter{ResponseWriter: c.Writer, body: &responseBodyBuffer}
		}

		c.Next()

		fields := []types.Field{
			log.Int("status_code", c.Writer.Status()),
			log.Duration("latency", time.Since(startTime)),
			log.String("request_id", GetRequestID(c).String()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, log.String("errors", c.Errors.String()))
		}
		logger.Info("Response Details", fields...)

		if logBodies {
			logger.Debug("Response Body",
				log.String("request_id", GetRequestID(c).String()),
				log.String("response_body", responseBodyBuffer.String()),
			)
		}
	}
}

// responseWriter is a custom implementation of gin.ResponseWriter to capture response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write writes the response body
func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
