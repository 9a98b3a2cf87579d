// Package middleware holds the gin middleware shared by every mediator route.
package middleware

import (
	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/types"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware tags every request with an id. An incoming X-Request-ID
// is kept, otherwise a new uuid is generated. The id is echoed on the response.
func RequestIDMiddleware(logger *log.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constant.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(constant.RequestID, types.RequestID(requestID))
		c.Header(constant.RequestIDHeader, requestID)

		logger.Debug("Request ID assigned", log.String(constant.RequestID, requestID))
		c.Next()
	}
}

// TransactionIDMiddleware stores the platform transaction id, when present, on
// the gin context.
func TransactionIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(constant.TransactionIDHeader); id != "" {
			c.Set(constant.TransactionID, types.TransactionID(id))
		}
		c.Next()
	}
}

// CompressionMiddleware gzips responses for clients that accept it.
func CompressionMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed)
}
