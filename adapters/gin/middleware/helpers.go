package middleware

import (
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/types"
	"github.com/gin-gonic/gin"
)

// GetRequestID returns the id set by RequestIDMiddleware.
func GetRequestID(c *gin.Context) types.RequestID {
	if v, ok := c.Get(constant.RequestID); ok {
		if id, ok := v.(types.RequestID); ok {
			return id
		}
	}
	return ""
}

// GetTransactionID returns the platform transaction id of the request. It
// falls back to the raw header when TransactionIDMiddleware did not run.
func GetTransactionID(c *gin.Context) types.TransactionID {
	if v, ok := c.Get(constant.TransactionID); ok {
		if id, ok := v.(types.TransactionID); ok {
			return id
		}
	}
	return types.TransactionID(c.GetHeader(constant.TransactionIDHeader))
}
