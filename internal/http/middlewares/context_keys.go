package middlewares

import "github.com/gin-gonic/gin"

const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.user_id"
)

// abort stops the chain with the API's error body.
func abort(c *gin.Context, status int, message string) {
	body := gin.H{"message": message}

	if id := c.GetString(CtxRequestID); id != "" {
		body["requestId"] = id
	}

	c.AbortWithStatusJSON(status, body)
}
