package response

import (
	"github.com/gin-gonic/gin"
)

// JSON writes a flat envelope: {"success": true, "message": ..., <fields>}.
// The site's frontend reads token, user, requests and requestId from the
// top level.
func JSON(c *gin.Context, code int, message string, fields gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(code, body)
}

// ErrorResponse writes {"success": false, "message": message}.
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"message": message,
	})
}
