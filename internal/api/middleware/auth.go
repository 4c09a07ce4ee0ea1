package middleware

import (
	"net/http"
	"strings"

	"ctchen222/fatty-hosting/internal/api/models"
	"ctchen222/fatty-hosting/internal/api/response"
	"ctchen222/fatty-hosting/internal/api/service"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Auth rejects requests without a valid bearer token and stores the
// authenticated user on the context.
func Auth(users service.UserService, exposeDetail bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.ErrorResponse(c, http.StatusUnauthorized, "Access denied. No token provided.")
			c.Abort()
			return
		}

		user, err := users.Verify(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err, exposeDetail)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
