package middleware

import (
	"net/http"
	"strings"

	"mingle-server/internal/auth"
	"mingle-server/internal/services"
	"mingle-server/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token into a user id on the request
// context. Missing or bad identity is always 401.
func AuthMiddleware(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := verifier.Verify(extractBearer(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		ctx := services.WithUserContext(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
