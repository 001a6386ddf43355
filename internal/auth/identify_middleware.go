package auth

import (
	"strings"

	"thundergames/backend/internal/service"
	"thundergames/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// Identify inspects the request for a session token (Authorization: Bearer, then
// the session cookie) and attaches the matching active user as the Principal.
// Requests without a valid token continue anonymously.
func Identify(tokens *jwt.Manager, users service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				tokenString = cookie
			}
		}

		if tokenString != "" {
			if userID, err := tokens.ParseToken(tokenString); err == nil {
				user, err := users.GetUser(c.Request.Context(), userID)
				if err == nil && user.IsActive {
					p := Principal{UserID: user.ID, Username: user.Username, Superuser: user.IsSuperuser}
					c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
				}
			}
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
