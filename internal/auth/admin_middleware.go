package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// RequireSuperuser lets requests from an authenticated superuser through and
// hands everything else to deny. It must be used AFTER Identify.
func RequireSuperuser(deny gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := Current(c); ok && p.Superuser {
			c.Next()
			return
		}
		deny(c)
		c.Abort()
	}
}

// RequireSuperuserAPI denies with 401 and a JSON error.
func RequireSuperuserAPI() gin.HandlerFunc {
	return RequireSuperuser(func(c *gin.Context) {
		msg := "Authentication required"
		if _, ok := Current(c); ok {
			msg = "Superuser access required"
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	})
}

// RequireSuperuserPage redirects to loginPath, remembering where the visitor was going.
func RequireSuperuserPage(loginPath string) gin.HandlerFunc {
	return RequireSuperuser(func(c *gin.Context) {
		target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
	})
}
