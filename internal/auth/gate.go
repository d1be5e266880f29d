package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manjeshpatagar/mytradingview/internal/apperr"
	"github.com/manjeshpatagar/mytradingview/internal/models"
)

const userKey = "auth.user"

// Gate admits requests carrying a valid bearer token for an active user and
// stores that user on the context. Everything else is aborted with an error
// for the central error handler to render.
func Gate(svc *Service, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.Request, cookieName)
		if token == "" {
			_ = c.Error(apperr.Unauthorized("You are not logged in", nil))
			c.Abort()
			return
		}

		user, err := svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user admitted by Gate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

// extractToken reads "Authorization: Bearer <token>", falling back to the
// token cookie.
func extractToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
