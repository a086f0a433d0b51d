package service

import (
	"errors"

	"hackdash/logutils"
	"hackdash/manager"
	"hackdash/response"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// PrincipalMiddleware resolves the session cookie into a manager.Principal
// once per request. A missing or stale session yields the anonymous
// principal; the managers decide what that caller may do.
func (s *Server) PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(s.opts.CookieName)
		if err != nil || token == "" {
			c.Set(principalKey, manager.Principal{})
			c.Next()
			return
		}
		p, err := s.m.Identity.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, manager.ErrUnauthorized):
			p = manager.Principal{}
		case err != nil:
			logutils.Log.WithField("path", c.FullPath()).Error("resolve session: ", err)
			response.InternalError(c)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func principal(c *gin.Context) manager.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(manager.Principal); ok {
			return p
		}
	}
	return manager.Principal{}
}
