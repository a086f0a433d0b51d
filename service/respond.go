package service

import (
	"errors"
	"net/http"

	"hackdash/logutils"
	"hackdash/manager"
	"hackdash/response"
	"hackdash/storage"

	"github.com/gin-gonic/gin"
)

// respondError maps a manager error to its status code. Unexpected errors
// are logged and answered with the generic 500 message.
func respondError(c *gin.Context, err error) {
	var re *manager.RuleError
	switch {
	case errors.As(err, &re):
		response.BadRequestError(c, re.Msg)
	case errors.Is(err, manager.ErrUnauthorized):
		response.Unauthorized(c)
	case errors.Is(err, manager.ErrSignInRefused):
		response.HTTPError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, manager.ErrNotFound):
		response.NotFound(c)
	case errors.Is(err, storage.ErrTooLarge):
		response.HTTPError(c, http.StatusRequestEntityTooLarge, response.MsgTooLarge)
	default:
		logutils.Log.WithFields(logutils.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(err)
		response.InternalError(c)
	}
}
