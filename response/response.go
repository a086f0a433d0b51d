package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Messages shared by several endpoints
const (
	MsgSuccess          = "Success"
	MsgRedirect         = "redirect"
	MsgMethodNotAllowed = "Method Not Allowed"
	MsgUnauthorized     = "Unauthorized"
	MsgNotFound         = "Not Found"
	MsgInternal         = "Internal Server Error"
	MsgTooLarge         = "Resource size exceeds limit (5MB)"
)

// Used by handler tests to decode any response body
type Response struct {
	M string `json:"m,omitempty"`
	E string `json:"e,omitempty"`
}

// wrapResponse writes the {m: ...} success envelope. Extra fields sit next to
// "m" at the top level.
func wrapResponse(c *gin.Context, httpCode int, msg string, data gin.H) {
	body := gin.H{"m": msg}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(httpCode, body)
}

// Success answers 200 {"m": "Success"}.
func Success(c *gin.Context) {
	wrapResponse(c, http.StatusOK, MsgSuccess, nil)
}

// SuccessWith answers 200 with the success message and extra fields.
func SuccessWith(c *gin.Context, data gin.H) {
	wrapResponse(c, http.StatusOK, MsgSuccess, data)
}

// Message answers 200 with a custom message.
func Message(c *gin.Context, msg string) {
	wrapResponse(c, http.StatusOK, msg, nil)
}

// HTTPError answers {"e": msg} with the given status and stops the chain.
func HTTPError(c *gin.Context, httpCode int, msg string) {
	c.AbortWithStatusJSON(httpCode, gin.H{"e": msg})
}

// 用于 Gin ShouldBindJSON、ShouldBindQuery 等绑定参数失败时返回错误
func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, "Bad Request: "+msg)
}

func Unauthorized(c *gin.Context) {
	HTTPError(c, http.StatusUnauthorized, MsgUnauthorized)
}

func NotFound(c *gin.Context) {
	HTTPError(c, http.StatusNotFound, MsgNotFound)
}

func MethodNotAllowed(c *gin.Context) {
	HTTPError(c, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
}

func InternalError(c *gin.Context) {
	HTTPError(c, http.StatusInternalServerError, MsgInternal)
}
