package service

import (
	"net/http"

	"hackdash/response"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerAuth(g *gin.RouterGroup) {
	g.POST("/signin", s.SignIn)
	g.GET("/callback", s.SignInCallback)
	g.POST("/signout", s.SignOut)
	g.GET("/welcome", s.Welcome)
}

type SignInReq struct {
	Email string `json:"email" binding:"required,email"`
}

// SignIn mails a magic link to an allow-listed address.
func (s *Server) SignIn(c *gin.Context) {
	var req SignInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := s.m.Identity.RequestSignIn(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	response.Message(c, "Check your email for a sign-in link.")
}

type CallbackReq struct {
	Token string `form:"token" binding:"required"`
}

// SignInCallback is the target of the magic link: it opens the session and
// sends the browser to the welcome step.
func (s *Server) SignInCallback(c *gin.Context) {
	var req CallbackReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	_, session, err := s.m.Identity.CompleteSignIn(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	s.setSession(c, session, int(s.m.Identity.SessionTTL().Seconds()))
	c.Redirect(http.StatusFound, s.opts.WelcomePath)
}

func (s *Server) SignOut(c *gin.Context) {
	s.setSession(c, "", -1)
	response.Success(c)
}

// Welcome runs the admin bootstrap and tells the client whether the user
// still has to pick a display name.
func (s *Server) Welcome(c *gin.Context) {
	user, err := s.m.Identity.Welcome(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{
		"user":      user.Basic(),
		"needsName": user.Name == nil,
	})
}

func (s *Server) setSession(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, value, maxAge, "/", "", s.opts.SecureCookie, true)
}
