package service

import (
	"hackdash/response"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerAdmin(g *gin.RouterGroup) {
	g.GET("/settings", s.GetSettings)
	g.POST("/admins", s.SetAdmins)
	g.POST("/users", s.SetAllowedUsers)
	g.POST("/directory", s.SetDirectory)
	g.POST("/editing", s.SetEditing)
	g.POST("/amiadmin", s.AmIAdmin)
}

type ToggleReq struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (s *Server) GetSettings(c *gin.Context) {
	view, err := s.m.Admin.Settings(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"settings": view})
}

// SetAdmins takes a bare JSON array of emails.
func (s *Server) SetAdmins(c *gin.Context) {
	var emails []string
	if err := c.ShouldBindJSON(&emails); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := s.m.Admin.SetAdmins(c.Request.Context(), principal(c), emails); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}

// SetAllowedUsers takes a bare JSON array of emails.
func (s *Server) SetAllowedUsers(c *gin.Context) {
	var emails []string
	if err := c.ShouldBindJSON(&emails); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := s.m.Admin.SetAllowedUsers(c.Request.Context(), principal(c), emails); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}

func (s *Server) SetDirectory(c *gin.Context) {
	var req ToggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := s.m.Admin.SetDirectoryEnabled(c.Request.Context(), principal(c), *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}

func (s *Server) SetEditing(c *gin.Context) {
	var req ToggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := s.m.Admin.SetEditingAllowed(c.Request.Context(), principal(c), *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}

func (s *Server) AmIAdmin(c *gin.Context) {
	if err := s.m.Identity.PromoteSoleUser(c.Request.Context(), principal(c)); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}
