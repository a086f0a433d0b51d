package service

import (
	"hackdash/response"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerAccount(g *gin.RouterGroup) {
	g.GET("/me", s.GetMe)
	g.POST("/account", s.UpdateAccount)
}

func (s *Server) GetMe(c *gin.Context) {
	me, err := s.m.Accounts.Me(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{
		"user":    me.User,
		"project": me.Project,
		"invites": me.Invites,
		"ballots": me.Ballots,
	})
}

type UpdateAccountReq struct {
	Name string `json:"name"`
}

func (s *Server) UpdateAccount(c *gin.Context) {
	var req UpdateAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := s.m.Accounts.UpdateName(c.Request.Context(), principal(c), req.Name); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}
