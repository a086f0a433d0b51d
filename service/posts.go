package service

import (
	"hackdash/manager"
	"hackdash/response"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerPosts(g *gin.RouterGroup) {
	g.GET("", s.ListPosts)
	g.GET("/:slug", s.GetPost)
	g.POST("/update", s.UpdatePost)
	g.POST("/delete", s.DeletePost)
}

func (s *Server) ListPosts(c *gin.Context) {
	posts, err := s.m.Posts.ListPosts(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"posts": posts})
}

func (s *Server) GetPost(c *gin.Context) {
	post, err := s.m.Posts.GetPost(c.Request.Context(), principal(c), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"post": post})
}

type UpdatePostReq struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

func (s *Server) UpdatePost(c *gin.Context) {
	var req UpdatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	post, err := s.m.Posts.UpsertPost(c.Request.Context(), principal(c), manager.PostInput{
		ID:      req.ID,
		Title:   req.Title,
		Slug:    req.Slug,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"post": post})
}

func (s *Server) DeletePost(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, manager.ErrNoPost.Error())
		return
	}
	if err := s.m.Posts.DeletePost(c.Request.Context(), principal(c), req.ID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}
