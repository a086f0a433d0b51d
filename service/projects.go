package service

import (
	"hackdash/dao/model"
	"hackdash/manager"
	"hackdash/response"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerProjects(g *gin.RouterGroup) {
	g.GET("", s.ListProjects)
	g.GET("/:id", s.GetProject)
	g.POST("/create", s.CreateProject)
	g.POST("/update", s.UpdateProject)
	g.POST("/leave", s.LeaveProject)

	invites := g.Group("/invites")
	invites.POST("/create", s.CreateInvite)
	invites.POST("/accept", s.AcceptInvite)
	invites.POST("/reject", s.RejectInvite)
}

func (s *Server) ListProjects(c *gin.Context) {
	projects, err := s.m.Teams.ListProjects(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"projects": projects})
}

func (s *Server) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	project, err := s.m.Teams.GetProject(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"project": project})
}

func (s *Server) CreateProject(c *gin.Context) {
	project, err := s.m.Teams.CreateProject(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"project": project})
}

type ExtraLinkReq struct {
	Name string `json:"name" binding:"max=64"`
	URL  string `json:"url" binding:"max=512"`
}

type UpdateProjectReq struct {
	Title       string         `json:"title"`
	Tagline     string         `json:"tagline"`
	Description string         `json:"description"`
	GithubLink  string         `json:"githubLink" binding:"max=512"`
	WebsiteLink string         `json:"websiteLink" binding:"max=512"`
	VideoLink   string         `json:"videoLink" binding:"max=512"`
	Tags        []model.Tag    `json:"tags"`
	ExtraLinks  []ExtraLinkReq `json:"extraLinks" binding:"dive"`
}

func (s *Server) UpdateProject(c *gin.Context) {
	var req UpdateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	in := manager.ProjectUpdate{
		Title:       req.Title,
		Tagline:     req.Tagline,
		Description: req.Description,
		GithubLink:  req.GithubLink,
		WebsiteLink: req.WebsiteLink,
		VideoLink:   req.VideoLink,
		Tags:        req.Tags,
	}
	for _, l := range req.ExtraLinks {
		in.ExtraLinks = append(in.ExtraLinks, manager.ExtraLinkInput{Name: l.Name, URL: l.URL})
	}
	project, err := s.m.Teams.UpdateProject(c.Request.Context(), principal(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"project": project})
}

func (s *Server) LeaveProject(c *gin.Context) {
	if err := s.m.Teams.LeaveProject(c.Request.Context(), principal(c)); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}

type CreateInviteReq struct {
	Email string `json:"email" binding:"required"`
}

func (s *Server) CreateInvite(c *gin.Context) {
	var req CreateInviteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, manager.ErrNoEmail.Error())
		return
	}
	user, err := s.m.Teams.InviteMember(c.Request.Context(), principal(c), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"user": user})
}

func (s *Server) AcceptInvite(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := s.m.Teams.AcceptInvite(c.Request.Context(), principal(c), req.ID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}

func (s *Server) RejectInvite(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := s.m.Teams.RejectInvite(c.Request.Context(), principal(c), req.ID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}
