package service

import (
	"strconv"

	"hackdash/dao/model"
	"hackdash/manager"
	"hackdash/response"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerVotes(g *gin.RouterGroup) {
	g.GET("", s.ListVotes)
	g.GET("/:id/ballot", s.GetOwnBallot)
	g.GET("/:id/inspect", s.InspectVote)
	g.POST("/update", s.UpdateVote)
	g.POST("/delete", s.DeleteVote)
	g.POST("/webhook", s.VoteWebhook)
}

func (s *Server) ListVotes(c *gin.Context) {
	votes, err := s.m.Votes.ListVotes(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"votes": votes})
}

// GetOwnBallot answers {"m": "redirect"} when there is no ballot to fill in.
func (s *Server) GetOwnBallot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := s.m.Votes.ViewOwnBallot(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if view == nil {
		response.Message(c, response.MsgRedirect)
		return
	}
	response.SuccessWith(c, gin.H{"ballot": view})
}

func (s *Server) InspectVote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	vote, err := s.m.Votes.InspectVote(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"vote": vote})
}

type UpdateVoteReq struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	LinkedForm  string         `json:"linkedForm" binding:"max=512"`
	Open        bool           `json:"open"`
	Type        model.VoteType `json:"type"`
	CanVote     []uint         `json:"canVote"`
	VoteFor     []uint         `json:"voteFor"`
}

func (s *Server) UpdateVote(c *gin.Context) {
	var req UpdateVoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	vote, err := s.m.Votes.UpsertVote(c.Request.Context(), principal(c), manager.VoteInput{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		LinkedForm:  req.LinkedForm,
		Open:        req.Open,
		Type:        req.Type,
		CanVote:     req.CanVote,
		VoteFor:     req.VoteFor,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"vote": vote})
}

func (s *Server) DeleteVote(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, manager.ErrNoVote.Error())
		return
	}
	if err := s.m.Votes.DeleteVote(c.Request.Context(), principal(c), req.ID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}

type WebhookField struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// WebhookReq is the form-submission payload posted by the external form
// provider.
type WebhookReq struct {
	Data *struct {
		Fields []WebhookField `json:"fields" binding:"required"`
	} `json:"data" binding:"required"`
}

func (r *WebhookReq) field(label string) string {
	for _, f := range r.Data.Fields {
		if f.Label != label {
			continue
		}
		switch v := f.Value.(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// VoteWebhook marks a ballot cast. It needs no session: the security key
// is the credential.
func (s *Server) VoteWebhook(c *gin.Context) {
	var req WebhookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "No form data provided.")
		return
	}
	err := s.m.Votes.CastBallot(c.Request.Context(),
		req.field("securityKey"), req.field("email"), req.field("voteId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c)
}
