package manager

import (
	"context"
	"errors"

	"hackdash/dao/model"
	"hackdash/util"

	"gorm.io/gorm"
)

type Accounts struct {
	db *gorm.DB
}

func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

// UpdateName sets the caller's display name; an empty name clears it.
func (m *Accounts) UpdateName(ctx context.Context, p Principal, name string) error {
	user, err := requireUser(p)
	if err != nil {
		return err
	}
	newName := util.NilIfEmpty(util.Truncate(name, model.MaxTitleLength))
	err = m.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Update("name", newName).Error
	if err != nil {
		return err
	}
	user.Name = newName
	return nil
}

type InviteView struct {
	ID      uint   `json:"id"`
	Project struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
	} `json:"project"`
}

type BallotSummary struct {
	VoteID uint   `json:"voteId"`
	Title  string `json:"title"`
	Open   bool   `json:"open"`
	IsCast bool   `json:"isCast"`
}

// Me is everything the home page shows to a signed-in user.
type Me struct {
	User    model.BasicUser `json:"user"`
	Project *model.Project  `json:"project"`
	Invites []InviteView    `json:"invites"`
	Ballots []BallotSummary `json:"ballots"`
}

func (m *Accounts) Me(ctx context.Context, p Principal) (*Me, error) {
	user, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	db := m.db.WithContext(ctx)
	me := &Me{User: user.Basic(), Invites: []InviteView{}, Ballots: []BallotSummary{}}

	if user.ProjectID != nil {
		var project model.Project
		err := db.Preload("Members").Preload("Invites.User").Preload("ExtraLinks").
			Preload("Logo").Preload("Banner").Take(&project, *user.ProjectID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			me.Project = &project
		}
	}

	var invites []model.TeamInvite
	if err := db.Preload("Project").Where("user_id = ?", user.ID).Order("id").Find(&invites).Error; err != nil {
		return nil, err
	}
	for _, inv := range invites {
		if inv.Project == nil {
			continue
		}
		view := InviteView{ID: inv.ID}
		view.Project.ID = inv.Project.ID
		view.Project.Title = inv.Project.Title
		me.Invites = append(me.Invites, view)
	}

	var ballots []model.Ballot
	if err := db.Preload("Vote").Where("user_id = ?", user.ID).Order("vote_id").Find(&ballots).Error; err != nil {
		return nil, err
	}
	for _, b := range ballots {
		if b.Vote == nil {
			continue
		}
		me.Ballots = append(me.Ballots, BallotSummary{
			VoteID: b.VoteID,
			Title:  b.Vote.Title,
			Open:   b.Vote.Open,
			IsCast: b.IsCast,
		})
	}
	return me, nil
}
