package manager

import (
	"context"
	"errors"

	"hackdash/dao/model"
	"hackdash/logutils"
	"hackdash/settings"
	"hackdash/storage"
	"hackdash/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Teams owns projects, their membership and their images.
type Teams struct {
	db        *gorm.DB
	settings  *settings.Store
	images    storage.Store
	year      model.Year
	baseURL   string
	maxUpload int64
}

func NewTeams(db *gorm.DB, st *settings.Store, images storage.Store, year model.Year, baseURL string, maxUpload int64) *Teams {
	return &Teams{
		db:        db,
		settings:  st,
		images:    images,
		year:      year,
		baseURL:   baseURL,
		maxUpload: maxUpload,
	}
}

func (m *Teams) requireEditing(ctx context.Context) error {
	ok, err := m.settings.EditingAllowed(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrEditingDisabled
	}
	return nil
}

// requireMember returns the caller and the project they belong to.
func (m *Teams) requireMember(p Principal) (*model.User, uint, error) {
	user, err := requireUser(p)
	if err != nil {
		return nil, 0, err
	}
	if user.ProjectID == nil {
		return nil, 0, ErrNotInProject
	}
	return user, *user.ProjectID, nil
}

// CreateProject creates an untitled project with the caller as its only
// member.
func (m *Teams) CreateProject(ctx context.Context, p Principal) (*model.Project, error) {
	user, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	if err := m.requireEditing(ctx); err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return nil, ErrAdminNoProject
	}
	if user.ProjectID != nil {
		return nil, ErrAlreadyInProject
	}

	project := model.Project{
		Title: model.DefaultProject,
		Tags:  datatypes.NewJSONType([]model.Tag{}),
		Year:  m.year,
	}
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		res := tx.Model(&model.User{}).
			Where("id = ? AND project_id IS NULL", user.ID).
			Update("project_id", project.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyInProject
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.ProjectID = &project.ID
	logutils.Log.WithField("project", project.ID).WithField("user", user.ID).Info("project created")
	return &project, nil
}

func (m *Teams) countMembers(tx *gorm.DB, projectID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.User{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

// InviteMember invites the user with the given email into the caller's
// project and returns that user's public data.
func (m *Teams) InviteMember(ctx context.Context, p Principal, email string) (*model.BasicUser, error) {
	_, projectID, err := m.requireMember(p)
	if err != nil {
		return nil, err
	}
	if err := m.requireEditing(ctx); err != nil {
		return nil, err
	}
	email = settings.NormalizeEmail(email)
	if email == "" {
		return nil, ErrNoEmail
	}

	var invitee model.User
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members, err := m.countMembers(tx, projectID)
		if err != nil {
			return err
		}
		if members >= model.MaxMembers {
			return ErrProjectFull
		}

		err = tx.Where(&model.User{Email: email}).Take(&invitee).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSuchUser
		}
		if err != nil {
			return err
		}
		if invitee.ProjectID != nil && *invitee.ProjectID == projectID {
			return ErrAlreadyMember
		}
		if invitee.IsAdmin {
			return ErrAdminNoProject
		}

		var pending int64
		err = tx.Model(&model.TeamInvite{}).
			Where("project_id = ? AND user_id = ?", projectID, invitee.ID).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrAlreadyInvited
		}
		return tx.Create(&model.TeamInvite{ProjectID: projectID, UserID: invitee.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	basic := invitee.Basic()
	return &basic, nil
}

func (m *Teams) ownInvite(tx *gorm.DB, user *model.User, inviteID uint) (*model.TeamInvite, error) {
	var invite model.TeamInvite
	err := tx.Take(&invite, inviteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	if invite.UserID != user.ID {
		return nil, ErrInviteNotFound
	}
	return &invite, nil
}

// AcceptInvite moves the caller into the inviting project. All of the
// caller's pending invites are dropped.
func (m *Teams) AcceptInvite(ctx context.Context, p Principal, inviteID uint) error {
	user, err := requireUser(p)
	if err != nil {
		return err
	}
	if err := m.requireEditing(ctx); err != nil {
		return err
	}
	if user.IsAdmin {
		return ErrAdminNoProject
	}
	if user.ProjectID != nil {
		return ErrAlreadyInProject
	}

	var projectID uint
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invite, err := m.ownInvite(tx, user, inviteID)
		if err != nil {
			return err
		}
		members, err := m.countMembers(tx, invite.ProjectID)
		if err != nil {
			return err
		}
		if members >= model.MaxMembers {
			return ErrProjectFull
		}
		res := tx.Model(&model.User{}).
			Where("id = ? AND project_id IS NULL", user.ID).
			Update("project_id", invite.ProjectID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyInProject
		}
		projectID = invite.ProjectID
		return tx.Where("user_id = ?", user.ID).Delete(&model.TeamInvite{}).Error
	})
	if err != nil {
		return err
	}
	user.ProjectID = &projectID
	return nil
}

// RejectInvite deletes one of the caller's invites.
func (m *Teams) RejectInvite(ctx context.Context, p Principal, inviteID uint) error {
	user, err := requireUser(p)
	if err != nil {
		return err
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invite, err := m.ownInvite(tx, user, inviteID)
		if err != nil {
			return err
		}
		return tx.Delete(invite).Error
	})
}

// LeaveProject removes the caller from their project together with the
// ballots they hold for it. The last member leaving deletes the project.
func (m *Teams) LeaveProject(ctx context.Context, p Principal) error {
	user, projectID, err := m.requireMember(p)
	if err != nil {
		return err
	}
	if err := m.requireEditing(ctx); err != nil {
		return err
	}

	var orphaned []string
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND project_id = ?", user.ID, projectID).Delete(&model.Ballot{}).Error
		if err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Update("project_id", nil).Error; err != nil {
			return err
		}
		members, err := m.countMembers(tx, projectID)
		if err != nil {
			return err
		}
		if members > 0 {
			return nil
		}
		orphaned, err = deleteProject(tx, projectID)
		return err
	})
	if err != nil {
		return err
	}
	user.ProjectID = nil
	m.removeFiles(ctx, orphaned...)
	return nil
}

// deleteProject removes a project and every row that references it. It
// returns the ids of the image files that should be removed afterwards.
func deleteProject(tx *gorm.DB, projectID uint) ([]string, error) {
	var files []string
	var logo model.LogoImage
	if err := tx.Where("project_id = ?", projectID).Limit(1).Find(&logo).Error; err != nil {
		return nil, err
	}
	if logo.ID != "" {
		files = append(files, logo.ID)
	}
	var banner model.BannerImage
	if err := tx.Where("project_id = ?", projectID).Limit(1).Find(&banner).Error; err != nil {
		return nil, err
	}
	if banner.ID != "" {
		files = append(files, banner.ID)
	}

	for _, child := range []any{
		&model.ExtraLink{},
		&model.TeamInvite{},
		&model.LogoImage{},
		&model.BannerImage{},
		&model.Ballot{},
	} {
		if err := tx.Where("project_id = ?", projectID).Delete(child).Error; err != nil {
			return nil, err
		}
	}
	for _, table := range []string{"vote_can_vote", "vote_vote_for"} {
		if err := tx.Exec("DELETE FROM "+table+" WHERE project_id = ?", projectID).Error; err != nil {
			return nil, err
		}
	}
	if err := tx.Delete(&model.Project{}, projectID).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (m *Teams) removeFiles(ctx context.Context, ids ...string) {
	for _, id := range ids {
		err := m.images.Remove(ctx, id)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			logutils.Log.WithField("image", id).Warn("remove image file: ", err)
		}
	}
}

type ExtraLinkInput struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ProjectUpdate is the full editable state of a project page. Empty
// optional fields are stored as NULL.
type ProjectUpdate struct {
	Title       string
	Tagline     string
	Description string
	GithubLink  string
	WebsiteLink string
	VideoLink   string
	Tags        []model.Tag
	ExtraLinks  []ExtraLinkInput
}

// UpdateProject replaces the caller's project fields and extra links.
func (m *Teams) UpdateProject(ctx context.Context, p Principal, in ProjectUpdate) (*model.Project, error) {
	_, projectID, err := m.requireMember(p)
	if err != nil {
		return nil, err
	}
	if err := m.requireEditing(ctx); err != nil {
		return nil, err
	}
	tags := make([]model.Tag, 0, len(in.Tags))
	for _, t := range in.Tags {
		if !t.Valid() {
			return nil, ErrInvalidTag
		}
		tags = append(tags, t)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&model.ExtraLink{}).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Project{}).Where("id = ?", projectID).Updates(map[string]any{
			"title":        util.OrDefault(in.Title, model.MaxTitleLength, model.DefaultProject),
			"tagline":      util.NilIfEmpty(util.Truncate(in.Tagline, model.MaxTitleLength)),
			"description":  util.NilIfEmpty(in.Description),
			"github_link":  util.NilIfEmpty(in.GithubLink),
			"website_link": util.NilIfEmpty(in.WebsiteLink),
			"video_link":   util.NilIfEmpty(in.VideoLink),
			"tags":         datatypes.NewJSONType(tags),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		links := make([]model.ExtraLink, 0, len(in.ExtraLinks))
		for _, l := range in.ExtraLinks {
			if l.Name == "" && l.URL == "" {
				continue
			}
			links = append(links, model.ExtraLink{ProjectID: projectID, Name: l.Name, URL: l.URL})
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		return nil, err
	}
	return m.loadProject(ctx, projectID)
}

func (m *Teams) loadProject(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	err := m.db.WithContext(ctx).
		Preload("Members").
		Preload("ExtraLinks").
		Preload("Logo").
		Preload("Banner").
		Take(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (m *Teams) directoryVisible(ctx context.Context, p Principal) error {
	if p.IsAdmin() {
		return nil
	}
	ok, err := m.settings.DirectoryEnabled(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// GetProject returns one project of the directory.
func (m *Teams) GetProject(ctx context.Context, p Principal, id uint) (*model.Project, error) {
	if err := m.directoryVisible(ctx, p); err != nil {
		return nil, err
	}
	return m.loadProject(ctx, id)
}

// ListProjects returns the directory of the current hackathon year.
func (m *Teams) ListProjects(ctx context.Context, p Principal) ([]model.Project, error) {
	if err := m.directoryVisible(ctx, p); err != nil {
		return nil, err
	}
	projects := []model.Project{}
	err := m.db.WithContext(ctx).
		Preload("Members").
		Preload("Logo").
		Preload("Banner").
		Where("year = ?", m.year).
		Order("id").
		Find(&projects).Error
	return projects, err
}
