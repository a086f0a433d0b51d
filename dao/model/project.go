package model

import (
	"gorm.io/datatypes"
)

// Project is a hackathon team and its public page. Members are the users
// whose project_id points here; a project never outlives its last member.
type Project struct {
	Base
	Title       string                    `gorm:"type:varchar(32);not null;default:'Untitled Project';comment:项目名" json:"title"`
	Tagline     *string                   `gorm:"type:varchar(32);comment:一句话介绍" json:"tagline"`
	Description *string                   `gorm:"type:text;comment:项目描述 (Markdown)" json:"description"`
	Tags        datatypes.JSONType[[]Tag] `gorm:"comment:项目标签" json:"tags"`
	Year        Year                      `gorm:"type:varchar(8);not null;index;comment:届" json:"year"`
	GithubLink  *string                   `gorm:"type:varchar(512)" json:"githubLink"`
	WebsiteLink *string                   `gorm:"type:varchar(512)" json:"websiteLink"`
	VideoLink   *string                   `gorm:"type:varchar(512)" json:"videoLink"`

	Members    []User       `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Invites    []TeamInvite `json:"invites,omitempty"`
	ExtraLinks []ExtraLink  `json:"extraLinks"`
	Logo       *LogoImage   `json:"logo"`
	Banner     *BannerImage `json:"banner"`
}

// ExtraLink is a named link on a project page. The whole set is replaced
// on every project update.
type ExtraLink struct {
	Base
	ProjectID uint   `gorm:"index;not null" json:"projectId"`
	Name      string `gorm:"type:varchar(64);not null" json:"name"`
	URL       string `gorm:"type:varchar(512);not null" json:"url"`
}

// TeamInvite is a pending invitation of a user into a project
type TeamInvite struct {
	Base
	ProjectID uint     `gorm:"index;not null" json:"projectId"`
	Project   *Project `json:"project,omitempty"`
	UserID    uint     `gorm:"index;not null" json:"userId"`
	User      *User    `json:"user,omitempty"`
}

// LogoImage and BannerImage use the stored file name as their primary key.
type LogoImage struct {
	ID        string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	URL       string `gorm:"type:varchar(512);not null" json:"url"`
	ProjectID uint   `gorm:"uniqueIndex;not null" json:"projectId"`
}

type BannerImage struct {
	ID        string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	URL       string `gorm:"type:varchar(512);not null" json:"url"`
	ProjectID uint   `gorm:"uniqueIndex;not null" json:"projectId"`
}

// ImageKind selects between the two per-project images.
type ImageKind string

const (
	ImageLogo   ImageKind = "logo"
	ImageBanner ImageKind = "banner"
)
