package model

const InvalidUserID = 0

// User is created on the first successful sign-in of an email address
type User struct {
	Base
	Email     string   `gorm:"uniqueIndex;type:varchar(256);not null;comment:登录邮箱" json:"email"`
	Name      *string  `gorm:"type:varchar(32);comment:显示名称" json:"name"`
	IsAdmin   bool     `gorm:"not null;default:false;comment:是否为管理员" json:"isAdmin"`
	ProjectID *uint    `gorm:"index;comment:所属项目" json:"projectId"`
	Project   *Project `json:"-"`

	Invites []TeamInvite `json:"-"`
	Ballots []Ballot     `json:"-"`
}

// BasicUser is the public view of a user
type BasicUser struct {
	ID      uint    `json:"id"`
	Name    *string `json:"name"`
	Email   string  `json:"email"`
	IsAdmin bool    `json:"isAdmin"`
}

func (u *User) Basic() BasicUser {
	return BasicUser{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}
