package manager

import (
	"context"

	"hackdash/dao/model"
	"hackdash/settings"

	"gorm.io/gorm"
)

// Admin holds the organizer-only settings operations.
type Admin struct {
	db       *gorm.DB
	settings *settings.Store
}

func NewAdmin(db *gorm.DB, st *settings.Store) *Admin {
	return &Admin{db: db, settings: st}
}

type SettingsView struct {
	AllowEditing     bool              `json:"allowEditing"`
	DirectoryEnabled bool              `json:"directoryEnabled"`
	AllowedUsers     []string          `json:"allowedUsers"`
	Admins           []model.BasicUser `json:"admins"`
}

func (m *Admin) Settings(ctx context.Context, p Principal) (*SettingsView, error) {
	if _, err := requireAdmin(p); err != nil {
		return nil, err
	}
	view := &SettingsView{AllowedUsers: []string{}, Admins: []model.BasicUser{}}
	var err error
	if view.AllowEditing, err = m.settings.EditingAllowed(ctx); err != nil {
		return nil, err
	}
	if view.DirectoryEnabled, err = m.settings.DirectoryEnabled(ctx); err != nil {
		return nil, err
	}
	allowed, err := m.settings.AllowedUsers(ctx)
	if err != nil {
		return nil, err
	}
	view.AllowedUsers = append(view.AllowedUsers, allowed...)

	var admins []model.User
	if err := m.db.WithContext(ctx).Where("is_admin = ?", true).Order("email").Find(&admins).Error; err != nil {
		return nil, err
	}
	for i := range admins {
		view.Admins = append(view.Admins, admins[i].Basic())
	}
	return view, nil
}

// SetAdmins makes exactly the given emails admins. Every email must belong
// to an existing user and the set may not be empty.
func (m *Admin) SetAdmins(ctx context.Context, p Principal, emails []string) error {
	if _, err := requireAdmin(p); err != nil {
		return err
	}
	emails = settings.NormalizeEmails(emails)
	if len(emails) == 0 {
		return ErrNoAdmins
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("email IN ?", emails).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(emails)) {
			return ErrInvalidEmails
		}
		if err := tx.Model(&model.User{}).Where("email IN ?", emails).Update("is_admin", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("email NOT IN ?", emails).Update("is_admin", false).Error; err != nil {
			return err
		}
		return m.settings.WithTx(tx).SetAdminUsers(ctx, emails)
	})
}

// SetAllowedUsers replaces the sign-in allow-list.
func (m *Admin) SetAllowedUsers(ctx context.Context, p Principal, emails []string) error {
	if _, err := requireAdmin(p); err != nil {
		return err
	}
	emails = settings.NormalizeEmails(emails)
	if len(emails) == 0 {
		return ErrNoUsers
	}
	return m.settings.SetAllowedUsers(ctx, emails)
}

func (m *Admin) SetDirectoryEnabled(ctx context.Context, p Principal, enabled bool) error {
	if _, err := requireAdmin(p); err != nil {
		return err
	}
	return m.settings.SetDirectoryEnabled(ctx, enabled)
}

func (m *Admin) SetEditingAllowed(ctx context.Context, p Principal, allowed bool) error {
	if _, err := requireAdmin(p); err != nil {
		return err
	}
	return m.settings.SetEditingAllowed(ctx, allowed)
}
