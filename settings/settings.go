// Package settings is the key/value configuration table consulted on most
// request paths: the editing and directory toggles and the allow and admin
// email lists. Every read goes to the database; nothing is cached.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"hackdash/dao/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a Store bound to the given transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// Get decodes the value stored under key into out. It reports false when
// the key has never been written.
func (s *Store) Get(ctx context.Context, key string, out any) (bool, error) {
	var setting model.SystemConfigSetting
	err := s.db.WithContext(ctx).Where(&model.SystemConfigSetting{Key: key}).Take(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(setting.Value) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(setting.Value, out); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key, inserting or replacing the row.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	setting := model.SystemConfigSetting{Key: key, Value: datatypes.JSON(raw)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
}

func (s *Store) getBool(ctx context.Context, key string) (bool, error) {
	var v bool
	if _, err := s.Get(ctx, key, &v); err != nil {
		return false, err
	}
	return v, nil
}

func (s *Store) getList(ctx context.Context, key string) ([]string, error) {
	var v []string
	if _, err := s.Get(ctx, key, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// EditingAllowed reports whether participants may currently change projects.
// An unset toggle means editing is off.
func (s *Store) EditingAllowed(ctx context.Context) (bool, error) {
	return s.getBool(ctx, model.SettingAllowEditing)
}

func (s *Store) SetEditingAllowed(ctx context.Context, allowed bool) error {
	return s.Set(ctx, model.SettingAllowEditing, allowed)
}

// DirectoryEnabled reports whether the public project directory is visible.
func (s *Store) DirectoryEnabled(ctx context.Context) (bool, error) {
	return s.getBool(ctx, model.SettingDirectoryEnabled)
}

func (s *Store) SetDirectoryEnabled(ctx context.Context, enabled bool) error {
	return s.Set(ctx, model.SettingDirectoryEnabled, enabled)
}

func (s *Store) AllowedUsers(ctx context.Context) ([]string, error) {
	return s.getList(ctx, model.SettingAllowedUsers)
}

func (s *Store) SetAllowedUsers(ctx context.Context, emails []string) error {
	return s.Set(ctx, model.SettingAllowedUsers, NormalizeEmails(emails))
}

func (s *Store) AdminUsers(ctx context.Context) ([]string, error) {
	return s.getList(ctx, model.SettingAdminUsers)
}

func (s *Store) SetAdminUsers(ctx context.Context, emails []string) error {
	return s.Set(ctx, model.SettingAdminUsers, NormalizeEmails(emails))
}

// NormalizeEmail lowercases and trims an address so list lookups are exact.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeEmails normalizes every address, dropping blanks and duplicates
// while keeping the original order.
func NormalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = NormalizeEmail(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Contains reports whether email is in list, comparing normalized forms.
func Contains(list []string, email string) bool {
	email = NormalizeEmail(email)
	for _, e := range list {
		if NormalizeEmail(e) == email {
			return true
		}
	}
	return false
}
