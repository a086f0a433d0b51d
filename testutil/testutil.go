// Package testutil holds fixtures shared by the package tests: a migrated
// in-memory database and helpers that insert users, projects and settings.
package testutil

import (
	"encoding/json"
	"testing"

	"hackdash/dao/model"
	"hackdash/dao/query"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Year is the hackathon year used by fixtures.
const Year model.Year = "Y23"

// SetupTestDB returns a freshly migrated private in-memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := query.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the given email.
func CreateUser(t *testing.T, db *gorm.DB, email string, admin bool) *model.User {
	t.Helper()
	user := &model.User{Email: email, IsAdmin: admin}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProject inserts a project whose members are the given users.
func CreateProject(t *testing.T, db *gorm.DB, title string, members ...*model.User) *model.Project {
	t.Helper()
	project := &model.Project{
		Title: title,
		Tags:  datatypes.NewJSONType([]model.Tag{}),
		Year:  Year,
	}
	require.NoError(t, db.Create(project).Error)
	for _, u := range members {
		require.NoError(t, db.Model(u).Update("project_id", project.ID).Error)
		u.ProjectID = &project.ID
	}
	return project
}

// SetSetting writes a settings row directly.
func SetSetting(t *testing.T, db *gorm.DB, key string, value any) {
	t.Helper()
	raw, err := json.Marshal(value)
	require.NoError(t, err)
	require.NoError(t, db.Save(&model.SystemConfigSetting{Key: key, Value: datatypes.JSON(raw)}).Error)
}

// Reload re-reads a user so tests see the stored project and admin flag.
func Reload(t *testing.T, db *gorm.DB, user *model.User) *model.User {
	t.Helper()
	var fresh model.User
	require.NoError(t, db.Take(&fresh, user.ID).Error)
	return &fresh
}
