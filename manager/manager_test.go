package manager

import (
	"context"
	"testing"
	"time"

	"hackdash/dao/model"
	"hackdash/mail"
	"hackdash/settings"
	"hackdash/storage"
	"hackdash/testutil"
	"hackdash/util"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testBaseURL = "http://localhost:3000"

// env wires every manager to one in-memory database.
type env struct {
	db       *gorm.DB
	settings *settings.Store
	images   *storage.FSStore
	mailer   *mail.LogMailer
	tokens   *util.TokenManager
	identity *Identity
	accounts *Accounts
	admin    *Admin
	teams    *Teams
	posts    *Posts
	votes    *Votes
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	e := &env{
		db:       db,
		settings: settings.New(db),
		images:   storage.NewMemory(),
		mailer:   &mail.LogMailer{},
		tokens:   util.NewTokenManager("test-secret", time.Hour, time.Hour),
	}
	e.identity = NewIdentity(db, e.settings, e.tokens, e.mailer, testBaseURL)
	e.accounts = NewAccounts(db)
	e.admin = NewAdmin(db, e.settings)
	e.teams = NewTeams(db, e.settings, e.images, testutil.Year, testBaseURL, 16)
	e.posts = NewPosts(db)
	e.votes = NewVotes(db, testutil.Year)
	return e
}

func (e *env) allowEditing(t *testing.T) {
	t.Helper()
	require.NoError(t, e.settings.SetEditingAllowed(context.Background(), true))
}

func as(u *model.User) Principal {
	return Principal{User: u}
}

func (e *env) user(t *testing.T, email string) *model.User {
	return testutil.CreateUser(t, e.db, email, false)
}

func (e *env) adminUser(t *testing.T, email string) *model.User {
	return testutil.CreateUser(t, e.db, email, true)
}

func (e *env) memberCount(t *testing.T, projectID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.User{}).Where("project_id = ?", projectID).Count(&n).Error)
	return n
}
