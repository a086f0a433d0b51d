package manager

import (
	"context"
	"net/url"
	"testing"

	"hackdash/dao/model"
	"hackdash/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkToken(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/callback", u.Path)
	return u.Query().Get("token")
}

func TestFirstUserBootstrapsAsAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.identity.RequestSignIn(ctx, "First@Example.com"))
	allowed, err := e.settings.AllowedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first@example.com"}, allowed)

	user, session, err := e.identity.CompleteSignIn(ctx, linkToken(t, e.mailer.LastLink("first@example.com")))
	require.NoError(t, err)
	assert.NotEmpty(t, session)
	assert.False(t, user.IsAdmin)

	p, err := e.identity.Authenticate(ctx, session)
	require.NoError(t, err)
	welcomed, err := e.identity.Welcome(ctx, p)
	require.NoError(t, err)
	assert.True(t, welcomed.IsAdmin)

	assert.True(t, testutil.Reload(t, e.db, user).IsAdmin)
	admins, err := e.settings.AdminUsers(ctx)
	require.NoError(t, err)
	assert.Contains(t, admins, "first@example.com")
}

func TestAllowListGatesSignIn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.adminUser(t, "admin@example.com")
	e.user(t, "member@example.com")
	require.NoError(t, e.settings.SetAllowedUsers(ctx, []string{"admin@example.com", "member@example.com", "new@example.com"}))

	err := e.identity.RequestSignIn(ctx, "stranger@example.com")
	assert.ErrorIs(t, err, ErrSignInRefused)
	assert.Empty(t, e.mailer.LastLink("stranger@example.com"))

	require.NoError(t, e.identity.RequestSignIn(ctx, "new@example.com"))
	user, _, err := e.identity.CompleteSignIn(ctx, linkToken(t, e.mailer.LastLink("new@example.com")))
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)

	var count int64
	require.NoError(t, e.db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestCallbackRechecksAllowList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.adminUser(t, "admin@example.com")
	require.NoError(t, e.settings.SetAllowedUsers(ctx, []string{"admin@example.com", "late@example.com"}))

	require.NoError(t, e.identity.RequestSignIn(ctx, "late@example.com"))
	require.NoError(t, e.settings.SetAllowedUsers(ctx, []string{"admin@example.com"}))

	_, _, err := e.identity.CompleteSignIn(ctx, linkToken(t, e.mailer.LastLink("late@example.com")))
	assert.ErrorIs(t, err, ErrSignInRefused)
}

func TestSignInLinkWorksOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.identity.RequestSignIn(ctx, "once@example.com"))
	token := linkToken(t, e.mailer.LastLink("once@example.com"))

	_, session, err := e.identity.CompleteSignIn(ctx, token)
	require.NoError(t, err)
	assert.NotEmpty(t, session)

	_, _, err = e.identity.CompleteSignIn(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var left int64
	require.NoError(t, e.db.Model(&model.VerificationToken{}).Count(&left).Error)
	assert.Zero(t, left)
}

func TestSignInLinkMustBeRecorded(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.adminUser(t, "admin@example.com")

	// correctly signed but never mailed
	forged, err := e.tokens.CreateSignInToken("admin@example.com", "not-issued")
	require.NoError(t, err)
	_, _, err = e.identity.CompleteSignIn(ctx, forged)
	assert.ErrorIs(t, err, ErrUnauthorized)

	noID, err := e.tokens.CreateSignInToken("admin@example.com", "")
	require.NoError(t, err)
	_, _, err = e.identity.CompleteSignIn(ctx, noID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateRejectsBadSessions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.identity.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = e.identity.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	link, err := e.tokens.CreateSignInToken("a@example.com", "link-1")
	require.NoError(t, err)
	_, err = e.identity.Authenticate(ctx, link)
	assert.ErrorIs(t, err, ErrUnauthorized)

	ghost, err := e.tokens.CreateSessionToken(42, "ghost@example.com")
	require.NoError(t, err)
	_, err = e.identity.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestWelcomePromotesListedAdmins(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.adminUser(t, "admin@example.com")
	listed := e.user(t, "listed@example.com")
	plain := e.user(t, "plain@example.com")
	require.NoError(t, e.settings.SetAdminUsers(ctx, []string{"admin@example.com", "listed@example.com"}))

	_, err := e.identity.Welcome(ctx, as(listed))
	require.NoError(t, err)
	assert.True(t, testutil.Reload(t, e.db, listed).IsAdmin)

	_, err = e.identity.Welcome(ctx, as(plain))
	require.NoError(t, err)
	assert.False(t, testutil.Reload(t, e.db, plain).IsAdmin)

	_, err = e.identity.Welcome(ctx, Principal{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPromoteSoleUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	only := e.user(t, "only@example.com")

	require.NoError(t, e.identity.PromoteSoleUser(ctx, as(only)))
	assert.True(t, testutil.Reload(t, e.db, only).IsAdmin)

	second := e.user(t, "second@example.com")
	assert.ErrorIs(t, e.identity.PromoteSoleUser(ctx, as(second)), ErrNotSingleUser)
}
