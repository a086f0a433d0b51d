package settings_test

import (
	"context"
	"testing"

	"hackdash/dao/model"
	"hackdash/settings"
	"hackdash/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTogglesDefaultToOff(t *testing.T) {
	st := settings.New(testutil.SetupTestDB(t))
	ctx := context.Background()

	editing, err := st.EditingAllowed(ctx)
	require.NoError(t, err)
	assert.False(t, editing)

	directory, err := st.DirectoryEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, directory)
}

func TestSetIsAnUpsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := settings.New(db)
	ctx := context.Background()

	require.NoError(t, st.SetEditingAllowed(ctx, true))
	require.NoError(t, st.SetEditingAllowed(ctx, false))
	require.NoError(t, st.SetEditingAllowed(ctx, true))

	editing, err := st.EditingAllowed(ctx)
	require.NoError(t, err)
	assert.True(t, editing)

	var rows int64
	require.NoError(t, db.Model(&model.SystemConfigSetting{}).
		Where(&model.SystemConfigSetting{Key: model.SettingAllowEditing}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestEmailListsAreNormalized(t *testing.T) {
	st := settings.New(testutil.SetupTestDB(t))
	ctx := context.Background()

	require.NoError(t, st.SetAllowedUsers(ctx, []string{" A@Example.com", "a@example.com", "", "b@example.com"}))
	allowed, err := st.AllowedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, allowed)
	assert.True(t, settings.Contains(allowed, "B@EXAMPLE.COM"))
	assert.False(t, settings.Contains(allowed, "c@example.com"))

	admins, err := st.AdminUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestGetReportsMissingKey(t *testing.T) {
	st := settings.New(testutil.SetupTestDB(t))
	var out []string
	found, err := st.Get(context.Background(), "nothing", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
