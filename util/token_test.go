package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, time.Hour)
	token, err := tm.CreateSessionToken(7, "a@example.com")
	require.NoError(t, err)

	msg, err := tm.CheckSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), msg.UserID)
	assert.Equal(t, "a@example.com", msg.Email)
}

func TestTokenPurposeIsEnforced(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, time.Hour)
	link, err := tm.CreateSignInToken("a@example.com", "link-1")
	require.NoError(t, err)
	session, err := tm.CreateSessionToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = tm.CheckSessionToken(link)
	assert.ErrorIs(t, err, ErrTokenPurpose)
	_, err = tm.CheckSignInToken(session)
	assert.ErrorIs(t, err, ErrTokenPurpose)

	msg, err := tm.CheckSignInToken(link)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", msg.Email)
	assert.Equal(t, "link-1", msg.TokenID)
}

func TestTokenRejectsOtherSecretAndExpiry(t *testing.T) {
	issuer := NewTokenManager("secret", time.Hour, time.Hour)
	token, err := issuer.CreateSessionToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour, time.Hour).CheckSessionToken(token)
	assert.Error(t, err)

	expired := NewTokenManager("secret", time.Hour, -time.Minute)
	token, err = expired.CreateSessionToken(1, "a@example.com")
	require.NoError(t, err)
	_, err = expired.CheckSessionToken(token)
	assert.Error(t, err)
}
