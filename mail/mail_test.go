package mail

import (
	"context"
	"testing"

	"hackdash/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsDriver(t *testing.T) {
	cfg := config.Defaults()
	m, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	cfg.Mail.Driver = "smtp"
	cfg.Mail.Host = "smtp.example.com"
	m, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)

	cfg.Mail.Driver = "pigeon"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestLogMailerKeepsLastLink(t *testing.T) {
	m := &LogMailer{}
	ctx := context.Background()
	require.NoError(t, m.SendSignInLink(ctx, "a@example.com", "http://x/1"))
	require.NoError(t, m.SendSignInLink(ctx, "a@example.com", "http://x/2"))
	assert.Equal(t, "http://x/2", m.LastLink("a@example.com"))
	assert.Empty(t, m.LastLink("b@example.com"))
}
