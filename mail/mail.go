// Package mail delivers magic sign-in links.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"sync"

	"hackdash/config"
	"hackdash/logutils"
)

type Mailer interface {
	SendSignInLink(ctx context.Context, to, link string) error
}

// New returns the mailer selected by cfg.Mail.Driver.
func New(cfg *config.Config) (Mailer, error) {
	switch cfg.Mail.Driver {
	case "smtp":
		return &SMTPMailer{
			addr: cfg.Mail.Host + ":" + strconv.Itoa(cfg.Mail.Port),
			host: cfg.Mail.Host,
			user: cfg.Mail.User,
			pass: cfg.Mail.Password,
			from: cfg.Mail.From,
		}, nil
	case "log", "":
		return &LogMailer{}, nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Mail.Driver)
	}
}

type SMTPMailer struct {
	addr string
	host string
	user string
	pass string
	from string
}

func (m *SMTPMailer) SendSignInLink(_ context.Context, to, link string) error {
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: Sign in to hackdash",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		"Use the link below to sign in:",
		"",
		link,
		"",
		"If you did not request this email you can safely ignore it.",
	}, "\r\n")
	return smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg))
}

// LogMailer writes links to the log instead of sending them. It also keeps
// the last link per address, which tests use to finish a sign-in.
type LogMailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *LogMailer) SendSignInLink(_ context.Context, to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links == nil {
		m.links = make(map[string]string)
	}
	m.links[to] = link
	logutils.Log.WithFields(logutils.Fields{"to": to, "link": link}).Info("sign-in link")
	return nil
}

func (m *LogMailer) LastLink(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.links[to]
}
