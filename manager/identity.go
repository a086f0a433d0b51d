package manager

import (
	"context"
	"errors"
	"net/url"
	"time"

	"hackdash/dao/model"
	"hackdash/logutils"
	"hackdash/mail"
	"hackdash/settings"
	"hackdash/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSignInRefused is returned when the allow-list rejects an email. It is
// an expected outcome of sign-in, not a failure of the application.
var ErrSignInRefused = errors.New("Access Denied")

const callbackPath = "/api/auth/callback"

// Identity resolves requests to users and runs the magic-link sign-in.
type Identity struct {
	db       *gorm.DB
	settings *settings.Store
	tokens   *util.TokenManager
	mailer   mail.Mailer
	baseURL  string
}

func NewIdentity(db *gorm.DB, st *settings.Store, tokens *util.TokenManager, mailer mail.Mailer, baseURL string) *Identity {
	return &Identity{db: db, settings: st, tokens: tokens, mailer: mailer, baseURL: baseURL}
}

func (m *Identity) SessionTTL() time.Duration {
	return m.tokens.SessionTTL()
}

// SignInAllowed applies the allow-list: the very first user always gets in,
// after that only listed emails do.
func (m *Identity) SignInAllowed(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := m.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return true, nil
	}
	allowed, err := m.settings.AllowedUsers(ctx)
	if err != nil {
		return false, err
	}
	return settings.Contains(allowed, email), nil
}

// RequestSignIn mails a sign-in link to email when the allow-list admits
// it. While no user exists yet the email is added to the allow-list.
func (m *Identity) RequestSignIn(ctx context.Context, email string) error {
	email = settings.NormalizeEmail(email)
	if email == "" {
		return ErrNoEmail
	}

	ok, err := m.SignInAllowed(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		logutils.Log.WithField("email", email).Info("sign-in refused by allow-list")
		return ErrSignInRefused
	}

	if err := m.seedAllowList(ctx, email); err != nil {
		return err
	}

	token, err := m.issueLink(ctx, email)
	if err != nil {
		return err
	}
	link := m.baseURL + callbackPath + "?token=" + url.QueryEscape(token)
	return m.mailer.SendSignInLink(ctx, email, link)
}

func (m *Identity) seedAllowList(ctx context.Context, email string) error {
	var count int64
	if err := m.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	allowed, err := m.settings.AllowedUsers(ctx)
	if err != nil {
		return err
	}
	if settings.Contains(allowed, email) {
		return nil
	}
	return m.settings.SetAllowedUsers(ctx, append(allowed, email))
}

// issueLink records a fresh link id and signs it. Expired ids are pruned on
// the way.
func (m *Identity) issueLink(ctx context.Context, email string) (string, error) {
	now := time.Now()
	row := model.VerificationToken{
		Token:     uuid.NewString(),
		Email:     email,
		ExpiresAt: now.Add(m.tokens.SignInTTL()),
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at < ?", now).Delete(&model.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return "", err
	}
	return m.tokens.CreateSignInToken(email, row.Token)
}

// redeemLink deletes the recorded link id. A link that was already used, or
// was never recorded, is refused.
func (m *Identity) redeemLink(ctx context.Context, msg util.JWTMessage) error {
	if msg.TokenID == "" {
		return ErrUnauthorized
	}
	res := m.db.WithContext(ctx).
		Where("token = ? AND email = ?", msg.TokenID, msg.Email).
		Delete(&model.VerificationToken{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		logutils.Log.WithField("email", msg.Email).Warn("sign-in link reused or unknown")
		return ErrUnauthorized
	}
	return nil
}

// CompleteSignIn exchanges a sign-in link token for a session token,
// creating the user on first sign-in. Each link works once. The allow-list
// is checked again since it may have changed after the link was sent.
func (m *Identity) CompleteSignIn(ctx context.Context, linkToken string) (*model.User, string, error) {
	msg, err := m.tokens.CheckSignInToken(linkToken)
	if err != nil {
		return nil, "", ErrUnauthorized
	}
	if err := m.redeemLink(ctx, msg); err != nil {
		return nil, "", err
	}

	ok, err := m.SignInAllowed(ctx, msg.Email)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrSignInRefused
	}

	user := model.User{Email: msg.Email}
	err = m.db.WithContext(ctx).Where(model.User{Email: msg.Email}).FirstOrCreate(&user).Error
	if err != nil {
		return nil, "", err
	}

	session, err := m.tokens.CreateSessionToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	return &user, session, nil
}

// Authenticate resolves a session token to a principal. The user row is
// loaded fresh so admin and project changes apply immediately.
func (m *Identity) Authenticate(ctx context.Context, sessionToken string) (Principal, error) {
	if sessionToken == "" {
		return Principal{}, ErrUnauthorized
	}
	msg, err := m.tokens.CheckSessionToken(sessionToken)
	if err != nil {
		return Principal{}, ErrUnauthorized
	}
	var user model.User
	err = m.db.WithContext(ctx).Take(&user, msg.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Principal{}, ErrUnauthorized
	}
	if err != nil {
		return Principal{}, err
	}
	if user.Email != msg.Email {
		return Principal{}, ErrUnauthorized
	}
	return Principal{User: &user}, nil
}

// Welcome runs the admin bootstrap on first landing: users on the adminUsers
// list become admins, and so does the only user of an empty system, who is
// then put on the list as well.
func (m *Identity) Welcome(ctx context.Context, p Principal) (*model.User, error) {
	user, err := requireUser(p)
	if err != nil {
		return nil, err
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := m.settings.WithTx(tx)
		admins, err := st.AdminUsers(ctx)
		if err != nil {
			return err
		}
		if settings.Contains(admins, user.Email) {
			return promote(ctx, tx, user)
		}

		var count int64
		if err := tx.Model(&model.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count != 1 {
			return nil
		}
		if err := promote(ctx, tx, user); err != nil {
			return err
		}
		return st.SetAdminUsers(ctx, append(admins, user.Email))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// PromoteSoleUser makes the caller an admin, but only while they are the
// single user of the system.
func (m *Identity) PromoteSoleUser(ctx context.Context, p Principal) error {
	user, err := requireUser(p)
	if err != nil {
		return err
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count != 1 {
			return ErrNotSingleUser
		}
		if err := promote(ctx, tx, user); err != nil {
			return err
		}
		st := m.settings.WithTx(tx)
		admins, err := st.AdminUsers(ctx)
		if err != nil {
			return err
		}
		if settings.Contains(admins, user.Email) {
			return nil
		}
		return st.SetAdminUsers(ctx, append(admins, user.Email))
	})
}

func promote(ctx context.Context, tx *gorm.DB, user *model.User) error {
	if user.IsAdmin {
		return nil
	}
	err := tx.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Update("is_admin", true).Error
	if err != nil {
		return err
	}
	user.IsAdmin = true
	return nil
}
