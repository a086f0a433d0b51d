package util

import (
	"errors"
	"time"

	"hackdash/logutils"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Token purposes. A sign-in link token cannot be used as a session and
// vice versa.
const (
	PurposeSignIn  = "signin"
	PurposeSession = "session"
)

var ErrTokenPurpose = errors.New("token used for the wrong purpose")

type (
	JWTClaims struct {
		Purpose string `json:"pp"`
		UserID  uint   `json:"ui,omitempty"`
		Email   string `json:"em"`
		jwt.RegisteredClaims
	}
	JWTMessage struct {
		UserID  uint   `json:"userID"`            // User ID, zero in sign-in links
		Email   string `json:"email"`             // Email the token was issued for
		TokenID string `json:"tokenID,omitempty"` // Link ID, empty in sessions
	}
)

type TokenManager struct {
	secretKey  string
	signInTTL  time.Duration
	sessionTTL time.Duration
}

func NewTokenManager(secretKey string, signInTTL, sessionTTL time.Duration) *TokenManager {
	return &TokenManager{
		secretKey,
		signInTTL,
		sessionTTL,
	}
}

func (tm *TokenManager) createToken(purpose string, msg *JWTMessage, ttl time.Duration) (string, error) {
	expiresAt := time.Now().Add(ttl)

	claims := &JWTClaims{
		Purpose: purpose,
		UserID:  msg.UserID,
		Email:   msg.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        msg.TokenID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secretKey))
}

// CreateSignInToken creates the token embedded in a magic sign-in link.
// tokenID is the jti the caller records to make the link single use.
func (tm *TokenManager) CreateSignInToken(email, tokenID string) (string, error) {
	token, err := tm.createToken(PurposeSignIn, &JWTMessage{Email: email, TokenID: tokenID}, tm.signInTTL)
	if err != nil {
		logutils.Log.Error(err)
	}
	return token, err
}

// CreateSessionToken creates the token stored in the session cookie
func (tm *TokenManager) CreateSessionToken(userID uint, email string) (string, error) {
	token, err := tm.createToken(PurposeSession, &JWTMessage{UserID: userID, Email: email}, tm.sessionTTL)
	if err != nil {
		logutils.Log.Error(err)
	}
	return token, err
}

func (tm *TokenManager) SessionTTL() time.Duration {
	return tm.sessionTTL
}

func (tm *TokenManager) SignInTTL() time.Duration {
	return tm.signInTTL
}

func (tm *TokenManager) checkToken(requestToken, purpose string) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(tm.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return JWTMessage{}, err
	}
	if claims.Purpose != purpose {
		return JWTMessage{}, ErrTokenPurpose
	}
	return JWTMessage{
		UserID:  claims.UserID,
		Email:   claims.Email,
		TokenID: claims.ID,
	}, nil
}

// CheckSignInToken validates a magic link token and returns its email
func (tm *TokenManager) CheckSignInToken(requestToken string) (JWTMessage, error) {
	return tm.checkToken(requestToken, PurposeSignIn)
}

// CheckSessionToken validates a session cookie value
func (tm *TokenManager) CheckSessionToken(requestToken string) (JWTMessage, error) {
	return tm.checkToken(requestToken, PurposeSession)
}
