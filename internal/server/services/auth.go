package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/johnsonjew/learning-journal/internal/common"
	"github.com/johnsonjew/learning-journal/internal/server/auth"
	"github.com/johnsonjew/learning-journal/internal/server/config"
)

// generateToken is a test seam for auth.GenerateToken.
var generateToken = auth.GenerateToken

// AuthService is the gate in front of every write: it checks the single admin
// credential and issues, verifies and revokes stateless session tokens.
type AuthService struct {
	adminUserName     string
	adminPasswordHash string
	jwtSecret         []byte
	sessionValidity   time.Duration
	cookieSecure      bool
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		adminUserName:     cfg.AdminUserName,
		adminPasswordHash: cfg.AdminPasswordHash,
		jwtSecret:         []byte(cfg.SecretKey),
		sessionValidity:   cfg.SessionValidityDuration,
		cookieSecure:      cfg.CookieSecure,
	}
}

// AttemptLogin reports whether userName/password is the admin credential.
// Empty input is a validation error; a wrong credential is simply false.
// The bcrypt check runs whether or not the username matched.
func (s *AuthService) AttemptLogin(ctx context.Context, userName, password string) (bool, error) {
	if userName == "" || password == "" {
		return false, common.NewValidationError("both username and password are required")
	}

	userOK := s.isAdmin(userName)
	passwordOK := auth.CheckPassword(s.adminPasswordHash, password)

	return userOK && passwordOK, nil
}

// IssueSession returns a signed token naming userName.
func (s *AuthService) IssueSession(userName string) (string, error) {
	token, err := generateToken(userName, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return "", fmt.Errorf("%w: signing session token: %v", common.ErrorInternal, err)
	}
	return token, nil
}

// IsAuthenticated returns the identity bound to token when the token is
// well-signed, unexpired and names the admin. It never fails loudly.
func (s *AuthService) IsAuthenticated(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	userName, err := auth.GetUserNameFromToken(token, s.jwtSecret)
	if err != nil || !s.isAdmin(userName) {
		return "", false
	}
	return userName, true
}

// SessionCookie wraps token in the cookie the browser keeps for the session.
func (s *AuthService) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionValidity.Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// RevokeSession returns the instruction that makes the browser drop its
// session cookie. Nothing is kept server-side, so there is nothing else to do.
func (s *AuthService) RevokeSession() *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *AuthService) isAdmin(userName string) bool {
	return subtle.ConstantTimeCompare([]byte(userName), []byte(s.adminUserName)) == 1
}
