/*
Package auth handles logins, sessions and password changes.

PURPOSE:
  A login creates a row in the sessions table and hands back a signed
  HS256 token whose jti is that row's ID. Every request re-reads the
  session joined with its user, so logout and password changes take
  effect immediately and the forced-password-change flag is always fresh.

FLOW:
  1. EnsureDefaultAdmin seeds admin/admin123 with password_changed = false
  2. Login checks username then password, creates the session
  3. Authenticate verifies the token, then the session row
  4. ChangePassword enforces the rules, stores the new hash, sets the flag
     and revokes the user's other sessions
  5. Logout revokes the session

SEE ALSO:
  - store/sqlite/users.go, sessions.go: persistence
  - api/middleware.go: cookie handling and the password-change gate
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/store/sqlite"
	"go.uber.org/zap"
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Message returns the user-facing text for an auth error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidUsername):
		return "Invalid username"
	case errors.Is(err, ErrInvalidPassword):
		return "Invalid password"
	case errors.Is(err, ErrPasswordRequired):
		return "New password is required"
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 6 characters long"
	case errors.Is(err, ErrPasswordMismatch):
		return "Passwords do not match"
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required"
	default:
		return "Internal error"
	}
}

// UserStore is the persistence the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *sqlite.User) error
	GetUserByUsername(ctx context.Context, username string) (*sqlite.User, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	CreateSession(ctx context.Context, sess sqlite.Session) error
	GetActiveSession(ctx context.Context, id string, now time.Time) (*sqlite.SessionUser, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
	RevokeUserSessions(ctx context.Context, userID int64, keepID string, at time.Time) error
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID          int64
	Username        string
	SessionID       string
	PasswordChanged bool
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token               string
	ExpiresAt           time.Time
	Principal           Principal
	ForcePasswordChange bool
}

// Service implements login, logout, authentication and password changes.
type Service struct {
	store      UserStore
	tokens     *Tokens
	sessionTTL time.Duration
	now        func() time.Time
	logger     *zap.Logger

	// BcryptCost is used for new hashes; 0 means bcrypt.DefaultCost.
	BcryptCost int
}

// NewService creates the service. now may be nil for wall-clock time.
func NewService(store UserStore, secret string, sessionTTL time.Duration, now func() time.Time, logger *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		tokens:     NewTokens(secret, now),
		sessionTTL: sessionTTL,
		now:        now,
		logger:     logger,
	}
}

// EnsureDefaultAdmin creates the user if it does not exist yet.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, generic.ErrUserNotFound) {
		return false, fmt.Errorf("look up default admin: %w", err)
	}

	hash, err := HashPassword(password, s.BcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash default admin password: %w", err)
	}
	if err := s.store.CreateUser(ctx, &sqlite.User{Username: username, PasswordHash: hash, CreatedAt: s.now()}); err != nil {
		return false, err
	}
	s.logger.Info("default admin created", zap.String("username", username))
	return true, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, generic.ErrUserNotFound) {
		return nil, ErrInvalidUsername
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidPassword
	}

	now := s.now()
	sess := sqlite.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(sess.ID, user.ID, user.Username, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info("login", zap.String("username", user.Username), zap.String("session_id", sess.ID))
	return &LoginResult{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		Principal: Principal{
			UserID:          user.ID,
			Username:        user.Username,
			SessionID:       sess.ID,
			PasswordChanged: user.PasswordChanged,
		},
		ForcePasswordChange: !user.PasswordChanged,
	}, nil
}

// Authenticate resolves a token to its live session.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	su, err := s.store.GetActiveSession(ctx, claims.ID, s.now())
	if errors.Is(err, generic.ErrSessionNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if su.User.ID != claims.UserID {
		return nil, ErrUnauthenticated
	}

	return &Principal{
		UserID:          su.User.ID,
		Username:        su.User.Username,
		SessionID:       su.Session.ID,
		PasswordChanged: su.User.PasswordChanged,
	}, nil
}

// ChangePassword validates and stores a new password, then revokes the
// user's other sessions.
func (s *Service) ChangePassword(ctx context.Context, p Principal, newPassword, confirm string) error {
	if err := ValidateNewPassword(newPassword, confirm); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, p.UserID, hash); err != nil {
		return err
	}
	if err := s.store.RevokeUserSessions(ctx, p.UserID, p.SessionID, s.now()); err != nil {
		s.logger.Warn("revoke other sessions failed", zap.Int64("user_id", p.UserID), zap.Error(err))
	}

	s.logger.Info("password changed", zap.String("username", p.Username))
	return nil
}

// Logout revokes the session. An already-gone session is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	err := s.store.RevokeSession(ctx, sessionID, s.now())
	if errors.Is(err, generic.ErrSessionNotFound) {
		return nil
	}
	return err
}

// =============================================================================
// REQUEST CONTEXT
// =============================================================================

type principalKey struct{}

// WithPrincipal attaches the caller to ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller attached by WithPrincipal.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
