package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/warp/leave-manager/generic"
)

// =============================================================================
// SESSIONS
// =============================================================================

// Session is a server-side login session. The JWT cookie carries its ID.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// SessionUser is an active session joined with its user.
type SessionUser struct {
	Session Session
	User    User
}

// CreateSession inserts a session row.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.UserID, formatTime(sess.CreatedAt), formatTime(sess.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetActiveSession returns the session and its user if it exists, is not
// revoked and has not expired at now. Otherwise generic.ErrSessionNotFound.
func (s *Store) GetActiveSession(ctx context.Context, id string, now time.Time) (*SessionUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var su SessionUser
	var sessCreated, expires, userCreated string
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.created_at, s.expires_at,
		       u.id, u.username, u.password_hash, u.password_changed, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ? AND s.revoked_at IS NULL AND s.expires_at > ?`,
		id, formatTime(now),
	).Scan(
		&su.Session.ID, &su.Session.UserID, &sessCreated, &expires,
		&su.User.ID, &su.User.Username, &su.User.PasswordHash, &su.User.PasswordChanged, &userCreated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	su.Session.CreatedAt = parseTime(sessCreated)
	su.Session.ExpiresAt = parseTime(expires)
	su.User.CreatedAt = parseTime(userCreated)
	return &su, nil
}

// RevokeSession marks a session revoked. Revoking twice is not an error.
func (s *Store) RevokeSession(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`,
		formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return affectedOrNotFound(res, generic.ErrSessionNotFound)
}

// RevokeUserSessions revokes every open session of a user except keepID.
func (s *Store) RevokeUserSessions(ctx context.Context, userID int64, keepID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND id <> ? AND revoked_at IS NULL`,
		formatTime(at), userID, keepID,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// PurgeSessions deletes expired and revoked sessions, returning how many went.
func (s *Store) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE revoked_at IS NOT NULL OR expires_at <= ?`,
		formatTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}
