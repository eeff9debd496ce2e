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
// USERS
// =============================================================================

// User is a login account.
type User struct {
	ID              int64
	Username        string
	PasswordHash    string
	PasswordChanged bool
	CreatedAt       time.Time
}

// CreateUser inserts a user and sets its ID.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, password_changed, created_at) VALUES (?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.PasswordChanged, formatTime(u.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("user %q already exists: %w", u.Username, err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

// GetUserByUsername returns generic.ErrUserNotFound if absent.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, password_changed, created_at FROM users WHERE username = ?`,
		username,
	))
}

// GetUser returns generic.ErrUserNotFound if absent.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, password_changed, created_at FROM users WHERE id = ?`,
		id,
	))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PasswordChanged, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

// UpdatePassword stores a new hash and marks the password as changed.
func (s *Store) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, password_changed = 1 WHERE id = ?`,
		hash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return affectedOrNotFound(res, generic.ErrUserNotFound)
}
