package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password ChangePassword accepts.
const MinPasswordLength = 6

var (
	ErrPasswordRequired = errors.New("new password is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// HashPassword hashes with the given bcrypt cost (bcrypt.DefaultCost if 0).
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword returns nil when password matches hash.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidateNewPassword applies the change-password rules in order.
func ValidateNewPassword(password, confirm string) error {
	switch {
	case password == "":
		return ErrPasswordRequired
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case password != confirm:
		return ErrPasswordMismatch
	}
	return nil
}

// IsPasswordRuleError reports whether err came from ValidateNewPassword.
func IsPasswordRuleError(err error) bool {
	return errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrPasswordMismatch)
}
