/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Store, auth and api packages return or wrap these; the HTTP layer maps
  them to status codes with IsNotFound / IsClientError / IsConflict.

ERROR CATEGORIES:
  1. Not-found errors - missing employee, leave record, user, session
  2. Input errors - unparseable dates and amounts, inverted periods
  3. Conflict errors - duplicate employee numbers

USAGE:
  if errors.Is(err, generic.ErrEmployeeNotFound) {
      // 404
  }

  var pe *generic.ParseError
  if errors.As(err, &pe) {
      // pe.Field, pe.Value
  }

SEE ALSO:
  - store/sqlite: returns not-found and conflict errors
  - api/handlers.go: maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrLeaveNotFound is returned when a referenced leave record doesn't exist.
	ErrLeaveNotFound = errors.New("leave record not found")

	// ErrUserNotFound is returned when a login user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned for unknown, revoked or expired sessions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCertificateNotFound is returned when a sick-leave record has no stored certificate.
	ErrCertificateNotFound = errors.New("certificate not found")

	// ErrDuplicateEmployeeNumber is returned when an employee number is already taken.
	ErrDuplicateEmployeeNumber = errors.New("duplicate employee number")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidDate is returned for dates that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidAmount is returned for unparseable or negative day counts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidStatus is returned for unknown leave statuses.
	ErrInvalidStatus = errors.New("invalid status")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ParseError reports a value that could not be parsed at a boundary.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: cannot parse %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a field that parsed but broke a rule.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	var pe *ParseError
	var ve *ValidationError
	return errors.As(err, &pe) ||
		errors.As(err, &ve) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrLeaveNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCertificateNotFound)
}

// IsConflict returns true if the error indicates a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEmployeeNumber)
}
