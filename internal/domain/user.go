package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Username length bounds, counted in characters.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
)

// User represents a registered user of the task manager.
// Users own tasks; tasks refer to their owner by ID only.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the caller-supplied fields of the User.
// The ID and timestamps are owned by the store and are not checked here.
func (u *User) Validate() error {
	if u == nil {
		return NewValidationError("user", "cannot be nil", ErrEmptyContent)
	}
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if isBlank(u.FirstName) {
		return NewValidationError("first_name", "cannot be empty", ErrEmptyContent)
	}
	if isBlank(u.LastName) {
		return NewValidationError("last_name", "cannot be empty", ErrEmptyContent)
	}
	return nil
}

// ValidateUsername checks that username is non-blank and within the length bounds.
func ValidateUsername(username string) error {
	if isBlank(username) {
		return NewValidationError("username", "cannot be empty", ErrEmptyContent)
	}
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLength || n > UsernameMaxLength {
		return NewValidationError("username", "must be between 3 and 50 characters", ErrInvalidLength)
	}
	return nil
}

// ValidateEmail checks that email is non-blank and has a plausible address shape.
func ValidateEmail(email string) error {
	if isBlank(email) {
		return NewValidationError("email", "cannot be empty", ErrEmptyContent)
	}
	if !validateEmailFormat(email) {
		return NewValidationError("email", "has an invalid format", ErrInvalidEmail)
	}
	return nil
}

// HasEmail reports whether the user's email matches email, ignoring case.
func (u *User) HasEmail(email string) bool {
	return strings.EqualFold(u.Email, email)
}

// GetID returns the user's ID.
func (u *User) GetID() int64 { return u.ID }

// SetID assigns the user's ID.
func (u *User) SetID(id int64) { u.ID = id }

// GetCreatedAt returns when the user was first stored.
func (u *User) GetCreatedAt() time.Time { return u.CreatedAt }

// MarkCreated stamps both timestamps with at.
func (u *User) MarkCreated(at time.Time) {
	u.CreatedAt = at
	u.UpdatedAt = at
}

// MarkUpdated refreshes the update timestamp.
func (u *User) MarkUpdated(at time.Time) { u.UpdatedAt = at }

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	c := *u
	return &c
}

// validateEmailFormat performs basic validation of email format: a single
// local part before '@' and a dotted domain after it.
func validateEmailFormat(email string) bool {
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}

	atIndex := strings.IndexByte(email, '@')
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	if len(domainPart) < 3 || strings.IndexByte(domainPart, '@') >= 0 {
		return false
	}

	dotIndex := strings.IndexByte(domainPart, '.')
	if dotIndex <= 0 || strings.HasSuffix(domainPart, ".") {
		return false
	}

	return true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
