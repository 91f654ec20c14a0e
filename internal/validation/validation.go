// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]{6,25}$`)

// MaxScratchBodyLen is the maximum scratch body length in characters.
const MaxScratchBodyLen = 280

// MaxDescriptionLen is the maximum profile description length in characters.
const MaxDescriptionLen = 160

// ValidateUsername checks if a username meets requirements.
// Usernames are 6 to 25 alphanumeric characters.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 6 to 25 characters long and contain only letters and digits")
	}
	return nil
}

// ValidatePassword checks if a password meets security requirements.
// Passwords are 8 to 72 characters with at least one digit, one lowercase
// letter and one uppercase letter. The upper bound matches the bcrypt input limit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 72 {
		return fmt.Errorf("password must not exceed 72 characters")
	}

	var hasDigit, hasLower, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	return nil
}

// ValidateDescription checks the profile description length.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return fmt.Errorf("description must not exceed %d characters", MaxDescriptionLen)
	}
	return nil
}

// ValidateScratchBody checks the scratch body length. Empty bodies are legal
// here; whether a scratch needs content at all depends on its reshare target
// and media and is decided by the service layer.
func ValidateScratchBody(body string) error {
	if utf8.RuneCountInString(body) > MaxScratchBodyLen {
		return fmt.Errorf("scratch body must not exceed %d characters", MaxScratchBodyLen)
	}
	return nil
}
