// Package validation holds input validation rules shared by services.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"flock/internal/models"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Username checks the signup username format.
func Username(username string) error {
	if !usernameRegex.MatchString(username) {
		return models.NewValidationError("Username must be 3-30 characters of letters, digits or underscore")
	}
	return nil
}

// Email checks the signup email format.
func Email(email string) error {
	if !emailRegex.MatchString(email) {
		return models.NewValidationError("Invalid email address")
	}
	return nil
}

// Password checks the minimum password strength.
func Password(password string) error {
	if len(password) < 8 {
		return models.NewValidationError("Password must be at least 8 characters")
	}
	return nil
}

// PostContent checks post body constraints. Length is measured in characters,
// not bytes. A body is required unless the post carries an image; an empty
// post with no media is a structural violation, not a malformed input.
func PostContent(content string, hasImage bool) error {
	if strings.TrimSpace(content) == "" && !hasImage {
		return models.NewInvalidOperationError("Post content is required")
	}
	if n := utf8.RuneCountInString(content); n > models.MaxContentLen {
		return models.NewValidationError(
			fmt.Sprintf("Post content exceeds %d characters", models.MaxContentLen))
	}
	return nil
}
