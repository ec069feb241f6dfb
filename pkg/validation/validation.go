package validation

import (
	"strings"

	"github.com/filmscatalog/backend/pkg/apperr"
)

// MaxNameLength bounds the film name column (varchar 255).
const MaxNameLength = 255

// ValidateFilmName checks the required display title.
func ValidateFilmName(name string) []apperr.FieldError {
	var errs []apperr.FieldError
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		errs = append(errs, apperr.FieldError{Field: "name", Message: "name is required"})
	} else if len(trimmed) > MaxNameLength {
		errs = append(errs, apperr.FieldError{Field: "name", Message: "name is too long"})
	}
	return errs
}

// ValidateUsername validates username format
func ValidateUsername(username string) bool {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 30 {
		return false
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// SanitizeString removes potentially harmful characters
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
