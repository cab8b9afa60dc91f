package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateItem checks the editable parts of a practice item
func ValidateItem(translation string, fieldNames []string) error {
	if strings.TrimSpace(translation) == "" {
		return ValidationError{Field: "translation", Message: "translation is required"}
	}
	if len(fieldNames) == 0 {
		return ValidationError{Field: "fields", Message: "at least one answer field is required"}
	}
	seen := make(map[string]bool, len(fieldNames))
	for _, name := range fieldNames {
		if strings.TrimSpace(name) == "" {
			return ValidationError{Field: "fields", Message: "field names must not be empty"}
		}
		if seen[name] {
			return ValidationError{Field: "fields", Message: fmt.Sprintf("duplicate field name %q", name)}
		}
		seen[name] = true
	}
	return nil
}
