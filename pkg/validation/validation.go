package validation

import (
	"fmt"
	"regexp"

	"github.com/shelfmark/shelfmark/pkg/clierr"
)

const (
	MinThreads = 1
	MaxThreads = 20
)

var emailRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ValidateThreadCount(threads int) error {
	if threads < MinThreads || threads > MaxThreads {
		return clierr.New(clierr.Validation,
			fmt.Sprintf("thread count must be between %d and %d, got %d", MinThreads, MaxThreads, threads), nil)
	}
	return nil
}

func ValidateBookID(id int64) error {
	if id <= 0 {
		return clierr.New(clierr.Validation,
			fmt.Sprintf("book ID must be a positive integer, got %d", id), nil)
	}
	return nil
}

func ValidateNonEmptyString(fieldName, value string) error {
	if value == "" {
		return clierr.New(clierr.Validation, fmt.Sprintf("%s cannot be empty", fieldName), nil)
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailRegexp.MatchString(email) {
		return clierr.New(clierr.Validation, fmt.Sprintf("invalid email address: %s", email), nil)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return clierr.New(clierr.Validation, "password must be at least 8 characters long", nil)
	}
	return nil
}
