package services

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"passin/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validateEmail(email string) error {
	if !emailRegexp.MatchString(email) {
		return domain.InvalidInputf("invalid email format")
	}
	return nil
}

// validatePassword requires at least 8 characters with a lowercase letter, an uppercase
// letter, a digit and a symbol.
func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return domain.InvalidInputf("password must be at least %d characters", minPasswordLen)
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return domain.InvalidInputf("password must contain lowercase and uppercase letters, a number and a symbol")
	}
	return nil
}

func validateBirthDate(birthDate, now time.Time) error {
	if birthDate.IsZero() {
		return domain.InvalidInputf("birthDate is required")
	}
	if birthDate.After(now) {
		return domain.InvalidInputf("birthDate cannot be in the future")
	}
	return nil
}

func validateImage(img *domain.ImageUpload) error {
	if img == nil {
		return nil
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return domain.InvalidInputf("image must be an image file")
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.InvalidInputf("%s is required", field)
	}
	return nil
}

// civilDate truncates t to midnight of its calendar day in t's location, expressed in UTC
// so dates from different zones compare by calendar day only.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
