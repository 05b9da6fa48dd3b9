package utils

import (
	"errors"
	"regexp"
	"strings"
)

// Kiosk input validation. These checks run before any store
// interaction so a malformed registration never allocates a queue
// position. The patterns mirror what the registration kiosk accepts.
var (
	namePattern  = regexp.MustCompile(`^[\p{L}][\p{L} .'-]{1,79}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 -]{6,14}$`)
)

var (
	ErrInvalidName      = errors.New("name must be 2-80 letters")
	ErrInvalidPhone     = errors.New("phone must be 7-15 digits, optional leading +")
	ErrInvalidCartValue = errors.New("cart value must be non-negative")
)

// ValidateName checks a customer name from the registration kiosk.
func ValidateName(name string) error {
	if !namePattern.MatchString(strings.TrimSpace(name)) {
		return ErrInvalidName
	}
	return nil
}

// ValidatePhone checks a customer phone number.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidateCartValue checks the informational cart total in cents.
// The value arrives as a signed JSON number; anything negative is
// rejected here rather than truncated.
func ValidateCartValue(cents int64) error {
	if cents < 0 {
		return ErrInvalidCartValue
	}
	return nil
}
