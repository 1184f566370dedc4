package validation

import (
	"fmt"
	"net/mail"
)

const (
	// MaxEmailLen is the longest address accepted for the admin login
	MaxEmailLen = 254
	// MinPasswordLen is the shortest admin password accepted
	MinPasswordLen = 12
)

// ValidateEmail checks that email is a bare address (no display name)
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}

	return nil
}

// ValidatePassword checks the minimum requirements for the admin password
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}
