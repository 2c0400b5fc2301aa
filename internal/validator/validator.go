package validator

import (
	"errors"
	"regexp"
)

var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidMethod   = errors.New("invalid payment method")
)

var (
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	methodRegex   = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,40}$`)
)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateCategory(category string) error {
	if category != "vps" && category != "pterodactyl_panel" {
		return ErrInvalidCategory
	}
	return nil
}

func ValidateMethod(method string) error {
	if !methodRegex.MatchString(method) {
		return ErrInvalidMethod
	}
	return nil
}
