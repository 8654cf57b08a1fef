package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidateTurnText validates the free text of a submitted turn.
func ValidateTurnText(text string) error {
	if len(text) == 0 {
		return errors.New("text cannot be empty")
	}
	if len(text) > 100000 {
		return errors.New("text exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("text must be valid UTF-8")
	}
	return nil
}

// ValidateID validates a brand, asset, or flow identifier.
func ValidateID(id string) error {
	if len(id) == 0 {
		return errors.New("id cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("id exceeds maximum length")
	}
	return nil
}

// ValidateBrandName validates a brand display name.
func ValidateBrandName(name string) error {
	if len(name) == 0 {
		return errors.New("name cannot be empty")
	}
	if len(name) > 256 {
		return errors.New("name exceeds maximum length")
	}
	if !utf8.ValidString(name) {
		return errors.New("name must be valid UTF-8")
	}
	return nil
}

// ValidateTitle validates a folder title.
func ValidateTitle(title string) error {
	if len(title) == 0 {
		return errors.New("title cannot be empty")
	}
	if len(title) > 256 {
		return errors.New("title exceeds maximum length")
	}
	if !utf8.ValidString(title) {
		return errors.New("title must be valid UTF-8")
	}
	return nil
}
