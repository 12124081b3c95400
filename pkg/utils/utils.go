// Package utils holds input normalization and validation helpers.
package utils

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"
)

// SanitizeFilename returns a version of name that is safe to use as the last
// element of a storage path.
func SanitizeFilename(name string) string {
	// Cleaning an absolute path drops any "../" elements.
	name = path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateSlug returns an error if the given organization slug is invalid.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}

	if !slugRe.MatchString(slug) {
		return fmt.Errorf("slug can only contain lowercase letters, numbers, and single hyphens")
	}

	return nil
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateColor returns an error if color is not a #rrggbb color.
func ValidateColor(color string) error {
	if !hexColorRe.MatchString(color) {
		return fmt.Errorf("color must be in #rrggbb format")
	}

	return nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeAccessCode trims and upper-cases a customer access code.
func NormalizeAccessCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
