package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for catalog fields.
const (
	maxCategoryNameLen = 255
	maxPageLimit       = 100
)

// validateCategoryName checks a category name and returns the first error found.
func validateCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Category name is too long (max 255 characters)."
	}
	return ""
}
