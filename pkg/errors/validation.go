package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds column, backend and snapshot names.
const maxNameLength = 256

// ValidateColumnName validates a schema column name.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
func ValidateColumnName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "column name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "column name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "column name contains invalid control characters")
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidInput, "column name %q has surrounding whitespace", name)
	}

	return nil
}

// backendNameRegex matches registry tags such as "memory" or "append-only".
var backendNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateBackendName validates a backend tag used by the factory registry.
// Tags are lowercase identifiers so that config files stay unambiguous.
func ValidateBackendName(name string) error {
	if name == "" {
		return New(ErrCodeConfiguration, "backend name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeConfiguration, "backend name too long (max %d characters)", maxNameLength)
	}

	if !backendNameRegex.MatchString(name) {
		return New(ErrCodeConfiguration, "invalid backend name: %q", name)
	}

	return nil
}

// ValidateKey validates a snapshot key for safety.
// Keys end up in file names and redis keys, so path traversal sequences,
// separators and control characters are rejected.
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "key cannot be empty")
	}

	if len(key) > maxNameLength {
		return New(ErrCodeInvalidInput, "key too long (max %d characters)", maxNameLength)
	}

	for _, r := range key {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "key contains invalid characters")
		}
	}

	dangerousPatterns := []string{
		"..", // Parent directory
		"/",  // Path separator
		"\\", // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidInput, "key contains invalid characters: %q", pattern)
		}
	}

	return nil
}
