package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// pictureRegex matches panorama picture names: a number with an image extension.
var pictureRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?\.(jpg|jpeg|png|webp)$`)

// ValidatePicture validates a panorama picture filename such as "1042.jpg".
// Pictures are served relative to an asset root, so the name must not
// contain path components.
func ValidatePicture(name string) error {
	if name == "" {
		return New(ErrCodeInvalidManifest, "picture name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidManifest, "picture name cannot contain path separators: %q", name)
	}
	if !pictureRegex.MatchString(name) {
		return New(ErrCodeInvalidManifest, "invalid picture name: %q", name)
	}
	return nil
}

// ValidateRoomName validates a room name for display.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 128 characters
func ValidateRoomName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidManifest, "room name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidManifest, "room name too long (max 128 bytes)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "room name contains invalid control characters")
		}
	}

	return nil
}

// ValidatePath validates a local file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !IsURL(rawURL) {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// IsURL reports whether s looks like an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ValidateSource validates a manifest source, which is either an http(s)
// URL or a local path.
func ValidateSource(source string) error {
	if IsURL(source) {
		return ValidateURL(source)
	}
	if strings.Contains(source, "://") {
		return New(ErrCodeInvalidInput, "unsupported manifest source scheme: %q", source)
	}
	return ValidatePath(source)
}
