package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateDatasetName validates a dataset name requested by a provider client.
// A dataset name resolves to a file under the provider's data directory or a
// collection in its database, so it must be a plain name:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - No hidden files
//   - Maximum length of 256 characters
func ValidateDatasetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "dataset name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPath, "dataset name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "dataset name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "dataset name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "dataset name cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "dataset name cannot be a hidden file")
	}

	return nil
}

// ValidateProviderURL validates a websocket URL for the layout provider.
func ValidateProviderURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "provider URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "ws://") && !strings.HasPrefix(rawURL, "wss://") {
		return New(ErrCodeInvalidInput, "provider URL must use ws or wss scheme")
	}

	return nil
}

// surfaceIDRegex matches identifiers that are safe as SVG ids and CSS selectors.
var surfaceIDRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateSurfaceID validates a view's surface identifier.
// The identifier is used as the SVG id attribute and as the key under which
// pointer events are routed, so it must be a simple token.
func ValidateSurfaceID(id string) error {
	if !surfaceIDRegex.MatchString(id) {
		return New(ErrCodeInvalidConfig, "invalid surface id: %q", id)
	}
	return nil
}
