package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds node, edge and asset identifiers.
const maxIDLength = 128

// ValidateID validates a node or edge identifier.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidID, "id contains invalid characters: %q", id)
		}
	}
	return nil
}

// assetIDRegex matches ids accepted by the asset store and by the
// asset:<id> markdown reference syntax. An id never ends in a dot, so a
// dot after a reference is always sentence punctuation.
var assetIDRegex = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9_-])?$`)

// ValidateAssetID validates an asset id. Asset ids double as storage keys
// and file names, so path separators and traversal sequences are rejected.
func ValidateAssetID(id string) error {
	if err := ValidateID(id); err != nil {
		return New(ErrCodeInvalidID, "invalid asset id: %s", UserMessage(err))
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "asset id cannot contain path traversal sequences (..)")
	}
	if !assetIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid asset id: %q", id)
	}
	return nil
}

// ValidateMimeType validates that mime is an image MIME type.
func ValidateMimeType(mime string) error {
	if mime == "" {
		return New(ErrCodeInvalidInput, "mime type cannot be empty")
	}
	if !strings.HasPrefix(mime, "image/") {
		return New(ErrCodeInvalidInput, "mime type must be an image type, got %q", mime)
	}
	return nil
}
