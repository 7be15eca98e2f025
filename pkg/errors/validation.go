package errors

import (
	"strings"
	"unicode/utf8"
)

// MaxMapBytes is the default upper bound on the size of a submitted map.
const MaxMapBytes = 1 << 20

// ValidateMapText checks raw map text before it reaches the parser.
// It rejects maps larger than maxBytes and text that is not valid UTF-8.
// A maxBytes of zero or less disables the size check.
//
// Every other rune is terrain, so empty or blank maps pass here and fail in
// the parser with MISSING_START.
func ValidateMapText(text string, maxBytes int) error {
	if maxBytes > 0 && len(text) > maxBytes {
		return New(ErrCodeMapTooLarge, "map too large (max %d bytes)", maxBytes)
	}

	if !utf8.ValidString(text) {
		return New(ErrCodeInvalidInput, "map must be valid UTF-8")
	}

	return nil
}

// ValidateOutputPath validates a file path the CLI will write to.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "output path contains invalid characters")
	}

	return nil
}
