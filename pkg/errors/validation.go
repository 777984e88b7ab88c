package errors

import (
	"strings"
	"unicode"
)

// MaxInputChannels bounds the --channels value accepted from users.
const MaxInputChannels = 1 << 16

// ValidateOutputPath validates an output base path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - Must not end in a path separator (it names a file, not a directory)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "output path must name a file: %q", path)
	}

	return nil
}

// ValidateInputChannels checks that the network input channel count is
// positive and reasonably small.
func ValidateInputChannels(n int) error {
	if n <= 0 {
		return New(ErrCodeInvalidInput, "input channels must be positive, got %d", n)
	}
	if n > MaxInputChannels {
		return New(ErrCodeInvalidInput, "input channels too large (max %d), got %d", MaxInputChannels, n)
	}
	return nil
}
