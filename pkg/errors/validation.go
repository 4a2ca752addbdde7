package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxNameLen bounds names accepted from HTTP paths and flags.
const maxNameLen = 256

// ValidatePackageName checks a package name received from outside the
// repository, such as an HTTP path parameter. Munki names may contain
// spaces and dots, but never path separators or control characters.
func ValidatePackageName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return New(ErrCodeInvalidPackage, "package name is empty")
	case len(name) > maxNameLen:
		return New(ErrCodeInvalidPackage, "package name longer than %d bytes", maxNameLen)
	case !utf8.ValidString(name):
		return New(ErrCodeInvalidPackage, "package name is not valid UTF-8")
	case strings.ContainsAny(name, "/\\"):
		return New(ErrCodeInvalidPackage, "package name %q contains a path separator", name)
	case strings.Contains(name, ".."):
		return New(ErrCodeInvalidPackage, "package name %q contains '..'", name)
	case strings.ContainsFunc(name, unicode.IsControl):
		return New(ErrCodeInvalidPackage, "package name %q contains control characters", name)
	}
	return nil
}

// ValidateKeep checks a retention cap. Zero keeps every version.
func ValidateKeep(keep int) error {
	if keep < 0 {
		return New(ErrCodeInvalidInput, "keep must be zero (all versions) or positive, got %d", keep)
	}
	return nil
}

// ValidateChannel checks a channel (catalog) name.
func ValidateChannel(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "channel name is empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "channel name %q contains a path separator", name)
	}
	return nil
}
