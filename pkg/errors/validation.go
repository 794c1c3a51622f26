package errors

import (
	"strings"
	"unicode"
)

// MaxPackageNameLength bounds package names accepted by the engine.
const MaxPackageNameLength = 256

// forbiddenSequences never appear in a package name. Names end up in cache
// file paths, Redis keys and Mongo queries.
var forbiddenSequences = []string{"..", "//", "\\", "\x00"}

// ValidatePackageName rejects names that are empty, too long, contain
// whitespace or control characters, or contain a path-like sequence.
// Versioned names such as "libx-1.0" and scoped names such as "@org/pkg"
// are accepted.
func ValidatePackageName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > MaxPackageNameLength:
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", MaxPackageNameLength)
	}

	if i := strings.IndexFunc(name, func(r rune) bool {
		return unicode.IsControl(r) || unicode.IsSpace(r)
	}); i >= 0 {
		return New(ErrCodeInvalidPackage, "package name %q contains whitespace or control characters", name)
	}
	for _, seq := range forbiddenSequences {
		if strings.Contains(name, seq) {
			return New(ErrCodeInvalidPackage, "package name %q contains %q", name, seq)
		}
	}
	return nil
}

// ValidatePackageNames validates every name and rejects an empty request.
func ValidatePackageNames(names []string) error {
	if len(names) == 0 {
		return New(ErrCodeInvalidInput, "at least one package must be requested")
	}
	for _, name := range names {
		if err := ValidatePackageName(name); err != nil {
			return err
		}
	}
	return nil
}
