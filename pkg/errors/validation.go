package errors

import (
	"strings"
	"unicode"
)

// MinFiles is the smallest file set for which an ordering is meaningful.
const MinFiles = 2

// ValidateFileSet checks that files can be permuted and measured.
//
// The validation rules:
//   - At least MinFiles entries
//   - No empty identifiers
//   - No duplicates (orderings are permutations, not sequences with repeats)
func ValidateFileSet(files []string) error {
	if len(files) < MinFiles {
		return New(ErrCodeInvalidInput, "need at least %d files, got %d", MinFiles, len(files))
	}

	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if f == "" {
			return New(ErrCodeInvalidInput, "file identifier cannot be empty")
		}
		if _, dup := seen[f]; dup {
			return New(ErrCodeInvalidInput, "duplicate file identifier: %q", f)
		}
		seen[f] = struct{}{}
	}
	return nil
}

// ValidatePermutation checks that got contains every element of want exactly
// once. A mismatch is reported as an invariant violation because callers only
// use it on orderings they constructed themselves.
func ValidatePermutation(want, got []string) error {
	if len(got) != len(want) {
		return New(ErrCodeInvariantViolation, "ordering has %d entries, want %d", len(got), len(want))
	}

	counts := make(map[string]int, len(want))
	for _, f := range want {
		counts[f]++
	}
	for _, f := range got {
		counts[f]--
		if counts[f] < 0 {
			return New(ErrCodeInvariantViolation, "ordering contains unexpected or repeated entry %q", f)
		}
	}
	return nil
}

// ValidatePath validates a source directory or output prefix supplied by the user.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateName validates a strategy or scheme name: lowercase letters and
// digits only, matching the names registered in the catalogs.
func ValidateName(code Code, kind, name string) error {
	if name == "" {
		return New(code, "%s name cannot be empty", kind)
	}
	if strings.TrimFunc(name, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	}) != "" {
		return New(code, "invalid %s name: %q", kind, name)
	}
	return nil
}
