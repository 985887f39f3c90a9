package path

import (
	"errors"
	"strings"
	"unicode"
)

var (
	ErrEmptyPath     = errors.New("path cannot be empty")
	ErrInvalidPath   = errors.New("path format is invalid")
	ErrPathTraversal = errors.New("path contains directory traversal")
)

// ValidateKey validates a relative, slash separated storage key.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyPath
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidPath
	}

	for _, part := range strings.Split(key, "/") {
		if part == "" {
			return ErrInvalidPath
		}
		if part == "." || part == ".." || strings.Trim(part, ".") == "" {
			return ErrPathTraversal
		}
		if strings.Contains(part, "\x00") {
			return ErrInvalidPath
		}
	}
	return nil
}

// SanitizeFilename reduces an uploaded filename to a safe single path segment.
// Examples:
//
//	"../../etc/passwd" -> "passwd"
//	"my report.md"     -> "my_report.md"
//	".env"             -> "file_.env"
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == 0:
			b.WriteRune('_')
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	clean := b.String()

	if clean == "" || strings.Trim(clean, ".") == "" {
		return "file"
	}
	if strings.HasPrefix(clean, ".") {
		clean = "file_" + clean
	}
	return clean
}

// DocumentKey builds the storage key of an uploaded document original.
// Examples:
//
//	("p1", "d1", "spec.md") -> "documents/p1/d1/spec.md"
func DocumentKey(projectID, documentID, filename string) string {
	return "documents/" + projectID + "/" + documentID + "/" + SanitizeFilename(filename)
}
