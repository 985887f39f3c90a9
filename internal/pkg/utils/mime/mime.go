package mime

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultTextType = "text/plain"

// extMimeMap refines text/plain detections for formats the content sniffer cannot tell apart.
var extMimeMap = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".csv":      "text/csv",
	".json":     "application/json",
	".xml":      "application/xml",
	".html":     "text/html",
	".htm":      "text/html",
	".sql":      "text/x-sql",
	".toml":     "text/x-toml",
}

// DetectMimeType sniffs content and refines plain text by the filename extension.
// Charset parameters from the sniffer are preserved.
func DetectMimeType(content []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType := mimetype.Detect(content).String()

	if strings.HasPrefix(contentType, DefaultTextType) {
		if refined, ok := extMimeMap[ext]; ok {
			return strings.Replace(contentType, DefaultTextType, refined, 1)
		}
	}
	return contentType
}

// IsText reports whether a detected type can be stored as document content.
func IsText(contentType string) bool {
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if strings.HasPrefix(base, "text/") {
		return true
	}
	switch base {
	case "application/json", "application/xml", "application/x-yaml":
		return true
	}
	return false
}

// ContentTypeOr returns contentType, or text/plain when it is empty.
func ContentTypeOr(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return DefaultTextType
	}
	return contentType
}
