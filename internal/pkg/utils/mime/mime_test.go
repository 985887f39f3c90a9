package mime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		filename string
		prefix   string
	}{
		{name: "markdown by extension", content: []byte("# Title\n\nbody"), filename: "plan.md", prefix: "text/markdown"},
		{name: "yaml by extension", content: []byte("a: 1\n"), filename: "cfg.YML", prefix: "text/yaml"},
		{name: "plain text stays plain", content: []byte("hello world"), filename: "notes.txt", prefix: "text/plain"},
		{name: "pdf by content", content: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), filename: "plan.md", prefix: "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectMimeType(tt.content, tt.filename)
			assert.Contains(t, got, tt.prefix)
		})
	}
}

func TestIsText(t *testing.T) {
	assert.True(t, IsText("text/markdown; charset=utf-8"))
	assert.True(t, IsText("application/json"))
	assert.False(t, IsText("application/pdf"))
	assert.False(t, IsText("image/png"))
}

func TestContentTypeOr(t *testing.T) {
	assert.Equal(t, "text/plain", ContentTypeOr(""))
	assert.Equal(t, "text/markdown", ContentTypeOr("text/markdown"))
}
