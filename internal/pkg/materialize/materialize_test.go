package materialize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "Rollout_Plan_implementation_v3.md", Filename("Rollout Plan", "implementation", 3))
	assert.Equal(t, "Meeting_notes_custom_v1.txt", Filename("Meeting notes", "custom", 1))
}

func TestRender_PlainTextRoundTrip(t *testing.T) {
	content := "line one\n---\nline three\n\ttabbed  "
	f, err := Render(Source{Name: "Notes", Type: "custom", Version: 1, Content: content})
	require.NoError(t, err)

	assert.Equal(t, content, string(f.Body))
	assert.Equal(t, "text/plain", f.ContentType)
	assert.Equal(t, "Notes_custom_v1.txt", f.Filename)
}

func TestRender_MarkdownFrontMatter(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	src := Source{
		Name:         "Rollout Plan",
		Description:  "Phased rollout",
		Type:         "implementation",
		Version:      2,
		Content:      "# Phases\n\n1. Pilot\n---\n2. Expand\n",
		MimeType:     "text/markdown",
		CreatedAt:    created,
		UpdatedAt:    created.Add(time.Hour),
		ProjectTitle: "Acme Redesign",
		CreatorName:  "Dana",
		IsGenerated:  true,
	}

	f, err := Render(src)
	require.NoError(t, err)
	assert.Equal(t, "text/markdown", f.ContentType)
	assert.Equal(t, "Rollout_Plan_implementation_v2.md", f.Filename)

	body := string(f.Body)
	assert.True(t, strings.HasPrefix(body, "---\n"))
	assert.Contains(t, body, "is_generated: true\n")
	assert.Contains(t, body, "is_template: false\n")
	assert.Contains(t, body, "2026-03-01T09:30:00Z")
	assert.True(t, strings.HasSuffix(body, src.Content))

	fm, content, err := Parse(f.Body)
	require.NoError(t, err)
	assert.Equal(t, src.Content, content)
	assert.Equal(t, "Rollout Plan", fm.Title)
	assert.Equal(t, 2, fm.Version)
	assert.Equal(t, "Acme Redesign", fm.Project)
	assert.Equal(t, "Dana", fm.CreatedBy)
	assert.True(t, fm.IsGenerated)
	assert.False(t, fm.IsTemplate)
}

func TestParse_Errors(t *testing.T) {
	_, _, err := Parse([]byte("no front matter"))
	assert.Error(t, err)

	_, _, err = Parse([]byte("---\ntitle: x\n"))
	assert.Error(t, err)
}
