package materialize

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Yolxander/businki-sub003/internal/pkg/doctype"
	"github.com/Yolxander/businki-sub003/internal/pkg/utils/mime"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Source is the document view needed to render a download.
type Source struct {
	Name         string
	Description  string
	Type         string
	Version      int
	Content      string
	MimeType     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ProjectTitle string
	CreatorName  string
	IsGenerated  bool
	IsTemplate   bool
}

// FrontMatter is the YAML block prepended to markdown downloads.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Version     int    `yaml:"version"`
	CreatedAt   string `yaml:"created_at"`
	UpdatedAt   string `yaml:"updated_at"`
	Project     string `yaml:"project"`
	CreatedBy   string `yaml:"created_by"`
	IsGenerated bool   `yaml:"is_generated"`
	IsTemplate  bool   `yaml:"is_template"`
}

// File is a rendered download.
type File struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Filename returns "{name}_{type}_v{version}.{ext}" with spaces in name replaced by underscores.
func Filename(name, docType string, version int) string {
	return strings.ReplaceAll(name, " ", "_") + "_" + docType + "_v" + strconv.Itoa(version) + "." + doctype.Extension(docType)
}

// Render produces the downloadable representation of src.
func Render(src Source) (*File, error) {
	f := &File{
		Filename:    Filename(src.Name, src.Type, src.Version),
		ContentType: mime.ContentTypeOr(src.MimeType),
	}

	if !doctype.IsMarkdown(src.Type) {
		f.Body = []byte(src.Content)
		return f, nil
	}

	fm := FrontMatter{
		Title:       src.Name,
		Description: src.Description,
		Type:        src.Type,
		Version:     src.Version,
		CreatedAt:   formatTime(src.CreatedAt),
		UpdatedAt:   formatTime(src.UpdatedAt),
		Project:     src.ProjectTitle,
		CreatedBy:   src.CreatorName,
		IsGenerated: src.IsGenerated,
		IsTemplate:  src.IsTemplate,
	}
	head, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(head) + len(src.Content) + 16)
	buf.WriteString(delimiter + "\n")
	buf.Write(head)
	buf.WriteString(delimiter + "\n\n")
	buf.WriteString(src.Content)
	f.Body = buf.Bytes()
	return f, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Parse splits a rendered markdown download back into its front matter and content.
func Parse(body []byte) (*FrontMatter, string, error) {
	s := string(body)
	if !strings.HasPrefix(s, delimiter+"\n") {
		return nil, "", errors.New("missing front matter: body must start with '---'")
	}
	rest := s[len(delimiter)+1:]
	end := strings.Index(rest, "\n"+delimiter+"\n")
	if end < 0 {
		return nil, "", errors.New("missing closing front matter delimiter '---'")
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &fm); err != nil {
		return nil, "", fmt.Errorf("parse front matter: %w", err)
	}

	content := rest[end+len(delimiter)+2:]
	content = strings.TrimPrefix(content, "\n")
	return &fm, content, nil
}
