package prompt

import (
	"regexp"
	"strings"

	"github.com/Yolxander/businki-sub003/internal/pkg/doctype"
)

// ProjectContext is the part of a project that is fed to the model.
type ProjectContext struct {
	Title       string
	Description string
}

// Build assembles the generation prompt for a document.
// Layout:
//
//	Project: {title}
//	Description: {description}
//	Type: {label}
//
//	User Request: {prompt}
//
//	{type instruction}
func Build(project ProjectContext, docType, userPrompt string) string {
	var b strings.Builder
	b.WriteString("Project: ")
	b.WriteString(project.Title)
	b.WriteString("\nDescription: ")
	b.WriteString(project.Description)
	b.WriteString("\nType: ")
	b.WriteString(doctype.Label(docType))
	b.WriteString("\n\nUser Request: ")
	b.WriteString(userPrompt)
	b.WriteString("\n\n")
	b.WriteString(doctype.Instruction(docType))
	return b.String()
}

const projectInstruction = `Propose a project for the request above.
Reply with the project title on the first line, then a short description on the following lines.
Do not add any labels, quotes or Markdown headings.`

// BuildProject assembles the prompt used to title and describe a new project.
func BuildProject(userPrompt string) string {
	return "User Request: " + userPrompt + "\n\n" + projectInstruction
}

// ParseProject splits a completion into a title line and a description.
func ParseProject(content string) (title, description string) {
	content = strings.TrimSpace(content)
	first, rest, _ := strings.Cut(content, "\n")
	title = strings.TrimLeft(strings.TrimSpace(first), "#* ")
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))
	title = strings.TrimSpace(strings.Trim(title, "\"'*"))
	return title, strings.TrimSpace(rest)
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Render substitutes {{key}} placeholders with values from vars.
// Unknown placeholders are left untouched.
func Render(content string, vars map[string]string) string {
	if len(vars) == 0 {
		return content
	}
	return placeholderRe.ReplaceAllStringFunc(content, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := vars[key]; ok {
			return v
		}
		return m
	})
}

// MergeVars layers overrides on top of defaults without mutating either.
func MergeVars(defaults, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
