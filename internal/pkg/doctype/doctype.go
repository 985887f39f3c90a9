package doctype

import "sort"

type Type string

const (
	Implementation   Type = "implementation"
	Workflow         Type = "workflow"
	ProjectStructure Type = "project_structure"
	UIUX             Type = "ui_ux"
	BugTracking      Type = "bug_tracking"
	Custom           Type = "custom"
)

// Definition describes how one document type is generated and rendered.
type Definition struct {
	Key         Type   `json:"key"`
	Label       string `json:"label"`
	Extension   string `json:"extension"`
	Markdown    bool   `json:"markdown"`
	Instruction string `json:"-"`
}

const GenericInstruction = `Write a clear, well-organized document that answers the user request for this project.
Use headings and lists where they help, and keep the content specific to the project described above.`

var registry = map[Type]Definition{
	Implementation: {
		Key:       Implementation,
		Label:     "Implementation Plan",
		Extension: "md",
		Markdown:  true,
		Instruction: `Create a detailed implementation plan in Markdown that covers:
- Goals and scope
- Phases with concrete deliverables
- Technical approach and key components
- Dependencies and risks
- Milestones and a rough timeline`,
	},
	Workflow: {
		Key:       Workflow,
		Label:     "Workflow Documentation",
		Extension: "md",
		Markdown:  true,
		Instruction: `Document the development workflow in Markdown, including:
- Branching and review process
- Build, test and release steps
- Environments and deployment flow
- Roles and hand-offs between team members`,
	},
	ProjectStructure: {
		Key:       ProjectStructure,
		Label:     "Project Structure",
		Extension: "md",
		Markdown:  true,
		Instruction: `Describe the project structure in Markdown:
- Directory layout as a tree
- Purpose of each top-level module
- Naming conventions
- Where configuration, tests and assets live`,
	},
	UIUX: {
		Key:       UIUX,
		Label:     "UI/UX Documentation",
		Extension: "md",
		Markdown:  true,
		Instruction: `Write UI/UX documentation in Markdown covering:
- Target users and primary journeys
- Screens and their key components
- Interaction patterns and states
- Accessibility and visual style guidelines`,
	},
	BugTracking: {
		Key:       BugTracking,
		Label:     "Bug Tracking",
		Extension: "md",
		Markdown:  true,
		Instruction: `Produce a bug tracking document in Markdown with:
- Severity and priority definitions
- A report template (steps to reproduce, expected, actual, environment)
- Triage and resolution workflow
- Known issues to watch for in this project`,
	},
	Custom: {
		Key:         Custom,
		Label:       "Custom Document",
		Extension:   "txt",
		Markdown:    false,
		Instruction: GenericInstruction,
	},
}

// Lookup returns the definition of key.
func Lookup(key string) (Definition, bool) {
	d, ok := registry[Type(key)]
	return d, ok
}

// Valid reports whether key names a registered type.
func Valid(key string) bool {
	_, ok := registry[Type(key)]
	return ok
}

// Instruction returns the generation instruction of key, or the generic one for unknown keys.
func Instruction(key string) string {
	if d, ok := registry[Type(key)]; ok {
		return d.Instruction
	}
	return GenericInstruction
}

// Extension returns "md" for markdown-rendered types and "txt" otherwise.
func Extension(key string) string {
	if d, ok := registry[Type(key)]; ok && d.Markdown {
		return "md"
	}
	return "txt"
}

// IsMarkdown reports whether documents of key are rendered with front matter.
func IsMarkdown(key string) bool {
	d, ok := registry[Type(key)]
	return ok && d.Markdown
}

// Label returns the human label of key, or the key itself when unknown.
func Label(key string) string {
	if d, ok := registry[Type(key)]; ok {
		return d.Label
	}
	return key
}

// Keys returns all registered type keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// All returns every definition ordered by key.
func All() []Definition {
	out := make([]Definition, 0, len(registry))
	for _, k := range Keys() {
		out = append(out, registry[Type(k)])
	}
	return out
}
