package doctype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"bug_tracking", "custom", "implementation", "project_structure", "ui_ux", "workflow"}, Keys())
	assert.Len(t, All(), 6)

	for _, k := range []string{"implementation", "workflow", "project_structure", "ui_ux", "bug_tracking"} {
		assert.True(t, IsMarkdown(k), k)
		assert.Equal(t, "md", Extension(k), k)
	}
	assert.False(t, IsMarkdown("custom"))
	assert.Equal(t, "txt", Extension("custom"))
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Lookup("novel")
	assert.False(t, ok)
	assert.False(t, Valid("novel"))
	assert.Equal(t, GenericInstruction, Instruction("novel"))
	assert.Equal(t, "txt", Extension("novel"))
	assert.Equal(t, "novel", Label("novel"))
}

func TestLookup_Known(t *testing.T) {
	d, ok := Lookup("implementation")
	assert.True(t, ok)
	assert.Equal(t, "Implementation Plan", d.Label)
	assert.Contains(t, Instruction("implementation"), "implementation plan")
}
