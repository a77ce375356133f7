package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidTemplate(t *testing.T) {
	data := []byte(`
name: Structure Fire Review
category: incident
outputs: [summary, benchmarks]
sections:
  - id: sizeup
    name: Initial Size-Up
    prompt: Summarize the first-arriving officer's size-up report.
    outputFormat: paragraph
  - id: benchmarks
    name: Timing Benchmarks
    prompt: Extract timing benchmarks such as water on fire.
    outputFormat: benchmarks
    dependencies: [sizeup]
`)

	tpl, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Structure Fire Review", tpl.Name)
	require.Len(t, tpl.Sections, 2)
	assert.Equal(t, []string{"sizeup"}, tpl.Sections[1].Dependencies)
	assert.True(t, tpl.HasDependencies())
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("sections: [\n"))
	require.Error(t, err)
}

func TestValidate_DuplicateID(t *testing.T) {
	tpl := &Template{
		Name: "dup",
		Sections: []Section{
			{ID: "a", Name: "A", Prompt: "p"},
			{ID: "a", Name: "A again", Prompt: "p"},
		},
	}
	err := tpl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate section id "a"`)
}

func TestValidate_EmptyPrompt(t *testing.T) {
	tpl := &Template{
		Name:     "empty-prompt",
		Sections: []Section{{ID: "a", Name: "A", Prompt: "   "}},
	}
	require.Error(t, tpl.Validate())
}

func TestValidate_UnknownOutputFormat(t *testing.T) {
	tpl := &Template{
		Name:     "bad-format",
		Sections: []Section{{ID: "a", Name: "A", Prompt: "p", OutputFormat: "haiku"}},
	}
	err := tpl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"haiku"`)
}

func TestValidate_NoSections(t *testing.T) {
	tpl := &Template{Name: "hollow"}
	require.Error(t, tpl.Validate())
}

func TestSectionByID(t *testing.T) {
	tpl := &Template{
		Name: "lookup",
		Sections: []Section{
			{ID: "a", Name: "A", Prompt: "p"},
			{ID: "b", Name: "B", Prompt: "p"},
		},
	}
	require.NotNil(t, tpl.SectionByID("b"))
	assert.Equal(t, "B", tpl.SectionByID("b").Name)
	assert.Nil(t, tpl.SectionByID("zzz"))
}
