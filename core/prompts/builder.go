// Package prompts assembles system prompts from ordered, templated
// sections. Agents register templates for the sections they care about and
// render them against their session context.
package prompts

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// Section identifies one standard prompt section.
type Section string

const (
	SectionRole          Section = "role"
	SectionPersonality   Section = "personality"
	SectionContext       Section = "context"
	SectionCapabilities  Section = "capabilities"
	SectionConstraints   Section = "constraints"
	SectionInstructions  Section = "instructions"
	SectionExamples      Section = "examples"
	SectionErrorHandling Section = "error_handling"
	SectionClosing       Section = "closing"
)

// sectionOrder fixes the default rendering order of the standard sections.
var sectionOrder = map[Section]int{
	SectionRole:          0,
	SectionPersonality:   10,
	SectionContext:       20,
	SectionCapabilities:  30,
	SectionConstraints:   40,
	SectionInstructions:  50,
	SectionExamples:      60,
	SectionErrorHandling: 70,
	SectionClosing:       80,
}

// sectionHeading returns the markdown heading for sections that carry one.
func sectionHeading(section Section) string {
	switch section {
	case SectionRole:
		return "# Role"
	case SectionInstructions:
		return "# Instructions"
	case SectionConstraints:
		return "# Constraints"
	case SectionExamples:
		return "# Examples"
	default:
		return ""
	}
}

type sectionTemplate struct {
	section Section
	tmpl    *template.Template
	order   int
}

// Builder assembles a prompt from templated sections. The zero value is not
// usable; construct with NewBuilder.
type Builder struct {
	sections map[Section]sectionTemplate
	custom   []string
}

func NewBuilder() *Builder {
	return &Builder{sections: map[Section]sectionTemplate{}}
}

// Section adds or replaces a section template. The template uses
// text/template syntax; variables come from the value passed to Build.
// Returns the builder for chaining and panics on a malformed template, since
// templates are compile-time constants of the calling agent.
func (b *Builder) Section(section Section, text string) *Builder {
	tmpl, err := template.New(string(section)).Option("missingkey=error").Parse(text)
	if err != nil {
		panic(fmt.Sprintf("malformed %s template: %v", section, err))
	}

	order, ok := sectionOrder[section]
	if !ok {
		order = len(sectionOrder) * 10
	}

	b.sections[section] = sectionTemplate{section: section, tmpl: tmpl, order: order}
	return b
}

// Custom appends a pre-rendered block after all standard sections.
func (b *Builder) Custom(content string) *Builder {
	b.custom = append(b.custom, content)
	return b
}

// Clear removes a section.
func (b *Builder) Clear(section Section) *Builder {
	delete(b.sections, section)
	return b
}

// Build renders every section against vars, in section order, and joins the
// non-empty results. A section whose template fails to execute is skipped
// with a warning rather than failing the whole prompt.
func (b *Builder) Build(vars any) string {
	ordered := make([]sectionTemplate, 0, len(b.sections))
	for _, section := range b.sections {
		ordered = append(ordered, section)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].order < ordered[j].order })

	parts := make([]string, 0, len(ordered)+len(b.custom))
	for _, section := range ordered {
		var rendered strings.Builder
		if err := section.tmpl.Execute(&rendered, vars); err != nil {
			logger.Warn("failed to render prompt section",
				"section", string(section.section),
				"error", err,
			)
			continue
		}

		content := strings.TrimSpace(rendered.String())
		if content == "" {
			continue
		}

		if heading := sectionHeading(section.section); heading != "" {
			content = heading + "\n" + content
		}
		parts = append(parts, content)
	}

	for _, content := range b.custom {
		if content = strings.TrimSpace(content); content != "" {
			parts = append(parts, content)
		}
	}

	return strings.Join(parts, "\n\n")
}
