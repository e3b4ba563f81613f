package estimating

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	PromptBudgetEstimate   = "budget_estimate"
	PromptChangeOrderDraft = "change_order_suggestion"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type Section struct {
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

type Prompt struct {
	Name     string    `yaml:"name"`
	Sections []Section `yaml:"sections"`
	Schema   string    `yaml:"schema"`
}

// PromptSet is a named collection of prompts.
type PromptSet struct {
	byName map[string]Prompt
}

// LoadPrompts parses a prompt file. Names must be unique and every prompt
// needs at least one section.
func LoadPrompts(data []byte) (*PromptSet, error) {
	var doc struct {
		Prompts []Prompt `yaml:"prompts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	set := &PromptSet{byName: make(map[string]Prompt, len(doc.Prompts))}
	for _, p := range doc.Prompts {
		if p.Name == "" {
			return nil, fmt.Errorf("prompt without name")
		}
		if _, dup := set.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate prompt %q", p.Name)
		}
		if len(p.Sections) == 0 {
			return nil, fmt.Errorf("prompt %q has no sections", p.Name)
		}
		set.byName[p.Name] = p
	}
	return set, nil
}

// DefaultPrompts returns the embedded prompt set.
func DefaultPrompts() *PromptSet {
	set, err := LoadPrompts(defaultPrompts)
	if err != nil {
		panic(err)
	}
	return set
}

var placeholder = regexp.MustCompile(`\{([a-zA-Z]+)\}`)

// Render fills {key} placeholders and appends the response schema.
// Unknown placeholders are an error so that a typo never reaches the model.
func (s *PromptSet) Render(name string, vars map[string]string) (string, error) {
	p, ok := s.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var b strings.Builder
	var missing []string
	for i, sec := range p.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		text := placeholder.ReplaceAllStringFunc(sec.Text, func(m string) string {
			key := m[1 : len(m)-1]
			v, ok := vars[key]
			if !ok {
				missing = append(missing, key)
				return m
			}
			return v
		})
		b.WriteString(strings.TrimRight(text, "\n"))
		b.WriteString("\n")
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %q: missing values for %s", name, strings.Join(missing, ", "))
	}
	if schema := strings.TrimSpace(p.Schema); schema != "" {
		b.WriteString("\nRespond with JSON only, matching this schema:\n")
		b.WriteString(schema)
		b.WriteString("\n")
	}
	return b.String(), nil
}
