package formats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tjirsch/polyrc/internal/models"
)

// Cursor reads and writes Cursor's .cursor/rules/*.mdc layout with
// camelCase YAML front matter.
type Cursor struct{}

// cursorFrontmatter accepts the field shapes Cursor actually produces:
// globs may be a single string (possibly comma-separated) or a sequence.
type cursorFrontmatter struct {
	Description string    `yaml:"description,omitempty"`
	Globs       yaml.Node `yaml:"globs,omitempty"`
	AlwaysApply *bool     `yaml:"alwaysApply,omitempty"`
}

type cursorFrontmatterOut struct {
	Description string   `yaml:"description,omitempty"`
	Globs       []string `yaml:"globs,omitempty"`
	AlwaysApply *bool    `yaml:"alwaysApply,omitempty"`
}

func (c *Cursor) Name() string { return "cursor" }

func (c *Cursor) Description() string {
	return "Cursor (.cursor/rules/*.mdc, YAML frontmatter)"
}

func (c *Cursor) Capabilities() Capabilities {
	return Capabilities{
		Scopes: []models.Scope{models.ScopeProject},
		Activations: []models.Activation{
			models.ActivationAlways, models.ActivationGlob,
			models.ActivationOnDemand, models.ActivationAIDecides,
		},
		Globs:             true,
		Descriptions:      true,
		DefaultScope:      models.ScopeProject,
		DefaultActivation: models.ActivationOnDemand,
	}
}

func (c *Cursor) Read(root string, scope models.Scope) (models.RuleSet, error) {
	if err := checkRoot(c.Name(), root); err != nil {
		return nil, err
	}

	files, err := mdFiles(filepath.Join(root, ".cursor", "rules"), ".mdc")
	if err != nil {
		return nil, fmt.Errorf("scanning cursor rules: %w", err)
	}

	var rules models.RuleSet
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		fmStr, body, hasFM := splitFrontmatter(string(raw))
		var fm cursorFrontmatter
		if hasFM {
			if err := yaml.Unmarshal([]byte(fmStr), &fm); err != nil {
				return nil, &MalformedMetadataError{Format: c.Name(), Path: path, Err: err}
			}
		}

		globs, err := decodeCursorGlobs(fm.Globs)
		if err != nil {
			return nil, &MalformedMetadataError{Format: c.Name(), Path: path, Err: err}
		}

		var activation models.Activation
		switch {
		case fm.AlwaysApply != nil && *fm.AlwaysApply:
			activation = models.ActivationAlways
		case len(globs) > 0:
			activation = models.ActivationGlob
		case fm.Description != "":
			activation = models.ActivationAIDecides
		default:
			activation = models.ActivationOnDemand
		}

		rules = append(rules, models.Rule{
			Scope:       models.ScopeProject,
			Activation:  activation,
			Globs:       globs,
			Name:        stemOf(path, ".mdc"),
			Description: fm.Description,
			Content:     strings.TrimRight(body, "\n"),
		})
	}

	return rules.FilterScope(scope), nil
}

func (c *Cursor) Write(rules models.RuleSet, root string) error {
	w := &fileWriter{format: c.Name()}
	dir := filepath.Join(root, ".cursor", "rules")
	if err := w.mkdir(dir); err != nil {
		return err
	}

	for _, r := range rules {
		var always *bool
		if r.Activation == models.ActivationAlways {
			t := true
			always = &t
		}
		out := cursorFrontmatterOut{
			Description: r.Description,
			Globs:       r.Globs,
			AlwaysApply: always,
		}
		fm, err := yaml.Marshal(out)
		if err != nil {
			return &WriteError{Format: c.Name(), Path: dir, Written: w.written, Err: err}
		}
		path := filepath.Join(dir, r.FilenameStem()+".mdc")
		if err := w.write(path, []byte(renderFrontmatter(string(fm), r.Content))); err != nil {
			return err
		}
	}
	return nil
}

// decodeCursorGlobs accepts a scalar (possibly comma-separated) or a
// sequence of patterns.
func decodeCursorGlobs(node yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0: // absent
		return nil, nil
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, err
		}
		var globs []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				globs = append(globs, p)
			}
		}
		return globs, nil
	case yaml.SequenceNode:
		var globs []string
		if err := node.Decode(&globs); err != nil {
			return nil, err
		}
		return globs, nil
	default:
		return nil, fmt.Errorf("globs must be a string or a sequence")
	}
}
