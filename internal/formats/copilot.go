package formats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tjirsch/polyrc/internal/models"
)

// Copilot reads and writes GitHub Copilot's split layout: project-wide
// .github/copilot-instructions.md plus path-scoped
// .github/instructions/*.instructions.md with applyTo front matter.
type Copilot struct{}

type copilotFrontmatter struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	ApplyTo     string `yaml:"applyTo,omitempty"`
}

const copilotInstructionsExt = ".instructions.md"

func (c *Copilot) Name() string { return "copilot" }

func (c *Copilot) Description() string {
	return "GitHub Copilot (.github/copilot-instructions.md + .github/instructions/)"
}

func (c *Copilot) Capabilities() Capabilities {
	return Capabilities{
		Scopes:            []models.Scope{models.ScopeProject, models.ScopePath},
		Activations:       []models.Activation{models.ActivationAlways, models.ActivationGlob},
		Globs:             true,
		Descriptions:      true,
		DefaultScope:      models.ScopeProject,
		DefaultActivation: models.ActivationAlways,
	}
}

func (c *Copilot) Read(root string, scope models.Scope) (models.RuleSet, error) {
	if err := checkRoot(c.Name(), root); err != nil {
		return nil, err
	}

	var rules models.RuleSet

	main := filepath.Join(root, ".github", "copilot-instructions.md")
	if raw, err := os.ReadFile(main); err == nil && strings.TrimSpace(string(raw)) != "" {
		rules = append(rules, models.Rule{
			Scope:      models.ScopeProject,
			Activation: models.ActivationAlways,
			Name:       "copilot-instructions",
			Content:    strings.TrimRight(string(raw), "\n"),
		})
	}

	dir := filepath.Join(root, ".github", "instructions")
	files, err := mdFiles(dir, copilotInstructionsExt)
	if err != nil {
		return nil, fmt.Errorf("scanning copilot instructions: %w", err)
	}
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		fmStr, body, hasFM := splitFrontmatter(string(raw))
		var fm copilotFrontmatter
		if hasFM {
			if err := yaml.Unmarshal([]byte(fmStr), &fm); err != nil {
				return nil, &MalformedMetadataError{Format: c.Name(), Path: path, Err: err}
			}
		}

		name := fm.Name
		if name == "" {
			name = stemOf(path, copilotInstructionsExt)
		}

		rule := models.Rule{
			Name:        name,
			Description: fm.Description,
			Content:     strings.TrimRight(body, "\n"),
		}
		if fm.ApplyTo != "" {
			rule.Scope = models.ScopePath
			rule.Activation = models.ActivationGlob
			rule.Globs = []string{fm.ApplyTo}
		} else {
			rule.Scope = models.ScopeProject
			rule.Activation = models.ActivationAlways
		}
		rules = append(rules, rule)
	}

	return rules.FilterScope(scope), nil
}

func (c *Copilot) Write(rules models.RuleSet, root string) error {
	var alwaysRules, globRules models.RuleSet
	for _, r := range rules {
		if r.Activation == models.ActivationGlob || len(r.Globs) > 0 {
			globRules = append(globRules, r)
		} else {
			alwaysRules = append(alwaysRules, r)
		}
	}

	w := &fileWriter{format: c.Name()}

	if len(alwaysRules) > 0 {
		dir := filepath.Join(root, ".github")
		if err := w.mkdir(dir); err != nil {
			return err
		}
		path := filepath.Join(dir, "copilot-instructions.md")
		if err := w.write(path, []byte(joinRules(alwaysRules))); err != nil {
			return err
		}
	}

	if len(globRules) > 0 {
		dir := filepath.Join(root, ".github", "instructions")
		if err := w.mkdir(dir); err != nil {
			return err
		}
		for _, r := range globRules {
			fm := copilotFrontmatter{
				Name:        r.Name,
				Description: r.Description,
			}
			if len(r.Globs) > 0 {
				fm.ApplyTo = r.Globs[0]
			}
			fmBytes, err := yaml.Marshal(fm)
			if err != nil {
				return &WriteError{Format: c.Name(), Path: dir, Written: w.written, Err: err}
			}
			path := filepath.Join(dir, r.FilenameStem()+copilotInstructionsExt)
			if err := w.write(path, []byte(renderFrontmatter(string(fmBytes), r.Content))); err != nil {
				return err
			}
		}
	}

	return nil
}
