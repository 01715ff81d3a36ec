package formats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tjirsch/polyrc/internal/models"
)

// Antigravity reads and writes Google Antigravity's rules directories:
// project .agent/rules/*.md (with a legacy .agents/rules/ fallback), or a
// user-level rules/ directory directly under the root.
type Antigravity struct{}

func (a *Antigravity) Name() string { return "antigravity" }

func (a *Antigravity) Description() string {
	return "Google Antigravity (.agent/rules/*.md)"
}

func (a *Antigravity) Capabilities() Capabilities {
	return Capabilities{
		Scopes:            []models.Scope{models.ScopeUser, models.ScopeProject},
		Activations:       []models.Activation{models.ActivationAlways},
		Globs:             false,
		Descriptions:      false,
		DefaultScope:      models.ScopeProject,
		DefaultActivation: models.ActivationAlways,
	}
}

// projectRulesDir returns the project rules directory, preferring the
// current .agent path over the legacy .agents one.
func (a *Antigravity) projectRulesDir(root string) string {
	current := filepath.Join(root, ".agent", "rules")
	if _, err := os.Stat(current); err == nil {
		return current
	}
	legacy := filepath.Join(root, ".agents", "rules")
	if _, err := os.Stat(legacy); err == nil {
		return legacy
	}
	return ""
}

func (a *Antigravity) Read(root string, scope models.Scope) (models.RuleSet, error) {
	if err := checkRoot(a.Name(), root); err != nil {
		return nil, err
	}

	// User layout: rules/ directly under the root, no .agent dir present.
	userDir := filepath.Join(root, "rules")
	if _, err := os.Stat(userDir); err == nil && a.projectRulesDir(root) == "" {
		rules, err := a.readRulesDir(userDir, models.ScopeUser)
		if err != nil {
			return nil, err
		}
		return rules.FilterScope(scope), nil
	}

	dir := a.projectRulesDir(root)
	if dir == "" {
		return nil, nil
	}
	rules, err := a.readRulesDir(dir, models.ScopeProject)
	if err != nil {
		return nil, err
	}
	return rules.FilterScope(scope), nil
}

func (a *Antigravity) readRulesDir(dir string, scope models.Scope) (models.RuleSet, error) {
	files, err := mdFiles(dir, ".md")
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	var rules models.RuleSet
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		rules = append(rules, models.Rule{
			Scope:      scope,
			Activation: models.ActivationAlways,
			Name:       stemOf(path, ".md"),
			Content:    strings.TrimRight(string(raw), "\n"),
		})
	}
	return rules, nil
}

func (a *Antigravity) Write(rules models.RuleSet, root string) error {
	w := &fileWriter{format: a.Name()}

	dir := filepath.Join(root, ".agent", "rules")
	if anyUserScope(rules) {
		// User layout: root is ~/.gemini/antigravity.
		dir = filepath.Join(root, "rules")
	}
	if err := w.mkdir(dir); err != nil {
		return err
	}

	for _, r := range rules {
		content := strings.TrimRight(r.Content, "\n") + "\n"
		if err := w.write(filepath.Join(dir, r.FilenameStem()+".md"), []byte(content)); err != nil {
			return err
		}
	}
	return nil
}
