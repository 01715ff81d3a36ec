package formats

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tjirsch/polyrc/internal/models"
)

// Gemini reads and writes the single-file GEMINI.md layout. Multiple rules
// concatenate into one file in RuleSet order, each under a section heading.
type Gemini struct{}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Description() string {
	return "Gemini CLI (GEMINI.md)"
}

func (g *Gemini) Capabilities() Capabilities {
	return Capabilities{
		Scopes:            []models.Scope{models.ScopeProject},
		Activations:       []models.Activation{models.ActivationAlways},
		Globs:             false,
		Descriptions:      false,
		DefaultScope:      models.ScopeProject,
		DefaultActivation: models.ActivationAlways,
	}
}

func (g *Gemini) Read(root string, scope models.Scope) (models.RuleSet, error) {
	if err := checkRoot(g.Name(), root); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(root, "GEMINI.md"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}
	rules := models.RuleSet{{
		Scope:      models.ScopeProject,
		Activation: models.ActivationAlways,
		Name:       "gemini",
		Content:    strings.TrimRight(string(raw), "\n"),
	}}
	return rules.FilterScope(scope), nil
}

func (g *Gemini) Write(rules models.RuleSet, root string) error {
	if len(rules) == 0 {
		return nil
	}
	w := &fileWriter{format: g.Name()}
	if err := w.mkdir(root); err != nil {
		return err
	}
	return w.write(filepath.Join(root, "GEMINI.md"), []byte(joinRules(rules)))
}
