package formats

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tjirsch/polyrc/internal/models"
)

// Windsurf character limits. Exceeding them is the tool's problem, not
// polyrc's: the writer warns and writes anyway.
const (
	windsurfFileCharLimit  = 6000
	windsurfTotalCharLimit = 12000
)

// Windsurf reads and writes plain-markdown rule files: per-project
// .windsurf/rules/*.md, or a single user-level global_rules.md.
type Windsurf struct{}

func (w *Windsurf) Name() string { return "windsurf" }

func (w *Windsurf) Description() string {
	return "Windsurf (.windsurf/rules/*.md, plain markdown)"
}

func (w *Windsurf) Capabilities() Capabilities {
	return Capabilities{
		Scopes:            []models.Scope{models.ScopeUser, models.ScopeProject},
		Activations:       []models.Activation{models.ActivationAlways},
		Globs:             false,
		Descriptions:      false,
		DefaultScope:      models.ScopeProject,
		DefaultActivation: models.ActivationAlways,
	}
}

func (w *Windsurf) Read(root string, scope models.Scope) (models.RuleSet, error) {
	if err := checkRoot(w.Name(), root); err != nil {
		return nil, err
	}

	// User layout: root is the memories dir holding global_rules.md.
	globalRules := filepath.Join(root, "global_rules.md")
	if raw, err := os.ReadFile(globalRules); err == nil {
		if strings.TrimSpace(string(raw)) == "" {
			return nil, nil
		}
		rules := models.RuleSet{{
			Scope:      models.ScopeUser,
			Activation: models.ActivationAlways,
			Name:       "global-rules",
			Content:    strings.TrimRight(string(raw), "\n"),
		}}
		return rules.FilterScope(scope), nil
	}

	// Project layout.
	files, err := mdFiles(filepath.Join(root, ".windsurf", "rules"), ".md")
	if err != nil {
		return nil, fmt.Errorf("scanning windsurf rules: %w", err)
	}

	var rules models.RuleSet
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		rules = append(rules, models.Rule{
			Scope:      models.ScopeProject,
			Activation: models.ActivationAlways,
			Name:       stemOf(path, ".md"),
			Content:    strings.TrimRight(string(raw), "\n"),
		})
	}
	return rules.FilterScope(scope), nil
}

func (w *Windsurf) Write(rules models.RuleSet, root string) error {
	fw := &fileWriter{format: w.Name()}

	// User layout: root is the memories dir, everything joins into one file.
	if anyUserScope(rules) {
		if err := fw.mkdir(root); err != nil {
			return err
		}
		return fw.write(filepath.Join(root, "global_rules.md"), []byte(joinRules(rules)))
	}

	dir := filepath.Join(root, ".windsurf", "rules")
	if err := fw.mkdir(dir); err != nil {
		return err
	}

	total := 0
	for _, r := range rules {
		content := strings.TrimRight(r.Content, "\n") + "\n"
		n := len([]rune(content))
		if n > windsurfFileCharLimit {
			slog.Warn("rule exceeds windsurf per-file limit",
				"rule", r.FilenameStem(), "chars", n, "limit", windsurfFileCharLimit)
		}
		total += n
		if err := fw.write(filepath.Join(dir, r.FilenameStem()+".md"), []byte(content)); err != nil {
			return err
		}
	}
	if total > windsurfTotalCharLimit {
		slog.Warn("rules exceed windsurf total limit",
			"chars", total, "limit", windsurfTotalCharLimit)
	}
	return nil
}

func anyUserScope(rules models.RuleSet) bool {
	for _, r := range rules {
		if r.Scope == models.ScopeUser {
			return true
		}
	}
	return false
}
