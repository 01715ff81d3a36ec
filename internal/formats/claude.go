package formats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tjirsch/polyrc/internal/models"
)

// Claude reads and writes the Claude Code layout.
//
// Project layout (root is a project directory):
//
//	CLAUDE.md                  always, project scope
//	.claude/rules/*.md         always, project scope
//	.claude/commands/*.md      on_demand (slash commands)
//	.claude/skills/*/SKILL.md  ai_decides (read only)
//	.claude/agents/*.md        ai_decides
//	.claude/settings.json      structured settings, carried as fenced JSON
//
// User layout (root is a .claude directory, detected by its base name):
// same files without the .claude prefix, user scope.
//
// The writer is the reader's inverse: rules route to a directory by
// activation. Skills are read but never written back as skills — they
// become agents, the nearest writable ai_decides location.
type Claude struct{}

// settingsRuleName labels the rule carrying the settings.json payload.
const settingsRuleName = "settings"

type claudeSkillFrontmatter struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

func (c *Claude) Name() string { return "claude" }

func (c *Claude) Description() string {
	return "Claude Code (CLAUDE.md + .claude/rules, commands, agents, skills)"
}

func (c *Claude) Capabilities() Capabilities {
	return Capabilities{
		Scopes: []models.Scope{models.ScopeUser, models.ScopeProject},
		Activations: []models.Activation{
			models.ActivationAlways, models.ActivationOnDemand, models.ActivationAIDecides,
		},
		Globs:             false,
		Descriptions:      true,
		DefaultScope:      models.ScopeProject,
		DefaultActivation: models.ActivationAlways,
	}
}

func (c *Claude) Read(root string, scope models.Scope) (models.RuleSet, error) {
	if err := checkRoot(c.Name(), root); err != nil {
		return nil, err
	}

	isUserRoot := filepath.Base(root) == ".claude"
	ruleScope := models.ScopeProject
	if isUserRoot {
		ruleScope = models.ScopeUser
	}

	configDir := filepath.Join(root, ".claude")
	if isUserRoot {
		configDir = root
	}

	var rules models.RuleSet

	main := filepath.Join(root, "CLAUDE.md")
	if raw, err := os.ReadFile(main); err == nil && strings.TrimSpace(string(raw)) != "" {
		rules = append(rules, models.Rule{
			Scope:      ruleScope,
			Activation: models.ActivationAlways,
			Name:       "claude",
			Content:    strings.TrimRight(string(raw), "\n"),
		})
	}

	if err := c.readMarkdownDir(filepath.Join(configDir, "rules"), ruleScope, models.ActivationAlways, &rules); err != nil {
		return nil, err
	}
	if err := c.readMarkdownDir(filepath.Join(configDir, "commands"), ruleScope, models.ActivationOnDemand, &rules); err != nil {
		return nil, err
	}
	if err := c.readSkillsDir(filepath.Join(configDir, "skills"), ruleScope, &rules); err != nil {
		return nil, err
	}
	if err := c.readMarkdownDir(filepath.Join(configDir, "agents"), ruleScope, models.ActivationAIDecides, &rules); err != nil {
		return nil, err
	}
	if err := c.readSettings(filepath.Join(configDir, "settings.json"), ruleScope, &rules); err != nil {
		return nil, err
	}

	return rules.FilterScope(scope), nil
}

// readMarkdownDir reads every *.md directly inside dir as one rule with the
// given scope and activation. ai_decides rules take their description from
// front matter when present, else from the first content line.
func (c *Claude) readMarkdownDir(dir string, scope models.Scope, activation models.Activation, rules *models.RuleSet) error {
	files, err := mdFiles(dir, ".md")
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		content := string(raw)
		if strings.TrimSpace(content) == "" {
			continue
		}

		rule := models.Rule{
			Scope:      scope,
			Activation: activation,
			Name:       stemOf(path, ".md"),
			Content:    strings.TrimRight(content, "\n"),
		}
		if activation == models.ActivationAIDecides {
			// Agent files carry YAML front matter (name, description); the
			// body is the rule content.
			fm, body, desc := c.splitDescribed(content)
			if fm.Name != "" {
				rule.Name = fm.Name
			}
			rule.Description = desc
			rule.Content = strings.TrimRight(body, "\n")
		}
		*rules = append(*rules, rule)
	}
	return nil
}

// readSkillsDir reads skills/*/SKILL.md; the subdirectory name is the
// skill name.
func (c *Claude) readSkillsDir(dir string, scope models.Scope, rules *models.RuleSet) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name(), "SKILL.md")
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading %s: %w", path, err)
		}
		content := string(raw)
		if strings.TrimSpace(content) == "" {
			continue
		}
		_, body, desc := c.splitDescribed(content)
		*rules = append(*rules, models.Rule{
			Scope:       scope,
			Activation:  models.ActivationAIDecides,
			Name:        e.Name(),
			Description: desc,
			Content:     strings.TrimRight(body, "\n"),
		})
	}
	return nil
}

// readSettings carries settings.json as a fenced JSON payload rule so the
// structured config round-trips through the store without semantic change.
func (c *Claude) readSettings(path string, scope models.Scope, rules *models.RuleSet) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return &MalformedMetadataError{Format: c.Name(), Path: path, Err: err}
	}
	fenced, err := models.FenceJSON(payload)
	if err != nil {
		return &MalformedMetadataError{Format: c.Name(), Path: path, Err: err}
	}
	*rules = append(*rules, models.Rule{
		Scope:      scope,
		Activation: models.ActivationAlways,
		Name:       settingsRuleName,
		Content:    fenced,
	})
	return nil
}

// splitDescribed separates agent/skill front matter from the body. The
// description falls back to the first body line when front matter carries
// none — the documented default so ai_decides rules always validate.
func (c *Claude) splitDescribed(content string) (claudeSkillFrontmatter, string, string) {
	var fm claudeSkillFrontmatter
	fmStr, body, ok := splitFrontmatter(content)
	if !ok {
		return fm, content, defaultDescription(content)
	}
	if err := yaml.Unmarshal([]byte(fmStr), &fm); err != nil || fm.Description == "" {
		return fm, body, defaultDescription(body)
	}
	return fm, body, fm.Description
}

func (c *Claude) Write(rules models.RuleSet, root string) error {
	w := &fileWriter{format: c.Name()}

	// User layout: root is the .claude directory itself.
	isUser := anyUserScope(rules)
	configDir := filepath.Join(root, ".claude")
	if isUser {
		configDir = root
	}

	var always, onDemand, aiDecides models.RuleSet
	var settings *models.Rule
	for i, r := range rules {
		if r.Name == settingsRuleName {
			if _, ok := models.UnfenceJSON(r.Content); ok {
				settings = &rules[i]
				continue
			}
		}
		switch r.Activation {
		case models.ActivationOnDemand:
			onDemand = append(onDemand, r)
		case models.ActivationAIDecides:
			aiDecides = append(aiDecides, r)
		default:
			always = append(always, r)
		}
	}

	// Always-on rules: a single rule becomes CLAUDE.md, more become
	// .claude/rules/*.md (CLAUDE.md holds the one named "claude" if any).
	if len(always) == 1 {
		if err := w.mkdir(root); err != nil {
			return err
		}
		content := strings.TrimRight(always[0].Content, "\n") + "\n"
		if err := w.write(filepath.Join(root, "CLAUDE.md"), []byte(content)); err != nil {
			return err
		}
	} else if len(always) > 1 {
		dir := filepath.Join(configDir, "rules")
		if err := w.mkdir(dir); err != nil {
			return err
		}
		for _, r := range always {
			content := strings.TrimRight(r.Content, "\n") + "\n"
			if r.Name == "claude" {
				if err := w.write(filepath.Join(root, "CLAUDE.md"), []byte(content)); err != nil {
					return err
				}
				continue
			}
			if err := w.write(filepath.Join(dir, r.FilenameStem()+".md"), []byte(content)); err != nil {
				return err
			}
		}
	}

	if err := c.writeMarkdownDir(w, filepath.Join(configDir, "commands"), onDemand); err != nil {
		return err
	}
	if err := c.writeAgentsDir(w, filepath.Join(configDir, "agents"), aiDecides); err != nil {
		return err
	}

	if settings != nil {
		payload, _ := models.UnfenceJSON(settings.Content)
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return &WriteError{Format: c.Name(), Path: configDir, Written: w.written, Err: err}
		}
		if err := w.mkdir(configDir); err != nil {
			return err
		}
		path := filepath.Join(configDir, "settings.json")
		if err := w.write(path, append(data, '\n')); err != nil {
			return err
		}
	}

	return nil
}

// writeAgentsDir renders ai_decides rules as agent files: front matter with
// name and description, body below.
func (c *Claude) writeAgentsDir(w *fileWriter, dir string, rules models.RuleSet) error {
	if len(rules) == 0 {
		return nil
	}
	if err := w.mkdir(dir); err != nil {
		return err
	}
	for _, r := range rules {
		fm, err := yaml.Marshal(claudeSkillFrontmatter{Name: r.Name, Description: r.Description})
		if err != nil {
			return &WriteError{Format: c.Name(), Path: dir, Written: w.written, Err: err}
		}
		content := renderFrontmatter(string(fm), r.Content)
		if err := w.write(filepath.Join(dir, r.FilenameStem()+".md"), []byte(content)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Claude) writeMarkdownDir(w *fileWriter, dir string, rules models.RuleSet) error {
	if len(rules) == 0 {
		return nil
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
