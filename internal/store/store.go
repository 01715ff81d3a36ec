// Package store persists IR rules as one YAML file per rule inside a
// git-backed directory tree, grouped by logical project.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tjirsch/polyrc/internal/gitx"
	"github.com/tjirsch/polyrc/internal/models"
)

const (
	rulesDir = "rules"

	// UserProject is the reserved project that holds user-global rules.
	UserProject = "user"

	// legacyUserProject is renamed to UserProject on open.
	legacyUserProject = "_user"
)

var (
	// ErrNotFound reports an uninitialized store root.
	ErrNotFound = errors.New("store not initialized (run polyrc init)")

	// ErrProjectNotFound reports a rename source that does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrProjectExists reports a rename target that is already taken.
	ErrProjectExists = errors.New("project already exists")
)

// Store is an open polyrc store.
type Store struct {
	Root string
	Git  gitx.Client

	// now and newID are injection points for tests.
	now   func() time.Time
	newID func() string
}

// Open opens an existing store, migrating the legacy user directory if one
// is still present. Returns ErrNotFound when root carries no manifest.
func Open(root string, git gitx.Client) (*Store, error) {
	if _, err := LoadManifest(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", root, ErrNotFound)
		}
		return nil, err
	}
	s := &Store{Root: root, Git: git, now: func() time.Time { return time.Now().UTC() }, newID: uuid.NewString}
	if err := s.migrateLegacyUserDir(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init creates a store at root: directory, manifest, and git repository.
// Re-initializing an existing store only updates the remote URL.
func Init(ctx context.Context, root, remoteURL string, git gitx.Client) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	m, err := LoadManifest(root)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		m = NewManifest()
		if err := git.Init(ctx, root); err != nil {
			return nil, err
		}
	}
	if remoteURL != "" {
		m.Remote.URL = remoteURL
		if err := git.SetRemote(ctx, root, remoteURL); err != nil {
			return nil, err
		}
	}
	if err := m.Save(root); err != nil {
		return nil, err
	}
	return Open(root, git)
}

func (s *Store) migrateLegacyUserDir() error {
	legacy := filepath.Join(s.Root, rulesDir, legacyUserProject)
	current := filepath.Join(s.Root, rulesDir, UserProject)
	if _, err := os.Stat(legacy); err != nil {
		return nil
	}
	if _, err := os.Stat(current); err == nil {
		return nil
	}
	if err := os.Rename(legacy, current); err != nil {
		return fmt.Errorf("migrating legacy user rules: %w", err)
	}
	return nil
}

// Put upserts one rule into its project. Identity is preserved by id, or by
// name for rules arriving from adapters without one; new rules get a fresh
// uuid. UpdatedAt moves only when the rule materially changed, so re-putting
// an unchanged rule leaves the file byte-identical.
func (s *Store) Put(rule models.Rule) (models.Rule, error) {
	project := rule.Project
	if project == "" {
		project = UserProject
	}
	existing, err := s.loadProject(project)
	if err != nil {
		return models.Rule{}, err
	}

	var match *models.Rule
	if rule.ID != "" {
		match = existing.ByID(rule.ID)
	}
	if match == nil && rule.Name != "" {
		for i := range existing {
			if existing[i].Name == rule.Name && existing[i].ID != "" {
				match = &existing[i]
				break
			}
		}
	}

	now := s.now()
	stored := rule
	stored.Project = project
	stored.StoreVersion = models.StoreVersion
	if match != nil {
		stored.ID = match.ID
		stored.CreatedAt = match.CreatedAt
		if stored.Equivalent(*match) {
			stored.UpdatedAt = match.UpdatedAt
			if stored.SourceFormat == "" {
				stored.SourceFormat = match.SourceFormat
			}
		} else {
			stored.UpdatedAt = now
		}
	} else {
		if stored.ID == "" {
			stored.ID = s.newID()
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		if stored.UpdatedAt.IsZero() {
			stored.UpdatedAt = now
		}
	}

	if err := models.Validate(stored); err != nil {
		return models.Rule{}, err
	}

	dir := s.projectDir(project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return models.Rule{}, fmt.Errorf("creating project directory: %w", err)
	}

	// A rename moves the file; drop the one written under the old stem.
	if match != nil {
		if old := match.FilenameStem(); old != stored.FilenameStem() {
			os.Remove(filepath.Join(dir, old+".yml"))
		}
	}

	raw, err := yaml.Marshal(stored)
	if err != nil {
		return models.Rule{}, fmt.Errorf("encoding rule %s: %w", stored.ID, err)
	}
	path := filepath.Join(dir, stored.FilenameStem()+".yml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return models.Rule{}, fmt.Errorf("writing rule %s: %w", stored.ID, err)
	}
	return stored, nil
}

// GetAll returns rules filtered conjunctively by project, scope, and source
// format. Empty filters mean no restriction; project "" spans all projects.
func (s *Store) GetAll(project string, scope models.Scope, format string) (models.RuleSet, error) {
	var projects []string
	if project != "" {
		projects = []string{project}
	} else {
		var err error
		projects, err = s.ListProjects()
		if err != nil {
			return nil, err
		}
	}
	var all models.RuleSet
	for _, p := range projects {
		rules, err := s.loadProject(p)
		if err != nil {
			return nil, err
		}
		all = append(all, rules...)
	}
	return all.FilterScope(scope).FilterFormat(format), nil
}

// Prune removes every rule of project whose id is not in keep. Returns the
// removed rules so callers can report them.
func (s *Store) Prune(project string, keep map[string]bool) (models.RuleSet, error) {
	if project == "" {
		project = UserProject
	}
	existing, err := s.loadProject(project)
	if err != nil {
		return nil, err
	}
	var removed models.RuleSet
	for _, r := range existing {
		if keep[r.ID] {
			continue
		}
		path := filepath.Join(s.projectDir(project), r.FilenameStem()+".yml")
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("pruning rule %s: %w", r.ID, err)
		}
		removed = append(removed, r)
	}
	return removed, nil
}

// Commit stages and commits the whole store. Returns false when the tree
// was already clean.
func (s *Store) Commit(ctx context.Context, message string) (bool, error) {
	if err := s.Git.Stage(ctx, s.Root); err != nil {
		return false, err
	}
	return s.Git.Commit(ctx, s.Root, message)
}

// ListProjects lists project names in the store, sorted.
func (s *Store) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.Root, rulesDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	var projects []string
	for _, e := range entries {
		if e.IsDir() {
			projects = append(projects, e.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// RenameProject renames a project directory and relabels every record in
// it. The reserved user project cannot be renamed away.
func (s *Store) RenameProject(oldName, newName string) error {
	if oldName == UserProject {
		return fmt.Errorf("%s is reserved and cannot be renamed", UserProject)
	}
	oldDir := s.projectDir(oldName)
	newDir := s.projectDir(newName)
	if _, err := os.Stat(oldDir); err != nil {
		return fmt.Errorf("%s: %w", oldName, ErrProjectNotFound)
	}
	if _, err := os.Stat(newDir); err == nil {
		return fmt.Errorf("%s: %w", newName, ErrProjectExists)
	}
	if err := os.Rename(oldDir, newDir); err != nil {
		return fmt.Errorf("renaming project: %w", err)
	}
	rules, err := s.loadProject(newName)
	if err != nil {
		return err
	}
	for _, r := range rules {
		r.Project = newName
		raw, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding rule %s: %w", r.ID, err)
		}
		path := filepath.Join(newDir, r.FilenameStem()+".yml")
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return fmt.Errorf("relabeling rule %s: %w", r.ID, err)
		}
	}
	return nil
}

func (s *Store) projectDir(project string) string {
	return filepath.Join(s.Root, rulesDir, project)
}

func (s *Store) loadProject(project string) (models.RuleSet, error) {
	dir := s.projectDir(project)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading project %s: %w", project, err)
	}
	var rules models.RuleSet
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading rule file %s: %w", path, err)
		}
		var r models.Rule
		if err := yaml.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("parsing rule file %s: %w", path, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// DecodeRuleFile parses one stored rule record. Sync uses it to read
// revision snapshots that are not on disk.
func DecodeRuleFile(raw []byte) (models.Rule, error) {
	var r models.Rule
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return models.Rule{}, fmt.Errorf("parsing rule record: %w", err)
	}
	return r, nil
}

// RulesPrefix is the tree prefix rule records live under, for revision
// snapshot listings.
const RulesPrefix = rulesDir + "/"
