package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tjirsch/polyrc/internal/gitx"
	"github.com/tjirsch/polyrc/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Init(context.Background(), t.TempDir(), "", gitx.NewMemClient())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	ids := 0
	s.newID = func() string { ids++; return fmt.Sprintf("id-%d", ids) }
	clock := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	s.now = func() time.Time { clock = clock.Add(time.Minute); return clock }
	return s
}

func TestOpenRequiresManifest(t *testing.T) {
	_, err := Open(t.TempDir(), gitx.NewMemClient())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Open = %v, want ErrNotFound", err)
	}
}

func TestOpenMigratesLegacyUserDir(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(context.Background(), root, "", gitx.NewMemClient()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	legacy := filepath.Join(root, "rules", "_user")
	if err := os.MkdirAll(legacy, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(legacy, "a.yml"), []byte("id: a\nscope: user\nactivation: always\ncontent: hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(root, gitx.NewMemClient())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := os.Stat(legacy); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("legacy _user directory should be gone")
	}
	rules, err := s.GetAll(UserProject, "", "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "a" {
		t.Fatalf("migrated rules = %+v", rules)
	}
}

func TestPutAssignsIdentity(t *testing.T) {
	s := newTestStore(t)
	stored, err := s.Put(models.Rule{
		Scope:      models.ScopeProject,
		Activation: models.ActivationAlways,
		Name:       "style",
		Content:    "Use tabs.",
		Project:    "demo",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if stored.ID == "" || stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Fatalf("identity not assigned: %+v", stored)
	}
	if stored.StoreVersion != models.StoreVersion {
		t.Fatalf("StoreVersion = %q", stored.StoreVersion)
	}
	if _, err := os.Stat(filepath.Join(s.Root, "rules", "demo", "style.yml")); err != nil {
		t.Fatalf("rule file missing: %v", err)
	}
}

func TestPutDefaultsToUserProject(t *testing.T) {
	s := newTestStore(t)
	stored, err := s.Put(models.Rule{
		Scope:      models.ScopeUser,
		Activation: models.ActivationAlways,
		Content:    "Be brief.",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if stored.Project != UserProject {
		t.Fatalf("Project = %q, want %q", stored.Project, UserProject)
	}
}

func TestPutUnchangedLeavesFileIdentical(t *testing.T) {
	s := newTestStore(t)
	rule := models.Rule{
		Scope:      models.ScopeProject,
		Activation: models.ActivationAlways,
		Name:       "style",
		Content:    "Use tabs.",
		Project:    "demo",
	}
	first, err := s.Put(rule)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	path := filepath.Join(s.Root, "rules", "demo", "style.yml")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	second, err := s.Put(rule)
	if err != nil {
		t.Fatalf("re-Put: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("id changed across re-put: %s vs %s", second.ID, first.ID)
	}
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatal("updated_at moved for an unchanged rule")
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("unchanged re-put rewrote the file differently")
	}
}

func TestPutChangeBumpsUpdatedAt(t *testing.T) {
	s := newTestStore(t)
	rule := models.Rule{
		Scope:      models.ScopeProject,
		Activation: models.ActivationAlways,
		Name:       "style",
		Content:    "Use tabs.",
		Project:    "demo",
	}
	first, err := s.Put(rule)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	rule.Content = "Use spaces."
	second, err := s.Put(rule)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("name match should preserve id")
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatal("created_at must never move")
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatal("updated_at should move on a material change")
	}
}

func TestPutRenameMovesFile(t *testing.T) {
	s := newTestStore(t)
	first, err := s.Put(models.Rule{
		Scope:      models.ScopeProject,
		Activation: models.ActivationAlways,
		Name:       "old name",
		Content:    "x",
		Project:    "demo",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	renamed := first
	renamed.Name = "new name"
	if _, err := s.Put(renamed); err != nil {
		t.Fatalf("Put: %v", err)
	}
	dir := filepath.Join(s.Root, "rules", "demo")
	if _, err := os.Stat(filepath.Join(dir, "old-name.yml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("old stem should be removed after rename")
	}
	if _, err := os.Stat(filepath.Join(dir, "new-name.yml")); err != nil {
		t.Fatalf("new stem missing: %v", err)
	}
}

func TestPutRejectsInvalidRule(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Put(models.Rule{
		Scope:      models.ScopePath,
		Activation: models.ActivationAlways,
		Content:    "x",
	})
	var invalid *models.InvalidRuleError
	if !errors.As(err, &invalid) {
		t.Fatalf("Put = %v, want InvalidRuleError", err)
	}
}

func TestGetAllFilters(t *testing.T) {
	s := newTestStore(t)
	seed := []models.Rule{
		{Scope: models.ScopeUser, Activation: models.ActivationAlways, Name: "global", Content: "a", SourceFormat: "claude"},
		{Scope: models.ScopeProject, Activation: models.ActivationAlways, Name: "proj", Content: "b", Project: "demo", SourceFormat: "cursor"},
		{Scope: models.ScopePath, Activation: models.ActivationGlob, Globs: []string{"*.go"}, Name: "go", Content: "c", Project: "demo", SourceFormat: "cursor"},
	}
	for _, r := range seed {
		if _, err := s.Put(r); err != nil {
			t.Fatalf("Put %s: %v", r.Name, err)
		}
	}

	all, err := s.GetAll("", "", "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("GetAll() = %d rules, want 3", len(all))
	}

	demo, err := s.GetAll("demo", "", "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(demo) != 2 {
		t.Fatalf("GetAll(demo) = %d rules, want 2", len(demo))
	}

	paths, err := s.GetAll("demo", models.ScopePath, "cursor")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(paths) != 1 || paths[0].Name != "go" {
		t.Fatalf("GetAll(demo, path, cursor) = %+v", paths)
	}
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	kept, err := s.Put(models.Rule{Scope: models.ScopeProject, Activation: models.ActivationAlways, Name: "keep", Content: "a", Project: "demo"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Put(models.Rule{Scope: models.ScopeProject, Activation: models.ActivationAlways, Name: "drop", Content: "b", Project: "demo"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	removed, err := s.Prune("demo", map[string]bool{kept.ID: true})
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 1 || removed[0].Name != "drop" {
		t.Fatalf("Prune removed %+v", removed)
	}
	left, err := s.GetAll("demo", "", "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(left) != 1 || left[0].Name != "keep" {
		t.Fatalf("remaining = %+v", left)
	}
}

func TestRenameProject(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Put(models.Rule{Scope: models.ScopeProject, Activation: models.ActivationAlways, Name: "r", Content: "x", Project: "old"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := s.RenameProject("missing", "anything"); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("rename missing = %v, want ErrProjectNotFound", err)
	}
	if err := s.RenameProject("old", "old"); !errors.Is(err, ErrProjectExists) {
		t.Fatalf("rename onto self = %v, want ErrProjectExists", err)
	}
	if err := s.RenameProject(UserProject, "elsewhere"); err == nil {
		t.Fatal("renaming the reserved user project should fail")
	}

	if err := s.RenameProject("old", "new"); err != nil {
		t.Fatalf("RenameProject: %v", err)
	}
	projects, err := s.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0] != "new" {
		t.Fatalf("ListProjects = %v", projects)
	}
	rules, err := s.GetAll("new", "", "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(rules) != 1 || rules[0].Project != "new" {
		t.Fatalf("rules after rename = %+v, want project relabeled to new", rules)
	}
}

func TestCommitNoopWhenClean(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Put(models.Rule{Scope: models.ScopeUser, Activation: models.ActivationAlways, Name: "r", Content: "x"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	made, err := s.Commit(ctx, "first")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !made {
		t.Fatal("dirty tree should commit")
	}
	made, err = s.Commit(ctx, "second")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if made {
		t.Fatal("clean tree should not commit")
	}
}
