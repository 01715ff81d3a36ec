package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tjirsch/polyrc/internal/formats"
	"github.com/tjirsch/polyrc/internal/gitx"
	"github.com/tjirsch/polyrc/internal/models"
	"github.com/tjirsch/polyrc/internal/store"
)

func writeCursorRule(t *testing.T, root, stem, body string) {
	t.Helper()
	dir := filepath.Join(root, ".cursor", "rules")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "---\nalwaysApply: true\n---\n\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(dir, stem+".mdc"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func adapter(t *testing.T, name string) formats.Adapter {
	t.Helper()
	a, err := formats.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", name, err)
	}
	return a
}

func TestDirectConversion(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeCursorRule(t, in, "style", "Prefer small functions.")

	preview, err := Direct(adapter(t, "cursor"), adapter(t, "gemini"), in, out, "", false)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	if preview != nil {
		t.Fatal("non-dry run should not return a preview")
	}
	got, err := os.ReadFile(filepath.Join(out, "GEMINI.md"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(got) != "Prefer small functions.\n" {
		t.Fatalf("GEMINI.md = %q", got)
	}
}

func TestDirectDryRunWritesNothing(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeCursorRule(t, in, "style", "Prefer small functions.")

	preview, err := Direct(adapter(t, "cursor"), adapter(t, "gemini"), in, out, "", true)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	if preview == nil || len(preview.Rules) != 1 || preview.Format != "gemini" {
		t.Fatalf("preview = %+v", preview)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run wrote files: %v", entries)
	}
}

func TestPushPullRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := store.Init(ctx, t.TempDir(), "", gitx.NewMemClient())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	in := t.TempDir()
	writeCursorRule(t, in, "style", "Prefer small functions.")

	res, err := Push(ctx, s, adapter(t, "cursor"), in, "demo", "", false, false)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(res.Stored) != 1 {
		t.Fatalf("Stored = %+v", res.Stored)
	}
	if res.Stored[0].Project != "demo" || res.Stored[0].SourceFormat != "cursor" {
		t.Fatalf("provenance = %+v", res.Stored[0])
	}

	out := t.TempDir()
	if _, err := Pull(s, adapter(t, "gemini"), out, "demo", "", "", false); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(out, "GEMINI.md"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(got) != "Prefer small functions.\n" {
		t.Fatalf("GEMINI.md = %q", got)
	}
}

func TestPushPruneRemovesAbsentRules(t *testing.T) {
	ctx := context.Background()
	s, err := store.Init(ctx, t.TempDir(), "", gitx.NewMemClient())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := s.Put(models.Rule{
		Scope: models.ScopeProject, Activation: models.ActivationAlways,
		Name: "stale", Content: "gone from source", Project: "demo",
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	in := t.TempDir()
	writeCursorRule(t, in, "style", "Prefer small functions.")

	// Without --prune the stale rule survives.
	if _, err := Push(ctx, s, adapter(t, "cursor"), in, "demo", "", false, false); err != nil {
		t.Fatalf("Push: %v", err)
	}
	rules, err := s.GetAll("demo", "", "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules after plain push = %d, want 2", len(rules))
	}

	res, err := Push(ctx, s, adapter(t, "cursor"), in, "demo", "", true, false)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(res.Pruned) != 1 || res.Pruned[0].Name != "stale" {
		t.Fatalf("Pruned = %+v", res.Pruned)
	}
	rules, err = s.GetAll("demo", "", "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(rules) != 1 || rules[0].Name != "style" {
		t.Fatalf("rules after prune = %+v", rules)
	}
}

func TestPushDryRun(t *testing.T) {
	ctx := context.Background()
	s, err := store.Init(ctx, t.TempDir(), "", gitx.NewMemClient())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	in := t.TempDir()
	writeCursorRule(t, in, "style", "x")

	res, err := Push(ctx, s, adapter(t, "cursor"), in, "demo", "", false, true)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if res.Preview == nil || len(res.Preview.Rules) != 1 {
		t.Fatalf("preview = %+v", res.Preview)
	}
	rules, err := s.GetAll("demo", "", "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("dry run stored rules: %+v", rules)
	}
}

func TestViaStore(t *testing.T) {
	ctx := context.Background()
	s, err := store.Init(ctx, t.TempDir(), "", gitx.NewMemClient())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	in := t.TempDir()
	out := t.TempDir()
	writeCursorRule(t, in, "style", "Prefer small functions.")

	if _, err := ViaStore(ctx, s, adapter(t, "cursor"), adapter(t, "gemini"), in, out, "demo", "", false, false); err != nil {
		t.Fatalf("ViaStore: %v", err)
	}
	if _, err := os.ReadFile(filepath.Join(out, "GEMINI.md")); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	rules, err := s.GetAll("demo", "", "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("store rules = %+v", rules)
	}
}
