package gitx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMemClientCommitAndHistory(t *testing.T) {
	ctx := context.Background()
	c := NewMemClient()
	dir := t.TempDir()

	if err := c.Init(ctx, dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	write(t, dir, "rules/demo/a.yml", "id: a\n")
	if err := c.Stage(ctx, dir); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	made, err := c.Commit(ctx, dir, "add a")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !made {
		t.Fatal("expected first commit to be recorded")
	}

	// Same tree again: nothing to commit.
	made, err = c.Commit(ctx, dir, "no change")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if made {
		t.Fatal("expected clean tree to commit nothing")
	}

	head, err := c.Head(ctx, dir)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	files, err := c.ListFiles(ctx, dir, head, "rules/")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0] != "rules/demo/a.yml" {
		t.Fatalf("ListFiles = %v", files)
	}
	content, err := c.ReadFile(ctx, dir, head, "rules/demo/a.yml")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "id: a\n" {
		t.Fatalf("ReadFile = %q", content)
	}
}

func TestMemClientDivergence(t *testing.T) {
	ctx := context.Background()
	c := NewMemClient()
	dir := t.TempDir()
	if err := c.Init(ctx, dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	write(t, dir, "rules/demo/a.yml", "id: a\n")
	if _, err := c.Commit(ctx, dir, "base"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	base, _ := c.Head(ctx, dir)
	write(t, dir, "rules/demo/b.yml", "id: b\n")
	if _, err := c.Commit(ctx, dir, "local"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// Remote moved independently from the same base.
	c.SetRemoteState("origin/main", map[string]string{
		"rules/demo/a.yml": "id: a\ncontent: changed\n",
	}, base)

	ahead, behind, err := c.Divergence(ctx, dir, "origin/main")
	if err != nil {
		t.Fatalf("Divergence: %v", err)
	}
	if ahead != 1 || behind != 1 {
		t.Fatalf("Divergence = %d ahead, %d behind; want 1, 1", ahead, behind)
	}

	got, err := c.MergeBase(ctx, dir, "c2", c.RemoteRefs["origin/main"])
	if err != nil {
		t.Fatalf("MergeBase: %v", err)
	}
	if got != base {
		t.Fatalf("MergeBase = %s, want %s", got, base)
	}
}

func TestMemClientDivergenceNoRemote(t *testing.T) {
	ctx := context.Background()
	c := NewMemClient()
	ahead, behind, err := c.Divergence(ctx, t.TempDir(), "origin/main")
	if err != nil {
		t.Fatalf("Divergence: %v", err)
	}
	if ahead != 0 || behind != 0 {
		t.Fatalf("Divergence = %d, %d; want clean when remote ref is absent", ahead, behind)
	}
}

func TestMemClientFailWith(t *testing.T) {
	ctx := context.Background()
	c := NewMemClient()
	lockErr := &LockError{Dir: "/tmp/store", Err: errors.New("index.lock exists")}
	c.FailWith = lockErr

	err := c.Stage(ctx, "/tmp/store")
	var le *LockError
	if !errors.As(err, &le) {
		t.Fatalf("Stage error = %v, want LockError", err)
	}
}

func write(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
