// Package sync reconciles the local store with its configured remote.
// Fast-forward when only behind, three-way rule merge when histories
// diverged. Merge warnings are returned, never swallowed.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tjirsch/polyrc/internal/gitx"
	"github.com/tjirsch/polyrc/internal/merge"
	"github.com/tjirsch/polyrc/internal/models"
	"github.com/tjirsch/polyrc/internal/store"
)

// RemoteRef is the remote branch synced against.
const RemoteRef = "origin/main"

// Result reports what a sync did.
type Result struct {
	Committed   bool
	FastForward bool
	Merged      bool
	Warnings    []merge.Warning
}

// PushStore commits any working-copy changes and publishes local history.
func PushStore(ctx context.Context, s *store.Store, message string) (Result, error) {
	var res Result
	if message == "" {
		message = "polyrc: update rules"
	}
	committed, err := s.Commit(ctx, message)
	if err != nil {
		return res, err
	}
	res.Committed = committed
	if err := s.Git.Push(ctx, s.Root); err != nil {
		return res, fmt.Errorf("pushing store: %w", err)
	}
	return res, nil
}

// PullStore fetches the remote and brings the local store up to date.
// Behind only: fast-forward. Diverged: snapshot ancestor, local, and remote
// trees, merge rules per project, write the result, commit a merge
// checkpoint.
func PullStore(ctx context.Context, s *store.Store) (Result, error) {
	var res Result

	// Tolerate fetch failure against an empty or unborn remote; divergence
	// comes out zero and the pull is a no-op.
	if err := s.Git.Fetch(ctx, s.Root); err != nil {
		slog.Debug("fetch failed, treating remote as empty", "error", err)
		return res, nil
	}

	// Park uncommitted edits in a checkpoint so snapshots see them.
	committed, err := s.Commit(ctx, "polyrc: local changes before sync")
	if err != nil {
		return res, err
	}
	res.Committed = committed

	ahead, behind, err := s.Git.Divergence(ctx, s.Root, RemoteRef)
	if err != nil {
		return res, err
	}
	switch {
	case behind == 0:
		return res, nil
	case ahead == 0:
		if err := s.Git.FastForward(ctx, s.Root, RemoteRef); err != nil {
			return res, err
		}
		res.FastForward = true
		return res, nil
	}

	head, err := s.Git.Head(ctx, s.Root)
	if err != nil {
		return res, err
	}
	base, err := s.Git.MergeBase(ctx, s.Root, head, RemoteRef)
	if err != nil {
		return res, err
	}

	ancestor, err := snapshot(ctx, s.Git, s.Root, base)
	if err != nil {
		return res, err
	}
	local, err := snapshot(ctx, s.Git, s.Root, head)
	if err != nil {
		return res, err
	}
	remote, err := snapshot(ctx, s.Git, s.Root, RemoteRef)
	if err != nil {
		return res, err
	}

	// Start a merge commit that keeps the local tree, then overwrite the
	// rule files with the reconciled set before committing.
	if err := s.Git.BeginMerge(ctx, s.Root, RemoteRef); err != nil {
		return res, err
	}

	for _, project := range unionProjects(ancestor, local, remote) {
		merged, warnings := merge.Merge(ancestor[project], local[project], remote[project])
		res.Warnings = append(res.Warnings, warnings...)
		if err := writeProject(s, project, merged); err != nil {
			return res, err
		}
	}

	if _, err := s.Commit(ctx, "polyrc: merge remote changes"); err != nil {
		return res, err
	}
	res.Merged = true
	return res, nil
}

// snapshot loads every rule record in the tree at rev, grouped by project.
func snapshot(ctx context.Context, git gitx.Client, dir, rev string) (map[string]models.RuleSet, error) {
	paths, err := git.ListFiles(ctx, dir, rev, store.RulesPrefix)
	if err != nil {
		return nil, err
	}
	out := map[string]models.RuleSet{}
	for _, p := range paths {
		if !strings.HasSuffix(p, ".yml") {
			continue
		}
		rel := strings.TrimPrefix(p, store.RulesPrefix)
		project, _, ok := strings.Cut(rel, "/")
		if !ok {
			continue
		}
		raw, err := git.ReadFile(ctx, dir, rev, p)
		if err != nil {
			return nil, err
		}
		rule, err := store.DecodeRuleFile(raw)
		if err != nil {
			return nil, fmt.Errorf("at %s %s: %w", rev, p, err)
		}
		out[project] = append(out[project], rule)
	}
	return out, nil
}

// writeProject replaces a project directory's rule files with the merged
// set, preserving each record verbatim.
func writeProject(s *store.Store, project string, rules models.RuleSet) error {
	dir := filepath.Join(s.Root, store.RulesPrefix, project)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing project %s: %w", project, err)
	}
	if len(rules) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("recreating project %s: %w", project, err)
	}
	for _, r := range rules {
		raw, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding merged rule %s: %w", r.ID, err)
		}
		path := filepath.Join(dir, r.FilenameStem()+".yml")
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return fmt.Errorf("writing merged rule %s: %w", r.ID, err)
		}
	}
	return nil
}

func unionProjects(sets ...map[string]models.RuleSet) []string {
	seen := map[string]bool{}
	var names []string
	for _, set := range sets {
		for name := range set {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
