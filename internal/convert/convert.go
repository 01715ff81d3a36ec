// Package convert composes adapters, the store, and sync into the three
// user-visible operations: direct conversion, push into the store, and
// pull out of it.
package convert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tjirsch/polyrc/internal/formats"
	"github.com/tjirsch/polyrc/internal/models"
	"github.com/tjirsch/polyrc/internal/store"
)

// Preview describes what a dry run would have written.
type Preview struct {
	Format string
	Root   string
	Rules  models.RuleSet
}

// Direct reads rules in one dialect and writes them in another. No store
// involvement. With dryRun the write is skipped and a Preview returned.
func Direct(from, to formats.Adapter, input, output string, scope models.Scope, dryRun bool) (*Preview, error) {
	rules, err := from.Read(input, scope)
	if err != nil {
		return nil, err
	}
	warnLossy(to, rules)
	if dryRun {
		return &Preview{Format: to.Name(), Root: output, Rules: rules}, nil
	}
	if err := to.Write(rules, output); err != nil {
		return nil, err
	}
	slog.Info("converted", "from", from.Name(), "to", to.Name(), "rules", len(rules))
	return nil, nil
}

// PushResult reports what a push stored.
type PushResult struct {
	Stored  models.RuleSet
	Pruned  models.RuleSet
	Preview *Preview
}

// Push reads a dialect tree and upserts every rule into the store under
// project, then commits. With prune, store rules of that project absent
// from the source are removed. With dryRun nothing is written.
func Push(ctx context.Context, s *store.Store, from formats.Adapter, input, project string, scope models.Scope, prune, dryRun bool) (PushResult, error) {
	var res PushResult
	rules, err := from.Read(input, scope)
	if err != nil {
		return res, err
	}
	if dryRun {
		res.Preview = &Preview{Format: from.Name(), Root: input, Rules: rules}
		return res, nil
	}

	keep := map[string]bool{}
	for _, r := range rules {
		r.Project = project
		r.SourceFormat = from.Name()
		stored, err := s.Put(r)
		if err != nil {
			return res, err
		}
		keep[stored.ID] = true
		res.Stored = append(res.Stored, stored)
	}
	if prune {
		removed, err := s.Prune(project, keep)
		if err != nil {
			return res, err
		}
		res.Pruned = removed
	}

	msg := fmt.Sprintf("polyrc: push %d rules from %s", len(res.Stored), from.Name())
	if _, err := s.Commit(ctx, msg); err != nil {
		return res, err
	}
	return res, nil
}

// Pull materializes stored rules into a dialect tree. Filters are
// conjunctive; empty values mean no restriction.
func Pull(s *store.Store, to formats.Adapter, output, project string, scope models.Scope, format string, dryRun bool) (*Preview, error) {
	rules, err := s.GetAll(project, scope, format)
	if err != nil {
		return nil, err
	}
	warnLossy(to, rules)
	if dryRun {
		return &Preview{Format: to.Name(), Root: output, Rules: rules}, nil
	}
	if err := to.Write(rules, output); err != nil {
		return nil, err
	}
	slog.Info("pulled", "format", to.Name(), "project", project, "rules", len(rules))
	return nil, nil
}

// ViaStore pushes from one dialect and pulls into another in a single
// invocation, so the store round-trip preserves fields the target dialect
// cannot represent natively.
func ViaStore(ctx context.Context, s *store.Store, from, to formats.Adapter, input, output, project string, scope models.Scope, prune, dryRun bool) (*Preview, error) {
	if _, err := Push(ctx, s, from, input, project, scope, prune, dryRun); err != nil {
		return nil, err
	}
	return Pull(s, to, output, project, scope, "", dryRun)
}

// warnLossy logs which rules the target dialect cannot represent natively.
// Conversion proceeds; the adapter applies its documented defaults.
func warnLossy(to formats.Adapter, rules models.RuleSet) {
	caps := to.Capabilities()
	for _, r := range rules {
		if !caps.Supports(r.Scope, r.Activation) {
			slog.Warn("target dialect cannot represent rule natively",
				"format", to.Name(), "rule", r.FilenameStem(),
				"scope", r.Scope, "activation", r.Activation)
		}
	}
}
