// Package models defines the polyrc intermediate representation: the
// canonical Rule record every dialect translates through, plus its
// enumerated metadata and validation.
package models

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode"
)

// Scope is the applicability breadth of a rule.
type Scope string

const (
	ScopeUser    Scope = "user"    // applies across all projects for this user
	ScopeProject Scope = "project" // applies within one project
	ScopePath    Scope = "path"    // applies to paths matching Globs
)

// Activation is the condition under which a rule is surfaced to an agent.
type Activation string

const (
	ActivationAlways    Activation = "always"     // injected into every context
	ActivationGlob      Activation = "glob"       // injected when an open file matches Globs
	ActivationOnDemand  Activation = "on_demand"  // user must invoke explicitly
	ActivationAIDecides Activation = "ai_decides" // agent decides based on Description
)

// ParseScope maps a user-supplied string to a Scope.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(s) {
	case "user":
		return ScopeUser, nil
	case "project":
		return ScopeProject, nil
	case "path":
		return ScopePath, nil
	}
	return "", fmt.Errorf("unknown scope %q: expected user, project, or path", s)
}

// ParseActivation maps a user-supplied string to an Activation.
func ParseActivation(s string) (Activation, error) {
	switch strings.ToLower(s) {
	case "always":
		return ActivationAlways, nil
	case "glob":
		return ActivationGlob, nil
	case "on_demand", "on-demand":
		return ActivationOnDemand, nil
	case "ai_decides", "ai-decides":
		return ActivationAIDecides, nil
	}
	return "", fmt.Errorf("unknown activation %q: expected always, glob, on_demand, or ai_decides", s)
}

// StoreVersion is the schema version tag attached to records at write time.
const StoreVersion = "1"

// Rule is one logical instruction unit in the interlingua.
// Content is an opaque text blob: polyrc transports it byte-for-byte and
// never parses or transcodes it.
type Rule struct {
	// ID is assigned once on first persistence and never reassigned.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	Scope      Scope      `json:"scope" yaml:"scope"`
	Activation Activation `json:"activation" yaml:"activation"`

	// Globs are path patterns; meaningful when Activation is glob and
	// required when Scope is path.
	Globs []string `json:"globs,omitempty" yaml:"globs,omitempty"`

	// Name is a human-readable label, used as a filename hint by adapters
	// that need one file per rule.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Description is the trigger hint when Activation is ai_decides.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Content string `json:"content" yaml:"content"`

	// Project is the logical project name; the store's reserved group name
	// is used for user-global rules.
	Project string `json:"project,omitempty" yaml:"project,omitempty"`

	// SourceFormat records the dialect the rule was last read from.
	// Provenance only — never semantically load-bearing.
	SourceFormat string `json:"source_format,omitempty" yaml:"source_format,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`

	// StoreVersion is set at write time to allow future migration.
	StoreVersion string `json:"store_version,omitempty" yaml:"store_version,omitempty"`
}

// Equivalent reports whether two rules carry the same user-visible fields,
// ignoring identity, provenance, and timestamps. The store uses it to decide
// whether a re-put actually changed anything.
func (r Rule) Equivalent(other Rule) bool {
	if r.Scope != other.Scope || r.Activation != other.Activation ||
		r.Name != other.Name || r.Description != other.Description ||
		r.Content != other.Content {
		return false
	}
	if len(r.Globs) != len(other.Globs) {
		return false
	}
	for i := range r.Globs {
		if r.Globs[i] != other.Globs[i] {
			return false
		}
	}
	return true
}

// FilenameStem returns a stable filename stem for multi-file writers:
// the sanitized lowercase name, or a hash of the content when unnamed.
func (r Rule) FilenameStem() string {
	if r.Name != "" {
		return sanitizeFilename(r.Name)
	}
	return fmt.Sprintf("rule_%08x", contentHash([]byte(r.Content)))
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case unicode.IsLetter(c) || unicode.IsDigit(c) || c == '-' || c == '_':
			b.WriteRune(c)
		case c == ' ':
			b.WriteRune('-')
		default:
			b.WriteRune('_')
		}
	}
	return strings.ToLower(b.String())
}

func contentHash(data []byte) uint32 {
	h := fnv.New32a()
	h.Write(data)
	return h.Sum32()
}

// RuleSet is an ordered collection of rules. Ordering is preserved
// end-to-end through a conversion; it only affects adapter output order.
type RuleSet []Rule

// FilterScope returns the rules matching scope. An empty scope means no
// restriction.
func (rs RuleSet) FilterScope(scope Scope) RuleSet {
	if scope == "" {
		return rs
	}
	out := make(RuleSet, 0, len(rs))
	for _, r := range rs {
		if r.Scope == scope {
			out = append(out, r)
		}
	}
	return out
}

// FilterFormat returns the rules whose SourceFormat matches. An empty
// format means no restriction.
func (rs RuleSet) FilterFormat(format string) RuleSet {
	if format == "" {
		return rs
	}
	out := make(RuleSet, 0, len(rs))
	for _, r := range rs {
		if r.SourceFormat == format {
			out = append(out, r)
		}
	}
	return out
}

// ByID returns the rule with the given id, or nil.
func (rs RuleSet) ByID(id string) *Rule {
	for i := range rs {
		if rs[i].ID == id {
			return &rs[i]
		}
	}
	return nil
}
