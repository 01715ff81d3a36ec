// Package formats implements the per-dialect reader/writer adapters. Every
// adapter translates between one tool's native on-disk layout and the
// polyrc IR; adapters interoperate only through models.RuleSet, never
// through each other.
package formats

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tjirsch/polyrc/internal/models"
)

// Adapter is the contract every dialect satisfies. Adding dialect N+1 means
// implementing exactly one Adapter — never pairwise converters.
type Adapter interface {
	// Name is the canonical format identifier (e.g. "cursor").
	Name() string

	// Description is a one-line summary of the dialect's layout.
	Description() string

	// Capabilities reports what the dialect can represent natively and the
	// defaults used for concepts it lacks.
	Capabilities() Capabilities

	// Read scans the dialect's known locations beneath root and maps native
	// metadata onto Rule fields. An empty scope means no restriction.
	Read(root string, scope models.Scope) (models.RuleSet, error)

	// Write renders the set into the dialect's native layout under root.
	// Writing the same set twice into a clean target is byte-identical.
	Write(rules models.RuleSet, root string) error
}

// Capabilities is the explicit per-dialect capability/default table. It is
// data, not behavior: adapters consult it and tests audit it independently
// of parsing logic.
type Capabilities struct {
	// Scopes the dialect can represent natively.
	Scopes []models.Scope

	// Activations the dialect can represent natively.
	Activations []models.Activation

	// Globs reports whether the dialect carries path patterns.
	Globs bool

	// Descriptions reports whether the dialect carries a description field.
	Descriptions bool

	// DefaultScope is assigned on read when the dialect has no scope concept.
	DefaultScope models.Scope

	// DefaultActivation is assigned on read when the dialect has no
	// activation concept.
	DefaultActivation models.Activation
}

// Supports reports whether the dialect can natively represent the given
// scope and activation pair.
func (c Capabilities) Supports(scope models.Scope, activation models.Activation) bool {
	return containsScope(c.Scopes, scope) && containsActivation(c.Activations, activation)
}

func containsScope(list []models.Scope, s models.Scope) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsActivation(list []models.Activation, a models.Activation) bool {
	for _, v := range list {
		if v == a {
			return true
		}
	}
	return false
}

// UnreadableSourceError reports a read root that does not exist and has no
// defined default.
type UnreadableSourceError struct {
	Format string
	Path   string
}

func (e *UnreadableSourceError) Error() string {
	return fmt.Sprintf("%s: unreadable source %s", e.Format, e.Path)
}

// MalformedMetadataError reports native metadata that cannot be parsed into
// a valid Rule.
type MalformedMetadataError struct {
	Format string
	Path   string
	Err    error
}

func (e *MalformedMetadataError) Error() string {
	return fmt.Sprintf("%s: malformed metadata in %s: %v", e.Format, e.Path, e.Err)
}

func (e *MalformedMetadataError) Unwrap() error { return e.Err }

// WriteError reports a failed write. Files written before the failure are
// left in place (writes are idempotent, so re-running is safe) and listed
// so the caller can report partial progress.
type WriteError struct {
	Format  string
	Path    string
	Written []string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: cannot write %s: %v (%d file(s) written before failure)",
		e.Format, e.Path, e.Err, len(e.Written))
}

func (e *WriteError) Unwrap() error { return e.Err }

// registry holds all adapters in stable order. Aliases resolve the names
// users actually type.
var adapters = []Adapter{
	&Cursor{},
	&Windsurf{},
	&Copilot{},
	&Claude{},
	&Gemini{},
	&Antigravity{},
}

var aliases = map[string]string{
	"github-copilot":     "copilot",
	"ghcopilot":          "copilot",
	"claude-code":        "claude",
	"gemini-cli":         "gemini",
	"google-antigravity": "antigravity",
}

// All returns every registered adapter in stable order.
func All() []Adapter {
	out := make([]Adapter, len(adapters))
	copy(out, adapters)
	return out
}

// Lookup resolves a format name or alias to its adapter.
func Lookup(name string) (Adapter, error) {
	key := strings.ToLower(name)
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	for _, a := range adapters {
		if a.Name() == key {
			return a, nil
		}
	}
	return nil, fmt.Errorf("unknown format %q: run `polyrc list-formats` to see valid formats", name)
}

// checkRoot returns an UnreadableSourceError when the read root itself is
// missing. Missing sublocations inside an existing root default to an empty
// set, matching how users incrementally adopt each tool.
func checkRoot(format, root string) error {
	if _, err := os.Stat(root); err != nil {
		return &UnreadableSourceError{Format: format, Path: root}
	}
	return nil
}

// mdFiles lists the files directly inside dir carrying the extension,
// sorted by name. A missing dir is an empty list.
func mdFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// stemOf strips dir and extension from a rule file path.
func stemOf(path, ext string) string {
	return strings.TrimSuffix(filepath.Base(path), ext)
}

// fileWriter tracks successful writes so WriteError can report partial
// progress. Multi-file writes are not transactional.
type fileWriter struct {
	format  string
	written []string
}

func (w *fileWriter) mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Format: w.format, Path: dir, Written: w.written, Err: err}
	}
	return nil
}

func (w *fileWriter) write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Format: w.format, Path: path, Written: w.written, Err: err}
	}
	w.written = append(w.written, path)
	return nil
}

// joinRules concatenates rules into one markdown document for single-file
// dialects, in RuleSet order. A single rule passes through unchanged; more
// than one gets a section heading per rule.
func joinRules(rules models.RuleSet) string {
	if len(rules) == 1 {
		return strings.TrimRight(rules[0].Content, "\n") + "\n"
	}
	sections := make([]string, 0, len(rules))
	for _, r := range rules {
		header := r.Name
		if header == "" {
			header = "Rule"
		}
		sections = append(sections, fmt.Sprintf("## %s\n\n%s\n", header, strings.TrimRight(r.Content, "\n")))
	}
	return strings.Join(sections, "\n")
}

// defaultDescription supplies the documented recoverable default for
// ai_decides rules whose dialect carries no description: the first
// non-empty content line, clipped.
func defaultDescription(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line == "" {
			continue
		}
		if len(line) > 120 {
			return line[:120]
		}
		return line
	}
	return "(no description)"
}
