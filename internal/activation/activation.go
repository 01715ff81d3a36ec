// Package activation answers "which rules apply to this file". Glob
// matching uses doublestar semantics so ** spans directories the way
// every supported dialect expects.
package activation

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tjirsch/polyrc/internal/models"
)

// Active returns the rules surfaced for path: every always rule plus every
// glob rule with at least one matching pattern. On-demand and ai_decides
// rules are excluded; they activate by invocation, not by file.
func Active(rules models.RuleSet, path string) models.RuleSet {
	rel := filepath.ToSlash(path)
	var out models.RuleSet
	for _, r := range rules {
		switch r.Activation {
		case models.ActivationAlways:
			out = append(out, r)
		case models.ActivationGlob:
			if Matches(r.Globs, rel) {
				out = append(out, r)
			}
		}
	}
	return out
}

// Matches reports whether any pattern matches path. Bare-name patterns
// like *.ts match in any directory, mirroring how the dialects themselves
// resolve them.
func Matches(globs []string, path string) bool {
	// Accept Windows-separated inputs on every platform; filepath.ToSlash
	// only rewrites the host separator.
	path = strings.ReplaceAll(path, "\\", "/")
	for _, g := range globs {
		g = strings.ReplaceAll(g, "\\", "/")
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return true
		}
		// A pattern without a slash constrains only the base name.
		if !strings.Contains(g, "/") {
			if ok, err := doublestar.Match(g, pathBase(path)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func pathBase(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
