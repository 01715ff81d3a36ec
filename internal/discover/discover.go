// Package discover reports where each dialect keeps its user-level
// configuration on the current machine, and whether anything is there.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Kind says how a location is consulted.
type Kind string

const (
	KindFile  Kind = "file"   // one config file
	KindDir   Kind = "dir"    // directory of config files
	KindWebUI Kind = "web-ui" // stored server-side, no local file
)

// Location is one candidate user-level config location for a dialect.
type Location struct {
	Format string `json:"format"`
	Kind   Kind   `json:"kind"`
	Path   string `json:"path,omitempty"`
	Note   string `json:"note,omitempty"`
	Found  bool   `json:"found"`
}

// UserLocations returns the canonical user-level locations for the named
// format, or for every format when name is empty, with existence checked.
func UserLocations(name string) ([]Location, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	table := map[string][]Location{
		"claude": {
			{Kind: KindFile, Path: filepath.Join(home, ".claude", "CLAUDE.md")},
			{Kind: KindDir, Path: filepath.Join(home, ".claude", "rules")},
		},
		"gemini": {
			{Kind: KindFile, Path: filepath.Join(home, ".gemini", "GEMINI.md")},
		},
		"antigravity": {
			{Kind: KindDir, Path: filepath.Join(home, ".gemini", "antigravity", "rules")},
		},
		"windsurf": {
			{Kind: KindFile, Path: filepath.Join(home, ".codeium", "windsurf", "memories", "global_rules.md")},
		},
		"cursor": {
			{Kind: KindFile, Path: cursorSettingsPath(home),
				Note: "user rules embedded in JSON, edit via Cursor Settings UI"},
		},
		"copilot": {
			{Kind: KindWebUI, Note: "github.com > Settings > Copilot > Personal instructions"},
		},
	}

	order := []string{"cursor", "windsurf", "copilot", "claude", "gemini", "antigravity"}
	if name != "" {
		if _, ok := table[name]; !ok {
			return nil, fmt.Errorf("unknown format %q", name)
		}
		order = []string{name}
	}

	var out []Location
	for _, f := range order {
		for _, loc := range table[f] {
			loc.Format = f
			if loc.Path != "" {
				if _, err := os.Stat(loc.Path); err == nil {
					loc.Found = true
				}
			}
			out = append(out, loc)
		}
	}
	return out, nil
}

// cursorSettingsPath follows the VS Code per-OS settings convention.
func cursorSettingsPath(home string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Cursor", "User", "settings.json")
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, "Cursor", "User", "settings.json")
		}
		fallthrough
	default:
		return filepath.Join(home, ".config", "Cursor", "User", "settings.json")
	}
}
