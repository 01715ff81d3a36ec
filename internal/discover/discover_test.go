package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUserLocationsAllFormats(t *testing.T) {
	locs, err := UserLocations("")
	if err != nil {
		t.Fatalf("UserLocations: %v", err)
	}
	formats := map[string]bool{}
	for _, l := range locs {
		formats[l.Format] = true
		if l.Kind != KindWebUI && l.Path == "" {
			t.Errorf("%s location has no path", l.Format)
		}
	}
	for _, f := range []string{"cursor", "windsurf", "copilot", "claude", "gemini", "antigravity"} {
		if !formats[f] {
			t.Errorf("missing locations for %s", f)
		}
	}
}

func TestUserLocationsDetectsExisting(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".gemini"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, ".gemini", "GEMINI.md"), []byte("hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	locs, err := UserLocations("gemini")
	if err != nil {
		t.Fatalf("UserLocations: %v", err)
	}
	if len(locs) != 1 || !locs[0].Found {
		t.Fatalf("locs = %+v, want found gemini file", locs)
	}
}

func TestUserLocationsUnknownFormat(t *testing.T) {
	if _, err := UserLocations("emacs"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
