package formats

import (
	"testing"

	"github.com/tjirsch/polyrc/internal/models"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "cursor", want: "cursor"},
		{input: "Claude", want: "claude"},
		{input: "claude-code", want: "claude"},
		{input: "ghcopilot", want: "copilot"},
		{input: "github-copilot", want: "copilot"},
		{input: "gemini-cli", want: "gemini"},
		{input: "google-antigravity", want: "antigravity"},
		{input: "vim", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a, err := Lookup(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && a.Name() != tt.want {
				t.Errorf("Lookup(%q).Name() = %q, want %q", tt.input, a.Name(), tt.want)
			}
		})
	}
}

func TestAllStableOrder(t *testing.T) {
	want := []string{"cursor", "windsurf", "copilot", "claude", "gemini", "antigravity"}
	got := All()
	if len(got) != len(want) {
		t.Fatalf("All() returned %d adapters, want %d", len(got), len(want))
	}
	for i, a := range got {
		if a.Name() != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, a.Name(), want[i])
		}
	}
}

// The capability table is data; audit its internal consistency without
// touching any parsing logic.
func TestCapabilityTable(t *testing.T) {
	for _, a := range All() {
		caps := a.Capabilities()
		t.Run(a.Name(), func(t *testing.T) {
			if len(caps.Scopes) == 0 || len(caps.Activations) == 0 {
				t.Fatal("capability table must list at least one scope and activation")
			}
			if !containsScope(caps.Scopes, caps.DefaultScope) {
				t.Errorf("default scope %q not among supported scopes", caps.DefaultScope)
			}
			if !containsActivation(caps.Activations, caps.DefaultActivation) {
				t.Errorf("default activation %q not among supported activations", caps.DefaultActivation)
			}
			if containsActivation(caps.Activations, models.ActivationGlob) && !caps.Globs {
				t.Error("dialect claims glob activation but no glob capability")
			}
		})
	}
}
