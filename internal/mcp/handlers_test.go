package mcp

import (
	"context"
	"strings"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tjirsch/polyrc/internal/gitx"
	"github.com/tjirsch/polyrc/internal/models"
	"github.com/tjirsch/polyrc/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Init(context.Background(), t.TempDir(), "", gitx.NewMemClient())
	if err != nil {
		t.Fatalf("store.Init: %v", err)
	}
	seed := []models.Rule{
		{Scope: models.ScopeUser, Activation: models.ActivationAlways, Name: "tone", Content: "Be direct."},
		{Scope: models.ScopeProject, Activation: models.ActivationAlways, Name: "style", Content: "Use tabs.", Project: "demo", SourceFormat: "cursor"},
		{Scope: models.ScopePath, Activation: models.ActivationGlob, Globs: []string{"**/*.go"}, Name: "go-style", Content: "Wrap errors.", Project: "demo", SourceFormat: "cursor"},
	}
	for _, r := range seed {
		if _, err := st.Put(r); err != nil {
			t.Fatalf("Put %s: %v", r.Name, err)
		}
	}

	server, err := NewServer(&Config{Name: "polyrc", Version: "test", Store: st})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return server
}

func TestHandleRules(t *testing.T) {
	server := testServer(t)
	ctx := context.Background()
	req := &sdk.CallToolRequest{}

	_, out, err := server.handleRules(ctx, req, RulesInput{})
	if err != nil {
		t.Fatalf("handleRules: %v", err)
	}
	if out.Count != 3 {
		t.Fatalf("Count = %d, want 3", out.Count)
	}

	_, out, err = server.handleRules(ctx, req, RulesInput{Project: "demo", Scope: "path"})
	if err != nil {
		t.Fatalf("handleRules: %v", err)
	}
	if out.Count != 1 || out.Rules[0].Name != "go-style" {
		t.Fatalf("filtered rules = %+v", out.Rules)
	}

	if _, _, err := server.handleRules(ctx, req, RulesInput{Scope: "galaxy"}); err == nil {
		t.Fatal("invalid scope should error")
	}
}

func TestHandleProjects(t *testing.T) {
	server := testServer(t)
	_, out, err := server.handleProjects(context.Background(), &sdk.CallToolRequest{}, ProjectsInput{})
	if err != nil {
		t.Fatalf("handleProjects: %v", err)
	}
	if len(out.Projects) != 2 || out.Projects[0] != "demo" || out.Projects[1] != "user" {
		t.Fatalf("Projects = %v", out.Projects)
	}
}

func TestHandleActive(t *testing.T) {
	server := testServer(t)
	ctx := context.Background()
	req := &sdk.CallToolRequest{}

	_, out, err := server.handleActive(ctx, req, ActiveInput{File: "internal/app/main.go", Project: "demo"})
	if err != nil {
		t.Fatalf("handleActive: %v", err)
	}
	names := map[string]bool{}
	for _, r := range out.Active {
		names[r.Name] = true
	}
	// Always rules from both demo and user apply, plus the matching glob rule.
	if out.Count != 3 || !names["tone"] || !names["style"] || !names["go-style"] {
		t.Fatalf("Active = %+v", out.Active)
	}

	_, out, err = server.handleActive(ctx, req, ActiveInput{File: "README.md", Project: "demo"})
	if err != nil {
		t.Fatalf("handleActive: %v", err)
	}
	for _, r := range out.Active {
		if r.Name == "go-style" {
			t.Fatalf("glob rule should not apply to README.md: %+v", out.Active)
		}
	}
	if out.Count != 2 {
		t.Fatalf("Active for README = %+v", out.Active)
	}

	if _, _, err := server.handleActive(ctx, req, ActiveInput{}); err == nil {
		t.Fatal("missing file should error")
	}
}

func TestHandleRulesResource(t *testing.T) {
	server := testServer(t)
	req := &sdk.ReadResourceRequest{Params: &sdk.ReadResourceParams{URI: "polyrc://rules/demo"}}

	result, err := server.handleRulesResource(context.Background(), req)
	if err != nil {
		t.Fatalf("handleRulesResource: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("Contents = %+v", result.Contents)
	}
	text := result.Contents[0].Text
	for _, want := range []string{"# Rules for demo", "## style", "Use tabs."} {
		if !strings.Contains(text, want) {
			t.Errorf("resource text missing %q:\n%s", want, text)
		}
	}

	if _, err := server.handleRulesResource(context.Background(), &sdk.ReadResourceRequest{Params: &sdk.ReadResourceParams{URI: "bogus://x"}}); err == nil {
		t.Fatal("unrecognized URI should error")
	}
}
