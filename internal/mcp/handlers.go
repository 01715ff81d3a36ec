package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tjirsch/polyrc/internal/activation"
	"github.com/tjirsch/polyrc/internal/models"
	"github.com/tjirsch/polyrc/internal/store"
)

// registerTools registers all polyrc MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "polyrc_rules",
		Description: "List stored rules, optionally filtered by project, scope, or source format",
	}, s.handleRules)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "polyrc_projects",
		Description: "List the projects in the rule store",
	}, s.handleProjects)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "polyrc_active",
		Description: "Get the rules that apply to a given file (always rules plus matching glob rules)",
	}, s.handleActive)
}

// registerResources registers the per-project rules resource.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&sdk.ResourceTemplate{
		URITemplate: "polyrc://rules/{project}",
		Name:        "polyrc-rules",
		Description: "All stored rules for one project, rendered as markdown for context injection.",
		MIMEType:    "text/markdown",
	}, s.handleRulesResource)
}

func (s *Server) handleRules(ctx context.Context, req *sdk.CallToolRequest, args RulesInput) (*sdk.CallToolResult, RulesOutput, error) {
	scope, err := parseScopeFilter(args.Scope)
	if err != nil {
		return nil, RulesOutput{}, err
	}
	rules, err := s.store.GetAll(args.Project, scope, args.Format)
	if err != nil {
		return nil, RulesOutput{}, fmt.Errorf("loading rules: %w", err)
	}
	out := RulesOutput{Rules: summarize(rules), Count: len(rules)}
	return nil, out, nil
}

func (s *Server) handleProjects(ctx context.Context, req *sdk.CallToolRequest, args ProjectsInput) (*sdk.CallToolResult, ProjectsOutput, error) {
	projects, err := s.store.ListProjects()
	if err != nil {
		return nil, ProjectsOutput{}, fmt.Errorf("listing projects: %w", err)
	}
	return nil, ProjectsOutput{Projects: projects}, nil
}

func (s *Server) handleActive(ctx context.Context, req *sdk.CallToolRequest, args ActiveInput) (*sdk.CallToolResult, ActiveOutput, error) {
	if args.File == "" {
		return nil, ActiveOutput{}, fmt.Errorf("file is required")
	}
	rules, err := s.candidateRules(args.Project)
	if err != nil {
		return nil, ActiveOutput{}, err
	}
	active := activation.Active(rules, args.File)
	return nil, ActiveOutput{Active: summarize(active), Count: len(active)}, nil
}

// candidateRules loads a project's rules plus the user-global set.
func (s *Server) candidateRules(project string) (models.RuleSet, error) {
	if project == "" || project == store.UserProject {
		return s.store.GetAll(store.UserProject, "", "")
	}
	rules, err := s.store.GetAll(project, "", "")
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	user, err := s.store.GetAll(store.UserProject, "", "")
	if err != nil {
		return nil, fmt.Errorf("loading user rules: %w", err)
	}
	return append(rules, user...), nil
}

func (s *Server) handleRulesResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	project := strings.TrimPrefix(uri, "polyrc://rules/")
	if project == uri || project == "" {
		return nil, fmt.Errorf("unrecognized resource URI %q", uri)
	}

	rules, err := s.store.GetAll(project, "", "")
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Rules for %s\n\n", project)
	if len(rules) == 0 {
		sb.WriteString("No rules stored for this project.\n")
	}
	for _, r := range rules {
		name := r.Name
		if name == "" {
			name = r.ID
		}
		fmt.Fprintf(&sb, "## %s\n\n", name)
		if r.Description != "" {
			fmt.Fprintf(&sb, "_%s_\n\n", r.Description)
		}
		sb.WriteString(strings.TrimRight(r.Content, "\n"))
		sb.WriteString("\n\n")
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

func parseScopeFilter(s string) (models.Scope, error) {
	if s == "" {
		return "", nil
	}
	return models.ParseScope(s)
}

func summarize(rules models.RuleSet) []RuleSummary {
	out := make([]RuleSummary, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleSummary{
			ID:          r.ID,
			Name:        r.Name,
			Project:     r.Project,
			Scope:       string(r.Scope),
			Activation:  string(r.Activation),
			Globs:       r.Globs,
			Description: r.Description,
			Content:     r.Content,
		})
	}
	return out
}
